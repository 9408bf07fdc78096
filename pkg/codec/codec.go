// Package codec provides the serialization and compression capabilities used
// by the compressed cache adapter. Values are serialized by a Codec and the
// resulting bytes are compressed by a Compressor before they reach the backend.
//
// Package codec 提供压缩缓存适配器使用的序列化和压缩能力。
// 值先由Codec序列化，得到的字节再由Compressor压缩，然后才写入后端。
package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	json "github.com/goccy/go-json"
	ugorji "github.com/ugorji/go/codec"
)

func init() {
	// Composite values decoded into interface{} by the generic codecs.
	// 通用编解码器解码到interface{}时产生的复合值类型。
	gob.Register(map[string]interface{}{})
	gob.Register([]interface{}{})
}

// Codec defines the interface for encoding and decoding cache values.
// Implementations of this interface can be used to customize how values
// are serialized and deserialized in the cache.
//
// Codec 定义了编码和解码缓存值的接口。
// 此接口的实现可用于自定义如何在缓存中序列化和反序列化值。
type Codec interface {
	// Marshal serializes a value into bytes.
	// The value can be of any type that the codec supports.
	//
	// Marshal 将值序列化为字节。
	// 值可以是编解码器支持的任何类型。
	//
	// Parameters:
	//   - value: The value to serialize
	//
	// Returns:
	//   - []byte: The serialized bytes
	//   - error: An error if serialization fails
	Marshal(value interface{}) ([]byte, error)

	// Unmarshal deserializes bytes into a value.
	// The value parameter should be a pointer to the target type; a
	// *interface{} receives the codec's generic representation.
	//
	// Unmarshal 将字节反序列化为值。
	// value参数应该是目标类型的指针；*interface{}接收编解码器的通用表示。
	//
	// Parameters:
	//   - data: The bytes to deserialize
	//   - value: A pointer to the target value
	//
	// Returns:
	//   - error: An error if deserialization fails
	Unmarshal(data []byte, value interface{}) error

	// Name returns the name of this codec.
	// This is useful for identification and debugging.
	//
	// Name 返回此编解码器的名称。
	// 这对于标识和调试很有用。
	Name() string
}

// CBORCodec implements Codec using CBOR (RFC 8949).
// It is the default codec: like a pickle-style serializer it round-trips
// arbitrary composite values (maps, slices, scalars, structs) without a schema.
//
// CBORCodec 使用CBOR（RFC 8949）实现Codec。
// 它是默认编解码器：与pickle类序列化器一样，无需模式即可往返任意复合值。
type CBORCodec struct {
	dec cbor.DecMode
}

// NewCBORCodec creates a new CBORCodec.
// Maps decoded into interface{} use string keys.
//
// NewCBORCodec 创建一个新的CBORCodec。
// 解码到interface{}的映射使用字符串键。
//
// Returns:
//   - *CBORCodec: A new CBOR codec instance
func NewCBORCodec() *CBORCodec {
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		// The options above are static; DecMode only fails on invalid options.
		panic(fmt.Sprintf("cborcodec: %v", err))
	}
	return &CBORCodec{dec: dec}
}

// Marshal serializes a value into CBOR bytes.
//
// Marshal 将值序列化为CBOR字节。
func (c *CBORCodec) Marshal(value interface{}) ([]byte, error) {
	return cbor.Marshal(value)
}

// Unmarshal deserializes CBOR bytes into a value.
//
// Unmarshal 将CBOR字节反序列化为值。
func (c *CBORCodec) Unmarshal(data []byte, value interface{}) error {
	return c.dec.Unmarshal(data, value)
}

// Name returns "cbor".
//
// Name 返回"cbor"。
func (c *CBORCodec) Name() string {
	return "cbor"
}

// JSONCodec implements Codec using JSON serialization.
// It provides efficient and human-readable encoding of values.
// Numbers decoded into interface{} become float64.
//
// JSONCodec 使用JSON序列化实现Codec。
// 它提供高效且人类可读的值编码。解码到interface{}的数字为float64。
type JSONCodec struct {
	// Pretty determines whether to use indented JSON encoding.
	// When true, the JSON output will be formatted with indentation.
	//
	// Pretty 决定是否使用缩进的JSON编码。
	// 当为true时，JSON输出将使用缩进格式化。
	Pretty bool
}

// Marshal serializes a value into JSON bytes.
// If Pretty is true, the output will be indented.
//
// Marshal 将值序列化为JSON字节。
// 如果Pretty为true，输出将带有缩进。
//
// Parameters:
//   - value: The value to serialize to JSON
//
// Returns:
//   - []byte: The JSON bytes
//   - error: An error if JSON serialization fails
func (c *JSONCodec) Marshal(value interface{}) ([]byte, error) {
	if c.Pretty {
		return json.MarshalIndent(value, "", "  ")
	}
	return json.Marshal(value)
}

// Unmarshal deserializes JSON bytes into a value.
// The value parameter must be a pointer to the target type.
//
// Unmarshal 将JSON字节反序列化为值。
// value参数必须是目标类型的指针。
func (c *JSONCodec) Unmarshal(data []byte, value interface{}) error {
	return json.Unmarshal(data, value)
}

// Name returns "json".
//
// Name 返回"json"。
func (c *JSONCodec) Name() string {
	return "json"
}

// NewJSONCodec creates a new JSONCodec.
//
// NewJSONCodec 创建一个新的JSONCodec。
//
// Parameters:
//   - pretty: Whether to use indented JSON encoding
//
// Returns:
//   - *JSONCodec: A new JSON codec instance
func NewJSONCodec(pretty bool) *JSONCodec {
	return &JSONCodec{Pretty: pretty}
}

// MsgpackCodec implements Codec using MessagePack.
//
// MsgpackCodec 使用MessagePack实现Codec。
type MsgpackCodec struct {
	handle *ugorji.MsgpackHandle
}

// NewMsgpackCodec creates a new MsgpackCodec.
// Strings are written with the str8/bin distinction so they decode back as
// strings, and maps decoded into interface{} use string keys.
//
// NewMsgpackCodec 创建一个新的MsgpackCodec。
func NewMsgpackCodec() *MsgpackCodec {
	h := &ugorji.MsgpackHandle{WriteExt: true}
	h.RawToString = true
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return &MsgpackCodec{handle: h}
}

// Marshal serializes a value into MessagePack bytes.
//
// Marshal 将值序列化为MessagePack字节。
func (c *MsgpackCodec) Marshal(value interface{}) ([]byte, error) {
	var out []byte
	if err := ugorji.NewEncoderBytes(&out, c.handle).Encode(value); err != nil {
		return nil, err
	}
	return out, nil
}

// Unmarshal deserializes MessagePack bytes into a value.
//
// Unmarshal 将MessagePack字节反序列化为值。
func (c *MsgpackCodec) Unmarshal(data []byte, value interface{}) error {
	return ugorji.NewDecoderBytes(data, c.handle).Decode(value)
}

// Name returns "msgpack".
//
// Name 返回"msgpack"。
func (c *MsgpackCodec) Name() string {
	return "msgpack"
}

// GobCodec implements Codec using Gob serialization.
// Gob is a binary format optimized for Go types. Values travel inside an
// envelope so that they can be decoded back into an interface{}; concrete
// types stored this way must be registered with gob.Register.
//
// GobCodec 使用Gob序列化实现Codec。
// 值被包装在信封中传输，以便能解码回interface{}；以此方式存储的具体类型必须通过gob.Register注册。
type GobCodec struct{}

type gobEnvelope struct {
	V interface{}
}

// Marshal serializes a value into Gob bytes.
//
// Marshal 将值序列化为Gob字节。
func (c *GobCodec) Marshal(value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(gobEnvelope{V: value}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes Gob bytes into a value.
// The value parameter must be a pointer to a type the stored value is assignable to.
//
// Unmarshal 将Gob字节反序列化为值。
// value参数必须是存储值可赋值到的类型的指针。
func (c *GobCodec) Unmarshal(data []byte, value interface{}) error {
	var env gobEnvelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return err
	}

	target := reflect.ValueOf(value)
	if target.Kind() != reflect.Ptr || target.IsNil() {
		return fmt.Errorf("gobcodec: cannot unmarshal into %T", value)
	}
	elem := target.Elem()
	if env.V == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	decoded := reflect.ValueOf(env.V)
	if !decoded.Type().AssignableTo(elem.Type()) {
		return fmt.Errorf("gobcodec: cannot assign %T to %s", env.V, elem.Type())
	}
	elem.Set(decoded)
	return nil
}

// Name returns "gob".
//
// Name 返回"gob"。
func (c *GobCodec) Name() string {
	return "gob"
}

// NewGobCodec creates a new GobCodec.
//
// NewGobCodec 创建一个新的GobCodec。
func NewGobCodec() *GobCodec {
	return &GobCodec{}
}

// StringCodec implements Codec for string values.
// It provides simple conversion between strings and bytes.
//
// StringCodec 为字符串值实现Codec。
// 它提供字符串和字节之间的简单转换。
type StringCodec struct{}

// Marshal converts a string to bytes.
// The value must be a string or []byte.
//
// Marshal 将字符串转换为字节。
// 值必须是字符串或[]byte。
//
// Parameters:
//   - value: The string or []byte to convert
//
// Returns:
//   - []byte: The byte representation
//   - error: An error if the value is not a string or []byte
func (c *StringCodec) Marshal(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("stringcodec: cannot marshal %T", value)
	}
}

// Unmarshal converts bytes to a string.
// The value parameter must be a pointer to a string, []byte or interface{}.
//
// Unmarshal 将字节转换为字符串。
// value参数必须是指向字符串、[]byte或interface{}的指针。
func (c *StringCodec) Unmarshal(data []byte, value interface{}) error {
	switch v := value.(type) {
	case *string:
		*v = string(data)
		return nil
	case *[]byte:
		*v = data
		return nil
	case *interface{}:
		*v = string(data)
		return nil
	default:
		return fmt.Errorf("stringcodec: cannot unmarshal into %T", value)
	}
}

// Name returns "string".
//
// Name 返回"string"。
func (c *StringCodec) Name() string {
	return "string"
}

// NewStringCodec creates a new StringCodec.
//
// NewStringCodec 创建一个新的StringCodec。
func NewStringCodec() *StringCodec {
	return &StringCodec{}
}

// DefaultCodec returns the default codec (CBOR).
// This is used when no specific codec is specified.
//
// DefaultCodec 返回默认编解码器（CBOR）。
// 当未指定特定编解码器时使用。
//
// Returns:
//   - Codec: A default CBOR codec instance
func DefaultCodec() Codec {
	return NewCBORCodec()
}

// GetCodec returns a codec by name.
// Supported names: "cbor", "json", "msgpack", "gob", "string".
//
// GetCodec 通过名称返回编解码器。
// 支持的名称："cbor"、"json"、"msgpack"、"gob"、"string"。
//
// Parameters:
//   - name: The codec name
//
// Returns:
//   - Codec: The requested codec
//   - error: An error if the codec name is unknown
func GetCodec(name string) (Codec, error) {
	switch name {
	case "", "cbor":
		return NewCBORCodec(), nil
	case "json":
		return NewJSONCodec(false), nil
	case "msgpack":
		return NewMsgpackCodec(), nil
	case "gob":
		return NewGobCodec(), nil
	case "string":
		return NewStringCodec(), nil
	default:
		return nil, fmt.Errorf("unknown codec: %s", name)
	}
}
