package cache

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Humphrey-He/rcache/pkg/backend"
	"github.com/Humphrey-He/rcache/pkg/codec"
)

// Config defines the construction parameters of a cache adapter.
// It selects the backend client and controls how keys and values are
// transformed on their way to it.
//
// Config 定义缓存适配器的构造参数。
// 它选择后端客户端，并控制键和值发往后端时的转换方式。
type Config struct {
	// Name of the cache instance, used for metrics and logging
	// 缓存实例的名称，用于指标收集和日志记录
	Name string `json:"name" yaml:"name"`

	// KeyTemplate maps a cache key to a backend key. It must contain exactly
	// one %s; a literal percent sign is written %%. Defaults to "%s".
	//
	// KeyTemplate 将缓存键映射为后端键。它必须恰好包含一个%s；字面百分号写作%%。默认为"%s"。
	KeyTemplate string `json:"key_template" yaml:"key_template"`

	// Driver names the registered backend dialer, see backend.Lookup.
	// Valid values: "goredis", "redigo", "bolt", "memory"
	//
	// Driver 指定已注册的后端拨号器名称，参见backend.Lookup。
	// 有效值："goredis"、"redigo"、"bolt"、"memory"
	Driver string `json:"driver" yaml:"driver"`

	// Backend holds the connection parameters handed to the dialer.
	// Backend 保存传递给拨号器的连接参数。
	Backend backend.Options `json:"backend" yaml:"backend"`

	// Dialer overrides Driver when set.
	// Dialer 设置时覆盖Driver。
	Dialer backend.Dialer `json:"-" yaml:"-"`

	// Client is an already connected client. When set, no dialing happens.
	// Client 是已连接的客户端。设置时不会进行拨号。
	Client backend.Client `json:"-" yaml:"-"`

	// Codec serializes values for Compressed. Store ignores it.
	// If nil, the default CBOR codec will be used.
	//
	// Codec 为Compressed序列化值，Store会忽略它。如果为nil，将使用默认的CBOR编解码器。
	Codec codec.Codec `json:"-" yaml:"-"`

	// Compressor compresses serialized values for Compressed. Store ignores it.
	// If nil, zlib at the default level will be used.
	//
	// Compressor 为Compressed压缩序列化后的值，Store会忽略它。如果为nil，将使用默认级别的zlib。
	Compressor codec.Compressor `json:"-" yaml:"-"`

	// Logger receives diagnostics. If nil, the global zerolog logger is used.
	// Logger 接收诊断信息。如果为nil，则使用全局zerolog日志器。
	Logger *zerolog.Logger `json:"-" yaml:"-"`
}

// NewDefaultConfig returns a Config with sensible default values.
// It points at a local Redis server through the go-redis driver.
//
// NewDefaultConfig 返回具有合理默认值的Config。它通过go-redis驱动指向本地Redis服务器。
//
// Returns:
//   - *Config: A new configuration instance with default values
func NewDefaultConfig() *Config {
	return &Config{
		Name:        "rcache",
		KeyTemplate: IdentityKeyTemplate,
		Driver:      backend.DriverGoRedis,
		Backend:     backend.DefaultOptions(),
		Codec:       codec.DefaultCodec(),
		Compressor:  codec.DefaultCompressor(),
	}
}

// Validate checks if the configuration is valid.
//
// Validate 检查配置是否有效。
//
// Returns:
//   - error: An error if the configuration is invalid, nil otherwise
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("cache name cannot be empty")
	}

	if _, err := parseKeyTemplate(c.KeyTemplate); err != nil {
		return err
	}

	if c.Client == nil && c.Dialer == nil {
		if _, err := backend.Lookup(c.Driver); err != nil {
			return err
		}
	}

	if c.Codec == nil {
		return fmt.Errorf("codec cannot be nil")
	}
	if c.Compressor == nil {
		return fmt.Errorf("compressor cannot be nil")
	}

	return nil
}

func (c *Config) logger() zerolog.Logger {
	l := log.Logger
	if c.Logger != nil {
		l = *c.Logger
	}
	return l.With().Str("cache", c.Name).Logger()
}

func (c *Config) dial() (backend.Client, error) {
	if c.Client != nil {
		return c.Client, nil
	}
	dialer := c.Dialer
	if dialer == nil {
		var err error
		if dialer, err = backend.Lookup(c.Driver); err != nil {
			return nil, err
		}
	}
	return dialer(c.Backend)
}

func buildConfig(opts []Option) (*Config, error) {
	cfg := NewDefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache configuration: %w", err)
	}
	return cfg, nil
}
