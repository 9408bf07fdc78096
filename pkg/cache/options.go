package cache

import (
	"github.com/rs/zerolog"

	"github.com/Humphrey-He/rcache/pkg/backend"
	"github.com/Humphrey-He/rcache/pkg/codec"
)

// Option is a function that configures a Config.
// This pattern allows for flexible and readable configuration of cache instances.
//
// Option 是一个配置Config的函数。
// 这种模式允许灵活且可读地配置缓存实例。
type Option func(*Config)

// WithName sets the cache name used for metrics and logging.
//
// WithName 设置用于指标和日志记录的缓存名称。
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithKeyTemplate sets the template that maps cache keys to backend keys.
//
// WithKeyTemplate 设置将缓存键映射为后端键的模板。
//
// Parameters:
//   - tpl: A template holding exactly one %s, e.g. "app:users:%s"
//
// Returns:
//   - Option: A configuration option
func WithKeyTemplate(tpl string) Option {
	return func(c *Config) {
		c.KeyTemplate = tpl
	}
}

// WithDriver selects a registered backend driver by name.
//
// WithDriver 按名称选择已注册的后端驱动。
func WithDriver(name string) Option {
	return func(c *Config) {
		c.Driver = name
	}
}

// WithDialer sets a custom dialer, overriding the driver.
//
// WithDialer 设置自定义拨号器，覆盖驱动。
func WithDialer(dialer backend.Dialer) Option {
	return func(c *Config) {
		c.Dialer = dialer
	}
}

// WithClient injects an already connected backend client.
// The caller keeps ownership: Close on the adapter does not close it.
//
// WithClient 注入已连接的后端客户端。调用者保留所有权：适配器的Close不会关闭它。
func WithClient(client backend.Client) Option {
	return func(c *Config) {
		c.Client = client
	}
}

// WithBackendOptions replaces the connection parameters handed to the dialer.
//
// WithBackendOptions 替换传递给拨号器的连接参数。
func WithBackendOptions(opts backend.Options) Option {
	return func(c *Config) {
		c.Backend = opts
	}
}

// WithAddr sets the host:port of the backend server.
//
// WithAddr 设置后端服务器的host:port。
func WithAddr(addr string) Option {
	return func(c *Config) {
		c.Backend.Addr = addr
	}
}

// WithURL sets a redis:// URL for the backend connection.
//
// WithURL 设置后端连接的redis:// URL。
func WithURL(url string) Option {
	return func(c *Config) {
		c.Backend.URL = url
	}
}

// WithPassword sets the backend password.
//
// WithPassword 设置后端密码。
func WithPassword(password string) Option {
	return func(c *Config) {
		c.Backend.Password = password
	}
}

// WithDB selects the backend database.
//
// WithDB 选择后端数据库。
func WithDB(db int) Option {
	return func(c *Config) {
		c.Backend.DB = db
	}
}

// WithCodec sets the serialization codec used by Compressed.
//
// WithCodec 设置Compressed使用的序列化编解码器。
//
// Parameters:
//   - codec: The codec to use
//
// Returns:
//   - Option: A configuration option
func WithCodec(codec codec.Codec) Option {
	return func(c *Config) {
		c.Codec = codec
	}
}

// WithCompressor sets the compressor used by Compressed.
//
// WithCompressor 设置Compressed使用的压缩器。
func WithCompressor(compressor codec.Compressor) Option {
	return func(c *Config) {
		c.Compressor = compressor
	}
}

// WithLogger sets the logger that receives diagnostics.
//
// WithLogger 设置接收诊断信息的日志器。
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = &logger
	}
}
