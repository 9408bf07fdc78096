// Package configs provides configuration structures and utilities for rcache.
// It offers mechanisms for loading, validating, and saving configuration from various sources
// including JSON and YAML files. The package defines the configuration structure
// that selects the backend, the value transformation, logging and metrics.
//
// Package configs 提供rcache的配置结构和工具。
// 它提供从各种来源（包括JSON和YAML文件）加载、验证和保存配置的机制。
// 该包定义了选择后端、值转换、日志和指标的配置结构。
package configs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for rcache.
// It contains all settings needed to build a cache adapter,
// organized into logical sections for different components.
//
// Config 表示rcache的完整配置。
// 它包含构建缓存适配器所需的所有设置，
// 按不同组件的逻辑部分进行组织。
type Config struct {
	// Cache contains the adapter settings like name and key template
	// Cache 包含适配器设置，如名称和键模板
	Cache CacheConfig `json:"cache" yaml:"cache" mapstructure:"cache"`

	// Backend selects and connects the key-value store
	// Backend 选择并连接键值存储
	Backend BackendConfig `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Compression configures the compressed adapter
	// Compression 配置压缩适配器
	Compression CompressionConfig `json:"compression" yaml:"compression" mapstructure:"compression"`

	// Metrics configures performance monitoring and statistics
	// Metrics 配置性能监控和统计
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`

	// Log configures the logging behavior
	// Log 配置日志行为
	Log LogConfig `json:"log" yaml:"log" mapstructure:"log"`

	// Extensions configures optional features like hot reloading
	// Extensions 配置可选功能，如热重载
	Extensions ExtensionsConfig `json:"extensions" yaml:"extensions" mapstructure:"extensions"`

	// Extra allows for custom configuration options
	// Extra 允许自定义配置选项
	Extra map[string]interface{} `json:"extra" yaml:"extra" mapstructure:"extra"`
}

// CacheConfig contains settings for the cache adapter itself.
//
// CacheConfig 包含缓存适配器本身的设置。
type CacheConfig struct {
	// Name is the identifier for this cache instance
	// Name 是此缓存实例的标识符
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// KeyTemplate maps cache keys to backend keys, it must hold exactly one %s
	// KeyTemplate 将缓存键映射为后端键，必须恰好包含一个%s
	KeyTemplate string `json:"key_template" yaml:"key_template" mapstructure:"key_template"`

	// DefaultTTL is the time-to-live used by tools and loaders when none is given (0 = no expiry)
	// DefaultTTL 是工具和加载器在未指定时使用的生存时间（0 = 不过期）
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl" mapstructure:"default_ttl"`
}

// BackendConfig contains settings for the backend connection.
// Drivers ignore the fields that do not apply to them.
//
// BackendConfig 包含后端连接的设置。驱动会忽略不适用于它们的字段。
type BackendConfig struct {
	// Driver determines the client implementation ("goredis", "redigo", "bolt", "memory")
	// Driver 确定客户端实现（"goredis"、"redigo"、"bolt"、"memory"）
	Driver string `json:"driver" yaml:"driver" mapstructure:"driver"`

	// URL is a redis:// URL that takes precedence over Addr, Username, Password and DB
	// URL 是redis:// URL，优先于Addr、Username、Password和DB
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	Addr     string `json:"addr" yaml:"addr" mapstructure:"addr"`
	Username string `json:"username" yaml:"username" mapstructure:"username"`
	Password string `json:"password" yaml:"password" mapstructure:"password"`
	DB       int    `json:"db" yaml:"db" mapstructure:"db"`

	// PoolSize is the maximum number of connections (0 = driver default)
	// PoolSize 是最大连接数（0 = 驱动默认值）
	PoolSize int `json:"pool_size" yaml:"pool_size" mapstructure:"pool_size"`

	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`

	// Path and Bucket locate the database of the bolt driver
	// Path和Bucket定位bolt驱动的数据库
	Path   string `json:"path" yaml:"path" mapstructure:"path"`
	Bucket string `json:"bucket" yaml:"bucket" mapstructure:"bucket"`

	// SweepInterval is how often the bolt and memory drivers delete expired records (0 = only on read)
	// SweepInterval 是bolt和memory驱动删除过期记录的间隔（0 = 仅在读取时）
	SweepInterval time.Duration `json:"sweep_interval" yaml:"sweep_interval" mapstructure:"sweep_interval"`
}

// CompressionConfig contains settings for the compressed adapter.
//
// CompressionConfig 包含压缩适配器的设置。
type CompressionConfig struct {
	// Enable selects the compressed adapter instead of the raw store
	// Enable 选择压缩适配器而不是原始存储
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`

	// Codec is the serialization format ("cbor", "json", "msgpack", "gob", "string")
	// Codec 是序列化格式（"cbor"、"json"、"msgpack"、"gob"、"string"）
	Codec string `json:"codec" yaml:"codec" mapstructure:"codec"`

	// Algorithm is the compressor ("zlib", "gzip", "zstd", "s2", "snappy", "lz4", "none")
	// Algorithm 是压缩器（"zlib"、"gzip"、"zstd"、"s2"、"snappy"、"lz4"、"none"）
	Algorithm string `json:"algorithm" yaml:"algorithm" mapstructure:"algorithm"`

	// Level is the compression level for zlib and gzip (-1 = default)
	// Level 是zlib和gzip的压缩级别（-1 = 默认）
	Level int `json:"level" yaml:"level" mapstructure:"level"`
}

// MetricsConfig contains settings for metrics collection.
//
// MetricsConfig 包含指标收集的设置。
type MetricsConfig struct {
	// Enable determines whether metrics collection is active
	// Enable 确定是否启用指标收集
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`

	// Level controls the detail of metrics collection ("basic", "detailed", "disabled")
	// Level 控制指标收集的详细程度（"basic"、"detailed"、"disabled"）
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Namespace prefixes every metric name
	// Namespace 为每个指标名称添加前缀
	Namespace string `json:"namespace" yaml:"namespace" mapstructure:"namespace"`

	// PrometheusPort is the port for exposing Prometheus metrics
	// PrometheusPort 是暴露Prometheus指标的端口
	PrometheusPort int `json:"prometheus_port" yaml:"prometheus_port" mapstructure:"prometheus_port"`
}

// LogConfig contains settings for logging.
// These settings control the logging behavior, including
// log level, format, and output destination.
//
// LogConfig 包含日志记录的设置。
// 这些设置控制日志行为，包括日志级别、格式和输出目的地。
type LogConfig struct {
	// Level sets the minimum log level ("debug", "info", "warn", "error")
	// Level 设置最低日志级别（"debug"、"info"、"warn"、"error"）
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format specifies the log format ("text", "json")
	// Format 指定日志格式（"text"、"json"）
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Output determines where logs are written ("stdout", "stderr", "file")
	// Output 确定日志写入的位置（"stdout"、"stderr"、"file"）
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// FilePath is the path to the log file when Output is "file"
	// FilePath 是当Output为"file"时的日志文件路径
	FilePath string `json:"file_path" yaml:"file_path" mapstructure:"file_path"`

	// MaxSizeMB is the maximum log file size before rotation
	// MaxSizeMB 是轮换前的最大日志文件大小（MB）
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb" mapstructure:"max_size_mb"`

	// MaxBackups is the number of rotated log files to keep
	// MaxBackups 是要保留的轮换日志文件数量
	MaxBackups int `json:"max_backups" yaml:"max_backups" mapstructure:"max_backups"`

	// MaxAgeDays is the maximum age of log files in days
	// MaxAgeDays 是日志文件的最大保留天数
	MaxAgeDays int `json:"max_age_days" yaml:"max_age_days" mapstructure:"max_age_days"`
}

// ExtensionsConfig contains settings for extensions.
//
// ExtensionsConfig 包含扩展的设置。
type ExtensionsConfig struct {
	// HotReload contains settings for dynamic configuration reloading
	// HotReload 包含动态配置重新加载的设置
	HotReload HotReloadConfig `json:"hot_reload" yaml:"hot_reload" mapstructure:"hot_reload"`
}

// HotReloadConfig contains settings for hot reloading.
// Only the log level is applied on reload; backend settings need a restart.
//
// HotReloadConfig 包含热重载的设置。重载时仅应用日志级别；后端设置需要重启。
type HotReloadConfig struct {
	// Enable determines whether hot reloading is active
	// Enable 确定是否启用热重载
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`
}

// DefaultConfig returns a new Config with default values.
// This provides a starting point for configuration with reasonable defaults
// for all settings, which can then be customized as needed.
//
// DefaultConfig 返回具有默认值的新Config。
// 这为所有设置提供了具有合理默认值的配置起点，
// 然后可以根据需要进行自定义。
//
// Returns:
//   - *Config: A new configuration instance with default values
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Name:        "rcache",
			KeyTemplate: "%s",
		},
		Backend: BackendConfig{
			Driver:       "goredis",
			Addr:         "localhost:6379",
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			Path:         "rcache.db",
			Bucket:       "rcache",
		},
		Compression: CompressionConfig{
			Enable:    true,
			Codec:     "cbor",
			Algorithm: "zlib",
			Level:     -1,
		},
		Metrics: MetricsConfig{
			Enable:         false,
			Level:          "basic",
			Namespace:      "rcache",
			PrometheusPort: 2112,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stderr",
			FilePath:   "/var/log/rcache.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Extra: make(map[string]interface{}),
	}
}

// LoadFromFile loads configuration from a file.
// It supports both YAML and JSON formats, automatically
// detecting the format based on the file extension.
//
// LoadFromFile 从文件加载配置。
// 它支持YAML和JSON格式，根据文件扩展名自动检测格式。
//
// Parameters:
//   - filename: Path to the configuration file
//
// Returns:
//   - *Config: The loaded configuration
//   - error: An error if loading fails
func LoadFromFile(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration file: %w", err)
	}
	defer file.Close()

	return LoadFromReader(file, strings.TrimPrefix(filepath.Ext(filename), "."))
}

// LoadFromReader loads configuration from an io.Reader.
//
// LoadFromReader 从io.Reader加载配置。
//
// Parameters:
//   - r: The reader providing the configuration data
//   - format: The format of the data ("json", "yaml", or "yml")
//
// Returns:
//   - *Config: The loaded configuration
//   - error: An error if loading fails
func LoadFromReader(r io.Reader, format string) (*Config, error) {
	config := DefaultConfig()
	var err error

	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(config)
	case "json":
		err = json.NewDecoder(r).Decode(config)
	default:
		return nil, fmt.Errorf("unsupported configuration format: %s", format)
	}

	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a file.
// It supports both YAML and JSON formats, automatically
// selecting the format based on the file extension.
//
// SaveToFile 将配置保存到文件。
// 它支持YAML和JSON格式，根据文件扩展名自动选择格式。
func (c *Config) SaveToFile(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".yaml" && ext != ".yml" && ext != ".json" {
		return fmt.Errorf("unsupported configuration file format: %s", ext)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	defer file.Close()

	if ext == ".json" {
		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(c)
	} else {
		encoder := yaml.NewEncoder(file)
		err = encoder.Encode(c)
		if cerr := encoder.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	return nil
}

// Validate validates the configuration.
// It checks that all settings have valid values and
// that there are no conflicts or inconsistencies.
//
// Validate 验证配置。
// 它检查所有设置是否具有有效值，并且没有冲突或不一致。
//
// Returns:
//   - error: An error describing the validation failure, or nil if valid
func (c *Config) Validate() error {
	// Validate cache settings
	// 验证缓存设置
	if c.Cache.Name == "" {
		return fmt.Errorf("cache.name must not be empty")
	}
	if strings.Count(strings.ReplaceAll(c.Cache.KeyTemplate, "%%", ""), "%s") != 1 {
		return fmt.Errorf("cache.key_template must contain exactly one %%s")
	}
	if c.Cache.DefaultTTL < 0 {
		return fmt.Errorf("cache.default_ttl must be non-negative")
	}

	// Validate backend settings
	// 验证后端设置
	switch c.Backend.Driver {
	case "goredis", "redigo":
		if c.Backend.URL == "" && c.Backend.Addr == "" {
			return fmt.Errorf("backend.addr or backend.url must be set for driver %s", c.Backend.Driver)
		}
	case "bolt":
		if c.Backend.Path == "" {
			return fmt.Errorf("backend.path must be set for driver bolt")
		}
	case "memory":
	default:
		return fmt.Errorf("backend.driver must be one of: goredis, redigo, bolt, memory")
	}
	if c.Backend.DB < 0 {
		return fmt.Errorf("backend.db must be non-negative")
	}
	if c.Backend.SweepInterval < 0 {
		return fmt.Errorf("backend.sweep_interval must be non-negative")
	}
	if c.Backend.PoolSize < 0 {
		return fmt.Errorf("backend.pool_size must be non-negative")
	}

	// Validate compression settings
	// 验证压缩设置
	if c.Compression.Enable {
		switch c.Compression.Codec {
		case "", "cbor", "json", "msgpack", "gob", "string":
		default:
			return fmt.Errorf("compression.codec must be one of: cbor, json, msgpack, gob, string")
		}
		switch c.Compression.Algorithm {
		case "", "zlib", "gzip", "zstd", "s2", "snappy", "lz4", "none":
		default:
			return fmt.Errorf("compression.algorithm must be one of: zlib, gzip, zstd, s2, snappy, lz4, none")
		}
		if c.Compression.Level < -2 || c.Compression.Level > 9 {
			return fmt.Errorf("compression.level must be between -2 and 9")
		}
	}

	// Validate metrics settings
	// 验证指标设置
	if c.Metrics.Enable {
		switch c.Metrics.Level {
		case "basic", "detailed", "disabled":
		default:
			return fmt.Errorf("metrics.level must be one of: basic, detailed, disabled")
		}
		if c.Metrics.PrometheusPort <= 0 || c.Metrics.PrometheusPort > 65535 {
			return fmt.Errorf("metrics.prometheus_port must be between 1 and 65535")
		}
	}

	// Validate log settings
	// 验证日志设置
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be one of: text, json")
	}
	switch c.Log.Output {
	case "stdout", "stderr", "file":
	default:
		return fmt.Errorf("log.output must be one of: stdout, stderr, file")
	}
	if c.Log.Output == "file" && c.Log.FilePath == "" {
		return fmt.Errorf("log.file_path must be specified when log.output is 'file'")
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be positive")
	}
	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_backups must be non-negative")
	}
	if c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log.max_age_days must be non-negative")
	}

	return nil
}
