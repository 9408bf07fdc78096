package cache

import (
	"github.com/Humphrey-He/rcache/configs"
	"github.com/Humphrey-He/rcache/internal/metrics"
	"github.com/Humphrey-He/rcache/pkg/backend"
	"github.com/Humphrey-He/rcache/pkg/codec"
)

// OptionsFromConfig translates a file configuration into adapter options.
//
// OptionsFromConfig 将文件配置转换为适配器选项。
//
// Parameters:
//   - cfg: The configuration, usually loaded with configs.LoadFromFile or configs.NewViperConfig
//
// Returns:
//   - []Option: Options for NewStore or NewCompressed
//   - error: An error if the codec or compressor cannot be built
func OptionsFromConfig(cfg *configs.Config) ([]Option, error) {
	b := cfg.Backend
	opts := []Option{
		WithName(cfg.Cache.Name),
		WithKeyTemplate(cfg.Cache.KeyTemplate),
		WithDriver(b.Driver),
		WithBackendOptions(backend.Options{
			URL:           b.URL,
			Addr:          b.Addr,
			Username:      b.Username,
			Password:      b.Password,
			DB:            b.DB,
			PoolSize:      b.PoolSize,
			DialTimeout:   b.DialTimeout,
			ReadTimeout:   b.ReadTimeout,
			WriteTimeout:  b.WriteTimeout,
			Path:          b.Path,
			Bucket:        b.Bucket,
			SweepInterval: b.SweepInterval,
		}),
	}

	if cfg.Compression.Enable {
		c, err := codec.GetCodec(cfg.Compression.Codec)
		if err != nil {
			return nil, err
		}
		compressor, err := compressorFromConfig(cfg.Compression)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithCodec(c), WithCompressor(compressor))
	}
	return opts, nil
}

func compressorFromConfig(cfg configs.CompressionConfig) (codec.Compressor, error) {
	switch cfg.Algorithm {
	case "", "zlib":
		return codec.NewZlibCompressor(cfg.Level), nil
	case "gzip":
		return codec.NewGzipCompressor(cfg.Level), nil
	default:
		return codec.GetCompressor(cfg.Algorithm)
	}
}

// NewFromConfig creates the adapter selected by cfg: a Compressed cache when
// compression is enabled, a Store otherwise. When metrics are enabled the
// adapter is wrapped with Instrumented, registered with the default
// Prometheus registerer. Extra options are applied after the configuration.
//
// NewFromConfig 创建cfg所选的适配器：启用压缩时为Compressed，否则为Store。
// 启用指标时，适配器被Instrumented包装并注册到默认的Prometheus注册器。额外选项在配置之后应用。
//
// Returns:
//   - Cache: The created cache
//   - error: An error if the configuration is invalid or dialing fails
func NewFromConfig(cfg *configs.Config, extra ...Option) (Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, extra...)

	var c Cache
	if cfg.Compression.Enable {
		c, err = NewCompressed(opts...)
	} else {
		c, err = NewStore(opts...)
	}
	if err != nil {
		return nil, err
	}

	if !cfg.Metrics.Enable {
		return c, nil
	}
	level, err := metrics.ParseLevel(cfg.Metrics.Level)
	if err != nil {
		c.Close()
		return nil, err
	}
	collector, err := metrics.NewCollector(cfg.Metrics.Namespace, level, nil)
	if err != nil {
		c.Close()
		return nil, err
	}
	return NewInstrumented(c, cfg.Cache.Name, collector), nil
}

// NewFromFile loads a configuration file and creates the adapter it describes.
//
// NewFromFile 加载配置文件并创建其描述的适配器。
func NewFromFile(filename string, extra ...Option) (Cache, error) {
	cfg, err := configs.LoadFromFile(filename)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, extra...)
}
