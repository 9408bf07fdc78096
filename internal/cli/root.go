// Package cli implements the rcache command line tool, a thin shell over the
// cache adapters for inspecting and maintaining a cache from a terminal.
//
// Package cli 实现rcache命令行工具，它是缓存适配器之上的一层薄封装，用于在终端中检查和维护缓存。
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Humphrey-He/rcache/configs"
	"github.com/Humphrey-He/rcache/internal/logger"
	"github.com/Humphrey-He/rcache/pkg/cache"
)

// adapter is what the commands need from Store and Compressed.
type adapter interface {
	cache.Cache
	TTL(ctx context.Context, key string) (time.Duration, bool, error)
	Purge(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

type app struct {
	configFile string
	raw        bool

	config    *configs.Config
	cache     adapter
	logCloser io.Closer
}

// BuildRootCmd returns the rcache root command with every subcommand attached.
//
// BuildRootCmd 返回附带所有子命令的rcache根命令。
func BuildRootCmd() *cobra.Command {
	a := &app{}
	overrides := &configs.Config{}

	cmd := &cobra.Command{
		Use:           "rcache",
		Short:         "Inspect and maintain a Redis-backed cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd, overrides)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file (yaml or json); RCACHE_* environment variables override it")
	flags.StringVar(&overrides.Backend.Driver, "driver", "", "backend driver: goredis, redigo, bolt, memory")
	flags.StringVar(&overrides.Backend.Addr, "addr", "", "backend host:port")
	flags.StringVar(&overrides.Backend.URL, "url", "", "backend redis:// URL")
	flags.IntVar(&overrides.Backend.DB, "db", 0, "backend database")
	flags.StringVar(&overrides.Backend.Path, "path", "", "database file of the bolt driver")
	flags.StringVar(&overrides.Cache.KeyTemplate, "template", "", "key template holding exactly one %s")
	flags.StringVar(&overrides.Compression.Codec, "codec", "", "value codec: cbor, json, msgpack, gob, string")
	flags.StringVar(&overrides.Compression.Algorithm, "compressor", "", "value compressor: zlib, gzip, zstd, s2, snappy, lz4, none")
	flags.StringVar(&overrides.Log.Level, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&a.raw, "raw", false, "bypass serialization and compression, read and write raw bytes")

	cmd.AddCommand(
		newGetCmd(a),
		newSetCmd(a),
		newRemoveCmd(a),
		newTTLCmd(a),
		newFlushCmd(a),
		newPurgeCmd(a),
		newPingCmd(a),
		newBenchCmd(a),
	)
	return cmd
}

// run wraps a command body so the cache is closed however the body ends.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if cerr := a.close(); err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args)
	}
}

func (a *app) open(cmd *cobra.Command, overrides *configs.Config) (err error) {
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	vc, err := configs.NewViperConfig(a.configFile)
	if err != nil {
		return err
	}
	cfg := vc.Get()

	changed := cmd.Flags().Changed
	apply := func(flag string, set func()) {
		if changed(flag) {
			set()
		}
	}
	apply("driver", func() { cfg.Backend.Driver = overrides.Backend.Driver })
	apply("addr", func() { cfg.Backend.Addr = overrides.Backend.Addr })
	apply("url", func() { cfg.Backend.URL = overrides.Backend.URL })
	apply("db", func() { cfg.Backend.DB = overrides.Backend.DB })
	apply("path", func() { cfg.Backend.Path = overrides.Backend.Path })
	apply("template", func() { cfg.Cache.KeyTemplate = overrides.Cache.KeyTemplate })
	apply("codec", func() { cfg.Compression.Codec = overrides.Compression.Codec })
	apply("compressor", func() { cfg.Compression.Algorithm = overrides.Compression.Algorithm })
	apply("log-level", func() { cfg.Log.Level = overrides.Log.Level })
	if a.raw {
		cfg.Compression.Enable = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if a.logCloser, err = logger.Setup(cfg.Log); err != nil {
		return err
	}
	a.config = cfg

	opts, err := cache.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	opts = append(opts, cache.WithLogger(log.Logger))
	if cfg.Compression.Enable {
		c, err := cache.NewCompressed(opts...)
		if err != nil {
			return err
		}
		a.cache = c
	} else {
		s, err := cache.NewStore(opts...)
		if err != nil {
			return err
		}
		a.cache = s
	}
	log.Debug().Str("driver", cfg.Backend.Driver).Bool("compressed", cfg.Compression.Enable).Msg("cache opened")
	return nil
}

func (a *app) close() error {
	var err error
	if a.cache != nil {
		err = a.cache.Close()
		a.cache = nil
	}
	if a.logCloser != nil {
		if cerr := a.logCloser.Close(); err == nil {
			err = cerr
		}
		a.logCloser = nil
	}
	return err
}

func printValue(w io.Writer, v interface{}) {
	switch v := v.(type) {
	case []byte:
		fmt.Fprintln(w, string(v))
	default:
		fmt.Fprintln(w, v)
	}
}
