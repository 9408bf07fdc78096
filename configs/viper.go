// This file implements Viper-based configuration management with
// environment overrides and hot reloading support.
//
// 本文件实现基于Viper的配置管理，支持环境变量覆盖和热重载。
package configs

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables that override configuration
// keys, e.g. RCACHE_BACKEND_ADDR overrides backend.addr.
//
// EnvPrefix 是覆盖配置键的环境变量前缀，例如RCACHE_BACKEND_ADDR覆盖backend.addr。
const EnvPrefix = "RCACHE"

// ViperConfig wraps a Config with Viper functionality for hot reloading.
// It provides thread-safe access to configuration and supports dynamic
// updates when the underlying configuration file changes.
//
// ViperConfig 使用Viper功能包装Config以支持热重载。
// 它提供对配置的线程安全访问，并支持在底层配置文件更改时进行动态更新。
type ViperConfig struct {
	config      *Config         // Current configuration / 当前配置
	viper       *viper.Viper    // Viper instance for configuration management / 用于配置管理的Viper实例
	configFile  string          // Path to the configuration file / 配置文件路径
	mu          sync.RWMutex    // Mutex for thread-safe access / 用于线程安全访问的互斥锁
	subscribers []func(*Config) // List of subscribers to notify on config changes / 配置更改时要通知的订阅者列表
}

// NewViperConfig creates a new ViperConfig.
// Values are layered: defaults, then the file, then RCACHE_* environment
// variables. An empty configFile skips the file layer.
//
// NewViperConfig 创建一个新的ViperConfig。
// 值按层叠加：默认值、配置文件、RCACHE_*环境变量。configFile为空时跳过文件层。
//
// Parameters:
//   - configFile: Path to the configuration file
//
// Returns:
//   - *ViperConfig: A new ViperConfig instance
//   - error: An error if loading or validation fails
func NewViperConfig(configFile string) (*ViperConfig, error) {
	v := viper.New()
	if err := setDefaults(v, DefaultConfig()); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType(strings.TrimPrefix(filepath.Ext(configFile), "."))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config, err := decode(v)
	if err != nil {
		return nil, err
	}

	return &ViperConfig{
		config:     config,
		viper:      v,
		configFile: configFile,
	}, nil
}

// setDefaults registers every key of def with v, so that environment
// variables can override keys the file does not mention.
func setDefaults(v *viper.Viper, def *Config) error {
	raw, err := yaml.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to encode defaults: %w", err)
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("failed to decode defaults: %w", err)
	}
	var walk func(prefix string, m map[string]interface{})
	walk = func(prefix string, m map[string]interface{}) {
		for k, val := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if sub, ok := val.(map[string]interface{}); ok && len(sub) > 0 {
				walk(key, sub)
				continue
			}
			v.SetDefault(key, val)
		}
	}
	walk("", tree)
	return nil
}

func decode(v *viper.Viper) (*Config, error) {
	config := DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// EnableHotReload enables hot reloading of the configuration file.
// When the configuration file changes, the configuration is automatically
// reloaded and all subscribers are notified. An invalid file is logged and
// the previous configuration stays in effect.
//
// EnableHotReload 启用配置文件的热重载。
// 当配置文件更改时，配置会自动重新加载，并通知所有订阅者。无效的文件会被记录，先前的配置继续生效。
func (vc *ViperConfig) EnableHotReload() {
	if vc.configFile == "" {
		return
	}
	vc.viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Str("file", e.Name).Str("op", e.Op.String()).Msg("config file changed")
		newConfig, err := decode(vc.viper)
		if err != nil {
			log.Error().Err(err).Msg("ignoring config change")
			return
		}
		vc.apply(newConfig)
	})
	vc.viper.WatchConfig()
}

func (vc *ViperConfig) apply(newConfig *Config) {
	vc.mu.Lock()
	vc.config = newConfig
	subscribers := make([]func(*Config), len(vc.subscribers))
	copy(subscribers, vc.subscribers)
	vc.mu.Unlock()

	for _, subscriber := range subscribers {
		subscriber(newConfig)
	}
}

// Subscribe adds a subscriber that will be notified when the configuration changes.
// The subscriber function is called with the new configuration as its argument.
//
// Subscribe 添加一个在配置更改时将被通知的订阅者。
// 订阅者函数将以新配置作为其参数被调用。
func (vc *ViperConfig) Subscribe(subscriber func(*Config)) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.subscribers = append(vc.subscribers, subscriber)
}

// Get returns the current configuration.
// This method is thread-safe and can be called concurrently.
//
// Get 返回当前配置。此方法是线程安全的，可以并发调用。
func (vc *ViperConfig) Get() *Config {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.config
}

// LoadViperConfig loads a configuration from a file using Viper.
// Hot reloading is enabled when enableHotReload is set or the file itself
// turns it on through extensions.hot_reload.enable.
//
// LoadViperConfig 使用Viper从文件加载配置。
// 当设置enableHotReload或文件本身通过extensions.hot_reload.enable开启时启用热重载。
func LoadViperConfig(configFile string, enableHotReload bool) (*ViperConfig, error) {
	vc, err := NewViperConfig(configFile)
	if err != nil {
		return nil, err
	}

	if enableHotReload || vc.config.Extensions.HotReload.Enable {
		vc.EnableHotReload()
	}

	return vc, nil
}

// WatchPeriodically re-reads the configuration file every interval until ctx
// is done, notifying subscribers when the decoded configuration changed.
// It is an alternative to EnableHotReload for file systems without reliable
// change notifications.
//
// WatchPeriodically 每隔interval重新读取配置文件直到ctx结束，解码后的配置变化时通知订阅者。
// 它是EnableHotReload的替代方案，适用于文件系统通知不可靠的环境。
func (vc *ViperConfig) WatchPeriodically(ctx context.Context, interval time.Duration) {
	if vc.configFile == "" {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			if err := vc.viper.ReadInConfig(); err != nil {
				log.Error().Err(err).Str("file", vc.configFile).Msg("failed to read config file")
				continue
			}
			newConfig, err := decode(vc.viper)
			if err != nil {
				log.Error().Err(err).Msg("ignoring config change")
				continue
			}
			if configsEqual(vc.Get(), newConfig) {
				continue
			}
			log.Info().Str("file", vc.configFile).Msg("config file changed")
			vc.apply(newConfig)
		}
	}()
}

func configsEqual(c1, c2 *Config) bool {
	return reflect.DeepEqual(c1, c2)
}
