// Package logger builds the zerolog logger described by the log section of
// the configuration and installs it as the global logger.
//
// Package logger 根据配置中的日志部分构建zerolog日志器，并将其设置为全局日志器。
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Humphrey-He/rcache/configs"
)

// New returns a logger for cfg. The returned closer releases the log file
// when Output is "file" and is a no-op otherwise.
//
// New 返回cfg对应的日志器。当Output为"file"时，返回的closer释放日志文件，否则为空操作。
//
// Parameters:
//   - cfg: The log configuration
//
// Returns:
//   - zerolog.Logger: The configured logger
//   - io.Closer: Releases the output
//   - error: Error if the level, format or output is invalid
func New(cfg configs.LogConfig) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	switch cfg.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "file":
		lj := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		out, closer = lj, lj
	default:
		return zerolog.Nop(), nil, fmt.Errorf("invalid log output: %s", cfg.Output)
	}

	switch cfg.Format {
	case "", "json":
	case "text":
		out = zerolog.ConsoleWriter{Out: out, NoColor: cfg.Output == "file", TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), closer, nil
}

// Setup builds the logger for cfg and installs it as the global logger.
//
// Setup 为cfg构建日志器并将其设置为全局日志器。
func Setup(cfg configs.LogConfig) (io.Closer, error) {
	l, closer, err := New(cfg)
	if err != nil {
		return nil, err
	}
	SetGlobal(l)
	return closer, nil
}

// SetGlobal installs l as the global and default context logger.
//
// SetGlobal 将l设置为全局日志器和默认上下文日志器。
func SetGlobal(l zerolog.Logger) {
	log.Logger = l
	zerolog.DefaultContextLogger = &l
}

// Logger returns the global logger.
//
// Logger 返回全局日志器。
func Logger() *zerolog.Logger {
	return &log.Logger
}

// SetLevel changes the level of the global logger. Used on config hot reload.
//
// SetLevel 更改全局日志器的级别，在配置热重载时使用。
func SetLevel(level string) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	log.Logger = log.Logger.Level(l)
	return nil
}

// ParseLevel parses "debug", "info", "warn" or "error". The empty string is info.
//
// ParseLevel 解析"debug"、"info"、"warn"或"error"。空字符串为info。
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %s", level)
	}
	return l, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
