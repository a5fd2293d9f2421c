package logutil

import (
	"os"

	"github.com/pingcap/errors"
	pclog "github.com/pingcap/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultLogLevel is the level used when none is configured.
	DefaultLogLevel = "info"
	// DefaultLogFormat is the format used when none is configured.
	DefaultLogFormat = "text"
)

var (
	appLogger = zap.NewNop()
	appLevel  = zap.NewAtomicLevel()
)

// Config serializes log related config in toml.
type Config struct {
	// Log level.
	// One of "debug", "info", "warn", "error", "dpanic", "panic", and "fatal".
	Level string `toml:"level" json:"level"`
	// Log filename, leave empty to log to stderr.
	File string `toml:"file" json:"file"`
	// Format of the log, one of `text`, `json` or `console`.
	Format string `toml:"format" json:"format"`
}

// InitLogger initializes the global logger from config.
//
// Without a log file the output goes to stderr, stdout is reserved for
// search results.
func InitLogger(cfg *Config) error {
	pcfg := &pclog.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		File: pclog.FileLogConfig{
			Filename: cfg.File,
		},
	}
	var (
		logger *zap.Logger
		props  *pclog.ZapProperties
		err    error
	)
	if cfg.File != "" {
		logger, props, err = pclog.InitLogger(pcfg)
	} else {
		stderr := zapcore.Lock(os.Stderr)
		logger, props, err = pclog.InitLoggerWithWriteSyncer(pcfg, stderr, stderr)
	}
	if err != nil {
		return errors.Trace(err)
	}
	appLogger = logger.WithOptions(zap.AddCallerSkip(1))
	appLevel = props.Level
	pclog.ReplaceGlobals(logger, props)
	return nil
}

// SetLogger replaces the global logger, tests use it to capture output.
func SetLogger(logger *zap.Logger) {
	appLogger = logger
}

// BgLogger returns the global logger.
func BgLogger() *zap.Logger {
	return appLogger
}

// SetLevel changes the global log level.
func SetLevel(level zapcore.Level) {
	appLevel.SetLevel(level)
}

// Info wraps *zap.Logger's Info function.
func Info(msg string, fields ...zap.Field) {
	appLogger.Info(msg, fields...)
}

// Warn wraps *zap.Logger's Warn function.
func Warn(msg string, fields ...zap.Field) {
	appLogger.Warn(msg, fields...)
}

// Error wraps *zap.Logger's Error function.
func Error(msg string, fields ...zap.Field) {
	appLogger.Error(msg, fields...)
}

// Debug wraps *zap.Logger's Debug function.
func Debug(msg string, fields ...zap.Field) {
	appLogger.Debug(msg, fields...)
}

// ShortError contructs a field which only records the error message without the
// verbose text (i.e. excludes the stack trace).
func ShortError(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", err.Error())
}
