// File: internal/observability/logger.go
package observability

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"github.com/xkilldash9x/automaweb/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger atomic.Pointer[zap.Logger]
	once         sync.Once
)

const ansiReset = "\x1b[0m"

// ansiColors maps the color names accepted in logger.colors to escape codes.
var ansiColors = map[string]string{
	"black":   "\x1b[30m",
	"red":     "\x1b[31m",
	"green":   "\x1b[32m",
	"yellow":  "\x1b[33m",
	"blue":    "\x1b[34m",
	"magenta": "\x1b[35m",
	"cyan":    "\x1b[36m",
	"white":   "\x1b[37m",
}

// Option adjusts the logger built by Initialize.
type Option func(*options)

type options struct {
	fileFields []zap.Field
}

// WithFileFields attaches fields to every entry written to the log file. The
// console stays uncluttered.
func WithFileFields(fields ...zap.Field) Option {
	return func(o *options) {
		o.fileFields = append(o.fileFields, fields...)
	}
}

// RunFields identify one invocation in the rotated log file, which collects
// the output of many runs.
func RunFields(command, version string) []zap.Field {
	return []zap.Field{
		zap.String("run_id", uuid.NewString()),
		zap.String("command", command),
		zap.String("version", version),
	}
}

// Initialize builds the global logger: a console core writing to
// consoleWriter and, when logger.log_file is set, a JSON core rotated by
// lumberjack. Only the first call has any effect.
func Initialize(cfg config.LoggerConfig, consoleWriter zapcore.WriteSyncer, opts ...Option) {
	once.Do(func() {
		o := options{}
		for _, opt := range opts {
			opt(&o)
		}

		level := zap.NewAtomicLevel()
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level.SetLevel(zap.InfoLevel)
		}

		cores := []zapcore.Core{zapcore.NewCore(consoleEncoder(cfg), consoleWriter, level)}
		if cfg.LogFile != "" {
			cores = append(cores, fileCore(cfg, level).With(o.fileFields))
		}

		options := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
		if cfg.AddSource {
			options = append(options, zap.AddCaller())
		}

		logger := zap.New(zapcore.NewTee(cores...), options...).Named(cfg.ServiceName)
		globalLogger.Store(logger)

		zap.ReplaceGlobals(logger)
		zap.RedirectStdLog(logger)
	})
}

// ResetForTest clears the global logger so Initialize can run again.
// Tests only.
func ResetForTest() {
	globalLogger.Store(nil)
	once = sync.Once{}
}

func fileCore(cfg config.LoggerConfig, level zapcore.LevelEnabler) zapcore.Core {
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), w, level)
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return ec
}

// consoleEncoder honours logger.format: "json" for machine-readable output,
// anything else for a colorized single-line format such as
// "INFO  automaweb.navigator.  Browser opened.".
func consoleEncoder(cfg config.LoggerConfig) zapcore.Encoder {
	ec := encoderConfig()
	if cfg.Format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = levelEncoder(cfg.Colors)
	ec.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(name + ".")
	}
	return zapcore.NewConsoleEncoder(ec)
}

// levelEncoder wraps each level in the color configured for it. Levels with
// no color, or an unknown color name, are written plain.
func levelEncoder(colors config.ColorConfig) zapcore.LevelEncoder {
	byLevel := map[zapcore.Level]string{
		zapcore.DebugLevel:  ansiColors[colors.Debug],
		zapcore.InfoLevel:   ansiColors[colors.Info],
		zapcore.WarnLevel:   ansiColors[colors.Warn],
		zapcore.ErrorLevel:  ansiColors[colors.Error],
		zapcore.DPanicLevel: ansiColors[colors.DPanic],
		zapcore.PanicLevel:  ansiColors[colors.Panic],
		zapcore.FatalLevel:  ansiColors[colors.Fatal],
	}
	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		name := level.CapitalString()
		if color := byLevel[level]; color != "" {
			name = color + name + ansiReset
		}
		enc.AppendString(name)
	}
}

// GetLogger returns the global logger, or a development logger if Initialize
// has not run yet.
func GetLogger() *zap.Logger {
	logger := globalLogger.Load()
	if logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		l.Warn("Global logger requested before initialization; using fallback.")
		return l.Named("fallback")
	}
	return logger
}

// Sync flushes buffered entries. Call it before exiting.
func Sync() {
	logger := globalLogger.Load()
	if logger == nil {
		return
	}
	if err := logger.Sync(); err != nil && !isTerminalSyncError(err) {
		fmt.Fprintln(os.Stderr, "Error: failed to sync logger:", err)
	}
}

// isTerminalSyncError reports the errors fsync returns for terminals and
// pipes, which have nothing to flush.
func isTerminalSyncError(err error) bool {
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.ENOTSUP) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stdout") || strings.Contains(msg, "sync /dev/stderr")
}
