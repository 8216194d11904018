package logger

import (
	"context"
	"os"
	"strings"
	"sync/atomic"

	"github.com/dual-finance/governance-proposals/internal/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global atomic.Pointer[zap.Logger]

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level   string `json:"level"`
	Stage   string `json:"stage"`
	Cluster string `json:"cluster"`

	// JSON forces structured output outside of prod.
	JSON  bool `json:"json"`
	Color bool `json:"color"`
}

// stageDefaults returns the level and output format used by each stage when
// LOG_LEVEL is not set.
func stageDefaults(stage string) LoggerConfig {
	switch stage {
	case constants.StageProd:
		return LoggerConfig{Level: "info", JSON: true}
	case constants.StageDev:
		return LoggerConfig{Level: "debug", JSON: true}
	case constants.StageTest:
		return LoggerConfig{Level: "warn"}
	default:
		return LoggerConfig{Level: "debug", Color: true}
	}
}

// InitLogger initializes the global logger for stage. Deployed stages log
// JSON tagged with the service, stage and Solana cluster.
func InitLogger(stage, cluster string) {
	config := stageDefaults(stage)
	config.Stage = stage
	config.Cluster = cluster
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = level
	}
	InitLoggerWithConfig(config)
}

// InitLoggerWithConfig initializes the logger with custom configuration
func InitLoggerWithConfig(config LoggerConfig) {
	level, err := zapcore.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapConfig zap.Config
	if config.JSON || config.Stage == constants.StageProd {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.TimeKey = "timestamp"
		zapConfig.EncoderConfig.MessageKey = "message"
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		if config.Color {
			zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		zapConfig.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.DisableStacktrace = config.Stage == constants.StageProd || config.Stage == constants.StageTest

	fields := map[string]interface{}{}
	if config.Stage != constants.StageLocal && config.Stage != "" {
		fields["service"] = constants.ServiceName
		fields["stage"] = config.Stage
	}
	if config.Cluster != "" {
		fields["cluster"] = config.Cluster
	}
	zapConfig.InitialFields = fields

	logger, err := zapConfig.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	global.Store(logger)
}

// L returns the global logger, or a no-op logger before initialization.
func L() *zap.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the request-scoped logger in ctx, falling back to the
// global logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := contextLogger(ctx); ok {
		return l
	}
	return L()
}

// HasContextLogger reports whether ctx carries a request-scoped logger.
func HasContextLogger(ctx context.Context) bool {
	_, ok := contextLogger(ctx)
	return ok
}

func contextLogger(ctx context.Context) (*zap.Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	l, ok := ctx.Value(contextKey{}).(*zap.Logger)
	return l, ok && l != nil
}

func Info(msg string, fields ...zapcore.Field) {
	L().Info(msg, fields...)
}

func Error(msg string, fields ...zapcore.Field) {
	L().Error(msg, fields...)
}

func Debug(msg string, fields ...zapcore.Field) {
	L().Debug(msg, fields...)
}

func Warn(msg string, fields ...zapcore.Field) {
	L().Warn(msg, fields...)
}

// Fatal logs at FatalLevel and exits.
func Fatal(msg string, fields ...zapcore.Field) {
	L().Fatal(msg, fields...)
}

// With creates a child of the global logger.
func With(fields ...zapcore.Field) *zap.Logger {
	return L().With(fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	return L().Sync()
}
