package logx

import (
	"context"
	"strings"

	"fxhistory-service/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *zap.Logger
)

func init() {
	// cmd/* reports schedule file errors
	cfg, _ := config.Load()
	var err error
	logger, err = Build(cfg)
	if err != nil {
		panic(err)
	}
}

// Build creates the production JSON logger. When cfg.LogFile is set, entries
// are also written to a size-rotated file.
func Build(appCfg config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Sampling = nil
	zapCfg.DisableStacktrace = true
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if appCfg.LogLevel != "" {
		_ = zapCfg.Level.UnmarshalText([]byte(strings.ToLower(appCfg.LogLevel)))
	}

	l, err := zapCfg.Build(zap.AddCaller())
	if err != nil {
		return nil, err
	}
	if appCfg.LogFile == "" {
		return l, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   appCfg.LogFile,
		MaxSize:    appCfg.LogFileMaxMB,
		MaxBackups: appCfg.LogFileMaxBackups,
		MaxAge:     appCfg.LogFileMaxAgeDays,
		Compress:   true,
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapCfg.EncoderConfig),
		zapcore.AddSync(rotator),
		zapCfg.Level,
	)
	return l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})), nil
}

// L returns the package-level logger instance.
func L() *zap.Logger {
	return logger
}

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	traceIDKey   ctxKey = "trace_id"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func TraceID(ctx context.Context) string {
	v, _ := ctx.Value(traceIDKey).(string)
	return v
}

// WithFields enriches the logger with request and trace IDs found in ctx.
func WithFields(ctx context.Context) *zap.Logger {
	var fields []zap.Field
	if rid := RequestID(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if tid := TraceID(ctx); tid != "" {
		fields = append(fields, zap.String("trace_id", tid))
	}
	return logger.With(fields...)
}

func Sync() { _ = logger.Sync() }
