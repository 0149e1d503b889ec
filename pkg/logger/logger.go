package logger

import (
	"b3flip/config"
	"b3flip/pkg/telemetry"
	"context"
	"fmt"
	"math"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerParams struct {
	fx.In
	Lc        fx.Lifecycle
	AppConfig *config.AppConfig
	Telemetry telemetry.Telemetry `optional:"true"`
}

func NewLogger(p LoggerParams) *zap.Logger {
	loggerCtx, cancel := context.WithCancel(context.Background())
	p.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})

	cfg := buildConfig(p.AppConfig.LogLevel)

	if p.Telemetry == nil || p.Telemetry.GetLogger() == nil {
		lg, err := cfg.Build()
		if err != nil {
			// log failed to build, return a default one
			return zap.NewExample()
		}
		return lg
	}

	lg, err := cfg.Build(
		zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return &telemetryCore{
				Core:   core,
				logger: p.Telemetry.GetLogger(),
				ctx:    loggerCtx,
				attrsBase: []attribute.KeyValue{
					attribute.String("crs.action.name", "bitflip_log"),
				},
			}
		}),
		zap.AddCaller(),
	)
	if err != nil {
		lg, err := cfg.Build()
		if err != nil {
			return zap.NewExample()
		}
		return lg
	}
	lg.Info("Logger with telemetry and fields enabled")
	return lg
}

// buildConfig picks the development encoder for debug and info, production otherwise.
func buildConfig(logLevel string) zap.Config {
	level := zapcore.InfoLevel
	switch strings.ToLower(logLevel) {
	case "debug":
		level = zapcore.DebugLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if level > zapcore.InfoLevel {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg
}

// telemetryCore decorates a zapcore.Core to emit both through the original core
// and into OpenTelemetry, converting each zap.Field into an attribute.
type telemetryCore struct {
	zapcore.Core
	logger    log.Logger
	ctx       context.Context
	attrsBase []attribute.KeyValue
}

// With makes sure child cores (logger.With(...)) keep the wrapper.
func (t *telemetryCore) With(fields []zapcore.Field) zapcore.Core {
	return &telemetryCore{
		Core:      t.Core.With(fields),
		logger:    t.logger,
		ctx:       t.ctx,
		attrsBase: t.attrsBase,
	}
}

// Check adds this core, not the inner one, to the CheckedEntry.
func (t *telemetryCore) Check(ent zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if t.Enabled(ent.Level) {
		return checked.AddCore(ent, t)
	}
	return checked
}

func (t *telemetryCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	if err := t.Core.Write(ent, fields); err != nil {
		return err
	}

	rec := log.Record{}
	rec.SetTimestamp(ent.Time)
	rec.SetBody(log.StringValue(ent.Message))
	rec.SetSeverityText(ent.Level.String())

	attrs := make([]attribute.KeyValue, 0, len(fields)+len(t.attrsBase))
	attrs = append(attrs, t.attrsBase...)
	for _, f := range fields {
		attrs = append(attrs, fieldAttribute(f))
	}
	for _, attr := range attrs {
		rec.AddAttributes(log.KeyValueFromAttribute(attr))
	}

	t.logger.Emit(t.ctx, rec)
	return nil
}

func fieldAttribute(f zapcore.Field) attribute.KeyValue {
	switch f.Type {
	case zapcore.BoolType:
		return attribute.Bool(f.Key, f.Integer != 0)
	case zapcore.Float64Type:
		return attribute.Float64(f.Key, math.Float64frombits(uint64(f.Integer)))
	case zapcore.Float32Type:
		return attribute.Float64(f.Key, float64(math.Float32frombits(uint32(f.Integer))))
	case zapcore.Int64Type:
		return attribute.Int64(f.Key, f.Integer)
	case zapcore.Int32Type:
		return attribute.Int64(f.Key, int64(int32(f.Integer)))
	case zapcore.Int16Type:
		return attribute.Int64(f.Key, int64(int16(f.Integer)))
	case zapcore.Int8Type:
		return attribute.Int64(f.Key, int64(int8(f.Integer)))
	case zapcore.Uint64Type:
		return attribute.Int64(f.Key, f.Integer)
	case zapcore.Uint32Type:
		return attribute.Int64(f.Key, int64(uint32(f.Integer)))
	case zapcore.Uint16Type:
		return attribute.Int64(f.Key, int64(uint16(f.Integer)))
	case zapcore.Uint8Type:
		return attribute.Int64(f.Key, int64(uint8(f.Integer)))
	case zapcore.StringType:
		return attribute.String(f.Key, f.String)
	case zapcore.ErrorType:
		if errVal, ok := f.Interface.(error); ok {
			return attribute.String(f.Key, errVal.Error())
		}
	}
	return attribute.String(f.Key, fmt.Sprint(f.Interface))
}
