package progress

import (
	"context"

	"b3flip/pkg/telemetry"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RecorderParams struct {
	fx.In

	Logger        *zap.Logger
	Tracker       *Tracker
	TracerFactory *telemetry.TracerFactory
	Redis         *RedisRecorder `optional:"true"`
	DB            *gorm.DB       `optional:"true"`
}

// NewRecorder chains every configured recorder behind the Tracker.
func NewRecorder(p RecorderParams) Recorder {
	return Multi(
		p.Tracker,
		NewLogRecorder(p.Logger, p.Tracker),
		NewTraceRecorder(context.Background(), p.TracerFactory, p.Tracker),
		p.Redis,
		NewDBRecorder(p.DB, p.Tracker, p.Logger),
	)
}
