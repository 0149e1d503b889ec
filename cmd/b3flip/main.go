package main

import (
	"b3flip/config"
	"b3flip/internal/bitflip"
	"b3flip/internal/branching"
	"b3flip/internal/progress"
	"b3flip/internal/scheduler"
	"b3flip/internal/seeds"
	"b3flip/pkg/database"
	"b3flip/pkg/logger"
	"b3flip/pkg/mq"
	"b3flip/pkg/telemetry"
	"b3flip/pkg/watchdog"

	_ "go.uber.org/automaxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func newAnalysis(appConfig *config.AppConfig, recorder progress.Recorder, logger *zap.Logger) *bitflip.Analysis {
	logger.Info("bitflip analysis seeded", zap.Int64("seed", appConfig.RandomSeed))
	return bitflip.NewAnalysis(recorder,
		bitflip.WithSeed(appConfig.RandomSeed),
		bitflip.WithLogger(logger.Named("bitflip")),
	)
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,           // inject config
			database.NewDBConnection,    // inject db connection, nil without DATABASE_URL
			database.NewRedisClient,     // inject redis client, nil without redis
			logger.NewLogger,            // inject logger
			mq.NewRabbitMQ,              // inject rabbitmq service
			mq.NewPublisher,             // inject mutation queue publisher
			telemetry.NewTelemetry,      // inject telemetry
			telemetry.NewTracerFactory,  // inject telemetry tracer factory
			watchdog.NewWatchDogFactory, // inject watchdog factory
			branching.NewTree,           // inject branching tree
			progress.NewTracker,         // inject session tracker
			progress.NewRedisRecorder,   // inject redis statistics
			progress.NewRecorder,        // inject recorder chain
			scheduler.NewMQSink,         // inject mutation sink
			newAnalysis,                 // inject bitflip analysis
		),
		fx.Invoke(
			seeds.NewSeedManager,
			scheduler.NewScheduler,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			zlogger := fxevent.ZapLogger{Logger: log}
			zlogger.UseLogLevel(zap.DebugLevel)
			return &zlogger
		}),
	)
	app.Run()
}
