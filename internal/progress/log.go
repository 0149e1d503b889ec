package progress

import (
	"b3flip/internal/branching"

	"go.uber.org/zap"
)

// LogRecorder writes one line per session start and stop.
type LogRecorder struct {
	logger *zap.Logger
	ids    SessionIDs
}

func NewLogRecorder(logger *zap.Logger, ids SessionIDs) *LogRecorder {
	return &LogRecorder{
		logger: logger.Named("progress"),
		ids:    ids,
	}
}

func (r *LogRecorder) OnBitflipStart(node branching.Node, kind StartKind) {
	nodeID, bits, types := nodeInfo(node)
	fields := []zap.Field{
		zap.String("kind", kind.String()),
		zap.Int("bits", bits),
		zap.Int("types", types),
	}
	if nodeID != nil {
		fields = append(fields, zap.Int("node", *nodeID))
	}
	if r.ids != nil {
		fields = append(fields, zap.String("session", r.ids.SessionID()))
	}
	r.logger.Info("bitflip session started", fields...)
}

func (r *LogRecorder) OnBitflipStop(kind StopKind) {
	fields := []zap.Field{zap.String("kind", kind.String())}
	if r.ids != nil {
		fields = append(fields, zap.String("session", r.ids.SessionID()))
	}
	r.logger.Info("bitflip session stopped", fields...)
}
