package progress

import (
	"context"
	"time"

	"b3flip/internal/branching"
	"b3flip/pkg/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dbTimeout = 5 * time.Second

// DBRecorder persists one row per session.
type DBRecorder struct {
	ids    SessionIDs
	logger *zap.Logger

	create func(ctx context.Context, session *database.BitflipSession) error
	finish func(ctx context.Context, sessionID, stopKind string, stoppedAt time.Time) error

	current string
}

// NewDBRecorder returns nil without a database.
func NewDBRecorder(db *gorm.DB, ids SessionIDs, logger *zap.Logger) *DBRecorder {
	if db == nil {
		return nil
	}
	return &DBRecorder{
		ids:    ids,
		logger: logger.Named("progress.db"),
		create: func(ctx context.Context, session *database.BitflipSession) error {
			return database.AddBitflipSession(ctx, db, session)
		},
		finish: func(ctx context.Context, sessionID, stopKind string, stoppedAt time.Time) error {
			return database.FinishBitflipSession(ctx, db, sessionID, stopKind, stoppedAt)
		},
	}
}

func (r *DBRecorder) OnBitflipStart(node branching.Node, kind StartKind) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	nodeID, bits, types := nodeInfo(node)
	r.current = sessionID(r.ids)
	session := database.NewBitflipSession(r.current, nodeID, bits, types, kind.String())
	if err := r.create(ctx, session); err != nil {
		r.logger.Error("failed to store bitflip session", zap.String("session", r.current), zap.Error(err))
	}
}

func (r *DBRecorder) OnBitflipStop(kind StopKind) {
	if r.current == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if err := r.finish(ctx, r.current, kind.String(), time.Now()); err != nil {
		r.logger.Error("failed to finish bitflip session", zap.String("session", r.current), zap.Error(err))
	}
	r.current = ""
}
