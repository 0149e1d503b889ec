package database

import (
	"context"
	"os"
	"time"

	"gorm.io/gorm"
)

// NewBitflipSession creates a running session record
func NewBitflipSession(sessionID string, nodeID *int, bits, types int, startKind string) *BitflipSession {
	hostname, _ := os.Hostname()
	return &BitflipSession{
		SessionID: sessionID,
		Instance:  hostname,
		NodeID:    nodeID,
		Bits:      bits,
		Types:     types,
		StartKind: startKind,
		Status:    SessionRunning,
		CreatedAt: time.Now(),
	}
}

// inserts a single session record into the database
func AddBitflipSession(ctx context.Context, db *gorm.DB, session *BitflipSession) error {
	if session == nil {
		return nil
	}
	return db.WithContext(ctx).Create(session).Error
}

// marks the session as finished
func FinishBitflipSession(ctx context.Context, db *gorm.DB, sessionID string, stopKind string, stoppedAt time.Time) error {
	return db.WithContext(ctx).
		Model(&BitflipSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]any{
			"status":     SessionFinished,
			"stop_kind":  stopKind,
			"stopped_at": stoppedAt,
		}).Error
}
