package database

import (
	"time"
)

// SessionStatus represents the status column of a bitflip session
type SessionStatus string

const (
	SessionRunning  SessionStatus = "running"
	SessionFinished SessionStatus = "finished"
)

// BitflipSession represents a record in the public.bitflip_sessions table
type BitflipSession struct {
	ID        int           `gorm:"primaryKey;column:id"`
	SessionID string        `gorm:"column:session_id;not null;uniqueIndex"`
	Instance  string        `gorm:"column:instance"`
	NodeID    *int          `gorm:"column:node_id"`
	Bits      int           `gorm:"column:bits"`
	Types     int           `gorm:"column:types"`
	StartKind string        `gorm:"column:start_kind"`
	StopKind  string        `gorm:"column:stop_kind"`
	Status    SessionStatus `gorm:"column:status;not null"`
	CreatedAt time.Time     `gorm:"column:created_at;default:now()"`
	StoppedAt *time.Time    `gorm:"column:stopped_at"`
}

func (BitflipSession) TableName() string {
	return "bitflip_sessions"
}
