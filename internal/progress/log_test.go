package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogRecorder(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tracker := NewTracker()
	r := Multi(tracker, NewLogRecorder(zap.New(core), tracker))

	r.OnBitflipStart(testNode(), StartRegular)
	r.OnBitflipStop(StopRegular)

	entries := logs.All()
	require.Len(t, entries, 2)

	start := entries[0].ContextMap()
	assert.Equal(t, "bitflip session started", entries[0].Message)
	assert.Equal(t, int64(16), start["bits"])
	assert.Equal(t, int64(2), start["types"])
	assert.Equal(t, int64(1), start["node"])
	assert.Equal(t, tracker.SessionID(), start["session"])

	assert.Equal(t, "bitflip session stopped", entries[1].Message)
	assert.Equal(t, tracker.SessionID(), entries[1].ContextMap()["session"])
}

func TestLogRecorderWithoutSessions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewLogRecorder(zap.New(core), nil)

	r.OnBitflipStart(nil, StartRegular)

	require.Equal(t, 1, logs.Len())
	_, ok := logs.All()[0].ContextMap()["session"]
	assert.False(t, ok)
}
