package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"b3flip/config"
	"b3flip/internal/bitflip"
	"b3flip/internal/branching"
	"b3flip/internal/inputs"
	"b3flip/internal/progress"
	"b3flip/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSink struct {
	mu   sync.Mutex
	msgs []*types.MutationMessage
	err  error
}

func (f *fakeSink) Send(ctx context.Context, msg *types.MutationMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeSink) sent() []*types.MutationMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*types.MutationMessage(nil), f.msgs...)
}

type fakeStats struct {
	startCalls, generated int
	maxBits               uint
	calls                 int
}

func (f *fakeStats) RecordStatistics(ctx context.Context, startCalls, generatedInputs int, maxBits uint) error {
	f.startCalls, f.generated, f.maxBits = startCalls, generatedInputs, maxBits
	f.calls++
	return nil
}

type fixture struct {
	scheduler *Scheduler
	tree      *branching.Tree
	sink      *fakeSink
	stats     *fakeStats
	tracker   *progress.Tracker
}

func newFixture(t *testing.T, batchSize int) *fixture {
	tracker := progress.NewTracker()
	tree := branching.NewTree()
	sink := &fakeSink{}
	stats := &fakeStats{}
	analysis := bitflip.NewAnalysis(tracker, bitflip.WithSeed(1))
	cfg := config.DriverConfig{BatchSize: batchSize, IdleInterval: 10 * time.Millisecond}
	return &fixture{
		scheduler: newScheduler(analysis, tree, sink, tracker, stats, cfg, zaptest.NewLogger(t)),
		tree:      tree,
		sink:      sink,
		stats:     stats,
		tracker:   tracker,
	}
}

func TestStepEpochWithoutBranchings(t *testing.T) {
	f := newFixture(t, 4)
	assert.ErrorIs(t, f.scheduler.stepEpoch(context.Background()), errNoBranchings)
}

func TestStepEpochSendsBatches(t *testing.T) {
	f := newFixture(t, 4)
	// 8 bit flips and a single uint8 boundary value
	f.tree.Insert(nil, inputs.New([]byte{0x00}, []inputs.Type{inputs.Uint8}))
	ctx := context.Background()

	require.NoError(t, f.scheduler.stepEpoch(ctx))
	assert.Len(t, f.sink.sent(), 4)
	require.NoError(t, f.scheduler.stepEpoch(ctx))
	assert.Len(t, f.sink.sent(), 8)
	require.NoError(t, f.scheduler.stepEpoch(ctx))

	msgs := f.sink.sent()
	require.Len(t, msgs, 9)
	assert.Equal(t, 1, f.stats.calls)
	assert.Equal(t, 9, f.stats.generated)
	assert.Equal(t, uint(8), f.stats.maxBits)

	for i, msg := range msgs {
		assert.Equal(t, i, msg.Sequence)
		assert.Equal(t, f.tracker.SessionID(), msg.SessionID)
		assert.Equal(t, uint(8), msg.Bits)
		assert.Equal(t, []string{"uint8"}, msg.Types)
		if assert.NotNil(t, msg.NodeID) {
			assert.Equal(t, 0, *msg.NodeID)
		}
	}
	assert.Equal(t, []byte{0x80}, msgs[0].Data)
	assert.Equal(t, []byte{0x01}, msgs[7].Data)
	assert.Equal(t, []byte{0xff}, msgs[8].Data)
	assert.Equal(t, uint(0), msgs[8].ProbedStart)
	assert.Equal(t, uint(8), msgs[8].ProbedEnd)

	assert.ErrorIs(t, f.scheduler.stepEpoch(ctx), errNothingToAnalyse)
	assert.True(t, f.scheduler.analysis.IsReady())
}

func TestStepEpochNewSessionPerInput(t *testing.T) {
	f := newFixture(t, 100)
	root := f.tree.Insert(nil, inputs.New([]byte{0x01}, []inputs.Type{inputs.Boolean}))
	f.tree.Insert(root, inputs.New([]byte{0x02}, []inputs.Type{inputs.Boolean}))
	ctx := context.Background()

	require.NoError(t, f.scheduler.stepEpoch(ctx))
	first := f.tracker.SessionID()
	require.NoError(t, f.scheduler.stepEpoch(ctx))
	second := f.tracker.SessionID()
	assert.NotEqual(t, first, second)

	msgs := f.sink.sent()
	require.Len(t, msgs, 16)
	// the leaf is analysed before its predecessor
	assert.Equal(t, 1, *msgs[0].NodeID)
	assert.Equal(t, 0, *msgs[8].NodeID)
	assert.Equal(t, 0, msgs[8].Sequence)
	assert.Equal(t, second, msgs[8].SessionID)
}

func TestStepEpochResendsAfterFailure(t *testing.T) {
	f := newFixture(t, 2)
	f.tree.Insert(nil, inputs.New([]byte{0x00}, []inputs.Type{inputs.Boolean}))
	ctx := context.Background()

	f.sink.err = errors.New("broker unavailable")
	assert.Error(t, f.scheduler.stepEpoch(ctx))
	assert.Error(t, f.scheduler.stepEpoch(ctx))
	assert.Empty(t, f.sink.sent())

	f.sink.err = nil
	for range 4 {
		require.NoError(t, f.scheduler.stepEpoch(ctx))
	}

	msgs := f.sink.sent()
	require.Len(t, msgs, 8)
	for i, msg := range msgs {
		assert.Equal(t, i, msg.Sequence)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	f := newFixture(t, 1)
	f.tree.Insert(nil, inputs.New([]byte{0x00, 0x00}, []inputs.Type{inputs.Uint16}))

	ctx, cancel := context.WithCancel(context.Background())
	go f.scheduler.start(ctx)

	require.Eventually(t, func() bool {
		return len(f.sink.sent()) == 17
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-f.scheduler.done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.True(t, f.scheduler.analysis.IsReady())
	assert.Len(t, f.sink.sent(), 17)
}
