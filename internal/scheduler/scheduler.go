package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"b3flip/config"
	"b3flip/internal/bitflip"
	"b3flip/internal/branching"
	"b3flip/internal/inputs"
	"b3flip/internal/progress"
	"b3flip/internal/types"

	"github.com/bits-and-blooms/bitset"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	errNoBranchings     = errors.New("no branchings known yet")
	errNothingToAnalyse = errors.New("every reachable input was already analysed")
)

// Sink receives the generated inputs.
type Sink interface {
	Send(ctx context.Context, msg *types.MutationMessage) error
}

type statisticsRecorder interface {
	RecordStatistics(ctx context.Context, startCalls, generatedInputs int, maxBits uint) error
}

// Scheduler drives the bitflip analysis: it starts sessions over the leaves of
// the tree and forwards every generated input to the sink, batch by batch.
// The analysis is only ever touched from the scheduler goroutine.
type Scheduler struct {
	analysis *bitflip.Analysis
	tree     *branching.Tree
	sink     Sink
	sessions progress.SessionIDs
	stats    statisticsRecorder
	logger   *zap.Logger

	batchSize    int
	idleInterval time.Duration

	out      *bitset.BitSet
	sequence int
	pending  *types.MutationMessage

	done chan struct{}
}

type SchedulerParams struct {
	fx.In

	Lc         fx.Lifecycle
	AppConfig  *config.AppConfig
	Logger     *zap.Logger
	Analysis   *bitflip.Analysis
	Tree       *branching.Tree
	Sink       Sink
	Tracker    *progress.Tracker
	Statistics *progress.RedisRecorder `optional:"true"`
}

func NewScheduler(params SchedulerParams) *Scheduler {
	scheduler := newScheduler(
		params.Analysis,
		params.Tree,
		params.Sink,
		params.Tracker,
		params.Statistics,
		params.AppConfig.DriverConfig,
		params.Logger,
	)

	schedulerCtx, cancel := context.WithCancel(context.Background())

	params.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go scheduler.start(schedulerCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			<-scheduler.done
			return nil
		},
	})
	return scheduler
}

func newScheduler(
	analysis *bitflip.Analysis,
	tree *branching.Tree,
	sink Sink,
	sessions progress.SessionIDs,
	stats statisticsRecorder,
	cfg config.DriverConfig,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		analysis:     analysis,
		tree:         tree,
		sink:         sink,
		sessions:     sessions,
		stats:        stats,
		logger:       logger.Named("scheduler"),
		batchSize:    max(cfg.BatchSize, 1),
		idleInterval: cfg.IdleInterval,
		out:          bitset.New(0),
		done:         make(chan struct{}),
	}
}

// New returns a Scheduler that is not bound to a lifecycle; use Drain to run it.
func New(
	analysis *bitflip.Analysis,
	tree *branching.Tree,
	sink Sink,
	sessions progress.SessionIDs,
	cfg config.DriverConfig,
	logger *zap.Logger,
) *Scheduler {
	return newScheduler(analysis, tree, sink, sessions, nil, cfg, logger)
}

// Drain steps epochs until every reachable input was analysed.
func (s *Scheduler) Drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			s.analysis.Stop()
			return err
		}
		err := s.stepEpoch(ctx)
		switch {
		case errors.Is(err, errNoBranchings), errors.Is(err, errNothingToAnalyse):
			return nil
		case err != nil:
			s.analysis.Stop()
			return err
		}
	}
}

// starts a loop to step epochs
func (s *Scheduler) start(ctx context.Context) {
	defer close(s.done)
	defer s.analysis.Stop()
	var err error
	for {
		var delay time.Duration
		if err != nil {
			delay = s.idleInterval
		}

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler context done, stopping scheduler")
			return
		case <-time.After(delay):
			err = s.stepEpoch(ctx)
			switch {
			case errors.Is(err, errNoBranchings), errors.Is(err, errNothingToAnalyse):
				s.logger.Debug("nothing to analyse, waiting", zap.Error(err))
			case err != nil:
				s.logger.Warn("epoch failed", zap.Error(err))
			}
		}
	}
}

// stepEpoch sends at most one batch of inputs. A session is started first when
// none is running.
func (s *Scheduler) stepEpoch(ctx context.Context) error {
	if s.pending != nil {
		if err := s.sink.Send(ctx, s.pending); err != nil {
			return fmt.Errorf("failed to resend mutation: %w", err)
		}
		s.pending = nil
	}

	if s.analysis.IsReady() {
		leaves := s.tree.Leaves()
		if len(leaves) == 0 {
			return errNoBranchings
		}
		if !s.analysis.Start(leaves) {
			return errNothingToAnalyse
		}
		s.sequence = 0
	}

	for range s.batchSize {
		if ctx.Err() != nil {
			return nil
		}
		msg := s.nextMessage()
		if msg == nil {
			s.finishSession(ctx)
			return nil
		}
		if err := s.sink.Send(ctx, msg); err != nil {
			s.pending = msg
			return fmt.Errorf("failed to send mutation: %w", err)
		}
	}
	return nil
}

// nextMessage returns nil once the session is exhausted.
func (s *Scheduler) nextMessage() *types.MutationMessage {
	// read before generating: the analysis forgets its target when it stops
	input := s.analysis.TargetInput()
	node := s.analysis.TargetNode()
	if !s.analysis.GenerateNextInput(s.out) {
		return nil
	}

	probedStart, probedEnd := s.analysis.ProbedRange()
	msg := &types.MutationMessage{
		Sequence:    s.sequence,
		Data:        inputs.BitsToBytes(s.out),
		Bits:        s.out.Len(),
		Types:       inputs.TypeNames(input.Types),
		ProbedStart: probedStart,
		ProbedEnd:   probedEnd,
	}
	if s.sessions != nil {
		msg.SessionID = s.sessions.SessionID()
	}
	if id, ok := branching.NodeID(node); ok {
		msg.NodeID = &id
	}
	s.sequence++
	return msg
}

func (s *Scheduler) finishSession(ctx context.Context) {
	stats := s.analysis.Statistics()
	s.logger.Debug("bitflip session exhausted",
		zap.Int("sent", s.sequence),
		zap.Int("generated_total", stats.GeneratedInputs),
	)
	if s.stats == nil {
		return
	}
	if err := s.stats.RecordStatistics(ctx, stats.StartCalls, stats.GeneratedInputs, stats.MaxBits); err != nil {
		s.logger.Warn("failed to publish statistics", zap.Error(err))
	}
}
