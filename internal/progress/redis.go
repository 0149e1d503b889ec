package progress

import (
	"context"
	"strconv"
	"time"

	"b3flip/internal/branching"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StatsKey = "b3flip:bitflip:stats"
	NodesKey = "b3flip:bitflip:nodes"
)

const redisTimeout = 2 * time.Second

// counterClient is the subset of *redis.Client the recorder uses.
type counterClient interface {
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
}

// RedisRecorder keeps shared counters so every instance can see how far the
// bitflip analysis went.
type RedisRecorder struct {
	client counterClient
	logger *zap.Logger
}

// NewRedisRecorder returns nil without a client.
func NewRedisRecorder(client *redis.Client, logger *zap.Logger) *RedisRecorder {
	if client == nil {
		return nil
	}
	return newRedisRecorder(client, logger)
}

func newRedisRecorder(client counterClient, logger *zap.Logger) *RedisRecorder {
	return &RedisRecorder{
		client: client,
		logger: logger.Named("progress.redis"),
	}
}

func (r *RedisRecorder) OnBitflipStart(node branching.Node, kind StartKind) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := r.client.HIncrBy(ctx, StatsKey, "sessions_started", 1).Err(); err != nil {
		r.logger.Warn("failed to count session start", zap.Error(err))
	}
	if id, ok := branching.NodeID(node); ok {
		if err := r.client.SAdd(ctx, NodesKey, strconv.Itoa(id)).Err(); err != nil {
			r.logger.Warn("failed to record analysed node", zap.Int("node", id), zap.Error(err))
		}
	}
}

func (r *RedisRecorder) OnBitflipStop(kind StopKind) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := r.client.HIncrBy(ctx, StatsKey, "sessions_stopped", 1).Err(); err != nil {
		r.logger.Warn("failed to count session stop", zap.Error(err))
	}
}

// RecordStatistics overwrites the engine counters of this instance.
// It does nothing on a nil recorder.
func (r *RedisRecorder) RecordStatistics(ctx context.Context, startCalls, generatedInputs int, maxBits uint) error {
	if r == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	return r.client.HSet(ctx, StatsKey,
		"start_calls", startCalls,
		"generated_inputs", generatedInputs,
		"max_bits", uint64(maxBits),
	).Err()
}
