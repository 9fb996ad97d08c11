package sortedstorage

import (
	"context"
	"errors"
	"time"

	"github.com/beka-birhanu/maze-solver/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pathfinder:board:"

var _ i.Leaderboard = &RedisLeaderboard{}

// RedisLeaderboard keeps bounded, expiring sorted sets in Redis. Lower
// scores rank higher.
type RedisLeaderboard struct {
	client *redis.Client
	locker *redsync.Redsync
	size   int64
	ttl    time.Duration
}

// NewRedisLeaderboard initializes a RedisLeaderboard that keeps size members
// per board and lets idle boards expire after ttl.
func NewRedisLeaderboard(client *redis.Client, size int64, ttl time.Duration) (*RedisLeaderboard, error) {
	if client == nil {
		return nil, errors.New("nil redis client")
	}
	if size <= 0 {
		return nil, errors.New("leaderboard size must be positive")
	}

	board := &RedisLeaderboard{
		client: client,
		size:   size,
		ttl:    ttl,
	}
	pool := goredis.NewPool(client)
	board.locker = redsync.New(pool)
	return board, nil
}

func boardKey(board string) string {
	return keyPrefix + board
}

// Add records member with score and drops everything past the board size.
func (rl *RedisLeaderboard) Add(ctx context.Context, board string, score float64, member string) error {
	key := boardKey(board)
	if err := rl.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return err
	}

	// Set expiration only if it's not already set
	if rl.ttl > 0 {
		ttl, err := rl.client.TTL(ctx, key).Result()
		if err == nil && ttl == -1 {
			_ = rl.client.Expire(ctx, key, rl.ttl).Err()
		}
	}

	mutex := rl.locker.NewMutex(key + ":trim_lock")
	if err := mutex.LockContext(ctx); err != nil {
		return err
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	if rl.client.ZCard(ctx, key).Val() > rl.size {
		return rl.client.ZRemRangeByRank(ctx, key, rl.size, -1).Err()
	}
	return nil
}

// Top returns up to n members with the lowest scores.
func (rl *RedisLeaderboard) Top(ctx context.Context, board string, n int64) ([]i.Entry, error) {
	if n <= 0 {
		return []i.Entry{}, nil
	}

	zs, err := rl.client.ZRangeWithScores(ctx, boardKey(board), 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]i.Entry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, i.Entry{Member: member, Score: z.Score})
	}
	return entries, nil
}
