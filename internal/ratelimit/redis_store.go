package ratelimit

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"mdcheck/internal/domain"
	"mdcheck/internal/support"
)

const (
	redisKeyPrefix = "mdcheck:ratelimit:"
	redisOpTimeout = 2 * time.Second
)

// hitScript prunes, conditionally records and counts in one round trip so
// concurrent instances never over-admit.
var hitScript = redis.NewScript(`
local key = KEYS[1]
redis.call("ZREMRANGEBYSCORE", key, "-inf", ARGV[2])
local count = redis.call("ZCARD", key)
local allowed = 0
if count < tonumber(ARGV[3]) then
	redis.call("ZADD", key, ARGV[1], ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call("PEXPIRE", key, ARGV[5])
local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
local oldestScore = ""
if oldest[2] then
	oldestScore = oldest[2]
end
return {allowed, count, oldestScore}`)

// RedisStore is the shared sliding-window backend: one sorted set per
// identifier, scored by hit time in milliseconds.
type RedisStore struct {
	client   redis.Scripter
	settings Settings
	nodeID   string
	counter  atomic.Uint64
}

func NewRedisStore(client redis.Scripter, settings Settings) *RedisStore {
	return &RedisStore{
		client:   client,
		settings: settings,
		nodeID:   generateNodeID(),
	}
}

func (s *RedisStore) Name() string {
	return "redis"
}

func (s *RedisStore) Hit(ctx context.Context, identifier string, now time.Time) (domain.RateLimitDecision, error) {
	opCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	nowMs := now.UnixMilli()
	windowMs := s.settings.Window.Milliseconds()
	member := fmt.Sprintf("%d:%s:%d", nowMs, s.nodeID, s.counter.Add(1))

	res, err := hitScript.Run(opCtx, s.client, []string{redisKey(identifier)},
		nowMs, nowMs-windowMs, s.settings.Limit, member, windowMs).Slice()
	if err != nil {
		return domain.RateLimitDecision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return domain.RateLimitDecision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	allowed, _ := res[0].(int64)
	count, _ := res[1].(int64)

	var oldest int64
	if raw, ok := res[2].(string); ok && raw != "" {
		score, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			return domain.RateLimitDecision{}, fmt.Errorf("rate limit script: bad score %q: %w", raw, parseErr)
		}
		oldest = int64(score)
	}

	return decide(s.settings.Limit, int(count), allowed == 1, oldest, nowMs, windowMs), nil
}

// redisKey hashes the identifier so raw client addresses never appear in
// key names.
func redisKey(identifier string) string {
	return redisKeyPrefix + strconv.FormatUint(support.HashString(identifier), 16)
}

func generateNodeID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d-%d", hostname, os.Getpid(), time.Now().UnixNano())
}
