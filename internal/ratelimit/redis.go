package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// tokenBucket refills one token per interval up to capacity and takes one
// token per call. It returns {allowed, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local interval = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = capacity
  ts = now
end

local refill = math.floor(math.max(0, now - ts) / interval)
if refill > 0 then
  tokens = math.min(capacity, tokens + refill)
  ts = ts + refill * interval
end
if tokens >= capacity then
  ts = now
end

local allowed = 0
local retry = 0
if tokens > 0 then
  tokens = tokens - 1
  allowed = 1
else
  retry = interval - (now - ts)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('PEXPIRE', KEYS[1], capacity * interval)
return {allowed, retry}
`)

type RedisConfig struct {
	Burst          int           // Bucket capacity per key
	RefillInterval time.Duration // Time to regain one token
	KeyPrefix      string
	Clock          Clock
}

// RedisLimiter is a Checker backed by a token bucket per client IP in
// Redis, shared by every server instance. When Redis cannot be reached the
// attempt is allowed.
type RedisLimiter struct {
	client redis.Scripter
	config RedisConfig
	clock  Clock
}

func NewRedis(client redis.Scripter, cfg RedisConfig) *RedisLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = 6 * time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "ratelimit:"
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	return &RedisLimiter{client: client, config: cfg, clock: clock}
}

// Allow takes a token from the caller's IP bucket and, when an identifier is
// given, from the identifier's bucket.
func (l *RedisLimiter) Allow(ctx context.Context, ip, identifier string) LimitResult {
	if res := l.take(ctx, hashKey(l.config.KeyPrefix+"booking:ip:", ip), "ip_bucket_empty"); !res.Allowed {
		return res
	}
	if id := normalizeIdentifier(identifier); id != "" {
		return l.take(ctx, hashKey(l.config.KeyPrefix+"booking:id:", id), "identifier_bucket_empty")
	}
	return LimitResult{Allowed: true}
}

func (l *RedisLimiter) take(ctx context.Context, key, reason string) LimitResult {
	res, err := tokenBucket.Run(ctx, l.client, []string{key},
		l.config.Burst,
		l.config.RefillInterval.Milliseconds(),
		l.clock.Now().UnixMilli(),
	).Int64Slice()
	if err != nil || len(res) != 2 {
		log.Ctx(ctx).Warn().Err(err).Msg("Rate limiter unavailable, allowing request")
		return LimitResult{Allowed: true, Reason: "limiter_unavailable"}
	}
	if res[0] == 1 {
		return LimitResult{Allowed: true}
	}
	return LimitResult{
		Allowed:    false,
		RetryAfter: time.Duration(res[1]) * time.Millisecond,
		Reason:     reason,
	}
}
