package redis

import goredis "github.com/redis/go-redis/v9"

// checkAndRecordScript counts the identity's entries in [now-window, now]. Below the
// limit it records the pull, drops entries older than the window and refreshes the
// key's idle expiry.
// KEYS: [1]=rate limit key
// ARGV: [1]=now (unix seconds), [2]=window (seconds), [3]=limit, [4]=member, [5]=ttl (seconds)
// Returns 1 when allowed, 0 when rate limited.
var checkAndRecordScript = goredis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local count = redis.call('ZCOUNT', KEYS[1], now - window, now)
if count >= tonumber(ARGV[3]) then
  return 0
end
redis.call('ZADD', KEYS[1], now, ARGV[4])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window - 1)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[5]))
return 1
`)
