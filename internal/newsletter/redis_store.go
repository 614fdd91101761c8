package newsletter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisUpsertScript creates or updates a subscription hash atomically.
// KEYS[1] = subscription key
// ARGV[1] = email
// ARGV[2] = current timestamp (RFC3339Nano)
// ARGV[3..] = field/value pairs to overwrite
// Returns {created, HGETALL key}.
var redisUpsertScript = redis.NewScript(`
local key = KEYS[1]
local created = 0

if redis.call("EXISTS", key) == 0 then
    created = 1
    redis.call("HSET", key,
        "email", ARGV[1],
        "first_name", "",
        "last_name", "",
        "phone", "",
        "consent", "0",
        "created_at", ARGV[2])
end

for i = 3, #ARGV, 2 do
    redis.call("HSET", key, ARGV[i], ARGV[i + 1])
end
redis.call("HSET", key, "updated_at", ARGV[2])

return {created, redis.call("HGETALL", key)}
`)

const redisKeyPrefix = "newsletter:subscription:"

// RedisStore keeps each subscription in a hash
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisStore creates a new store backed by Redis
func NewRedisStore(addr, password string, db int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreWithClient(rdb)
}

func NewRedisStoreWithClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// Ping checks that the server is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Upsert(ctx context.Context, key string, fields Fields) (Record, error) {
	now := s.now().UTC().Format(time.RFC3339Nano)
	args := []interface{}{key, now}
	if fields.FirstName != nil {
		args = append(args, "first_name", *fields.FirstName)
	}
	if fields.LastName != nil {
		args = append(args, "last_name", *fields.LastName)
	}
	if fields.Phone != nil {
		args = append(args, "phone", *fields.Phone)
	}
	if fields.Consent != nil {
		args = append(args, "consent", strconv.FormatBool(*fields.Consent))
	}

	res, err := redisUpsertScript.Run(ctx, s.client, []string{redisKeyPrefix + key}, args...).Slice()
	if err != nil {
		return Record{}, fmt.Errorf("failed to upsert subscription: %w", err)
	}
	if len(res) != 2 {
		return Record{}, fmt.Errorf("unexpected upsert script result: %v", res)
	}

	created, _ := res[0].(int64)
	flat, ok := res[1].([]interface{})
	if !ok {
		return Record{}, fmt.Errorf("unexpected upsert script result: %v", res[1])
	}

	hash := make(map[string]string, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		k, _ := flat[i].(string)
		v, _ := flat[i+1].(string)
		hash[k] = v
	}
	return recordFromHash(hash, created == 1), nil
}

func recordFromHash(hash map[string]string, created bool) Record {
	r := Record{
		Email:     hash["email"],
		FirstName: hash["first_name"],
		LastName:  hash["last_name"],
		Phone:     hash["phone"],
		Created:   created,
	}
	r.Consent, _ = strconv.ParseBool(hash["consent"])
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, hash["created_at"])
	r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, hash["updated_at"])
	return r
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
