// Package adapters はverificationフィーチャーのストアと送信チャネル実装を提供します。
package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"login_backend/internal/feature/verification/usecase"
)

// consumeScript deletes KEYS[1] only when its value equals ARGV[1].
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CodeRedis implements usecase.CodeStore on Redis.
type CodeRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.CodeStore = (*CodeRedis)(nil)

// NewCodeRedis creates a CodeRedis whose keys live under prefix.
func NewCodeRedis(client *redis.Client, prefix string) *CodeRedis {
	return &CodeRedis{client: client, prefix: prefix}
}

func (r *CodeRedis) codeKey(phone string) string {
	return fmt.Sprintf("%s:code:%s", r.prefix, phone)
}

func (r *CodeRedis) rateKey(phone string) string {
	return fmt.Sprintf("%s:rate:%s", r.prefix, phone)
}

// SetCode overwrites any live code for phone.
func (r *CodeRedis) SetCode(ctx context.Context, phone, code string, ttl time.Duration) error {
	return r.client.Set(ctx, r.codeKey(phone), code, ttl).Err()
}

// ConsumeCode compares and deletes in a single round trip.
func (r *CodeRedis) ConsumeCode(ctx context.Context, phone, code string) (bool, error) {
	n, err := consumeScript.Run(ctx, r.client, []string{r.codeKey(phone)}, code).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// AcquireCooldown is SET NX with expiry.
func (r *CodeRedis) AcquireCooldown(ctx context.Context, phone string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, r.rateKey(phone), "1", ttl).Result()
}

// ReleaseCooldown deletes the marker.
func (r *CodeRedis) ReleaseCooldown(ctx context.Context, phone string) error {
	return r.client.Del(ctx, r.rateKey(phone)).Err()
}
