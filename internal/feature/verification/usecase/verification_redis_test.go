package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"login_backend/internal/feature/verification/adapters"
	"login_backend/internal/feature/verification/usecase"
)

type okChannel struct{}

func (okChannel) Send(context.Context, string, string) error { return nil }

type codeService interface {
	RequestCode(ctx context.Context, phone string) error
	Verify(ctx context.Context, phone, code string) (bool, error)
}

func setup(t *testing.T) (usecase.Config, *miniredis.Miniredis, codeService) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := usecase.DefaultConfig()
	uc := usecase.NewVerificationUsecase(
		adapters.NewCodeRedis(client, "sms"),
		okChannel{},
		cfg,
		usecase.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return cfg, mr, uc
}

// TestVerification_EndToEnd は発行・誤コード・正コード・再利用の一連の流れを検証します。
func TestVerification_EndToEnd(t *testing.T) {
	t.Parallel()

	_, mr, uc := setup(t)
	ctx := context.Background()
	const phone = "13900000001"

	require.NoError(t, uc.RequestCode(ctx, phone))
	correct, err := mr.Get("sms:code:" + phone)
	require.NoError(t, err)
	require.Len(t, correct, 6)

	wrong := "000000"
	if correct == wrong {
		wrong = "111111"
	}
	ok, err := uc.Verify(ctx, phone, wrong)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("sms:code:"+phone), "wrong code must leave the stored code")

	ok, err = uc.Verify(ctx, phone, correct)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, mr.Exists("sms:code:"+phone))

	ok, err = uc.Verify(ctx, phone, correct)
	require.NoError(t, err)
	assert.False(t, ok, "a code verifies at most once")

	assert.True(t, mr.Exists("sms:rate:"+phone), "verify must not clear the cooldown")
}

// TestVerification_CooldownKeepsFirstCode はクールダウン中の再発行が拒否され、最初のコードが変わらないことを検証します。
func TestVerification_CooldownKeepsFirstCode(t *testing.T) {
	t.Parallel()

	cfg, mr, uc := setup(t)
	ctx := context.Background()
	const phone = "13900000002"

	require.NoError(t, uc.RequestCode(ctx, phone))
	first, _ := mr.Get("sms:code:" + phone)

	mr.FastForward(10 * time.Second)
	ttlBefore := mr.TTL("sms:code:" + phone)

	err := uc.RequestCode(ctx, phone)
	assert.ErrorIs(t, err, usecase.ErrRateLimited)

	second, _ := mr.Get("sms:code:" + phone)
	assert.Equal(t, first, second)
	assert.Equal(t, ttlBefore, mr.TTL("sms:code:"+phone))

	// クールダウン経過後は再発行できる
	mr.FastForward(cfg.Cooldown)
	assert.NoError(t, uc.RequestCode(ctx, phone))
}

// TestVerification_ExpiredCode はTTL経過後のコードが無効であることを検証します。
func TestVerification_ExpiredCode(t *testing.T) {
	t.Parallel()

	cfg, mr, uc := setup(t)
	ctx := context.Background()
	const phone = "13900000003"

	require.NoError(t, uc.RequestCode(ctx, phone))
	code, _ := mr.Get("sms:code:" + phone)

	mr.FastForward(cfg.CodeTTL)

	ok, err := uc.Verify(ctx, phone, code)
	require.NoError(t, err)
	assert.False(t, ok)
}
