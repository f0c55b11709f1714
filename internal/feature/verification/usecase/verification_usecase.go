package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// CodeStore は認証コードとクールダウンマーカーのTTL付きストアを抽象化します。
// インターフェースはコンシューマー（usecase）が定義します。
type CodeStore interface {
	// SetCode stores code for phone, replacing any live code.
	SetCode(ctx context.Context, phone, code string, ttl time.Duration) error

	// ConsumeCode atomically deletes the stored code if it equals code and reports whether it did.
	// A mismatch leaves the stored code untouched.
	ConsumeCode(ctx context.Context, phone, code string) (bool, error)

	// AcquireCooldown sets the cooldown marker if absent. false means a marker already exists.
	AcquireCooldown(ctx context.Context, phone string, ttl time.Duration) (bool, error)

	// ReleaseCooldown removes the cooldown marker.
	ReleaseCooldown(ctx context.Context, phone string) error
}

// CodeChannel delivers a code to a phone number.
type CodeChannel interface {
	// Send returns ErrChannelNotConfigured when no provider is set up.
	Send(ctx context.Context, phone, code string) error
}

// CodeGenerator returns a numeric code of the given length.
type CodeGenerator func(length int) string

// Config はコードの長さ・有効期限・クールダウンなどの設定を保持します。
type Config struct {
	CodeLength  int
	CodeTTL     time.Duration
	Cooldown    time.Duration
	SendTimeout time.Duration

	// AllowDevFallback treats ErrChannelNotConfigured as a successful send
	// and writes the code to the log. Must be false in production.
	AllowDevFallback bool
}

// DefaultConfig returns the stock settings: 6 digits, 5 minute TTL, 60 second cooldown.
func DefaultConfig() Config {
	return Config{
		CodeLength:  6,
		CodeTTL:     5 * time.Minute,
		Cooldown:    60 * time.Second,
		SendTimeout: 5 * time.Second,
	}
}

// MinCodeLength and MaxCodeLength bound CodeLength. The HTTP request DTOs accept the same range.
const (
	MinCodeLength = 4
	MaxCodeLength = 10
)

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CodeLength < MinCodeLength || c.CodeLength > MaxCodeLength {
		c.CodeLength = d.CodeLength
	}
	if c.CodeTTL <= 0 {
		c.CodeTTL = d.CodeTTL
	}
	if c.Cooldown <= 0 {
		c.Cooldown = d.Cooldown
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = d.SendTimeout
	}
	return c
}

// RandomDigits returns n uniform pseudorandom decimal digits.
func RandomDigits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0' + byte(rand.IntN(10))
	}
	return string(b)
}

// verificationUsecase は認証コードの発行と検証を実装します。
type verificationUsecase struct {
	store    CodeStore
	channel  CodeChannel
	cfg      Config
	generate CodeGenerator
	logger   *slog.Logger
}

// Option customizes a verificationUsecase.
type Option func(*verificationUsecase)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(u *verificationUsecase) { u.logger = l }
}

// WithGenerator replaces RandomDigits.
func WithGenerator(g CodeGenerator) Option {
	return func(u *verificationUsecase) { u.generate = g }
}

// NewVerificationUsecase はverificationUsecaseの新しいインスタンスを生成します。
func NewVerificationUsecase(store CodeStore, channel CodeChannel, cfg Config, opts ...Option) *verificationUsecase {
	u := &verificationUsecase{
		store:    store,
		channel:  channel,
		cfg:      cfg.withDefaults(),
		generate: RandomDigits,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	if cfg.CodeLength != 0 && cfg.CodeLength != u.cfg.CodeLength {
		u.logger.Warn("code length out of range, using default",
			"configured", cfg.CodeLength, "min", MinCodeLength, "max", MaxCodeLength, "using", u.cfg.CodeLength)
	}
	return u
}

// RequestCode は新しいコードを生成して送信し、送信成功時のみ保存します。
//
// クールダウンマーカーは送信前にSETNXで確保し、同一電話番号への同時リクエストでも
// ウィンドウ内の送信を1回に制限します。送信または保存に失敗した場合はマーカーを解放するため、
// 呼び出し元はすぐに再試行できます。
func (u *verificationUsecase) RequestCode(ctx context.Context, phone string) error {
	acquired, err := u.store.AcquireCooldown(ctx, phone, u.cfg.Cooldown)
	if err != nil {
		return fmt.Errorf("failed to acquire cooldown: %w", err)
	}
	if !acquired {
		return ErrRateLimited
	}

	code := u.generate(u.cfg.CodeLength)

	if err := u.deliver(ctx, phone, code); err != nil {
		u.releaseCooldown(ctx, phone)
		return err
	}

	if err := u.store.SetCode(ctx, phone, code, u.cfg.CodeTTL); err != nil {
		u.releaseCooldown(ctx, phone)
		return fmt.Errorf("failed to store code: %w", err)
	}

	u.logger.Info("verification code sent", "phone", phone)
	return nil
}

// Verify は保存済みコードと完全一致した場合のみtrueを返し、そのコードを消費します。
// クールダウンマーカーには触れません。
func (u *verificationUsecase) Verify(ctx context.Context, phone, code string) (bool, error) {
	if phone == "" || code == "" {
		return false, nil
	}
	ok, err := u.store.ConsumeCode(ctx, phone, code)
	if err != nil {
		return false, fmt.Errorf("failed to consume code: %w", err)
	}
	return ok, nil
}

func (u *verificationUsecase) deliver(ctx context.Context, phone, code string) error {
	sendCtx, cancel := context.WithTimeout(ctx, u.cfg.SendTimeout)
	defer cancel()

	err := u.channel.Send(sendCtx, phone, code)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrChannelNotConfigured) && u.cfg.AllowDevFallback:
		// 開発環境のみ: 送信チャネル未設定時はログにコードを出力する
		u.logger.Warn("sms channel not configured, code written to log", "phone", phone, "code", code)
		return nil
	default:
		u.logger.Error("sms delivery failed", "phone", phone, "error", err)
		return fmt.Errorf("%w: %w", ErrChannel, err)
	}
}

func (u *verificationUsecase) releaseCooldown(ctx context.Context, phone string) {
	// 呼び出し元のctxがキャンセル済みでも解放する
	if err := u.store.ReleaseCooldown(context.WithoutCancel(ctx), phone); err != nil {
		u.logger.Error("failed to release cooldown", "phone", phone, "error", err)
	}
}
