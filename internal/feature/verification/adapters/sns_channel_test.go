package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"login_backend/internal/feature/verification/usecase"
)

// mockPublisher is a mock implementation of SNSPublisher.
type mockPublisher struct {
	PublishFunc func(ctx context.Context, in *sns.PublishInput) (*sns.PublishOutput, error)
	calls       []*sns.PublishInput
}

func (m *mockPublisher) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls = append(m.calls, in)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, in)
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil // Default: success
}

func TestSNSChannel_Send(t *testing.T) {
	t.Parallel()

	pub := &mockPublisher{}
	ch := NewSNSChannelWithClient(pub, SNSConfig{SenderID: "LOGIN", Template: "code: {code}"})

	require.NoError(t, ch.Send(context.Background(), "13900000001", "123456"))
	require.Len(t, pub.calls, 1)

	in := pub.calls[0]
	assert.Equal(t, "+8613900000001", aws.ToString(in.PhoneNumber))
	assert.Equal(t, "code: 123456", aws.ToString(in.Message))
	assert.Equal(t, "Transactional", aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
	assert.Equal(t, "LOGIN", aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}

func TestSNSChannel_Send_DefaultTemplate(t *testing.T) {
	t.Parallel()

	pub := &mockPublisher{}
	ch := NewSNSChannelWithClient(pub, SNSConfig{Template: "no placeholder"})

	require.NoError(t, ch.Send(context.Background(), "13900000001", "123456"))
	assert.Contains(t, aws.ToString(pub.calls[0].Message), "123456")
	_, hasSender := pub.calls[0].MessageAttributes["AWS.SNS.SMS.SenderID"]
	assert.False(t, hasSender)
}

func TestSNSChannel_Send_PublishError(t *testing.T) {
	t.Parallel()

	boom := errors.New("throttled")
	pub := &mockPublisher{
		PublishFunc: func(ctx context.Context, in *sns.PublishInput) (*sns.PublishOutput, error) { return nil, boom },
	}
	ch := NewSNSChannelWithClient(pub, SNSConfig{})

	err := ch.Send(context.Background(), "13900000001", "123456")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, usecase.ErrChannelNotConfigured)
}

func TestSNSChannel_NotConfigured(t *testing.T) {
	t.Parallel()

	ch, err := NewSNSChannel(context.Background(), SNSConfig{})
	require.NoError(t, err)

	err = ch.Send(context.Background(), "13900000001", "123456")
	assert.ErrorIs(t, err, usecase.ErrChannelNotConfigured)
}

func TestToE164(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"13900000001":    "+8613900000001",
		"+8613900000001": "+8613900000001",
		"+14155550100":   "+14155550100",
		"4155550100":     "4155550100",
	}
	for in, want := range tests {
		assert.Equal(t, want, toE164(in), in)
	}
}

func TestLoadSNSConfig(t *testing.T) {
	t.Setenv("SMS_AWS_REGION", "ap-northeast-1")
	t.Setenv("SMS_AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("SMS_AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("SMS_AWS_ENDPOINT_URL", "http://localhost:4566")
	t.Setenv("SMS_SENDER_ID", "LOGIN")
	t.Setenv("SMS_TEMPLATE", "")

	cfg := LoadSNSConfig(3 * time.Minute)

	assert.True(t, cfg.Configured())
	assert.Equal(t, "ap-northeast-1", cfg.Region)
	assert.Equal(t, "AKID", cfg.AccessKeyID)
	assert.Equal(t, "http://localhost:4566", cfg.EndpointURL)
	assert.Equal(t, defaultMessageTemplate, cfg.Template)
	assert.Equal(t, 3*time.Minute, cfg.CodeTTL)
}

func TestLoadSNSConfig_CustomTemplate(t *testing.T) {
	t.Setenv("SMS_TEMPLATE", "【登录】验证码{code}")

	cfg := LoadSNSConfig(time.Minute)

	assert.Equal(t, "【登录】验证码{code}", cfg.Template)
}

func TestSNSChannel_Send_MessageRendering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  SNSConfig
		want string
	}{
		{
			name: "default template uses the default ttl",
			cfg:  SNSConfig{},
			want: "您的验证码是123456，5分钟内有效。",
		},
		{
			name: "minutes follow the configured ttl",
			cfg:  SNSConfig{CodeTTL: 10 * time.Minute},
			want: "您的验证码是123456，10分钟内有效。",
		},
		{
			name: "partial minutes round up",
			cfg:  SNSConfig{CodeTTL: 90 * time.Second},
			want: "您的验证码是123456，2分钟内有效。",
		},
		{
			name: "format verbs are printed literally",
			cfg:  SNSConfig{Template: "100%d 验证码 {code} %s", CodeTTL: time.Minute},
			want: "100%d 验证码 123456 %s",
		},
		{
			name: "template without {code} falls back to the default",
			cfg:  SNSConfig{Template: "code: %s", CodeTTL: 3 * time.Minute},
			want: "您的验证码是123456，3分钟内有效。",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pub := &mockPublisher{}
			ch := NewSNSChannelWithClient(pub, tt.cfg)

			require.NoError(t, ch.Send(context.Background(), "13900000001", "123456"))
			assert.Equal(t, tt.want, aws.ToString(pub.calls[0].Message))
		})
	}
}
