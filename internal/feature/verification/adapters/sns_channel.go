package adapters

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"login_backend/internal/feature/verification/usecase"
)

// SMS template placeholders. {minutes} is the code TTL rounded up to whole minutes.
const (
	placeholderCode    = "{code}"
	placeholderMinutes = "{minutes}"
)

const defaultMessageTemplate = "您的验证码是{code}，{minutes}分钟内有效。"

// defaultCodeTTL is used for {minutes} when CodeTTL is unset.
const defaultCodeTTL = 5 * time.Minute

// SNSConfig は SMS 送信用の AWS SNS 設定を保持します。
type SNSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	EndpointURL     string // LocalStack など
	SenderID        string
	Template        string        // must contain {code}
	CodeTTL         time.Duration // rendered into {minutes}
}

// LoadSNSConfig reads SMS_AWS_REGION, SMS_AWS_ACCESS_KEY_ID, SMS_AWS_SECRET_ACCESS_KEY,
// SMS_AWS_ENDPOINT_URL, SMS_SENDER_ID and SMS_TEMPLATE. codeTTL fills {minutes}.
func LoadSNSConfig(codeTTL time.Duration) SNSConfig {
	tpl := os.Getenv("SMS_TEMPLATE")
	if !strings.Contains(tpl, placeholderCode) {
		tpl = defaultMessageTemplate
	}
	return SNSConfig{
		Region:          os.Getenv("SMS_AWS_REGION"),
		AccessKeyID:     os.Getenv("SMS_AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("SMS_AWS_SECRET_ACCESS_KEY"),
		EndpointURL:     os.Getenv("SMS_AWS_ENDPOINT_URL"),
		SenderID:        os.Getenv("SMS_SENDER_ID"),
		Template:        tpl,
		CodeTTL:         codeTTL,
	}
}

// Configured reports whether a region is set.
func (c SNSConfig) Configured() bool {
	return c.Region != ""
}

// SNSPublisher is the subset of *sns.Client used for delivery.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSChannel implements usecase.CodeChannel with AWS SNS direct SMS publish.
type SNSChannel struct {
	client   SNSPublisher
	senderID string
	template string
}

var _ usecase.CodeChannel = (*SNSChannel)(nil)

// NewSNSChannel builds an SNS client from cfg. When cfg is not configured it returns a
// channel that always reports usecase.ErrChannelNotConfigured.
func NewSNSChannel(ctx context.Context, cfg SNSConfig) (*SNSChannel, error) {
	if !cfg.Configured() {
		return NewSNSChannelWithClient(nil, cfg), nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*sns.Options)
	if cfg.EndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		})
	}

	return NewSNSChannelWithClient(sns.NewFromConfig(awsCfg, clientOpts...), cfg), nil
}

// NewSNSChannelWithClient wires an existing publisher. A nil client means not configured.
func NewSNSChannelWithClient(client SNSPublisher, cfg SNSConfig) *SNSChannel {
	tpl := cfg.Template
	if !strings.Contains(tpl, placeholderCode) {
		tpl = defaultMessageTemplate
	}
	ttl := cfg.CodeTTL
	if ttl <= 0 {
		ttl = defaultCodeTTL
	}
	minutes := int(math.Ceil(ttl.Minutes()))
	tpl = strings.ReplaceAll(tpl, placeholderMinutes, strconv.Itoa(minutes))
	return &SNSChannel{client: client, senderID: cfg.SenderID, template: tpl}
}

// message renders the SMS body. The template is never used as a format string.
func (s *SNSChannel) message(code string) string {
	return strings.ReplaceAll(s.template, placeholderCode, code)
}

// Send publishes the code as a transactional SMS.
func (s *SNSChannel) Send(ctx context.Context, phone, code string) error {
	if s.client == nil {
		return usecase.ErrChannelNotConfigured
	}

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(toE164(phone)),
		Message:           aws.String(s.message(code)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// toE164 prefixes bare 11-digit mainland numbers with +86.
func toE164(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	if len(phone) == 11 && phone[0] == '1' {
		return "+86" + phone
	}
	return phone
}
