package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog/log"
)

// SESClient wraps AWS SESv2 sending.
type SESClient struct {
	client *sesv2.Client
	sender string
}

// NewSESClient initializes an SES client. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewSESClient(ctx context.Context, accessKeyID, secretAccessKey, region, sender string) (*SESClient, error) {
	if region == "" {
		return nil, fmt.Errorf("ses region is required")
	}
	if sender == "" {
		return nil, fmt.Errorf("ses sender is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SESClient{
		client: sesv2.NewFromConfig(awsCfg),
		sender: sender,
	}, nil
}

// Send delivers a plain-text email from the default sender.
func (c *SESClient) Send(ctx context.Context, recipient, subject, body string) error {
	return c.SendFrom(ctx, recipient, subject, body, "")
}

// SendFrom delivers a plain-text email; an empty sender falls back to the
// client default.
func (c *SESClient) SendFrom(ctx context.Context, recipient, subject, body, sender string) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("ses client is not initialized")
	}
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}

	from := strings.TrimSpace(sender)
	if from == "" {
		from = c.sender
	}

	input := &sesv2.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
				},
			},
		},
		FromEmailAddress: aws.String(from),
	}

	if _, err := c.client.SendEmail(ctx, input); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Str("subject", subject).
			Time("timestamp", time.Now().UTC()).
			Msg("Failed to send SES email")
		return fmt.Errorf("send ses email: %w", err)
	}

	return nil
}
