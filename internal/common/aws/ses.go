// internal/common/aws/ses.go
package aws

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var ErrMissingRecipient = errors.New("MISSING_RECIPIENT")

// SESAPI is the subset of the SES client used for delivery.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESClient sends plain text email from a fixed sender.
type SESClient struct {
	client SESAPI
	from   string
}

func NewSESClient(ctx context.Context, region, from string) (*SESClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewSESClientWithAPI(ses.NewFromConfig(cfg), from), nil
}

func NewSESClientWithAPI(api SESAPI, from string) *SESClient {
	return &SESClient{client: api, from: from}
}

// SendEmail returns the SES message id.
func (s *SESClient) SendEmail(ctx context.Context, toEmail, toName, subject, body string) (string, error) {
	if toEmail == "" {
		return "", ErrMissingRecipient
	}
	to := (&mail.Address{Name: toName, Address: toEmail}).String()

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      awssdk.String(s.from),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: awssdk.String(subject), Charset: awssdk.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: awssdk.String(body), Charset: awssdk.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send: %w", err)
	}
	return awssdk.ToString(out.MessageId), nil
}
