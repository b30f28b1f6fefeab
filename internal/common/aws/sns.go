// internal/common/aws/sns.go
package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// smsLimit is the length of a single SMS segment.
const smsLimit = 160

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient sends transactional SMS alerts.
type SNSClient struct {
	client SNSAPI
}

func NewSNSClient(ctx context.Context, region string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewSNSClientWithAPI(sns.NewFromConfig(cfg)), nil
}

func NewSNSClientWithAPI(api SNSAPI) *SNSClient {
	return &SNSClient{client: api}
}

// SendSMS truncates message to one segment and returns the SNS message id.
func (s *SNSClient) SendSMS(ctx context.Context, phone, message string) (string, error) {
	if phone == "" {
		return "", ErrMissingRecipient
	}
	if r := []rune(message); len(r) > smsLimit {
		message = string(r[:smsLimit-3]) + "..."
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: awssdk.String(phone),
		Message:     awssdk.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String("Transactional"),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sns publish: %w", err)
	}
	return awssdk.ToString(out.MessageId), nil
}
