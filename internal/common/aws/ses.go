// internal/common/aws/ses.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// SESClient delivers applicant email for the notify package. Application
// status changes (accepted, rejected, waitlisted) are the only mail this
// service sends; delivery is best-effort and never blocks a transition.
type SESClient struct {
	client *ses.Client
}

// NewSESClient builds a client from the ambient AWS credential chain. The
// region comes from notifications.aws.region in the service config.
func NewSESClient(ctx context.Context, region string) (*SESClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESClient{client: ses.NewFromConfig(cfg)}, nil
}

// SendEmail satisfies notify.EmailSender.
func (s *SESClient) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input)
}
