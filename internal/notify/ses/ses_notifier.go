package ses

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"claimflow/internal/config"
	"claimflow/internal/domain"
	"claimflow/internal/notify"
	"claimflow/internal/port"
)

// SendEmailAPI is the subset of the SES v2 client used by the notifier.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesNotifier struct {
	client       SendEmailAPI
	from         string
	reviewers    []string
	dashboardURL string
}

// NewSESNotifier creates an SES-backed ReviewNotifier using the default AWS credential chain.
func NewSESNotifier(ctx context.Context, cfg *config.NotifyConfig) (port.ReviewNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return NewWithClient(sesv2.NewFromConfig(awsCfg), cfg)
}

// NewWithClient creates a ReviewNotifier around an existing SES client.
func NewWithClient(client SendEmailAPI, cfg *config.NotifyConfig) (port.ReviewNotifier, error) {
	if cfg.FromAddress == "" {
		return nil, errors.New("notify from address is required")
	}
	if len(cfg.Reviewers) == 0 {
		return nil, errors.New("at least one reviewer address is required")
	}
	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}
	return &sesNotifier{
		client:       client,
		from:         from,
		reviewers:    cfg.Reviewers,
		dashboardURL: cfg.DashboardURL,
	}, nil
}

func (s *sesNotifier) NotifyPendingReview(ctx context.Context, claim *domain.ProcessedClaim) error {
	msg := notify.PendingReview(claim, s.dashboardURL)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: s.reviewers,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML)},
					Text: &types.Content{Data: aws.String(msg.Text)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	log.Printf("sesNotifier.NotifyPendingReview: claim %s sent to %d reviewers", claim.ID, len(s.reviewers))
	return nil
}
