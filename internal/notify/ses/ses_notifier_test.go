package ses_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimflow/internal/config"
	"claimflow/internal/domain"
	"claimflow/internal/notify/ses"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{}, nil
}

func notifyConfig() *config.NotifyConfig {
	return &config.NotifyConfig{
		FromAddress:  "claims@example.com",
		FromName:     "Claimflow",
		Reviewers:    []string{"a@example.com", "b@example.com"},
		DashboardURL: "https://review.example.com",
	}
}

func TestNewWithClient_Validation(t *testing.T) {
	_, err := ses.NewWithClient(&fakeSES{}, &config.NotifyConfig{Reviewers: []string{"a@example.com"}})
	assert.Error(t, err)

	_, err = ses.NewWithClient(&fakeSES{}, &config.NotifyConfig{FromAddress: "claims@example.com"})
	assert.Error(t, err)
}

func TestNotifyPendingReview(t *testing.T) {
	client := &fakeSES{}
	n, err := ses.NewWithClient(client, notifyConfig())
	require.NoError(t, err)

	claim := &domain.ProcessedClaim{
		ID:       uuid.New(),
		Decision: domain.ClaimDecision{Status: domain.DecisionPending, Reason: "Amount exceeds auto-approval limit"},
	}
	require.NoError(t, n.NotifyPendingReview(context.Background(), claim))

	require.NotNil(t, client.input)
	assert.Equal(t, "Claimflow <claims@example.com>", *client.input.FromEmailAddress)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, client.input.Destination.ToAddresses)
	assert.Contains(t, *client.input.Content.Simple.Subject.Data, "needs manual review")
	assert.Contains(t, *client.input.Content.Simple.Body.Text.Data, claim.ID.String())
}

func TestNotifyPendingReview_SendError(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	n, err := ses.NewWithClient(client, notifyConfig())
	require.NoError(t, err)

	err = n.NotifyPendingReview(context.Background(), &domain.ProcessedClaim{ID: uuid.New()})
	assert.ErrorContains(t, err, "throttled")
}
