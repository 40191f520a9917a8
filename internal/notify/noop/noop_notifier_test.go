package noop_test

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"claimflow/internal/domain"
	"claimflow/internal/notify/noop"
)

func TestNoopNotifier_Logs(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	claim := &domain.ProcessedClaim{ID: uuid.New(), Decision: domain.ClaimDecision{Reason: "Patient name mismatch"}}
	err := noop.NewNoopNotifier("http://localhost:3000").NotifyPendingReview(context.Background(), claim)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "[NOOP NOTIFY]")
	assert.Contains(t, buf.String(), "Patient name mismatch")
	assert.Contains(t, buf.String(), "http://localhost:3000/claims/"+claim.ID.String())
}
