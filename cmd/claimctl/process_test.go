package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimflow/internal/domain"
)

func TestLoadClaimDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_card.txt"), []byte("Name: Jane Doe"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_bill.txt"), []byte("Total: $100"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))

	files, err := loadClaimDir(dir)

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a_bill.txt", files[0].FileName)
	assert.Equal(t, int64(len("Total: $100")), files[0].Size)
	assert.Equal(t, "b_card.txt", files[1].FileName)
}

func TestLoadClaimDir_Empty(t *testing.T) {
	_, err := loadClaimDir(t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
}

func TestLoadClaimDir_Missing(t *testing.T) {
	_, err := loadClaimDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	printSummary(&buf, []claimResult{
		{Dir: "claims/001", Claim: &domain.ProcessedClaim{
			ID:       uuid.New(),
			Decision: domain.ClaimDecision{Status: domain.DecisionApproved, Reason: "Claim meets all requirements", AmountApproved: 250},
			Documents: []domain.DocumentOutcome{
				{FileName: "scan.png", Status: domain.OutcomeFailure, Error: "no text layer"},
			},
		}},
		{Dir: "claims/002", Error: "no documents provided"},
	})

	out := buf.String()
	assert.Contains(t, out, "approved   claims/001  approved=250.00 rejected=0.00")
	assert.Contains(t, out, "! scan.png: no text layer")
	assert.Contains(t, out, "error      claims/002")
}

func TestWriteSpreadsheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	err := writeSpreadsheet(path, []claimResult{
		{Dir: "a", Claim: &domain.ProcessedClaim{ID: uuid.New(), Decision: domain.ClaimDecision{Status: domain.DecisionPending}}},
		{Dir: "b", Error: "failed"},
	})

	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
