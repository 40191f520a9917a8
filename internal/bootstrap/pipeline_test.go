package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimflow/internal/bootstrap"
	"claimflow/internal/config"
	"claimflow/internal/domain"
	"claimflow/mocks"
)

func baseConfig() *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{AutoApproveLimit: 10000},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func TestNewPipeline_UnknownProvider(t *testing.T) {
	cfg := baseConfig()
	cfg.Backend.Provider = "not-a-provider"

	_, err := bootstrap.NewPipeline(cfg)

	assert.ErrorContains(t, err, "not-a-provider")
}

func TestNewPipelineWithGenerator(t *testing.T) {
	p, err := bootstrap.NewPipelineWithGenerator(baseConfig(), new(mocks.MockTextGenerator))

	require.NoError(t, err)
	assert.NotNil(t, p.Processor)
	assert.NotNil(t, p.Metrics)
}

func TestNewPipelineWithGenerator_MetricsDisabled(t *testing.T) {
	cfg := baseConfig()
	cfg.Metrics.Enabled = false

	p, err := bootstrap.NewPipelineWithGenerator(cfg, new(mocks.MockTextGenerator))

	require.NoError(t, err)
	assert.Nil(t, p.Metrics)
}

func TestNewPipelineWithGenerator_BadRequiredType(t *testing.T) {
	cfg := baseConfig()
	cfg.Pipeline.RequiredDocumentTypes = []string{"bill", "x-ray"}

	_, err := bootstrap.NewPipelineWithGenerator(cfg, new(mocks.MockTextGenerator))

	assert.ErrorContains(t, err, "x-ray")
}

func TestNewPipelineWithGenerator_MissingRulesFile(t *testing.T) {
	cfg := baseConfig()
	cfg.Pipeline.ReviewRulesFile = t.TempDir() + "/missing.yaml"

	_, err := bootstrap.NewPipelineWithGenerator(cfg, new(mocks.MockTextGenerator))

	assert.Error(t, err)
}

func TestNewPipelineWithGenerator_LoadsRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - id: big\n    expression: claim.total_amount > 5000.0\n    reason: Large claim\n"), 0o600))
	cfg := baseConfig()
	cfg.Pipeline.ReviewRulesFile = path

	p, err := bootstrap.NewPipelineWithGenerator(cfg, new(mocks.MockTextGenerator))

	require.NoError(t, err)
	assert.NotNil(t, p.Processor)
}

func TestPipeline_EmptyClaim(t *testing.T) {
	p, err := bootstrap.NewPipelineWithGenerator(baseConfig(), new(mocks.MockTextGenerator))
	require.NoError(t, err)

	_, err = p.Processor.Process(context.Background(), uuid.Nil, nil)

	assert.ErrorIs(t, err, domain.ErrNoDocuments)
}
