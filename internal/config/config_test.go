package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimflow/internal/config"
)

func clearPort(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "")
	t.Setenv("CLAIMFLOW_SERVER_PORT", "")
}

func TestLoad_Defaults(t *testing.T) {
	clearPort(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.False(t, cfg.DB.Enabled)
	assert.False(t, cfg.S3.Enabled)
	assert.Equal(t, []string{"pdf", "jpg", "png", "txt"}, cfg.Upload.AllowedTypes)
	assert.Equal(t, []string{"bill", "id_card"}, cfg.Pipeline.RequiredDocumentTypes)
	assert.Equal(t, []string{"patient_name", "patient_id"}, cfg.Pipeline.ComparableFields)
	assert.Equal(t, 10000.0, cfg.Pipeline.AutoApproveLimit)
	assert.Equal(t, "noop", cfg.Notify.Provider)
	assert.Empty(t, cfg.Notify.Reviewers)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "gemini", cfg.Backend.PrimaryConfig().Provider)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearPort(t)
	t.Setenv("CLAIMFLOW_PIPELINE_AUTO_APPROVE_LIMIT", "2500")
	t.Setenv("CLAIMFLOW_PIPELINE_REQUIRED_DOCUMENT_TYPES", "bill, discharge_summary")
	t.Setenv("CLAIMFLOW_UPLOAD_MAX_FILES", "5")
	t.Setenv("CLAIMFLOW_PIPELINE_COMPARABLE_FIELDS", "patient_id")
	t.Setenv("CLAIMFLOW_NOTIFY_REVIEWERS", "a@example.com,b@example.com")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 2500.0, cfg.Pipeline.AutoApproveLimit)
	assert.Equal(t, []string{"bill", "discharge_summary"}, cfg.Pipeline.RequiredDocumentTypes)
	assert.Equal(t, 5, cfg.Upload.MaxFiles)
	assert.Equal(t, []string{"patient_id"}, cfg.Pipeline.ComparableFields)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Notify.Reviewers)
}

func TestLoad_PlatformPort(t *testing.T) {
	clearPort(t)
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_ExplicitPortWins(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CLAIMFLOW_SERVER_PORT", ":7070")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Port)
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{User: "u", Password: "p", Host: "db", Port: 5433, Name: "claims", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p@db:5433/claims?sslmode=require", db.DSN())
}

func TestBackendConfig_PrimaryConfig_LegacyFallback(t *testing.T) {
	cfg := config.BackendConfig{
		Provider:     "claude",
		APIKey:       "sk-legacy",
		DefaultModel: "claude-3-5-haiku",
		TimeoutSecs:  30,
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "claude", primary.Provider)
	assert.Equal(t, "sk-legacy", primary.APIKey)
	assert.Equal(t, "claude-3-5-haiku", primary.DefaultModel)
	assert.Equal(t, 30, primary.TimeoutSecs)
}

func TestBackendConfig_PrimaryConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.BackendConfig{
		Provider: "legacy-should-be-ignored",
		Primary:  config.BackendProviderConfig{Provider: "openai", APIKey: "sk-primary"},
	}

	assert.Equal(t, "openai", cfg.PrimaryConfig().Provider)
}

func TestBackendConfig_ProviderChain(t *testing.T) {
	cfg := config.BackendConfig{
		Primary:  config.BackendProviderConfig{Provider: "claude"},
		Tertiary: config.BackendProviderConfig{Provider: "ollama"},
	}

	chain := cfg.ProviderChain()

	require.Len(t, chain, 2)
	assert.Equal(t, "claude", chain[0].Provider)
	assert.Equal(t, "ollama", chain[1].Provider)
	assert.Nil(t, cfg.SecondaryConfig())
}

func TestPipelineConfig_BackendTimeout(t *testing.T) {
	assert.Equal(t, 60*time.Second, (&config.PipelineConfig{}).BackendTimeout())
	assert.Equal(t, 5*time.Second, (&config.PipelineConfig{BackendTimeoutSecs: 5}).BackendTimeout())
}

func TestUploadConfig_MaxFileSizeBytes(t *testing.T) {
	assert.Equal(t, int64(10*1024*1024), (&config.UploadConfig{MaxFileSizeMB: 10}).MaxFileSizeBytes())
}

func TestLogConfig_Debug(t *testing.T) {
	assert.True(t, config.LogConfig{Level: "DEBUG"}.Debug())
	assert.False(t, config.LogConfig{Level: "info"}.Debug())
}
