package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimflow/internal/config"
	"claimflow/internal/domain"
	"claimflow/internal/llm"
	"claimflow/internal/llm/gemini"
	"claimflow/internal/port"
)

func newTestGenerator(serverURL string) *gemini.Generator {
	return gemini.NewGeneratorWithEndpoint(&config.BackendProviderConfig{
		Provider: "gemini",
		APIKey:   "gemini-key",
	}, serverURL)
}

func TestGeminiGenerator_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gemini-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		genCfg := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, float64(1000), genCfg["maxOutputTokens"])
		assert.InDelta(t, 0.1, genCfg["temperature"], 1e-9)

		contents := reqBody["contents"].([]interface{})
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		assert.Equal(t, "extract", parts[0].(map[string]interface{})["text"])

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"total_amount\":"},{"text":" 12.5}"}]}}]}`))
	}))
	defer server.Close()

	out, err := newTestGenerator(server.URL).Generate(context.Background(), port.GenerateInput{
		Prompt:      "extract",
		Temperature: 0.1,
		MaxTokens:   1000,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"total_amount": 12.5}`, out)
}

func TestGeminiGenerator_Generate_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), port.GenerateInput{Prompt: "x"})

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGeminiGenerator_Generate_RateLimitedDefaultsRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), port.GenerateInput{Prompt: "x"})

	var rlErr *llm.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "gemini", rlErr.Provider)
	assert.Equal(t, float64(60), rlErr.RetryAfter.Seconds())
}
