package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimflow/internal/config"
	"claimflow/internal/llm/ollama"
	"claimflow/internal/port"
)

func TestOllamaGenerator_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "llama3.1", reqBody["model"])
		assert.Equal(t, false, reqBody["stream"])
		options := reqBody["options"].(map[string]interface{})
		assert.Equal(t, float64(2000), options["num_predict"])

		_, _ = w.Write([]byte(`{"response":"lab_report","done":true}`))
	}))
	defer server.Close()

	g := ollama.NewGenerator(&config.BackendProviderConfig{Provider: "ollama", BaseURL: server.URL + "/"})

	out, err := g.Generate(context.Background(), port.GenerateInput{Prompt: "x", MaxTokens: 2000})

	require.NoError(t, err)
	assert.Equal(t, "lab_report", out)
}
