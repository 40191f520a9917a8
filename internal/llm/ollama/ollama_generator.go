package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"claimflow/internal/config"
	"claimflow/internal/domain"
	"claimflow/internal/llm"
	"claimflow/internal/port"
)

const defaultBaseURL = "http://localhost:11434"

// Generator implements port.TextGenerator against a local Ollama server.
type Generator struct {
	model    string
	endpoint string
	client   *http.Client
}

// NewGenerator creates an Ollama-backed generator. BaseURL defaults to localhost:11434.
func NewGenerator(cfg *config.BackendProviderConfig) *Generator {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return newGenerator(cfg, strings.TrimRight(base, "/")+"/api/generate")
}

// NewGeneratorWithEndpoint creates a generator pointing at a custom API endpoint (for testing).
func NewGeneratorWithEndpoint(cfg *config.BackendProviderConfig, endpoint string) *Generator {
	return newGenerator(cfg, endpoint)
}

func newGenerator(cfg *config.BackendProviderConfig, endpoint string) *Generator {
	model := cfg.DefaultModel
	if model == "" {
		model = "llama3.1"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Generator{
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	options := map[string]any{
		"temperature": input.Temperature,
	}
	if input.MaxTokens > 0 {
		options["num_predict"] = input.MaxTokens
	}
	reqBody := map[string]any{
		"model":   g.model,
		"prompt":  input.Prompt,
		"stream":  false,
		"options": options,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if err := llm.CheckResponse("ollama", resp, respBody); err != nil {
		return "", err
	}

	var out struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &domain.ParseError{Err: fmt.Errorf("unmarshaling response: %w", err)}
	}
	return out.Response, nil
}
