// Package providers registers the built-in backend clients with the llm registry.
package providers

import (
	"sync"

	"claimflow/internal/config"
	"claimflow/internal/llm"
	"claimflow/internal/llm/claude"
	"claimflow/internal/llm/gemini"
	"claimflow/internal/llm/ollama"
	"claimflow/internal/llm/openai"
	"claimflow/internal/port"
)

var once sync.Once

// RegisterAll registers claude, gemini, openai and ollama. Safe to call more than once.
func RegisterAll() {
	once.Do(func() {
		llm.RegisterProvider("claude", func(cfg *config.BackendProviderConfig) (port.TextGenerator, error) {
			return claude.NewGenerator(cfg), nil
		})
		llm.RegisterProvider("gemini", func(cfg *config.BackendProviderConfig) (port.TextGenerator, error) {
			return gemini.NewGenerator(cfg), nil
		})
		llm.RegisterProvider("openai", func(cfg *config.BackendProviderConfig) (port.TextGenerator, error) {
			return openai.NewGenerator(cfg), nil
		})
		llm.RegisterProvider("ollama", func(cfg *config.BackendProviderConfig) (port.TextGenerator, error) {
			return ollama.NewGenerator(cfg), nil
		})
	})
}
