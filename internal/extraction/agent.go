// Package extraction turns classified document text into typed claim records.
package extraction

import (
	"context"
	"fmt"
	"time"

	"claimflow/internal/config"
	"claimflow/internal/domain"
	"claimflow/internal/port"
)

// Agent extracts one document type.
type Agent interface {
	DocumentType() domain.DocumentType
	Extract(ctx context.Context, rawText string) (domain.ExtractedDocument, error)
}

// Options tunes the backend fallback pass. Zero values fall back to the pipeline defaults.
type Options struct {
	MaxChars    int
	Temperature float64
	Timeout     time.Duration
	Debug       bool
}

// OptionsFromConfig reads extraction options from the pipeline config.
func OptionsFromConfig(cfg *config.PipelineConfig, debug bool) Options {
	return Options{
		MaxChars:    cfg.ExtractMaxChars,
		Temperature: cfg.ExtractTemperature,
		Timeout:     cfg.BackendTimeout(),
		Debug:       debug,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxChars <= 0 {
		o.MaxChars = 4000
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	return o
}

// Registry maps document types to agents.
type Registry struct {
	agents map[domain.DocumentType]Agent
}

func NewRegistry() *Registry {
	return &Registry{agents: make(map[domain.DocumentType]Agent)}
}

func (r *Registry) Register(a Agent) {
	r.agents[a.DocumentType()] = a
}

func (r *Registry) Get(t domain.DocumentType) (Agent, bool) {
	a, ok := r.agents[t]
	return a, ok
}

// NewDefaultRegistry builds the five built-in agents around one backend.
func NewDefaultRegistry(gen port.TextGenerator, opts Options) (*Registry, error) {
	r := NewRegistry()
	for _, s := range []agentSpec{billSpec(), dischargeSpec(), idCardSpec(), prescriptionSpec(), labReportSpec()} {
		a, err := newAgent(s, gen, opts)
		if err != nil {
			return nil, fmt.Errorf("building %s agent: %w", s.docType, err)
		}
		r.Register(a)
	}
	return r, nil
}
