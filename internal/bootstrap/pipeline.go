// Package bootstrap assembles the claim pipeline from configuration for the binaries.
package bootstrap

import (
	"fmt"
	"log"

	"claimflow/internal/classifier"
	"claimflow/internal/config"
	"claimflow/internal/decision"
	"claimflow/internal/extraction"
	"claimflow/internal/llm"
	"claimflow/internal/llm/providers"
	"claimflow/internal/metrics"
	"claimflow/internal/port"
	"claimflow/internal/service"
	"claimflow/internal/textextract"
	"claimflow/internal/validator"
)

// Pipeline is a fully wired claim processor. Metrics is nil when disabled.
type Pipeline struct {
	Processor *service.ClaimProcessor
	Metrics   *metrics.Metrics
}

// NewPipeline builds the text backend from cfg.Backend and wires every stage around it.
func NewPipeline(cfg *config.Config) (*Pipeline, error) {
	providers.RegisterAll()
	gen, err := llm.NewFromConfig(&cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize text backend: %w", err)
	}
	return NewPipelineWithGenerator(cfg, gen)
}

// NewPipelineWithGenerator wires the pipeline around an existing text backend.
func NewPipelineWithGenerator(cfg *config.Config, gen port.TextGenerator) (*Pipeline, error) {
	debug := cfg.Log.Debug()
	agents, err := extraction.NewDefaultRegistry(gen, extraction.OptionsFromConfig(&cfg.Pipeline, debug))
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction agents: %w", err)
	}

	required, err := validator.ParseDocumentTypes(cfg.Pipeline.RequiredDocumentTypes)
	if err != nil {
		return nil, err
	}

	var rules *decision.RuleSet
	if cfg.Pipeline.ReviewRulesFile != "" {
		rules, err = decision.LoadReviewRules(cfg.Pipeline.ReviewRulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load review rules: %w", err)
		}
		log.Printf("bootstrap.NewPipeline: loaded %d review rules from %s", rules.Len(), cfg.Pipeline.ReviewRulesFile)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	processor := service.NewClaimProcessor(service.ProcessorDeps{
		Text:       textextract.NewExtractor(),
		Classifier: classifier.New(gen, classifier.OptionsFromConfig(&cfg.Pipeline, debug)),
		Agents:     agents,
		Validator:  validator.NewDefaultEngine(required, cfg.Pipeline.ComparableFields...),
		Decider:    decision.NewEngine(cfg.Pipeline.AutoApproveLimit, rules),
		Metrics:    m,
		Debug:      debug,
	})
	return &Pipeline{Processor: processor, Metrics: m}, nil
}
