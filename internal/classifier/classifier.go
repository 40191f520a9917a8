// Package classifier assigns a document type to raw claim text.
package classifier

import (
	"context"
	"log"
	"strings"
	"time"

	"claimflow/internal/config"
	"claimflow/internal/domain"
	"claimflow/internal/port"
)

const classifyMaxTokens = 20

// Options tunes the classifier. Zero values fall back to the pipeline defaults.
type Options struct {
	MaxChars    int
	Temperature float64
	Timeout     time.Duration
	Debug       bool
}

// OptionsFromConfig reads classifier options from the pipeline config.
func OptionsFromConfig(cfg *config.PipelineConfig, debug bool) Options {
	return Options{
		MaxChars:    cfg.ClassifyMaxChars,
		Temperature: cfg.ClassifyTemperature,
		Timeout:     cfg.BackendTimeout(),
		Debug:       debug,
	}
}

// Classifier maps raw text and a filename to a DocumentType. It never fails.
type Classifier struct {
	gen  port.TextGenerator
	opts Options
}

func New(gen port.TextGenerator, opts Options) *Classifier {
	if opts.MaxChars <= 0 {
		opts.MaxChars = 2000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Classifier{gen: gen, opts: opts}
}

// Classify degrades to UNKNOWN on empty input, backend failure, timeout or an unrecognised label.
func (c *Classifier) Classify(ctx context.Context, rawText, filename string) domain.DocumentType {
	if strings.TrimSpace(rawText) == "" {
		log.Printf("classifier.Classify: %s has no text, classifying as unknown", filename)
		return domain.DocumentTypeUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	resp, err := c.gen.Generate(ctx, port.GenerateInput{
		Prompt:      BuildPrompt(filename, rawText, c.opts.MaxChars),
		Temperature: c.opts.Temperature,
		MaxTokens:   classifyMaxTokens,
	})
	if err != nil {
		log.Printf("classifier.Classify: backend failed for %s, classifying as unknown: %v", filename, err)
		return domain.DocumentTypeUnknown
	}

	docType := ParseLabel(resp)
	if c.opts.Debug {
		log.Printf("classifier.Classify: %s classified as %s (raw %q)", filename, docType, resp)
	}
	return docType
}
