package extraction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"claimflow/internal/domain"
	"claimflow/internal/port"
)

// agentSpec describes one document type; the two-stage algorithm is shared.
type agentSpec struct {
	docType        domain.DocumentType
	required       []string
	dateFields     []string
	moneyFields    []string
	battery        Battery
	prompt         string
	maxTokens      int
	alwaysFallback bool
	schema         map[string]any
	// normalize reshapes merged fields before decoding. Optional.
	normalize func(Fields)
	decode    func(Fields) (domain.ExtractedDocument, error)
}

type agent struct {
	spec   agentSpec
	gen    port.TextGenerator
	opts   Options
	schema *jsonschema.Schema
}

func newAgent(spec agentSpec, gen port.TextGenerator, opts Options) (*agent, error) {
	schema, err := compileSchema(spec.docType, spec.schema)
	if err != nil {
		return nil, err
	}
	return &agent{spec: spec, gen: gen, opts: opts.withDefaults(), schema: schema}, nil
}

func (a *agent) DocumentType() domain.DocumentType {
	return a.spec.docType
}

func (a *agent) Extract(ctx context.Context, rawText string) (domain.ExtractedDocument, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, &domain.ExtractionError{DocumentType: a.spec.docType, Kind: domain.ErrorKindTextUnavailable, Err: domain.ErrEmptyText}
	}

	fields := a.spec.battery.Run(rawText)
	missing := missingFields(fields, a.spec.required)

	if len(missing) > 0 || a.spec.alwaysFallback {
		backendFields, err := a.fallback(ctx, rawText)
		if err != nil {
			return nil, &domain.ExtractionError{DocumentType: a.spec.docType, Kind: backendErrorKind(err), Missing: missing, Err: err}
		}
		merge(fields, backendFields)
	}

	normalizeDates(fields, a.spec.dateFields)
	if a.spec.normalize != nil {
		a.spec.normalize(fields)
	}

	if missing := missingFields(fields, a.spec.required); len(missing) > 0 {
		return nil, domain.NewMissingFieldsError(a.spec.docType, missing, nil)
	}

	doc, err := a.spec.decode(fields)
	if err != nil {
		return nil, &domain.ExtractionError{DocumentType: a.spec.docType, Kind: domain.ErrorKindParse, Err: err}
	}
	if a.opts.Debug {
		log.Printf("extraction.Agent.Extract: %s extracted %d fields", a.spec.docType, len(fields))
	}
	return doc, nil
}

// fallback asks the backend for the full field set and validates its shape.
func (a *agent) fallback(ctx context.Context, rawText string) (Fields, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	resp, err := a.gen.Generate(ctx, port.GenerateInput{
		Prompt:      buildPrompt(a.spec.prompt, rawText, a.opts.MaxChars),
		Temperature: a.opts.Temperature,
		MaxTokens:   a.spec.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("backend extraction: %w", err)
	}

	fields, err := DecodeResponse(resp, a.spec.moneyFields)
	if err != nil {
		return nil, err
	}
	if err := validateFields(a.schema, fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// merge lets non-empty backend values override deterministic ones.
func merge(dst, backend Fields) {
	for k, v := range backend {
		if isPresent(v) {
			dst[k] = v
		}
	}
}

func missingFields(fields Fields, required []string) []string {
	var missing []string
	for _, f := range required {
		if !isPresent(fields[f]) {
			missing = append(missing, f)
		}
	}
	return missing
}

func isPresent(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case []map[string]any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func backendErrorKind(err error) domain.ErrorKind {
	if errors.Is(err, domain.ErrMalformedResponse) {
		return domain.ErrorKindParse
	}
	return domain.ErrorKindBackend
}
