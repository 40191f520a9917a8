package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"claimflow/internal/port"
)

// ResilienceOptions configures a ResilientGenerator.
type ResilienceOptions struct {
	Executor ExecutorConfig
	// RequestsPerSecond <= 0 disables client-side rate limiting.
	RequestsPerSecond float64
	Burst             int
}

// ResilientGenerator guards a provider with a token-bucket limiter, retries and a circuit breaker.
type ResilientGenerator struct {
	name     string
	next     port.TextGenerator
	executor *Executor
	limiter  *rate.Limiter
}

func NewResilientGenerator(name string, next port.TextGenerator, opts ResilienceOptions) *ResilientGenerator {
	g := &ResilientGenerator{
		name:     name,
		next:     next,
		executor: NewExecutor(opts.Executor),
	}
	if opts.RequestsPerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), max(opts.Burst, 1))
	}
	return g
}

func (g *ResilientGenerator) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%s rate limiter: %w", g.name, err)
		}
	}

	var out string
	err := g.executor.Execute(ctx, g.name+".generate", func(ctx context.Context) error {
		text, err := g.next.Generate(ctx, input)
		if err != nil {
			return err
		}
		out = text
		return nil
	}, ClassifyError)
	if err != nil {
		return "", err
	}
	return out, nil
}
