package llm

import (
	"fmt"
	"sort"
	"sync"

	"claimflow/internal/config"
	"claimflow/internal/port"
)

// ProviderFactory creates a TextGenerator from a provider config.
type ProviderFactory func(cfg *config.BackendProviderConfig) (port.TextGenerator, error)

var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider registers a backend provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewGenerator creates a TextGenerator from a provider config using the registered factory.
func NewGenerator(cfg *config.BackendProviderConfig) (port.TextGenerator, error) {
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the full backend: each configured provider wrapped in the
// resilience layer, chained primary -> secondary -> tertiary.
func NewFromConfig(cfg *config.BackendConfig) (port.TextGenerator, error) {
	chain := cfg.ProviderChain()
	generators := make([]port.TextGenerator, 0, len(chain))
	names := make([]string, 0, len(chain))
	for _, pc := range chain {
		gen, err := NewGenerator(pc)
		if err != nil {
			return nil, err
		}
		generators = append(generators, NewResilientGenerator(pc.Provider, gen, resilienceFromConfig(&cfg.Resilience)))
		names = append(names, pc.Provider)
	}
	if len(generators) == 1 {
		return generators[0], nil
	}
	return NewFallbackGenerator(generators, names), nil
}

func resilienceFromConfig(rc *config.ResilienceConfig) ResilienceOptions {
	return ResilienceOptions{
		Executor: ExecutorConfig{
			RetryMaxAttempts:    rc.RetryMaxAttempts,
			RetryInitialBackoff: rc.RetryInitialBackoff,
			RetryMaxBackoff:     rc.RetryMaxBackoff,
			BreakerEnabled:      rc.BreakerEnabled,
			BreakerMinRequests:  rc.BreakerMinRequests,
			BreakerFailureRatio: rc.BreakerFailureRatio,
			BreakerOpenTimeout:  rc.BreakerOpenTimeout,
		},
		RequestsPerSecond: rc.RequestsPerSecond,
		Burst:             rc.Burst,
	}
}
