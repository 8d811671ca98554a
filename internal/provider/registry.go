package provider

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/inkwell-labs/inkwell-core/internal/config"
	"github.com/inkwell-labs/inkwell-core/internal/types"
)

// Registry manages provider adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

func (r *Registry) Register(name string, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[name] = adapter
}

func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// BuildFromConfig builds provider adapters from the providers config.
func BuildFromConfig(provCfg *config.ProvidersConfig) *Registry {
	registry := NewRegistry()
	for name, cfg := range provCfg.Providers {
		client := &http.Client{
			Timeout: cfg.ClientTimeout(),
			Transport: &http.Transport{
				MaxIdleConns:        cfg.MaxConcurrent,
				MaxIdleConnsPerHost: cfg.MaxConcurrent,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		}

		var adapter Adapter
		switch cfg.Type {
		case "anthropic":
			adapter = NewAnthropicAdapter(cfg, client)
		default:
			// OpenAI-compatible is the canonical fallback.
			adapter = NewOpenAIAdapter(cfg, client)
		}
		registry.Register(name, adapter)
	}
	return registry
}

// Router resolves logical model names to healthy provider adapters. The
// models function is consulted on every call so config hot reloads take
// effect without rebinding.
type Router struct {
	registry *Registry
	models   func() *config.ModelsConfig
	health   *HealthTracker
}

func NewRouter(registry *Registry, models func() *config.ModelsConfig, health *HealthTracker) *Router {
	return &Router{registry: registry, models: models, health: health}
}

// Bind returns a Generator fixed to a logical model name. Resolution
// happens per call, so a bound generator survives registry reloads.
func (r *Router) Bind(model string) Generator {
	return &boundGenerator{router: r, model: model}
}

// resolve finds the first healthy route for a logical model. The
// returned provider name is the registry key from providers.yaml, which
// is also the health-tracking key; adapter.Name() only identifies the
// wire format.
func (r *Router) resolve(model string) (Adapter, string, string, error) {
	modelsCfg := r.models()
	if modelsCfg == nil {
		return nil, "", "", fmt.Errorf("no models configured")
	}
	mapping, ok := modelsCfg.Models[model]
	if !ok {
		return nil, "", "", fmt.Errorf("unknown model: %s", model)
	}

	routes := append([]config.ProviderRoute{mapping.Primary}, mapping.Fallback...)
	for _, route := range routes {
		adapter, ok := r.registry.Get(route.Provider)
		if !ok {
			continue
		}
		if r.health != nil && !r.health.IsAvailable(route.Provider) {
			continue
		}
		return adapter, route.Provider, route.Model, nil
	}

	return nil, "", "", fmt.Errorf("no available provider for model: %s", model)
}

type boundGenerator struct {
	router *Router
	model  string
}

func (g *boundGenerator) Name() string { return g.model }

func (g *boundGenerator) Generate(ctx context.Context, messages []types.ChatMessage, opts GenerateOptions) (GenerateResult, error) {
	adapter, providerName, providerModel, err := g.router.resolve(g.model)
	if err != nil {
		return GenerateResult{}, err
	}

	result, err := adapter.Complete(ctx, providerModel, messages, opts)
	if g.router.health != nil {
		if err != nil {
			g.router.health.RecordFailure(providerName)
		} else {
			g.router.health.RecordSuccess(providerName)
		}
	}
	if err != nil {
		return GenerateResult{}, fmt.Errorf("generate via %s: %w", providerName, err)
	}
	return result, nil
}
