package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"manhwaverse/pkg/engine/logger"
	"manhwaverse/pkg/engine/network"
	"manhwaverse/pkg/engine/scraper"
	"manhwaverse/pkg/provider"
)

// Engine is the central component providing shared services to the
// source extractors and holding the provider registry.
type Engine struct {
	Network *network.Client
	Scraper *scraper.Service
	Logger  logger.Logger

	providers     map[string]provider.Provider
	providerOrder []string
	providerMutex sync.RWMutex
}

// New creates a new Engine with default configuration
func New() *Engine {
	logFile := ""
	if homeDir, err := os.UserHomeDir(); err == nil {
		logDir := filepath.Join(homeDir, ".manhwaverse", "logs")
		if err := os.MkdirAll(logDir, 0755); err == nil {
			logFile = filepath.Join(logDir, "manhwaverse.log")
		}
	}

	log := logger.NewService(logFile)
	networkClient := network.NewClient(log)
	scraperService := scraper.NewService(networkClient, log)

	engine := &Engine{
		Network:   networkClient,
		Scraper:   scraperService,
		Logger:    log,
		providers: make(map[string]provider.Provider),
	}

	log.Info("Engine initialized")
	return engine
}

// RegisterProvider adds a provider to the registry
func (e *Engine) RegisterProvider(p provider.Provider) error {
	if p == nil {
		return fmt.Errorf("provider is nil")
	}

	e.providerMutex.Lock()
	defer e.providerMutex.Unlock()

	id := p.ID()
	if id == "" {
		return fmt.Errorf("provider has empty ID")
	}
	if _, exists := e.providers[id]; exists {
		return fmt.Errorf("provider with ID '%s' already registered", id)
	}

	e.providers[id] = p
	e.providerOrder = append(e.providerOrder, id)
	e.Logger.Info("Registered provider: %s (%s)", p.Name(), id)
	return nil
}

// GetProvider retrieves a registered provider by ID
func (e *Engine) GetProvider(id string) (provider.Provider, error) {
	e.providerMutex.RLock()
	defer e.providerMutex.RUnlock()

	p, exists := e.providers[id]
	if !exists {
		return nil, fmt.Errorf("provider '%s' not found (available: %v)", id, e.providerOrder)
	}
	return p, nil
}

// GetProviderOrNil retrieves a provider or returns nil if not found
func (e *Engine) GetProviderOrNil(id string) provider.Provider {
	e.providerMutex.RLock()
	defer e.providerMutex.RUnlock()
	return e.providers[id]
}

// AllProviders returns all registered providers in registration order.
func (e *Engine) AllProviders() []provider.Provider {
	e.providerMutex.RLock()
	defer e.providerMutex.RUnlock()

	providers := make([]provider.Provider, 0, len(e.providers))
	for _, id := range e.providerOrder {
		providers = append(providers, e.providers[id])
	}
	return providers
}

// ProviderForURL finds the provider whose site owns rawURL, used to
// auto-detect the source when a request carries only a URL.
func (e *Engine) ProviderForURL(rawURL string) provider.Provider {
	for _, p := range e.AllProviders() {
		if owner, ok := p.(interface{ Owns(string) bool }); ok && owner.Owns(rawURL) {
			return p
		}
	}
	return nil
}

// ProviderCount returns the number of registered providers
func (e *Engine) ProviderCount() int {
	e.providerMutex.RLock()
	defer e.providerMutex.RUnlock()
	return len(e.providers)
}

// SetDebugMode lowers the log level and mirrors log output to the
// console.
func (e *Engine) SetDebugMode(enabled bool) {
	service, _ := e.Logger.(*logger.Service)
	if enabled {
		e.Logger.SetLevel(logger.LevelDebug)
		if service != nil {
			service.SetConsoleOutput(true)
		}
		e.Logger.Debug("Debug mode enabled")
	} else {
		e.Logger.SetLevel(logger.LevelInfo)
		if service != nil {
			service.SetConsoleOutput(false)
		}
	}
}

// Shutdown gracefully shuts down the engine
func (e *Engine) Shutdown() error {
	e.Logger.Info("Shutting down engine...")

	if closer, ok := e.Logger.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
