package service

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mnemon/mnemon/pkg/models"
	"github.com/mnemon/mnemon/pkg/utils"
)

// ProviderService manages the upstream model endpoint registry. Entries are
// persisted as a single JSON document and keyed by server-assigned UUID.
type ProviderService struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewProviderService(path string) *ProviderService {
	return &ProviderService{
		path:   path,
		logger: utils.GetLogger(),
	}
}

// List returns every registered endpoint with its API key masked.
func (s *ProviderService) List() (map[string]*models.ProviderConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	providers, err := models.LoadProviders(s.path)
	if err != nil {
		return nil, err
	}
	for _, cfg := range providers {
		cfg.ApiKey = utils.MaskSensitiveString(cfg.ApiKey)
	}
	return providers, nil
}

// Get returns a single endpoint with its API key masked.
func (s *ProviderService) Get(id string) (*models.ProviderConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadOne(id)
	if err != nil {
		return nil, err
	}
	cfg.ApiKey = utils.MaskSensitiveString(cfg.ApiKey)
	return cfg, nil
}

// Resolve returns the full endpoint record, API key included. Callers must
// not hand the result back to clients.
func (s *ProviderService) Resolve(id string) (*models.ProviderConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadOne(id)
}

// Set creates or replaces an endpoint. An empty id registers a new entry and
// returns the generated one.
func (s *ProviderService) Set(id string, cfg models.ProviderConfig) (string, error) {
	if _, ok := models.SupportedProviders[cfg.Provider]; !ok {
		return "", fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
	if cfg.Model == "" {
		return "", fmt.Errorf("model name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	providers, err := models.LoadProviders(s.path)
	if err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.New().String()
	}
	providers[id] = &cfg
	if err := models.SaveProviders(s.path, providers); err != nil {
		return "", err
	}
	s.logger.Info("provider endpoint saved", "id", id, "provider", cfg.Provider, "model", cfg.Model)
	return id, nil
}

func (s *ProviderService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	providers, err := models.LoadProviders(s.path)
	if err != nil {
		return err
	}
	if _, ok := providers[id]; !ok {
		return fmt.Errorf("provider %q not found", id)
	}
	delete(providers, id)
	if err := models.SaveProviders(s.path, providers); err != nil {
		return err
	}
	s.logger.Info("provider endpoint removed", "id", id)
	return nil
}

func (s *ProviderService) loadOne(id string) (*models.ProviderConfig, error) {
	providers, err := models.LoadProviders(s.path)
	if err != nil {
		return nil, err
	}
	cfg, ok := providers[id]
	if !ok {
		return nil, fmt.Errorf("provider %q not found", id)
	}
	return cfg, nil
}
