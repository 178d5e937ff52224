package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mnemon/mnemon/pkg/models"
	"github.com/mnemon/mnemon/pkg/utils"
)

// CommonPromptName is the shared prefix prompt. It is always present and
// cannot be deleted; every assembled payload starts with it.
const CommonPromptName = "common"

// PromptService manages named system prompts backed by a JSON file.
type PromptService struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewPromptService(path string) *PromptService {
	return &PromptService{
		path:   path,
		logger: utils.GetLogger(),
	}
}

func (s *PromptService) Set(name, text string) error {
	if name == "" {
		return fmt.Errorf("prompt name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.load()
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	entry, ok := prompts[name]
	if !ok {
		entry = models.Prompt{Created: now}
	}
	entry.Text = text
	entry.Updated = now
	prompts[name] = entry
	if err := s.save(prompts); err != nil {
		return err
	}
	s.logger.Info("prompt saved", "name", name, "chars", len(text))
	return nil
}

func (s *PromptService) Get(name string) (*models.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.load()
	if err != nil {
		return nil, err
	}
	entry, ok := prompts[name]
	if !ok {
		return nil, fmt.Errorf("prompt %q not found", name)
	}
	return &entry, nil
}

func (s *PromptService) List() (map[string]models.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *PromptService) Delete(name string) error {
	if name == CommonPromptName {
		return fmt.Errorf("the %s prompt cannot be deleted", CommonPromptName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := prompts[name]; !ok {
		return fmt.Errorf("prompt %q not found", name)
	}
	delete(prompts, name)
	return s.save(prompts)
}

// FullPrompt joins the common prompt with the named conversation prompt.
// Missing entries contribute nothing; the result may be empty.
func (s *PromptService) FullPrompt(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.load()
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, 2)
	if common, ok := prompts[CommonPromptName]; ok && common.Text != "" {
		parts = append(parts, common.Text)
	}
	if name != "" && name != CommonPromptName {
		if specific, ok := prompts[name]; ok && specific.Text != "" {
			parts = append(parts, specific.Text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *PromptService) load() (map[string]models.Prompt, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]models.Prompt{}, nil
		}
		return nil, fmt.Errorf("failed to read prompts: %w", err)
	}
	prompts := map[string]models.Prompt{}
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}
	return prompts, nil
}

func (s *PromptService) save(prompts map[string]models.Prompt) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create prompt directory: %w", err)
	}
	data, err := json.MarshalIndent(prompts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode prompts: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write prompts: %w", err)
	}
	return nil
}
