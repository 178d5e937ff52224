package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mnemon/mnemon/pkg/utils"
)

// APIKeyService holds the single access key protecting the HTTP surface.
// On first start a key is generated, persisted, and printed to the log so
// the operator can copy it into clients.
type APIKeyService struct {
	key string
}

func NewAPIKeyService(path string) (*APIKeyService, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		key := strings.TrimSpace(string(data))
		if key != "" {
			return &APIKeyService{key: key}, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read api key: %w", err)
	}

	key := uuid.New().String()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(key+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write api key: %w", err)
	}
	utils.GetLogger().Info("generated new api key", "key", key, "path", path)
	return &APIKeyService{key: key}, nil
}

func (s *APIKeyService) Validate(candidate string) bool {
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(s.key)) == 1
}
