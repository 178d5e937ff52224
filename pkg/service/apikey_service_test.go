package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAPIKeyGenerateAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_key")

	svc, err := NewAPIKeyService(path)
	if err != nil {
		t.Fatalf("NewAPIKeyService() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("key file not written: %v", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		t.Fatalf("persisted key is empty")
	}
	if !svc.Validate(key) {
		t.Fatalf("Validate(own key) = false")
	}
	if svc.Validate("wrong") || svc.Validate("") {
		t.Fatalf("Validate accepted a bad key")
	}

	reloaded, err := NewAPIKeyService(path)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if !reloaded.Validate(key) {
		t.Fatalf("reloaded service rejects the persisted key")
	}
}
