package main

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mnemon/mnemon/pkg/config"
)

func TestServerLifecycle(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &config.AppConfig{}
	if err := yaml.Unmarshal([]byte("server:\n  port: 0\n"), cfg); err != nil {
		t.Fatalf("build config: %v", err)
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	if err := server.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if server.port == 0 {
		t.Fatalf("Start() did not record the bound port")
	}

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", server.port))
	if err != nil {
		t.Fatalf("health request error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", resp.StatusCode)
	}

	// A clean shutdown must resolve the error channel instead of leaving a
	// reader blocked or an error unread.
	cancel()
	select {
	case err, ok := <-server.Err():
		if ok && err != nil {
			t.Fatalf("Err() after shutdown = %v, want clean close", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Err() not resolved after shutdown")
	}
}
