package service

import (
	"path/filepath"
	"testing"
)

func newPromptFixture(t *testing.T) *PromptService {
	t.Helper()
	return NewPromptService(filepath.Join(t.TempDir(), "prompts.json"))
}

func TestPromptSetGet(t *testing.T) {
	svc := newPromptFixture(t)

	if err := svc.Set("helper", "Be brief."); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := svc.Get("helper")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Text != "Be brief." {
		t.Fatalf("Text = %q, want %q", got.Text, "Be brief.")
	}
	if got.Created == 0 || got.Updated == 0 {
		t.Fatalf("timestamps not set: %+v", got)
	}

	if _, err := svc.Get("missing"); err == nil {
		t.Fatalf("Get(missing) error = nil, want not found")
	}
}

func TestPromptUpdateKeepsCreated(t *testing.T) {
	svc := newPromptFixture(t)

	if err := svc.Set("helper", "v1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	first, _ := svc.Get("helper")
	if err := svc.Set("helper", "v2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	second, _ := svc.Get("helper")
	if second.Created != first.Created {
		t.Fatalf("Created changed on update: %d -> %d", first.Created, second.Created)
	}
	if second.Text != "v2" {
		t.Fatalf("Text = %q, want %q", second.Text, "v2")
	}
}

func TestCommonPromptUndeletable(t *testing.T) {
	svc := newPromptFixture(t)

	if err := svc.Set(CommonPromptName, "always on"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := svc.Delete(CommonPromptName); err == nil {
		t.Fatalf("Delete(common) error = nil, want refusal")
	}

	if err := svc.Set("extra", "x"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := svc.Delete("extra"); err != nil {
		t.Fatalf("Delete(extra) error = %v", err)
	}
	if err := svc.Delete("extra"); err == nil {
		t.Fatalf("second Delete(extra) error = nil, want not found")
	}
}

func TestFullPrompt(t *testing.T) {
	svc := newPromptFixture(t)

	if err := svc.Set(CommonPromptName, "common part"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := svc.Set("travel", "travel part"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"common plus specific", "travel", "common part\n\ntravel part"},
		{"common only ref", CommonPromptName, "common part"},
		{"unknown ref falls back", "missing", "common part"},
		{"empty ref", "", "common part"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.FullPrompt(tc.ref)
			if err != nil {
				t.Fatalf("FullPrompt(%q) error = %v", tc.ref, err)
			}
			if got != tc.want {
				t.Fatalf("FullPrompt(%q) = %q, want %q", tc.ref, got, tc.want)
			}
		})
	}
}
