package prompts

import (
	"testing"
	"time"

	"github.com/koereq/docpipeline/internal/models"
	"github.com/koereq/docpipeline/internal/store"
)

func TestPresetsAreFixed(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}
	m := NewManager(st)

	presets := m.Presets()
	if len(presets) != 3 {
		t.Fatalf("expected 3 presets, got %d", len(presets))
	}
	if presets[0].Name != "紹介状" {
		t.Errorf("presets[0].Name = %s", presets[0].Name)
	}
}

func TestCustomReflectsStore(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}
	m := NewManager(st)

	if got := m.Custom(); len(got) != 0 {
		t.Fatalf("expected no custom prompts, got %d", len(got))
	}

	p := models.CustomPrompt{ID: "c1", Name: "請求書", Prompt: "金額を一覧化", CreatedAt: time.Now().UTC()}
	if err := m.Save(p); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got := m.Custom()
	if len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("Custom() = %+v", got)
	}
}
