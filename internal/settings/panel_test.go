package settings

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestPanelFieldsReflectHolder(t *testing.T) {
	holder := NewHolder(NewMemoryStore())
	if err := holder.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	fields := NewPanel(holder).Fields()
	if len(fields) != 5 {
		t.Fatalf("fields = %d, want 5", len(fields))
	}

	wantKeys := []string{
		"localai_url",
		"transcription_endpoint",
		"transcription_model",
		"text_generation_endpoint",
		"text_generation_model",
	}
	for i, key := range wantKeys {
		if fields[i].Key != key {
			t.Errorf("field %d key = %q, want %q", i, fields[i].Key, key)
		}
	}
	if fields[0].Value != "http://localhost:8080" {
		t.Errorf("url value = %q", fields[0].Value)
	}
	if fields[2].Placeholder != "whisper-1" {
		t.Errorf("model placeholder = %q", fields[2].Placeholder)
	}
}

func TestPanelSetPersistsImmediately(t *testing.T) {
	store := NewMemoryStore()
	holder := NewHolder(store)
	panel := NewPanel(holder)

	if err := panel.Set("transcription_model", "whisper-large-v3"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := panel.Set("localai_url", ""); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if store.Saves != 2 {
		t.Errorf("saves = %d, want 2", store.Saves)
	}
	if got := holder.Get().TranscriptionModel; got != "whisper-large-v3" {
		t.Errorf("holder model = %q", got)
	}
	if got := holder.Get().ServerURL; got != "" {
		t.Errorf("empty values must be accepted, got %q", got)
	}

	persisted, _ := store.Load()
	if persisted.TranscriptionModel != "whisper-large-v3" {
		t.Errorf("persisted model = %q", persisted.TranscriptionModel)
	}
}

func TestPanelSetUnknownField(t *testing.T) {
	panel := NewPanel(NewHolder(NewMemoryStore()))

	err := panel.Set("api_key", "x")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}
}

func TestHolderSurvivesReload(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "settings.yaml"))

	first := NewHolder(store)
	if err := NewPanel(first).Set("text_generation_model", "mistral"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	second := NewHolder(store)
	if err := second.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := second.Get().CompletionModel; got != "mistral" {
		t.Errorf("model = %q, want mistral", got)
	}
	if got := second.Get().ServerURL; got != Defaults().ServerURL {
		t.Errorf("url = %q, want default", got)
	}
}
