package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

// Store defines persistence operations for plugin settings.
type Store interface {
	Load() (domain.Settings, error)
	Save(domain.Settings) error
}

// FileStore persists settings in a single file. The encoding follows the
// file extension: .json, .toml, anything else is YAML.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load overlays the persisted values on top of Defaults. A missing file
// yields the defaults.
func (s *FileStore) Load() (domain.Settings, error) {
	cfg := Defaults()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return domain.Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	switch s.format() {
	case "json":
		err = json.Unmarshal(data, &cfg)
	case "toml":
		_, err = toml.Decode(string(data), &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("parsing settings %s: %w", s.path, err)
	}

	return cfg, nil
}

func (s *FileStore) Save(cfg domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch s.format() {
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	case "toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	default:
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

func (s *FileStore) format() string {
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return "yaml"
	}
}

// MemoryStore keeps settings in memory. Used when no settings path is
// configured and in tests.
type MemoryStore struct {
	data  *domain.Settings
	Saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (domain.Settings, error) {
	if m.data == nil {
		return Defaults(), nil
	}
	return *m.data, nil
}

func (m *MemoryStore) Save(cfg domain.Settings) error {
	m.data = &cfg
	m.Saves++
	return nil
}
