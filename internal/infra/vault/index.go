package vault

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

// Index lists the files of a vault directory by display name. Hidden
// directories such as .obsidian and .git are skipped.
type Index struct {
	root   string
	logger *slog.Logger

	mu    sync.RWMutex
	files []domain.FileRef
}

func NewIndex(root string, logger *slog.Logger) *Index {
	return &Index{root: root, logger: logger}
}

func (x *Index) Root() string {
	return x.root
}

// Refresh rescans the vault.
func (x *Index) Refresh() error {
	var files []domain.FileRef

	err := filepath.WalkDir(x.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != x.root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(x.root, path)
		if err != nil {
			return err
		}
		files = append(files, domain.FileRef{Name: d.Name(), Path: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning vault %s: %w", x.root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	x.mu.Lock()
	x.files = files
	x.mu.Unlock()

	x.logger.Debug("vault indexed", "root", x.root, "files", len(files))
	return nil
}

func (x *Index) Files() []domain.FileRef {
	x.mu.RLock()
	defer x.mu.RUnlock()
	result := make([]domain.FileRef, len(x.files))
	copy(result, x.files)
	return result
}

// ReadBinary reads the whole file. Paths escaping the vault are rejected.
func (x *Index) ReadBinary(ctx context.Context, file domain.FileRef) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := x.resolve(file.Path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", file.Path, err)
	}
	return data, nil
}

func (x *Index) resolve(rel string) (string, error) {
	path := filepath.Join(x.root, filepath.FromSlash(rel))
	back, err := filepath.Rel(x.root, path)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the vault", rel)
	}
	return path, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
