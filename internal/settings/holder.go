package settings

import (
	"fmt"
	"sync"

	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

// Holder owns the live settings value. Commands read a snapshot on every
// invocation, so an update is visible to the next command without a reload.
type Holder struct {
	store Store

	// writeMu serializes Update so saves reach the store in order.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current domain.Settings
}

func NewHolder(store Store) *Holder {
	return &Holder{store: store, current: Defaults()}
}

// Load replaces the live value with what the store holds.
func (h *Holder) Load() error {
	cfg, err := h.store.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	h.mu.Lock()
	h.current = cfg
	h.mu.Unlock()
	return nil
}

func (h *Holder) Get() domain.Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Update applies fn to the live value and persists the result. The live
// value changes only once the store has accepted it.
func (h *Holder) Update(fn func(*domain.Settings)) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	next := h.Get()
	fn(&next)

	if err := h.store.Save(next); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	h.mu.Lock()
	h.current = next
	h.mu.Unlock()
	return nil
}
