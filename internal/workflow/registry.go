package workflow

import (
	"sync"
	"time"

	"github.com/skilltree-core-poc/server/internal/workflow/model"
)

// Status tags a planning run in the in-memory registry.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusUnknown    Status = "unknown"
)

// StatusEntry is one registry record. Entries are not persisted: after
// a process restart every session polls back "unknown" until a new
// planning run is kicked off.
type StatusEntry struct {
	Status    Status           `json:"status"`
	Blueprint *model.Blueprint `json:"blueprint,omitempty"`
	Forced    bool             `json:"forced,omitempty"`
	Message   string           `json:"message,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// StatusRegistry is a concurrent-safe in-memory map of session id to
// planning status. It is injected into the engine at construction so
// its lifecycle is tied to the process, not to package import.
type StatusRegistry struct {
	mu      sync.RWMutex
	entries map[string]StatusEntry
}

func NewStatusRegistry() *StatusRegistry {
	return &StatusRegistry{entries: make(map[string]StatusEntry)}
}

// Set overwrites the entry for the session.
func (r *StatusRegistry) Set(sessionID string, entry StatusEntry) {
	entry.UpdatedAt = time.Now().UTC()
	r.mu.Lock()
	r.entries[sessionID] = entry
	r.mu.Unlock()
}

// Get returns the entry for the session. Missing sessions report
// StatusUnknown; repeated polls of a terminal entry return the
// identical record until a new planning run overwrites it.
func (r *StatusRegistry) Get(sessionID string) StatusEntry {
	r.mu.RLock()
	entry, ok := r.entries[sessionID]
	r.mu.RUnlock()
	if !ok {
		return StatusEntry{Status: StatusUnknown}
	}
	return entry
}
