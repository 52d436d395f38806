package app

import (
	"sync"

	"github.com/example/formcraft/internal/ports/secondary"
)

// DirectCanvas holds controls installed by a direct import. It never
// touches the store or the sync engine's projection.
type DirectCanvas struct {
	mu       sync.RWMutex
	controls []*secondary.ControlRecord
}

// NewDirectCanvas creates an empty canvas.
func NewDirectCanvas() *DirectCanvas {
	return &DirectCanvas{}
}

// Install replaces the canvas contents.
func (c *DirectCanvas) Install(controls []*secondary.ControlRecord) {
	copied := make([]*secondary.ControlRecord, 0, len(controls))
	for _, r := range controls {
		copied = append(copied, r.Clone())
	}

	c.mu.Lock()
	c.controls = copied
	c.mu.Unlock()
}

// Controls returns a copy of the canvas contents.
func (c *DirectCanvas) Controls() []*secondary.ControlRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*secondary.ControlRecord, 0, len(c.controls))
	for _, r := range c.controls {
		out = append(out, r.Clone())
	}
	return out
}

// Len returns the number of controls on the canvas.
func (c *DirectCanvas) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.controls)
}

// Clear empties the canvas.
func (c *DirectCanvas) Clear() {
	c.mu.Lock()
	c.controls = nil
	c.mu.Unlock()
}
