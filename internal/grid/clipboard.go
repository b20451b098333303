package grid

import "sync"

// Clipboard is a single-slot attribute buffer. Copy overwrites the slot;
// Paste reads it without clearing.
type Clipboard struct {
	mu   sync.RWMutex
	data *Attributes
}

// Copy stores attrs in the slot
func (c *Clipboard) Copy(attrs Attributes) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = &attrs
}

// Paste returns the stored tuple, or false when nothing was ever copied
func (c *Clipboard) Paste() (Attributes, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return Attributes{}, false
	}
	return *c.data, true
}

// HasData reports whether the slot holds a tuple with a gift
func (c *Clipboard) HasData() bool {
	attrs, ok := c.Paste()
	return ok && attrs.HasGift()
}

// Clear empties the slot
func (c *Clipboard) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
}
