// Package candidates holds the most recent wireless scan result and the
// cursor of the candidate currently shown to the user.
package candidates

import "sync"

// Cycler keeps 0 <= index < len(candidates) whenever the list is non-empty.
// With an empty list no candidate is selectable and the cursor is inert.
type Cycler struct {
	candidates []string
	index      int
	mu         sync.Mutex
}

func NewCycler() *Cycler {
	return &Cycler{}
}

// Replace installs a new scan result. The cursor stays where it was if it is
// still in range, otherwise it goes back to the first candidate.
func (c *Cycler) Replace(candidates []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.candidates = append([]string(nil), candidates...)
	if c.index >= len(c.candidates) {
		c.index = 0
	}
}

// Current returns the selected candidate, or false when the list is empty.
func (c *Cycler) Current() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current()
}

// Advance moves to the next candidate, wrapping around. With one candidate or
// none it is a no-op returning the existing selection.
func (c *Cycler) Advance() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.candidates) > 1 {
		c.index = (c.index + 1) % len(c.candidates)
	}
	return c.current()
}

// Candidates returns a copy of the current scan result.
func (c *Cycler) Candidates() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.candidates...)
}

// Index returns the cursor position. Meaningless when Len is zero.
func (c *Cycler) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

func (c *Cycler) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.candidates)
}

func (c *Cycler) current() (string, bool) {
	if len(c.candidates) == 0 {
		return "", false
	}
	return c.candidates[c.index], true
}

// Snapshot returns the selected candidate with its position in one step. ssid
// is empty and total is zero when there is nothing to select.
func (c *Cycler) Snapshot() (ssid string, index, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ssid, _ = c.current()
	return ssid, c.index, len(c.candidates)
}
