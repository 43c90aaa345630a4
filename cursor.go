package depot

import (
	"iter"

	iter_util "github.com/TheBitDrifter/util/iter"
)

var _ iCursor = &Cursor{}

func newCursor(query QueryNode, sto Storage) *Cursor {
	return &Cursor{
		query:   query,
		storage: sto.(*storage),
		handle:  InvalidHandle,
	}
}

// Next advances to the next matching entity. The storage stays locked from
// the first call until Next returns false or Reset is called.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
	}
	if c.entityIndex < len(c.matched) {
		c.handle = c.matched[c.entityIndex]
		c.entityIndex++
		return true
	}
	c.Reset()
	return false
}

// Handle is the entity the cursor currently points at
func (c *Cursor) Handle() Handle {
	return c.handle
}

func (c *Cursor) Entities() iter.Seq2[int, Handle] {
	return func(yield func(int, Handle) bool) {
		c.initialize()

		for c.entityIndex < len(c.matched) {
			i := c.entityIndex
			c.handle = c.matched[i]
			c.entityIndex++
			if !yield(i, c.handle) {
				c.Reset()
				return
			}
		}
		c.Reset()
	}
}

// Handles collects every remaining match
func (c *Cursor) Handles() []Handle {
	return iter_util.Collect(c.handles())
}

func (c *Cursor) handles() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		for _, h := range c.Entities() {
			if !yield(h) {
				return
			}
		}
	}
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.storage.Lock()
	c.matched = c.match()
	c.entityIndex = 0
	c.initialized = true
}

func (c *Cursor) match() []Handle {
	matched := make([]Handle, 0)
	for h, rec := range c.storage.core.entities.dense {
		if c.query.Evaluate(rec.signature, c.storage) {
			matched = append(matched, Handle(h))
		}
	}
	return matched
}

// Reset rewinds the cursor and releases its lock on the storage
func (c *Cursor) Reset() {
	wasInitialized := c.initialized
	c.entityIndex = 0
	c.handle = InvalidHandle
	c.matched = nil
	c.initialized = false
	if wasInitialized {
		c.storage.Unlock()
	}
}

func (c *Cursor) RemainingInStorage() int {
	return len(c.matched) - c.entityIndex
}

func (c *Cursor) TotalMatched() int {
	if c.initialized {
		return len(c.matched)
	}
	return len(c.match())
}
