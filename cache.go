package depot

var _ Cache[any] = &SimpleCache[any]{}

func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *SimpleCache[T]) GetItem(index int) *T {
	item := &c.items[index]
	return item
}

func (c *SimpleCache[T]) GetItem32(index uint32) *T {
	item := &c.items[index]
	return item
}

// Register appends item under key. Indices are dense and start at zero.
func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if len(c.items) >= c.maxCapacity {
		return -1, CatalogFullError{Capacity: c.maxCapacity}
	}
	if _, exists := c.itemIndices[key]; exists {
		return -1, ComponentTypeExistsError{Name: key}
	}

	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)

	return idx, nil
}

// Forget drops the key but keeps its slot, so indices handed out earlier
// never shift or get reused.
func (c *SimpleCache[T]) Forget(key string) bool {
	idx, ok := c.itemIndices[key]
	if !ok {
		return false
	}
	var zero T
	c.items[idx] = zero
	delete(c.itemIndices, key)
	return true
}

// Len returns the number of slots handed out, forgotten ones included.
func (c *SimpleCache[T]) Len() int {
	return len(c.items)
}
