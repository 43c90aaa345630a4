package depot

import "github.com/TheBitDrifter/table"

type factory struct{}

var Factory factory

// NewStorage creates a root storage configured from the global Config
func (f factory) NewStorage(schema table.Schema) Storage {
	return newStorage(schema, Options{})
}

// NewStorageWithOptions creates a root storage; zero fields of opts fall back to Config
func (f factory) NewStorageWithOptions(schema table.Schema, opts Options) Storage {
	return newStorage(schema, opts)
}

func (f factory) NewQuery() Query {
	return newQuery()
}

func (f factory) NewCursor(query QueryNode, storage Storage) *Cursor {
	return newCursor(query, storage)
}

func FactoryNewComponent[T any]() AccessibleComponent[T] {
	return AccessibleComponent[T]{
		ElementType: table.FactoryNewElementType[T](),
	}
}

func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}
