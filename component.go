package depot

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// Component represents a data attribute/state that can be attached to entities
// Components can be used to create queries for entities
//
// The interface is sealed: tokens come from FactoryNewComponent.
type Component interface {
	table.ElementType
	elementType() table.ElementType
	reflectType() reflect.Type
	newColumn(capacity int, growthFactor float64) column
}

// Hook is invoked synchronously right after a component is attached, or right
// before it is detached. value is a pointer to the payload.
type Hook func(sto Storage, h Handle, value any)

// typeInfo is the canonical descriptor of a registered component type. Views
// reference the same descriptor; only the root mutates it.
type typeInfo struct {
	id       TypeID
	name     string
	typ      reflect.Type
	elem     table.ElementType
	bit      uint32
	col      column
	readOnly bool
	singular bool
	holder   *storage
	onAdd    Hook
	onRemove Hook
}
