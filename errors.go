package depot

import "fmt"

type RestrictedStorageError struct{}

func (e RestrictedStorageError) Error() string {
	return "storage is restricted"
}

type LockedStorageError struct{}

func (e LockedStorageError) Error() string {
	return "storage is currently locked"
}

// ViewError is returned when an operation reserved for the root storage is
// attempted on a split view.
type ViewError struct {
	Op string
}

func (e ViewError) Error() string {
	return fmt.Sprintf("%s is not permitted on a split view", e.Op)
}

type ComponentTypeNotFoundError struct {
	ID TypeID
}

func (e ComponentTypeNotFoundError) Error() string {
	return fmt.Sprintf("component type %d doesn't exist", e.ID)
}

type ComponentTypeUnregisteredError struct {
	Type string
}

func (e ComponentTypeUnregisteredError) Error() string {
	return fmt.Sprintf("component type %s is not registered", e.Type)
}

type ComponentTypeExistsError struct {
	Name string
}

func (e ComponentTypeExistsError) Error() string {
	return fmt.Sprintf("component type already exists: %s", e.Name)
}

type ComponentTypeLockedError struct {
	Name string
}

func (e ComponentTypeLockedError) Error() string {
	return fmt.Sprintf("component type is locked: %s", e.Name)
}

type ComponentTypeReadOnlyError struct {
	Name string
}

func (e ComponentTypeReadOnlyError) Error() string {
	return fmt.Sprintf("component type is read-only: %s", e.Name)
}

type SingularComponentError struct {
	Name  string
	Count int
}

func (e SingularComponentError) Error() string {
	return fmt.Sprintf("component type %s is singular (%d instances)", e.Name, e.Count)
}

type CatalogFullError struct {
	Capacity int
}

func (e CatalogFullError) Error() string {
	return fmt.Sprintf("component catalog at maximum capacity (%d)", e.Capacity)
}

type EntityNotFoundError struct {
	Handle Handle
}

func (e EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity doesn't exist: %d", e.Handle)
}

type GUIDNotFoundError struct {
	GUID GUID
}

func (e GUIDNotFoundError) Error() string {
	return fmt.Sprintf("entity GUID doesn't exist: %d", e.GUID)
}

type GUIDExistsError struct {
	GUID GUID
}

func (e GUIDExistsError) Error() string {
	return fmt.Sprintf("entity GUID already exists: %d", e.GUID)
}

type ComponentExistsError struct {
	Name   string
	Handle Handle
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("component already exists on entity %d: %s", e.Handle, e.Name)
}

type ComponentNotFoundError struct {
	Name   string
	Handle Handle
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component does not exist on entity %d: %s", e.Handle, e.Name)
}

// ComponentValueError reports an erased value whose dynamic type does not
// match the registered component type.
type ComponentValueError struct {
	Name string
	Got  string
}

func (e ComponentValueError) Error() string {
	return fmt.Sprintf("value of type %s cannot be stored as %s", e.Got, e.Name)
}

type ComponentSizeError struct {
	Name      string
	Want, Got int
}

func (e ComponentSizeError) Error() string {
	return fmt.Sprintf("component %s expects %d bytes, got %d", e.Name, e.Want, e.Got)
}

type ComponentNotRawError struct {
	Name string
}

func (e ComponentNotRawError) Error() string {
	return fmt.Sprintf("component %s holds pointers and cannot be copied from raw bytes", e.Name)
}

type GrowthFactorError struct {
	Factor float64
}

func (e GrowthFactorError) Error() string {
	return fmt.Sprintf("growth factor must be greater than 1, got %v", e.Factor)
}

type BatchNotFoundError struct {
	ID BatchID
}

func (e BatchNotFoundError) Error() string {
	return fmt.Sprintf("system batch doesn't exist: %d", e.ID)
}

type SystemConflictError struct {
	Group int
}

func (e SystemConflictError) Error() string {
	return fmt.Sprintf("systems in parallel group %d declare overlapping component types", e.Group)
}
