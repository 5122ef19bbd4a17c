package ecs

import (
	"errors"
	"fmt"
)

var (
	ErrComponentNotRegistered = errors.New("component type not registered")
	ErrComponentRegistered    = errors.New("component type already registered")
	ErrResourceExists         = errors.New("resource already exists")
	ErrResourceNotFound       = errors.New("resource not found")
	ErrDuplicateEntity        = errors.New("entity requested more than once")
	ErrComponentMissing       = errors.New("entity lacks component")
)

// ComponentTypeError reports a registry failure for one component type.
type ComponentTypeError struct {
	Type string
	Err  error
}

func (e ComponentTypeError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Type)
}

func (e ComponentTypeError) Unwrap() error { return e.Err }

// ResourceError reports a resource store failure for one resource type.
type ResourceError struct {
	Type string
	Err  error
}

func (e ResourceError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Type)
}

func (e ResourceError) Unwrap() error { return e.Err }

// DuplicateEntityError is returned by GetMany when the same id appears twice.
type DuplicateEntityError struct {
	Entity EntityID
	Type   string
}

func (e DuplicateEntityError) Error() string {
	return fmt.Sprintf("entity %d requested more than once for %s", e.Entity, e.Type)
}

func (e DuplicateEntityError) Unwrap() error { return ErrDuplicateEntity }

// MissingComponentError is returned by GetMany when a requested entity has no
// value in the store.
type MissingComponentError struct {
	Entity EntityID
	Type   string
}

func (e MissingComponentError) Error() string {
	return fmt.Sprintf("entity %d lacks component %s", e.Entity, e.Type)
}

func (e MissingComponentError) Unwrap() error { return ErrComponentMissing }
