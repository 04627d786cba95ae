// Package docstore is the document-store boundary of the service. Documents
// are untyped field maps addressed by collection and id; repositories decode
// them into their own models.
package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the addressed document does not exist
	ErrNotFound = errors.New("document not found")
	// ErrTransactionsUnsupported is returned by RunTransaction on deployments
	// without multi-document transactions
	ErrTransactionsUnsupported = errors.New("transactions not supported by store")
)

type unsetField struct{}

// Unset used as a value in Update or in the extra fields of the array
// operations removes that field (dotted paths allowed) instead of writing it.
var Unset any = unsetField{}

// splitUnset separates the fields to write from the paths to remove
func splitUnset(fields map[string]any) (map[string]any, []string) {
	set := make(map[string]any, len(fields))
	var unset []string
	for path, v := range fields {
		if _, ok := v.(unsetField); ok {
			unset = append(unset, path)
			continue
		}
		set[path] = v
	}
	return set, unset
}

// Document is a stored field map plus its id
type Document struct {
	ID     string
	Fields map[string]any
}

// Where is an equality filter on a (possibly dotted) field path
type Where struct {
	Field string
	Value any
}

// Store is the set of primitives the repositories rely on. Every method may
// fail with a transport error; none of them retry.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection string, filters ...Where) ([]Document, error)

	// Set creates or fully replaces a document; Unset values are dropped
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	// Update merges fields (dotted paths allowed) into an existing document
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error

	// ArrayAppend atomically pushes value onto field and merges extra
	ArrayAppend(ctx context.Context, collection, id, field string, value any, extra map[string]any) error
	// ArrayUnion atomically adds value to field unless already present, and merges extra
	ArrayUnion(ctx context.Context, collection, id, field string, value any, extra map[string]any) error
	// ArrayRemove atomically removes every element equal to value, and merges extra
	ArrayRemove(ctx context.Context, collection, id, field string, value any, extra map[string]any) error

	NewID() string

	// RunTransaction executes fn so that either all of its writes are applied
	// or none are. Store calls inside fn must use the context fn receives.
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
