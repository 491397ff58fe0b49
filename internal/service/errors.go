package service

import (
	"database/sql"
	"errors"
	"fmt"
)

// Error kinds surfaced by the services. Callers match with errors.Is; the
// HTTP layer maps each kind to a response status. Repository-level
// sql.ErrNoRows never crosses the service boundary.
var (
	// ErrNotFound marks a missing document, version, user or notification.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks malformed input: empty or oversized content,
	// a version belonging to another document, a missing required field.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a version-number collision between concurrent
	// appends. The version store retries once before surfacing it.
	ErrConflict = errors.New("conflict")
	// ErrStorage marks a blob read/write failure for content whose record
	// exists, distinct from the record itself being absent.
	ErrStorage = errors.New("storage failure")
)

// notFound wraps ErrNotFound with the entity and id that were looked up.
func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}

// mapNoRows converts repository row-miss errors into the service taxonomy.
func mapNoRows(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(entity, id)
	}
	return err
}
