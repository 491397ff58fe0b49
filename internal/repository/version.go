package repository

import (
	"context"

	"dms/internal/model"
)

// VersionRepository defines data access for document versions. Versions are
// append-only: there is no update statement by design of the schema.
type VersionRepository interface {
	// Add inserts a version row. Returns ErrDuplicateVersion when the
	// (document_id, version_number) unique constraint rejects the insert.
	Add(ctx context.Context, v *model.DocumentVersion) (*model.DocumentVersion, error)

	// FindByID returns a version by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.DocumentVersion, error)

	// ListByDocumentID returns a document's versions, version number descending.
	ListByDocumentID(ctx context.Context, documentID string) ([]model.DocumentVersion, error)

	// ListByDocumentIDs batch-loads versions for a set of documents in one
	// query, keyed by document id, each slice version number descending.
	// An empty input yields an empty map, not an error.
	ListByDocumentIDs(ctx context.Context, documentIDs []string) (map[string][]model.DocumentVersion, error)

	// MaxVersionNumber returns the highest version number stored for the
	// document, or 0 when it has none.
	MaxVersionNumber(ctx context.Context, documentID string) (int, error)

	// DeleteByDocumentID removes all version rows of a document.
	DeleteByDocumentID(ctx context.Context, documentID string) error
}
