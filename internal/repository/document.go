package repository

import (
	"context"

	"dms/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// CreateWithVersion inserts a document and its initial version in a single
	// transaction. A document row without at least one version is an invalid
	// state, so the two inserts must commit or roll back together.
	CreateWithVersion(ctx context.Context, doc *model.Document, first *model.DocumentVersion) (*model.Document, error)

	// FindByID returns a document by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListAll returns every document ordered by (uploaded_on, id) ascending.
	// The filter/pagination engine evaluates predicates over this sequence;
	// the stable ordering keeps its output deterministic.
	ListAll(ctx context.Context) ([]model.Document, error)

	// Update persists mutable metadata (title, description, categories).
	// Owner, tags, id and uploaded_on are never written by this statement.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Delete removes a document by ID. It returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id string) error
}
