package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"dms/internal/model"
	"dms/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Categories and tags are stored as JSONB arrays.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, title, description, owner_id, categories, tags, uploaded_on`

// CreateWithVersion inserts the document and its version 1 in one transaction.
func (r *DocumentPostgres) CreateWithVersion(ctx context.Context, doc *model.Document, first *model.DocumentVersion) (*model.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	categories, err := marshalLabels(doc.Categories)
	if err != nil {
		return nil, err
	}
	tags, err := marshalLabels(doc.Tags)
	if err != nil {
		return nil, err
	}

	const qDoc = `
		INSERT INTO documents (id, title, description, owner_id, categories, tags, uploaded_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + documentColumns
	row := tx.QueryRowContext(ctx, qDoc,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.OwnerID,
		categories,
		tags,
		doc.UploadedOn,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, err
	}

	const qVer = `
		INSERT INTO document_versions (id, document_id, version_number, storage_path, size, created_by, created_at, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, qVer,
		first.ID,
		first.DocumentID,
		first.VersionNumber,
		first.StoragePath,
		first.Size,
		first.CreatedBy,
		first.CreatedAt,
		first.Comment,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// ListAll returns every document ordered by (uploaded_on, id) ascending.
func (r *DocumentPostgres) ListAll(ctx context.Context) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		ORDER BY uploaded_on ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update writes mutable metadata only; tags, owner and uploaded_on stay as stored.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	categories, err := marshalLabels(doc.Categories)
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE documents
		SET title = $2, description = $3, categories = $4
		WHERE id = $1
		RETURNING ` + documentColumns
	return scanDocument(r.db.QueryRowContext(ctx, q, doc.ID, doc.Title, doc.Description, categories))
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d          model.Document
		categories []byte
		tags       []byte
	)
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.OwnerID,
		&categories,
		&tags,
		&d.UploadedOn,
	); err != nil {
		return nil, err
	}
	var err error
	if d.Categories, err = unmarshalLabels(categories); err != nil {
		return nil, err
	}
	if d.Tags, err = unmarshalLabels(tags); err != nil {
		return nil, err
	}
	return &d, nil
}

func marshalLabels(labels []string) ([]byte, error) {
	if labels == nil {
		labels = []string{}
	}
	b, err := json.Marshal(labels)
	if err != nil {
		return nil, fmt.Errorf("marshal labels: %w", err)
	}
	return b, nil
}

func unmarshalLabels(b []byte) ([]string, error) {
	if len(b) == 0 {
		return []string{}, nil
	}
	var labels []string
	if err := json.Unmarshal(b, &labels); err != nil {
		return nil, fmt.Errorf("unmarshal labels: %w", err)
	}
	return labels, nil
}
