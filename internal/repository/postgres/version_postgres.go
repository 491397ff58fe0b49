package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"dms/internal/model"
	"dms/internal/repository"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

// VersionPostgres is a PostgreSQL implementation of repository.VersionRepository.
type VersionPostgres struct {
	db *sql.DB
}

// NewVersionPostgres creates a new VersionPostgres repository.
func NewVersionPostgres(db *sql.DB) *VersionPostgres {
	return &VersionPostgres{db: db}
}

var _ repository.VersionRepository = (*VersionPostgres)(nil)

const versionColumns = `id, document_id, version_number, storage_path, size, created_by, created_at, comment`

// Add inserts a version row. A unique violation on
// (document_id, version_number) is mapped to repository.ErrDuplicateVersion.
func (r *VersionPostgres) Add(ctx context.Context, v *model.DocumentVersion) (*model.DocumentVersion, error) {
	const q = `
		INSERT INTO document_versions (id, document_id, version_number, storage_path, size, created_by, created_at, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + versionColumns
	row := r.db.QueryRowContext(ctx, q,
		v.ID,
		v.DocumentID,
		v.VersionNumber,
		v.StoragePath,
		v.Size,
		v.CreatedBy,
		v.CreatedAt,
		v.Comment,
	)
	out, err := scanVersion(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, repository.ErrDuplicateVersion
		}
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single version by its ID.
func (r *VersionPostgres) FindByID(ctx context.Context, id string) (*model.DocumentVersion, error) {
	const q = `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE id = $1
	`
	return scanVersion(r.db.QueryRowContext(ctx, q, id))
}

// ListByDocumentID returns a document's versions, newest number first.
func (r *VersionPostgres) ListByDocumentID(ctx context.Context, documentID string) ([]model.DocumentVersion, error) {
	const q = `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = $1
		ORDER BY version_number DESC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVersions(rows)
}

// ListByDocumentIDs batch-loads versions for the given documents in one query.
func (r *VersionPostgres) ListByDocumentIDs(ctx context.Context, documentIDs []string) (map[string][]model.DocumentVersion, error) {
	out := make(map[string][]model.DocumentVersion, len(documentIDs))
	if len(documentIDs) == 0 {
		return out, nil
	}

	const q = `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = ANY($1)
		ORDER BY document_id, version_number DESC
	`
	rows, err := r.db.QueryContext(ctx, q, documentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions, err := collectVersions(rows)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		out[v.DocumentID] = append(out[v.DocumentID], v)
	}
	return out, nil
}

// MaxVersionNumber returns the highest stored version number, or 0.
func (r *VersionPostgres) MaxVersionNumber(ctx context.Context, documentID string) (int, error) {
	const q = `
		SELECT COALESCE(MAX(version_number), 0)
		FROM document_versions
		WHERE document_id = $1
	`
	var max int
	if err := r.db.QueryRowContext(ctx, q, documentID).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

// DeleteByDocumentID removes all version rows of a document.
func (r *VersionPostgres) DeleteByDocumentID(ctx context.Context, documentID string) error {
	const q = `DELETE FROM document_versions WHERE document_id = $1`
	_, err := r.db.ExecContext(ctx, q, documentID)
	return err
}

func scanVersion(row rowScanner) (*model.DocumentVersion, error) {
	var v model.DocumentVersion
	if err := row.Scan(
		&v.ID,
		&v.DocumentID,
		&v.VersionNumber,
		&v.StoragePath,
		&v.Size,
		&v.CreatedBy,
		&v.CreatedAt,
		&v.Comment,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVersions(rows *sql.Rows) ([]model.DocumentVersion, error) {
	items := make([]model.DocumentVersion, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
