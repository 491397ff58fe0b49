package model

import "time"

// Document holds a document's metadata. Content lives in object storage and
// is addressed through the document's versions; a persisted document always
// has at least one version.
// This is a pure domain model with no database-specific dependencies or tags.
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	Categories  []string  `json:"categories"`
	Tags        []string  `json:"tags"`
	UploadedOn  time.Time `json:"uploaded_on"`
}

// DocumentVersion is one immutable revision of a document. Version numbers
// are scoped to the parent document, start at 1 and strictly increase; a
// version row is never updated after creation.
type DocumentVersion struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	VersionNumber int       `json:"version_number"`
	StoragePath   string    `json:"storage_path"`
	Size          int64     `json:"size"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	Comment       string    `json:"comment"`
}
