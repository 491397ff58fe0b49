package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"dms/internal/model"
	"dms/internal/repository"
	"dms/internal/storage"
)

// Blob is an incoming file: a stream plus the metadata the caller knows
// about it. Size must be the exact byte count.
type Blob struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// CreateDocumentInput carries the metadata for a new document.
type CreateDocumentInput struct {
	Title       string
	Description string
	Categories  []string
	Tags        []string
}

// UpdateDocumentInput carries the mutable metadata of an existing document.
// Tags, owner, id and uploadedOn are immutable through updates.
type UpdateDocumentInput struct {
	Title       string
	Description string
	Categories  []string
}

// DocumentDetail is the service-level DTO for a single document, enriched
// with its version list (descending) and latest-version derived fields.
type DocumentDetail struct {
	model.Document
	OwnerName    string                  `json:"owner_name"`
	VersionCount int                     `json:"version_count"`
	Size         int64                   `json:"size"`
	Path         string                  `json:"path"`
	Versions     []model.DocumentVersion `json:"versions,omitempty"`
}

// Notifier is the fire-and-forget notification port the document service
// publishes to. Delivery failures never reach the document service's callers.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string, typ model.NotificationType, documentID string)
}

// DocumentService defines the use cases for documents and their versions.
// Access control is the gateway's responsibility: every operation that needs
// an owner or creator takes an explicit actor id, and none of them check
// permissions.
type DocumentService interface {
	// Create validates the blob, uploads it, and creates the document together
	// with version 1 in a single DB transaction. Storage is rolled back if the
	// DB insert fails.
	Create(ctx context.Context, in CreateDocumentInput, blob Blob, actorID string) (*DocumentDetail, error)

	// Get returns a document with its full version list, newest number first,
	// and Path set to the latest version's storage locator.
	Get(ctx context.Context, id string) (*DocumentDetail, error)

	// Query evaluates the filter set over the whole corpus and returns one
	// page; see QueryParams for the predicate semantics.
	Query(ctx context.Context, params QueryParams) (*DocumentPage, error)

	// Update rewrites title, description and categories only.
	Update(ctx context.Context, id string, in UpdateDocumentInput) (*DocumentDetail, error)

	// Delete removes the document, all its versions, and best-effort their
	// blobs. A failed blob delete is logged but never fails the cascade.
	Delete(ctx context.Context, id string) error

	// AddVersion appends a new version with the next number for the document.
	AddVersion(ctx context.Context, id string, blob Blob, comment, actorID string) (*model.DocumentVersion, error)

	// ListVersions returns the document's versions, version number descending.
	ListVersions(ctx context.Context, id string) ([]model.DocumentVersion, error)

	// GetLatest returns the version with the highest number.
	GetLatest(ctx context.Context, id string) (*model.DocumentVersion, error)

	// Revert appends a new version that points at the target version's
	// content, so history stays append-only and "current" remains "latest".
	Revert(ctx context.Context, id, versionID, actorID string) (*model.DocumentVersion, error)

	// Download streams the latest version's content.
	Download(ctx context.Context, id string) (io.ReadCloser, *model.DocumentVersion, error)

	// DownloadVersion streams a specific version's content.
	DownloadVersion(ctx context.Context, id, versionID string) (io.ReadCloser, *model.DocumentVersion, error)

	// PresignVersion returns a time-limited URL for a version's content, so
	// clients can fetch large blobs straight from object storage.
	PresignVersion(ctx context.Context, id, versionID string) (string, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store    storage.Storage
	docs     repository.DocumentRepository
	versions repository.VersionRepository
	users    repository.UserRepository
	notifier Notifier
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	store storage.Storage,
	docs repository.DocumentRepository,
	versions repository.VersionRepository,
	users repository.UserRepository,
	notifier Notifier,
) DocumentService {
	return &documentService{store: store, docs: docs, versions: versions, users: users, notifier: notifier}
}

func (s *documentService) Create(ctx context.Context, in CreateDocumentInput, blob Blob, actorID string) (*DocumentDetail, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}
	if err := s.store.Validate(blob.Reader, blob.Size); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, mapNoRows(err, "user", actorID)
	}

	key, info, err := s.putBlob(ctx, blob)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     actor.ID,
		Categories:  in.Categories,
		Tags:        in.Tags,
		UploadedOn:  now,
	}
	first := &model.DocumentVersion{
		ID:            uuid.New().String(),
		DocumentID:    doc.ID,
		VersionNumber: 1,
		StoragePath:   info.Key,
		Size:          info.Size,
		CreatedBy:     actor.ID,
		CreatedAt:     now,
		Comment:       "Initial version",
	}

	stored, err := s.docs.CreateWithVersion(ctx, doc, first)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	return &DocumentDetail{
		Document:     *stored,
		OwnerName:    actor.DisplayName(),
		VersionCount: 1,
		Size:         first.Size,
		Path:         first.StoragePath,
		Versions:     []model.DocumentVersion{*first},
	}, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*DocumentDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required: %w", ErrValidation)
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "document", id)
	}

	versions, err := s.versions.ListByDocumentID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &DocumentDetail{
		Document:     *doc,
		VersionCount: len(versions),
		Versions:     versions,
	}
	if len(versions) > 0 {
		detail.Size = versions[0].Size
		detail.Path = versions[0].StoragePath
	}
	if owner, err := s.users.FindByID(ctx, doc.OwnerID); err == nil {
		detail.OwnerName = owner.DisplayName()
	}
	return detail, nil
}

func (s *documentService) Update(ctx context.Context, id string, in UpdateDocumentInput) (*DocumentDetail, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "document", id)
	}

	doc.Title = in.Title
	doc.Description = in.Description
	doc.Categories = in.Categories

	updated, err := s.docs.Update(ctx, doc)
	if err != nil {
		return nil, mapNoRows(err, "document", id)
	}

	s.notifier.Notify(ctx, updated.OwnerID, "Document updated",
		fmt.Sprintf("Document %q was updated", updated.Title),
		model.NotificationDocumentUpdate, updated.ID)

	return s.Get(ctx, updated.ID)
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("id is required: %w", ErrValidation)
	}
	if _, err := s.docs.FindByID(ctx, id); err != nil {
		return mapNoRows(err, "document", id)
	}

	versions, err := s.versions.ListByDocumentID(ctx, id)
	if err != nil {
		return err
	}

	// Best-effort blob cleanup: a failed delete is logged and the cascade
	// continues. Record deletion proceeds regardless. Reverted versions may
	// share a locator, so deduplicate before deleting.
	deleted := make(map[string]bool, len(versions))
	for _, v := range versions {
		if deleted[v.StoragePath] {
			continue
		}
		deleted[v.StoragePath] = true
		if err := s.store.Delete(ctx, v.StoragePath); err != nil {
			logEvent("warn", "blob_delete_failed", map[string]any{
				"document_id":  id,
				"version_id":   v.ID,
				"storage_path": v.StoragePath,
				"error":        err.Error(),
			})
		}
	}

	if err := s.versions.DeleteByDocumentID(ctx, id); err != nil {
		return err
	}
	return s.docs.Delete(ctx, id)
}

func (s *documentService) AddVersion(ctx context.Context, id string, blob Blob, comment, actorID string) (*model.DocumentVersion, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "document", id)
	}
	if err := s.store.Validate(blob.Reader, blob.Size); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, mapNoRows(err, "user", actorID)
	}

	key, info, err := s.putBlob(ctx, blob)
	if err != nil {
		return nil, err
	}

	version, err := s.appendVersion(ctx, doc.ID, info.Key, info.Size, actor.ID, comment)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("append version failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, err
	}

	s.notifier.Notify(ctx, doc.OwnerID, "New version",
		fmt.Sprintf("Version %d of %q was uploaded", version.VersionNumber, doc.Title),
		model.NotificationNewVersion, doc.ID)

	return version, nil
}

func (s *documentService) ListVersions(ctx context.Context, id string) ([]model.DocumentVersion, error) {
	if _, err := s.docs.FindByID(ctx, id); err != nil {
		return nil, mapNoRows(err, "document", id)
	}
	return s.versions.ListByDocumentID(ctx, id)
}

func (s *documentService) GetLatest(ctx context.Context, id string) (*model.DocumentVersion, error) {
	versions, err := s.ListVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	// By invariant every document has a version; handle the empty case
	// defensively anyway.
	if len(versions) == 0 {
		return nil, notFound("latest version of document", id)
	}
	return &versions[0], nil
}

func (s *documentService) Revert(ctx context.Context, id, versionID, actorID string) (*model.DocumentVersion, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "document", id)
	}
	target, err := s.versions.FindByID(ctx, versionID)
	if err != nil {
		return nil, mapNoRows(err, "version", versionID)
	}
	if target.DocumentID != doc.ID {
		return nil, fmt.Errorf("version %s does not belong to document %s: %w", versionID, id, ErrValidation)
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, mapNoRows(err, "user", actorID)
	}

	// Revert appends rather than rewinds: the new version shares the target's
	// blob locator, so no content is copied and no history is destroyed.
	comment := fmt.Sprintf("Reverted to version %d", target.VersionNumber)
	version, err := s.appendVersion(ctx, doc.ID, target.StoragePath, target.Size, actor.ID, comment)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, doc.OwnerID, "Document reverted",
		fmt.Sprintf("Document %q was reverted to version %d", doc.Title, target.VersionNumber),
		model.NotificationNewVersion, doc.ID)

	return version, nil
}

func (s *documentService) Download(ctx context.Context, id string) (io.ReadCloser, *model.DocumentVersion, error) {
	latest, err := s.GetLatest(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return s.openBlob(ctx, latest)
}

func (s *documentService) DownloadVersion(ctx context.Context, id, versionID string) (io.ReadCloser, *model.DocumentVersion, error) {
	version, err := s.versions.FindByID(ctx, versionID)
	if err != nil {
		return nil, nil, mapNoRows(err, "version", versionID)
	}
	if version.DocumentID != id {
		return nil, nil, fmt.Errorf("version %s does not belong to document %s: %w", versionID, id, ErrValidation)
	}
	return s.openBlob(ctx, version)
}

// presignExpiry bounds how long a presigned download link stays valid.
const presignExpiry = 15 * time.Minute

func (s *documentService) PresignVersion(ctx context.Context, id, versionID string) (string, error) {
	version, err := s.versions.FindByID(ctx, versionID)
	if err != nil {
		return "", mapNoRows(err, "version", versionID)
	}
	if version.DocumentID != id {
		return "", fmt.Errorf("version %s does not belong to document %s: %w", versionID, id, ErrValidation)
	}
	u, err := s.store.PresignGet(ctx, version.StoragePath, presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign %s: %v: %w", version.StoragePath, err, ErrStorage)
	}
	return u, nil
}

// putBlob uploads the content under a fresh key derived from the original
// filename's extension.
func (s *documentService) putBlob(ctx context.Context, blob Blob) (string, storage.ObjectInfo, error) {
	ext := filepath.Ext(blob.Filename)
	key := filepath.ToSlash(filepath.Join("documents", uuid.New().String()+ext))

	info, err := s.store.Put(ctx, key, blob.Reader, storage.PutObjectOptions{
		Size:        blob.Size,
		ContentType: blob.ContentType,
		Metadata: map[string]string{
			"original-filename": blob.Filename,
		},
	})
	if err != nil {
		return "", storage.ObjectInfo{}, fmt.Errorf("upload to storage: %v: %w", err, ErrStorage)
	}
	return key, info, nil
}

func (s *documentService) openBlob(ctx context.Context, v *model.DocumentVersion) (io.ReadCloser, *model.DocumentVersion, error) {
	rc, _, err := s.store.Get(ctx, v.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %v: %w", v.StoragePath, err, ErrStorage)
	}
	return rc, v, nil
}

// appendVersion assigns the next version number (max + 1) and inserts the
// row. The UNIQUE (document_id, version_number) constraint backstops
// concurrent appends; on a collision the read-max-then-insert is retried
// once, since a collision under load is expected rather than a caller error.
func (s *documentService) appendVersion(ctx context.Context, documentID, storagePath string, size int64, actorID, comment string) (*model.DocumentVersion, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		max, err := s.versions.MaxVersionNumber(ctx, documentID)
		if err != nil {
			return nil, err
		}
		number := max + 1
		versionComment := comment
		if versionComment == "" {
			versionComment = fmt.Sprintf("Version %d", number)
		}
		v := &model.DocumentVersion{
			ID:            uuid.New().String(),
			DocumentID:    documentID,
			VersionNumber: number,
			StoragePath:   storagePath,
			Size:          size,
			CreatedBy:     actorID,
			CreatedAt:     time.Now().UTC(),
			Comment:       versionComment,
		}
		stored, err := s.versions.Add(ctx, v)
		if err == nil {
			return stored, nil
		}
		if !errors.Is(err, repository.ErrDuplicateVersion) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("concurrent append to document %s: %v: %w", documentID, lastErr, ErrConflict)
}
