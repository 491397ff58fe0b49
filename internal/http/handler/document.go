package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"dms/internal/http/middleware"
	"dms/internal/service"
)

// queryDateLayout is the accepted format for start_date/end_date filters.
const queryDateLayout = "2006-01-02"

// ListDocuments handles GET /documents with the filter and paging query
// parameters described by service.QueryParams.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := service.QueryParams{
			Title:      c.Query("title"),
			Categories: c.Query("categories"),
			Tags:       c.Query("tags"),
			OwnerID:    c.Query("owner_id"),
		}

		var err error
		if params.Page, err = intQuery(c, "page", 1); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		if params.PageSize, err = intQuery(c, "page_size", 10); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE_SIZE", "invalid page_size")
		}
		if params.StartDate, err = dateQuery(c, "start_date"); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_START_DATE", "invalid start_date, expected YYYY-MM-DD")
		}
		if params.EndDate, err = dateQuery(c, "end_date"); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_END_DATE", "invalid end_date, expected YYYY-MM-DD")
		}

		page, err := svc.Query(c.UserContext(), params)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(page)
	}
}

// CreateDocument handles POST /documents (multipart/form-data: file plus
// title, description, categories, tags fields).
func CreateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := middleware.ActorFromCtx(c)
		if actor == "" {
			return writeError(c, fiber.StatusBadRequest, "ACTOR_REQUIRED", "X-User-ID header is required")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		in := service.CreateDocumentInput{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Categories:  splitFormLabels(c.FormValue("categories")),
			Tags:        splitFormLabels(c.FormValue("tags")),
		}
		blob := service.Blob{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: contentTypeOf(fh.Header.Get("Content-Type")),
			Size:        fh.Size,
		}

		doc, err := svc.Create(c.UserContext(), in, blob, actor)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument handles GET /documents/:id.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// updateDocumentRequest is the JSON body of PUT /documents/:id.
type updateDocumentRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
}

// UpdateDocument handles PUT /documents/:id.
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := svc.Update(c.UserContext(), id, service.UpdateDocumentInput{
			Title:       req.Title,
			Description: req.Description,
			Categories:  req.Categories,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument handles DELETE /documents/:id.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListVersions handles GET /documents/:id/versions.
func ListVersions(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		versions, err := svc.ListVersions(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(versions)
	}
}

// GetLatestVersion handles GET /documents/:id/versions/latest.
func GetLatestVersion(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		version, err := svc.GetLatest(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(version)
	}
}

// AddVersion handles POST /documents/:id/versions (multipart file + comment).
func AddVersion(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := middleware.ActorFromCtx(c)
		if actor == "" {
			return writeError(c, fiber.StatusBadRequest, "ACTOR_REQUIRED", "X-User-ID header is required")
		}
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		blob := service.Blob{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: contentTypeOf(fh.Header.Get("Content-Type")),
			Size:        fh.Size,
		}
		version, err := svc.AddVersion(c.UserContext(), id, blob, c.FormValue("comment"), actor)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(version)
	}
}

// revertRequest is the JSON body of POST /documents/:id/revert.
type revertRequest struct {
	VersionID string `json:"version_id"`
}

// RevertDocument handles POST /documents/:id/revert.
func RevertDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := middleware.ActorFromCtx(c)
		if actor == "" {
			return writeError(c, fiber.StatusBadRequest, "ACTOR_REQUIRED", "X-User-ID header is required")
		}
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req revertRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if _, err := uuid.Parse(req.VersionID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION_ID", "invalid version_id format")
		}
		version, err := svc.Revert(c.UserContext(), id, req.VersionID, actor)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(version)
	}
}

// DownloadDocument handles GET /documents/:id/download, streaming the
// latest version's content.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, version, err := svc.Download(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", versionFilename(version.StoragePath)))
		return c.SendStream(rc, int(version.Size))
	}
}

// DownloadVersion handles GET /documents/:id/versions/:versionId/download.
func DownloadVersion(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		versionID, ok := idParam(c, "versionId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION_ID", "invalid version id format")
		}
		rc, version, err := svc.DownloadVersion(c.UserContext(), id, versionID)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", versionFilename(version.StoragePath)))
		return c.SendStream(rc, int(version.Size))
	}
}

// GetVersionURL handles GET /documents/:id/versions/:versionId/url,
// returning a presigned download link instead of proxying the bytes.
func GetVersionURL(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		versionID, ok := idParam(c, "versionId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION_ID", "invalid version id format")
		}
		u, err := svc.PresignVersion(c.UserContext(), id, versionID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": u})
	}
}

func idParam(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func intQuery(c *fiber.Ctx, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func dateQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(queryDateLayout, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func splitFormLabels(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contentTypeOf(ct string) string {
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}

func versionFilename(storagePath string) string {
	if i := strings.LastIndexByte(storagePath, '/'); i >= 0 {
		return storagePath[i+1:]
	}
	return storagePath
}
