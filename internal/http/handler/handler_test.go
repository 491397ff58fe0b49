package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"dms/internal/http/middleware"
	"dms/internal/model"
	"dms/internal/service"
	serviceMocks "dms/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// newDocumentApp wires a fiber app with the actor middleware, the way the
// real router does, against a mocked document service.
func newDocumentApp(mockSvc *serviceMocks.MockDocumentService) *fiber.App {
	app := fiber.New()
	app.Use(middleware.Actor())
	app.Get("/documents", ListDocuments(mockSvc))
	app.Post("/documents", CreateDocument(mockSvc))
	app.Get("/documents/:id", GetDocument(mockSvc))
	app.Put("/documents/:id", UpdateDocument(mockSvc))
	app.Delete("/documents/:id", DeleteDocument(mockSvc))
	app.Post("/documents/:id/revert", RevertDocument(mockSvc))
	app.Get("/documents/:id/versions", ListVersions(mockSvc))
	app.Post("/documents/:id/versions", AddVersion(mockSvc))
	app.Get("/documents/:id/versions/latest", GetLatestVersion(mockSvc))
	app.Get("/documents/:id/versions/:versionId/url", GetVersionURL(mockSvc))
	return app
}

// multipartUpload builds a multipart body with one file part plus extra fields.
func multipartUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("file", "report.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 test content"))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newDocumentApp(mockSvc)

	t.Run("success with filters and paging", func(t *testing.T) {
		expected := &service.DocumentPage{
			Items:      []service.DocumentItem{{Document: model.Document{ID: uuid.New().String(), Title: "Q3 Invoice"}}},
			TotalCount: 25,
			Page:       3,
			PageSize:   10,
			TotalPages: 3,
		}
		mockSvc.On("Query", mock.Anything, mock.MatchedBy(func(p service.QueryParams) bool {
			return p.Page == 3 && p.PageSize == 10 && p.Title == "invoice" && p.Tags == "invoice,bill"
		})).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?page=3&page_size=10&title=invoice&tags=invoice,bill", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var page service.DocumentPage
		json.NewDecoder(resp.Body).Decode(&page)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, 25, page.TotalCount)
		assert.Equal(t, 3, page.TotalPages)
		mockSvc.AssertExpectations(t)
	})

	t.Run("date filters parse as YYYY-MM-DD", func(t *testing.T) {
		mockSvc.On("Query", mock.Anything, mock.MatchedBy(func(p service.QueryParams) bool {
			return p.StartDate != nil && p.StartDate.Format("2006-01-02") == "2026-01-01" &&
				p.EndDate != nil && p.EndDate.Format("2006-01-02") == "2026-03-31"
		})).Return(&service.DocumentPage{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?start_date=2026-01-01&end_date=2026-03-31", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents?page=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_PAGE", body.Error.Code)
	})

	t.Run("invalid start_date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents?start_date=01-02-2026", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_START_DATE", body.Error.Code)
	})
}

func TestCreateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newDocumentApp(mockSvc)

	t.Run("success", func(t *testing.T) {
		expected := &service.DocumentDetail{
			Document:     model.Document{ID: uuid.New().String(), Title: "Q3 Invoice"},
			VersionCount: 1,
		}
		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateDocumentInput) bool {
			return in.Title == "Q3 Invoice" &&
				len(in.Categories) == 1 && in.Categories[0] == "Financial" &&
				len(in.Tags) == 2
		}), mock.Anything, "user-1").Return(expected, nil).Once()

		body, contentType := multipartUpload(t, map[string]string{
			"title":      "Q3 Invoice",
			"categories": "Financial",
			"tags":       "invoice, quarterly",
		})
		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(middleware.ActorHeader, "user-1")

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var detail service.DocumentDetail
		json.NewDecoder(resp.Body).Decode(&detail)
		assert.Equal(t, "Q3 Invoice", detail.Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing actor header", func(t *testing.T) {
		body, contentType := multipartUpload(t, map[string]string{"title": "Doc"})
		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", contentType)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "ACTOR_REQUIRED", payload.Error.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		body := new(bytes.Buffer)
		w := multipart.NewWriter(body)
		require.NoError(t, w.WriteField("title", "Doc"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set(middleware.ActorHeader, "user-1")

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "FILE_REQUIRED", payload.Error.Code)
	})

	t.Run("validation error from service", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything, mock.Anything, "user-1").
			Return(nil, fmt.Errorf("title is required: %w", service.ErrValidation)).Once()

		body, contentType := multipartUpload(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(middleware.ActorHeader, "user-1")

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "VALIDATION_ERROR", payload.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newDocumentApp(mockSvc)

	docID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, docID).
			Return(&service.DocumentDetail{Document: model.Document{ID: docID}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+docID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "INVALID_ID", payload.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		missing := uuid.New().String()
		mockSvc.On("Get", mock.Anything, missing).
			Return(nil, fmt.Errorf("document %s: %w", missing, service.ErrNotFound)).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+missing, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "NOT_FOUND", payload.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestUpdateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newDocumentApp(mockSvc)

	docID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, docID, service.UpdateDocumentInput{
			Title:       "New title",
			Description: "new desc",
			Categories:  []string{"Sales"},
		}).Return(&service.DocumentDetail{Document: model.Document{ID: docID, Title: "New title"}}, nil).Once()

		body, _ := json.Marshal(map[string]any{
			"title":       "New title",
			"description": "new desc",
			"categories":  []string{"Sales"},
		})
		req := httptest.NewRequest(http.MethodPut, "/documents/"+docID, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/documents/"+docID, bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newDocumentApp(mockSvc)

	t.Run("success", func(t *testing.T) {
		docID := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, docID).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+docID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		docID := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, docID).
			Return(fmt.Errorf("document %s: %w", docID, service.ErrNotFound)).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+docID, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestAddVersion(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newDocumentApp(mockSvc)

	docID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("AddVersion", mock.Anything, docID, mock.Anything, "fixed typo", "user-1").
			Return(&model.DocumentVersion{ID: uuid.New().String(), DocumentID: docID, VersionNumber: 4}, nil).Once()

		body, contentType := multipartUpload(t, map[string]string{"comment": "fixed typo"})
		req := httptest.NewRequest(http.MethodPost, "/documents/"+docID+"/versions", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(middleware.ActorHeader, "user-1")

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var version model.DocumentVersion
		json.NewDecoder(resp.Body).Decode(&version)
		assert.Equal(t, 4, version.VersionNumber)
		mockSvc.AssertExpectations(t)
	})

	t.Run("conflict maps to 409", func(t *testing.T) {
		mockSvc.On("AddVersion", mock.Anything, docID, mock.Anything, "", "user-1").
			Return(nil, fmt.Errorf("concurrent append: %w", service.ErrConflict)).Once()

		body, contentType := multipartUpload(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/documents/"+docID+"/versions", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(middleware.ActorHeader, "user-1")

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "CONFLICT", payload.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestRevertDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newDocumentApp(mockSvc)

	docID := uuid.New().String()
	versionID := uuid.New().String()

	revertBody := func(vid string) *bytes.Reader {
		b, _ := json.Marshal(map[string]string{"version_id": vid})
		return bytes.NewReader(b)
	}

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Revert", mock.Anything, docID, versionID, "user-1").
			Return(&model.DocumentVersion{ID: uuid.New().String(), DocumentID: docID, VersionNumber: 5}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/"+docID+"/revert", revertBody(versionID))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.ActorHeader, "user-1")

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("foreign version maps to 400", func(t *testing.T) {
		foreign := uuid.New().String()
		mockSvc.On("Revert", mock.Anything, docID, foreign, "user-1").
			Return(nil, fmt.Errorf("version %s does not belong to document %s: %w", foreign, docID, service.ErrValidation)).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/"+docID+"/revert", revertBody(foreign))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.ActorHeader, "user-1")

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "VALIDATION_ERROR", payload.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed version id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents/"+docID+"/revert", revertBody("not-a-uuid"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.ActorHeader, "user-1")

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "INVALID_VERSION_ID", payload.Error.Code)
	})
}

func TestListVersions(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newDocumentApp(mockSvc)

	docID := uuid.New().String()
	mockSvc.On("ListVersions", mock.Anything, docID).Return([]model.DocumentVersion{
		{ID: uuid.New().String(), VersionNumber: 2},
		{ID: uuid.New().String(), VersionNumber: 1},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/documents/"+docID+"/versions", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var versions []model.DocumentVersion
	json.NewDecoder(resp.Body).Decode(&versions)
	assert.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].VersionNumber)
	mockSvc.AssertExpectations(t)
}

func TestGetLatestVersion(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newDocumentApp(mockSvc)

	docID := uuid.New().String()
	mockSvc.On("GetLatest", mock.Anything, docID).
		Return(&model.DocumentVersion{ID: uuid.New().String(), VersionNumber: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/documents/"+docID+"/versions/latest", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var version model.DocumentVersion
	json.NewDecoder(resp.Body).Decode(&version)
	assert.Equal(t, 3, version.VersionNumber)
	mockSvc.AssertExpectations(t)
}

func TestGetVersionURL(t *testing.T) {
	t.Run("returns the presigned link", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newDocumentApp(mockSvc)

		docID := uuid.New().String()
		versionID := uuid.New().String()
		mockSvc.On("PresignVersion", mock.Anything, docID, versionID).
			Return("https://minio.local/documents/a?sig=abc", nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+docID+"/versions/"+versionID+"/url", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "https://minio.local/documents/a?sig=abc", body["url"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("rejects a malformed version id", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newDocumentApp(mockSvc)

		docID := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/documents/"+docID+"/versions/not-a-uuid/url", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "INVALID_VERSION_ID", payload.Error.Code)
	})

	t.Run("maps a storage failure to 502", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newDocumentApp(mockSvc)

		docID := uuid.New().String()
		versionID := uuid.New().String()
		mockSvc.On("PresignVersion", mock.Anything, docID, versionID).
			Return("", service.ErrStorage).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+docID+"/versions/"+versionID+"/url", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "STORAGE_ERROR", payload.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}
