package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"dms/internal/http/middleware"
	"dms/internal/model"
	"dms/internal/service"
	serviceMocks "dms/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newReportApp(reportSvc *serviceMocks.MockReportService, notifSvc *serviceMocks.MockNotificationService) *fiber.App {
	app := fiber.New()
	app.Use(middleware.Actor())
	app.Get("/reports/storage", StorageReport(reportSvc))
	app.Get("/reports/departments", DepartmentReport(reportSvc))
	app.Get("/reports/activity", ActivityReport(reportSvc))
	app.Get("/reports/metrics", MetricsReport(reportSvc))
	app.Get("/notifications", ListNotifications(notifSvc))
	app.Put("/notifications/:id/read", MarkNotificationRead(notifSvc))
	app.Delete("/notifications/:id", DeleteNotification(notifSvc))
	return app
}

func TestStorageReport(t *testing.T) {
	mockReport := new(serviceMocks.MockReportService)
	app := newReportApp(mockReport, new(serviceMocks.MockNotificationService))

	t.Run("success", func(t *testing.T) {
		mockReport.On("Storage", mock.Anything).Return(&service.StorageReport{
			TotalBytes: 100,
			Buckets: []service.StorageBucket{
				{Name: "Invoice", Bytes: 100, Percent: 100},
				{Name: "Report"}, {Name: "Contract"}, {Name: "Receipt"}, {Name: "Other"},
			},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/reports/storage", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var report service.StorageReport
		json.NewDecoder(resp.Body).Decode(&report)
		assert.Equal(t, int64(100), report.TotalBytes)
		assert.Len(t, report.Buckets, 5)
		assert.Equal(t, 100, report.Buckets[0].Percent)
		mockReport.AssertExpectations(t)
	})

	t.Run("service error maps to 500", func(t *testing.T) {
		mockReport.On("Storage", mock.Anything).Return(nil, errors.New("db fail")).Once()

		req := httptest.NewRequest(http.MethodGet, "/reports/storage", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockReport.AssertExpectations(t)
	})
}

func TestDepartmentReport(t *testing.T) {
	mockReport := new(serviceMocks.MockReportService)
	app := newReportApp(mockReport, new(serviceMocks.MockNotificationService))

	mockReport.On("Departments", mock.Anything).Return([]service.DepartmentStat{
		{Name: "Finance", Count: 2, Percent: 50},
		{Name: "Engineering", Count: 1, Percent: 25},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/reports/departments", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats []service.DepartmentStat
	json.NewDecoder(resp.Body).Decode(&stats)
	assert.Len(t, stats, 2)
	assert.Equal(t, "Finance", stats[0].Name)
	mockReport.AssertExpectations(t)
}

func TestActivityReport(t *testing.T) {
	mockReport := new(serviceMocks.MockReportService)
	app := newReportApp(mockReport, new(serviceMocks.MockNotificationService))

	mockReport.On("Activity", mock.Anything).Return(&service.ActivityReport{
		Uploads:       []service.ActivityPoint{{Date: "Jan 26", Count: 2}},
		Storage:       []service.StoragePoint{{Date: "Jan 26", Bytes: 30}},
		TopCategories: []service.CategoryCount{{Name: "Financial", Count: 2}},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/reports/activity", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report service.ActivityReport
	json.NewDecoder(resp.Body).Decode(&report)
	assert.Equal(t, "Jan 26", report.Uploads[0].Date)
	mockReport.AssertExpectations(t)
}

func TestMetricsReport(t *testing.T) {
	mockReport := new(serviceMocks.MockReportService)
	app := newReportApp(mockReport, new(serviceMocks.MockNotificationService))

	mockReport.On("Metrics", mock.Anything).Return(&service.MetricsReport{
		TotalStorageBytes: 200,
		DocumentCount:     3,
		ActiveUploaders:   2,
		TotalUsers:        4,
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/reports/metrics", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report service.MetricsReport
	json.NewDecoder(resp.Body).Decode(&report)
	assert.Equal(t, 3, report.DocumentCount)
	mockReport.AssertExpectations(t)
}

func TestListNotifications(t *testing.T) {
	mockNotif := new(serviceMocks.MockNotificationService)
	app := newReportApp(new(serviceMocks.MockReportService), mockNotif)

	t.Run("success", func(t *testing.T) {
		mockNotif.On("ListForUser", mock.Anything, "user-1", 5).
			Return([]model.Notification{{ID: uuid.New().String(), Title: "New version"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/notifications?count=5", nil)
		req.Header.Set(middleware.ActorHeader, "user-1")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var items []model.Notification
		json.NewDecoder(resp.Body).Decode(&items)
		assert.Len(t, items, 1)
		mockNotif.AssertExpectations(t)
	})

	t.Run("missing actor header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "ACTOR_REQUIRED", payload.Error.Code)
	})
}

func TestMarkNotificationRead(t *testing.T) {
	mockNotif := new(serviceMocks.MockNotificationService)
	app := newReportApp(new(serviceMocks.MockReportService), mockNotif)

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockNotif.On("MarkRead", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/notifications/"+id+"/read", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockNotif.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockNotif.On("MarkRead", mock.Anything, id).
			Return(fmt.Errorf("notification %s: %w", id, service.ErrNotFound)).Once()

		req := httptest.NewRequest(http.MethodPut, "/notifications/"+id+"/read", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockNotif.AssertExpectations(t)
	})
}

func TestDeleteNotification(t *testing.T) {
	mockNotif := new(serviceMocks.MockNotificationService)
	app := newReportApp(new(serviceMocks.MockReportService), mockNotif)

	id := uuid.New().String()
	mockNotif.On("Delete", mock.Anything, id).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/notifications/"+id, nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	mockNotif.AssertExpectations(t)
}
