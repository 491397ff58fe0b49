package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"dms/internal/service"
)

// HealthCheck reports readiness by pinging the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness endpoint with no dependency checks.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// RegisterRoutes attaches all HTTP routes to the provided Fiber app.
// Handlers stay free of business logic; they parse, delegate, and map errors.
func RegisterRoutes(
	app *fiber.App,
	db *sql.DB,
	docSvc service.DocumentService,
	reportSvc service.ReportService,
	notifSvc service.NotificationService,
) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.Redirect("/swagger/index.html", fiber.StatusMovedPermanently)
	})

	app.Get("/documents", ListDocuments(docSvc))
	app.Post("/documents", CreateDocument(docSvc))
	app.Get("/documents/:id", GetDocument(docSvc))
	app.Put("/documents/:id", UpdateDocument(docSvc))
	app.Delete("/documents/:id", DeleteDocument(docSvc))
	app.Get("/documents/:id/download", DownloadDocument(docSvc))
	app.Post("/documents/:id/revert", RevertDocument(docSvc))

	app.Get("/documents/:id/versions", ListVersions(docSvc))
	app.Post("/documents/:id/versions", AddVersion(docSvc))
	app.Get("/documents/:id/versions/latest", GetLatestVersion(docSvc))
	app.Get("/documents/:id/versions/:versionId/download", DownloadVersion(docSvc))
	app.Get("/documents/:id/versions/:versionId/url", GetVersionURL(docSvc))

	app.Get("/reports/storage", StorageReport(reportSvc))
	app.Get("/reports/departments", DepartmentReport(reportSvc))
	app.Get("/reports/activity", ActivityReport(reportSvc))
	app.Get("/reports/metrics", MetricsReport(reportSvc))

	app.Get("/notifications", ListNotifications(notifSvc))
	app.Put("/notifications/:id/read", MarkNotificationRead(notifSvc))
	app.Delete("/notifications/:id", DeleteNotification(notifSvc))
}
