package handler

import (
	"github.com/gofiber/fiber/v2"

	"dms/internal/http/middleware"
	"dms/internal/service"
)

// StorageReport handles GET /reports/storage.
func StorageReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := svc.Storage(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(report)
	}
}

// DepartmentReport handles GET /reports/departments.
func DepartmentReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.Departments(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(stats)
	}
}

// ActivityReport handles GET /reports/activity.
func ActivityReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := svc.Activity(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(report)
	}
}

// MetricsReport handles GET /reports/metrics.
func MetricsReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := svc.Metrics(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(report)
	}
}

// ListNotifications handles GET /notifications for the acting user.
func ListNotifications(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := middleware.ActorFromCtx(c)
		if actor == "" {
			return writeError(c, fiber.StatusBadRequest, "ACTOR_REQUIRED", "X-User-ID header is required")
		}
		count, err := intQuery(c, "count", 0)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_COUNT", "invalid count")
		}
		items, err := svc.ListForUser(c.UserContext(), actor, count)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// MarkNotificationRead handles PUT /notifications/:id/read.
func MarkNotificationRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.MarkRead(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteNotification handles DELETE /notifications/:id.
func DeleteNotification(svc service.NotificationService) fiber.Handler {
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
