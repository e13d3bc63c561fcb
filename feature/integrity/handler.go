package integrity

import (
	"items-planning/core/logger"
	"items-planning/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	// Force import for Swagger
	var _ = checks.SchemaReport{}
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/remote", h.HandleRemoteCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs all available integrity checks (Storage, Schema, Remote). Returns 503 when any check fails.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} integrity.Report "Combined Report"
// @Failure 503 {object} integrity.Report "Unhealthy"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report := h.service.RunAll(c.UserContext())
	if !report.Healthy {
		l.Warn("Integrity checks failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

// HandleStorageCheck checks and optionally fixes the report bucket.
// @Summary Check Storage
// @Description Checks that the report bucket and its folders exist. Optionally creates them.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Create the missing bucket and folders"
// @Success 200 {object} map[string]interface{} "Storage Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	if h.service.client == nil {
		return c.JSON(fiber.Map{"status": "skipped"})
	}

	missing, err := h.service.CheckStorage(c.UserContext())
	if err != nil && !fix {
		l.Error("Storage check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		// The bucket itself is missing; every folder needs creating.
		missing = h.service.folders
	}

	if len(missing) > 0 || err != nil {
		l.Warn("Missing storage folders detected", zap.Strings("missing", missing))

		if fix {
			l.Info("Attempting to fix storage")
			if err := h.service.FixStorage(c.UserContext(), missing); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix storage",
					"details": err.Error(),
					"missing": missing,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  missing,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"missing": missing,
	})
}

// HandleSchemaCheck checks the planning database schema.
// @Summary Check Schema
// @Description Checks if the planning tables match the expected models.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Check Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting schema check")

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

// HandleRemoteCheck pings the remote case service.
// @Summary Check Remote Service
// @Description Pings the remote case and folder service.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.RemoteReport "Remote Report"
// @Failure 503 {object} checks.RemoteReport "Unreachable"
// @Router /integrity/remote [get]
func (h *Handler) HandleRemoteCheck(c *fiber.Ctx) error {
	if h.service.remote == nil {
		return c.JSON(fiber.Map{"status": "skipped"})
	}

	report := h.service.CheckRemote(c.UserContext())
	if !report.Reachable {
		logger.WithRayID(h.service.logger, c).Warn("Remote service unreachable", zap.String("error", report.Error))
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}
