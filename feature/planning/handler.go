package planning

import (
	"items-planning/core/apperr"
	"items-planning/core/logger"
	"items-planning/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for planning.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the planning routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/planning/items/:id")
	group.Post("/reconcile", h.HandleReconcile)
	group.Get("/cases", h.HandleListCases)
	group.Get("/reports", h.HandleListReports)
	group.Get("/reports/:run", h.HandleGetReport)
}

// ReconcileRequest is the body of a reconcile request.
type ReconcileRequest struct {
	TemplateID int    `json:"template_id" example:"12"`
	FolderName string `json:"folder_name" example:"Maintenance"`
	Force      bool   `json:"force"`
}

// HandleReconcile triggers a reconciliation for an item.
// @Summary Reconcile Item
// @Description Brings the planning state and the remote cases of an item in line with its current data. Enqueued when the task queue is enabled unless sync=true.
// @Tags planning
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param sync query boolean false "Run inline even when the queue is enabled"
// @Param request body ReconcileRequest true "Reconcile parameters"
// @Success 200 {object} planning.Result "Run finished"
// @Success 202 {object} planning.Result "Run queued"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Item is being reconciled"
// @Failure 502 {object} map[string]string "Remote service failed"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /planning/items/{id}/reconcile [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	itemID, err := c.ParamsInt("id")
	if err != nil || itemID <= 0 {
		return writeError(c, apperr.Validation("item id must be a positive integer"))
	}

	var req ReconcileRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
	}

	ev := reconcile.ItemChanged{
		ItemID:     itemID,
		TemplateID: req.TemplateID,
		FolderName: req.FolderName,
		Force:      req.Force,
	}
	res, err := h.service.Reconcile(c.UserContext(), ev, c.QueryBool("sync"))
	if err != nil {
		l.Error("Reconciliation request failed", zap.Int("item_id", itemID), zap.Error(err))
		if res != nil && res.Report != nil {
			return c.Status(apperr.StatusOf(err)).JSON(fiber.Map{
				"error":  err.Error(),
				"kind":   apperr.KindOf(err).String(),
				"report": res.Report,
			})
		}
		return writeError(c, err)
	}

	if res.Queued {
		l.Info("Reconciliation queued", zap.Int("item_id", itemID), zap.String("task_id", res.TaskID))
		return c.Status(fiber.StatusAccepted).JSON(res)
	}
	return c.JSON(res)
}

// HandleListCases lists the planning cases of an item.
// @Summary List Planning Cases
// @Description Returns all planning cases of an item, newest first, including retracted ones and their site rows.
// @Tags planning
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {array} planning.PlanningCase "Planning cases"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /planning/items/{id}/cases [get]
func (h *Handler) HandleListCases(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("id")
	if err != nil || itemID <= 0 {
		return writeError(c, apperr.Validation("item id must be a positive integer"))
	}

	cases, err := h.service.Cases(c.UserContext(), itemID)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to list planning cases", zap.Error(err))
		return writeError(c, err)
	}
	return c.JSON(cases)
}

// HandleListReports lists the archived reports of an item.
// @Summary List Run Reports
// @Description Returns the run ids of the archived reconciliation reports of an item, oldest first.
// @Tags planning
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} map[string]interface{} "Run ids"
// @Failure 404 {object} map[string]string "Archive disabled"
// @Router /planning/items/{id}/reports [get]
func (h *Handler) HandleListReports(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("id")
	if err != nil || itemID <= 0 {
		return writeError(c, apperr.Validation("item id must be a positive integer"))
	}

	runs, err := h.service.Reports(c.UserContext(), itemID)
	if err != nil {
		return writeError(c, err)
	}
	if runs == nil {
		runs = []string{}
	}
	return c.JSON(fiber.Map{"item_id": itemID, "runs": runs})
}

// HandleGetReport returns one archived report.
// @Summary Get Run Report
// @Description Returns an archived reconciliation report.
// @Tags planning
// @Produce json
// @Param id path int true "Item ID"
// @Param run path string true "Run ID"
// @Success 200 {object} reconcile.Report "Report"
// @Failure 404 {object} map[string]string "Report not found"
// @Router /planning/items/{id}/reports/{run} [get]
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("id")
	if err != nil || itemID <= 0 {
		return writeError(c, apperr.Validation("item id must be a positive integer"))
	}

	report, err := h.service.Report(c.UserContext(), itemID, c.Params("run"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

func writeError(c *fiber.Ctx, err error) error {
	return c.Status(apperr.StatusOf(err)).JSON(fiber.Map{
		"error": err.Error(),
		"kind":  apperr.KindOf(err).String(),
	})
}
