package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/branchdesk/branchdesk-api/internal/application/audit"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// HistoryHandler serves the merged audit timeline.
type HistoryHandler struct {
	uc  *audit.AuditUseCase
	log *logger.Logger
}

// NewHistoryHandler builds the history handler.
func NewHistoryHandler(uc *audit.AuditUseCase, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{uc: uc, log: log.Component("http.history")}
}

// Timeline godoc
// @Summary      Recent order and complaint history, newest first
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "max entries"
// @Success      200  {object}  dto.TimelineResponse
// @Router       /api/history [get]
func (h *HistoryHandler) Timeline(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return writeError(c, h.log, err)
	}
	n := 0
	if limit != nil {
		n = *limit
	}
	out, err := h.uc.Timeline(c.UserContext(), GetPrincipal(c), n)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
