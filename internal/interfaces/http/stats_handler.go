package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/branchdesk/branchdesk-api/internal/application/analytics"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// StatsHandler serves the per-branch rollups and the admin overview.
type StatsHandler struct {
	uc  *analytics.StatsUseCase
	log *logger.Logger
}

// NewStatsHandler builds the stats handler.
func NewStatsHandler(uc *analytics.StatsUseCase, log *logger.Logger) *StatsHandler {
	return &StatsHandler{uc: uc, log: log.Component("http.stats")}
}

// Orders godoc
// @Summary      Order counts per visible branch
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        year  query  int  false  "year, default current"
// @Success      200  {object}  dto.OrderStatsResponse
// @Router       /api/stats/orders [get]
func (h *StatsHandler) Orders(c *fiber.Ctx) error {
	year, err := queryInt(c, "year")
	if err != nil {
		return writeError(c, h.log, err)
	}
	y := 0
	if year != nil {
		y = *year
	}
	out, err := h.uc.OrderSummary(c.UserContext(), GetPrincipal(c), y)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Complaints godoc
// @Summary      Complaint counts per visible branch
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        year  query  int  false  "year, default all time"
// @Success      200  {object}  dto.ComplaintStatsResponse
// @Router       /api/stats/complaints [get]
func (h *StatsHandler) Complaints(c *fiber.Ctx) error {
	year, err := queryInt(c, "year")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.ComplaintSummary(c.UserContext(), GetPrincipal(c), year)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Overview godoc
// @Summary      Admin statistics page
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        year    query  int  false  "year, default current"
// @Param        month   query  int  false  "1-12"
// @Param        branch  query  int  false  "branch id"
// @Success      200  {object}  dto.OverviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/overview [get]
func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	var f analytics.OverviewFilter
	year, err := queryInt(c, "year")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if year != nil {
		f.Year = *year
	}
	if f.Month, err = queryInt(c, "month"); err != nil {
		return writeError(c, h.log, err)
	}
	branch, err := queryInt(c, "branch")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if branch != nil {
		if *branch <= 0 {
			return writeError(c, h.log, domain.Invalid("branch", "must be a positive number"))
		}
		id := uint(*branch)
		f.BranchID = &id
	}
	out, err := h.uc.Overview(c.UserContext(), GetPrincipal(c), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// queryInt reads an optional integer query parameter; nil when absent.
func queryInt(c *fiber.Ctx, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.Invalid(name, "must be a number")
	}
	return &n, nil
}
