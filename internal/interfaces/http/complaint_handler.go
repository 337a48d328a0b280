package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/branchdesk/branchdesk-api/internal/application/complaints"
	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// ComplaintHandler serves the warranty complaint workflow.
type ComplaintHandler struct {
	uc  *complaints.ComplaintUseCase
	log *logger.Logger
}

// NewComplaintHandler builds the complaint handler.
func NewComplaintHandler(uc *complaints.ComplaintUseCase, log *logger.Logger) *ComplaintHandler {
	return &ComplaintHandler{uc: uc, log: log.Component("http.complaints")}
}

// List godoc
// @Summary      Complaints of a branch
// @Tags         complaints
// @Produce      json
// @Security     BearerAuth
// @Param        id        path   int     true   "branch id"
// @Param        status    query  string  false  "pending | exchanged | sentForRepair | rejected"
// @Param        q         query  string  false  "customer, phone, brand or model"
// @Param        from      query  string  false  "received from, YYYY-MM-DD"
// @Param        to        query  string  false  "received to, YYYY-MM-DD"
// @Param        archived  query  bool    false  "include archived"
// @Success      200  {object}  dto.ComplaintListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/branches/{id}/complaints [get]
func (h *ComplaintHandler) List(c *fiber.Ctx) error {
	branchID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var q dto.ComplaintQuery
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c), branchID, q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Browse godoc
// @Summary      Complaints across branches (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        branch    query  int     false  "branch id"
// @Param        status    query  string  false  "status"
// @Param        q         query  string  false  "search text"
// @Param        archived  query  bool    false  "only archived"
// @Success      200  {object}  dto.ComplaintListResponse
// @Router       /api/admin/complaints [get]
func (h *ComplaintHandler) Browse(c *fiber.Ctx) error {
	var q dto.ComplaintQuery
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Browse(c.UserContext(), GetPrincipal(c), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Register a complaint
// @Tags         complaints
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                   true  "branch id"
// @Param        body  body  dto.ComplaintRequest  true  "complaint"
// @Success      201   {object}  dto.ComplaintResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/branches/{id}/complaints [post]
func (h *ComplaintHandler) Create(c *fiber.Ctx) error {
	branchID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.ComplaintRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetPrincipal(c), branchID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      One complaint
// @Tags         complaints
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "complaint id"
// @Success      200  {object}  dto.ComplaintResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/complaints/{id} [get]
func (h *ComplaintHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Get(c.UserContext(), GetPrincipal(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Edit godoc
// @Summary      Edit a complaint
// @Tags         complaints
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                   true  "complaint id"
// @Param        body  body  dto.ComplaintRequest  true  "complaint"
// @Success      200   {object}  dto.ComplaintResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/complaints/{id} [put]
func (h *ComplaintHandler) Edit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.ComplaintRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Edit(c.UserContext(), GetPrincipal(c), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// QuickStatus godoc
// @Summary      Change the status of a complaint
// @Tags         complaints
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                         true  "complaint id"
// @Param        body  body  dto.ComplaintActionRequest  true  "pending | exchanged | sentForRepair | rejected"
// @Success      200   {object}  dto.ComplaintResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/complaints/{id}/status [post]
func (h *ComplaintHandler) QuickStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.ComplaintActionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.QuickStatusChange(c.UserContext(), GetPrincipal(c), id, in.Action)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Archive godoc
// @Summary      Archive a resolved complaint
// @Tags         complaints
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "complaint id"
// @Success      200  {object}  dto.ArchiveResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/complaints/{id}/archive [post]
func (h *ComplaintHandler) Archive(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Archive(c.UserContext(), GetPrincipal(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
