package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/application/usecase"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// BranchHandler lists branches and exposes the admin CRUD.
type BranchHandler struct {
	uc  *usecase.BranchUseCase
	log *logger.Logger
}

// NewBranchHandler builds the branch handler.
func NewBranchHandler(uc *usecase.BranchUseCase, log *logger.Logger) *BranchHandler {
	return &BranchHandler{uc: uc, log: log.Component("http.branches")}
}

// List godoc
// @Summary      Branches visible to the caller
// @Tags         branches
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.BranchListResponse
// @Router       /api/branches [get]
func (h *BranchHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Create a branch
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.BranchRequest  true  "name, address, company"
// @Success      201   {object}  dto.BranchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/branches [post]
func (h *BranchHandler) Create(c *fiber.Ctx) error {
	var in dto.BranchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Rename or edit a branch
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                true  "branch id"
// @Param        body  body  dto.BranchRequest  true  "name, address, company"
// @Success      200   {object}  dto.BranchResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/branches/{id} [put]
func (h *BranchHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.BranchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetPrincipal(c), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Delete a branch without orders or complaints
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  int  true  "branch id"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/branches/{id} [delete]
func (h *BranchHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.uc.Delete(c.UserContext(), GetPrincipal(c), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
