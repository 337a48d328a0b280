package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/application/orders"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// OrderHandler serves the pickup order workflow.
type OrderHandler struct {
	uc  *orders.OrderUseCase
	log *logger.Logger
}

// NewOrderHandler builds the order handler.
func NewOrderHandler(uc *orders.OrderUseCase, log *logger.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, log: log.Component("http.orders")}
}

// ListActive godoc
// @Summary      Active orders of a branch, newest first, with freshness
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "branch id"
// @Success      200  {object}  dto.OrderListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/branches/{id}/orders [get]
func (h *OrderHandler) ListActive(c *fiber.Ctx) error {
	branchID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.ListActive(c.UserContext(), GetPrincipal(c), branchID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Record a new pickup order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                     true  "branch id"
// @Param        body  body  dto.CreateOrderRequest  true  "customer_name, phone, order_date, ..."
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/branches/{id}/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	branchID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.CreateOrderRequest
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
// @Summary      One order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "order id"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
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

// Transition godoc
// @Summary      Issue, mark unclaimed or soft-delete an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                     true  "order id"
// @Param        body  body  dto.OrderActionRequest  true  "issue | markUnclaimed | softDelete"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [post]
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.OrderActionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Transition(c.UserContext(), GetPrincipal(c), id, in.Action)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// UpdateNotes godoc
// @Summary      Replace the notes of an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                     true  "order id"
// @Param        body  body  dto.UpdateNotesRequest  true  "notes"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/notes [put]
func (h *OrderHandler) UpdateNotes(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.UpdateNotesRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateNotes(c.UserContext(), GetPrincipal(c), id, in.Notes)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
