package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/branchdesk/branchdesk-api/internal/application/audit"
	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/access"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
	"github.com/branchdesk/branchdesk-api/pkg/clock"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
	"github.com/branchdesk/branchdesk-api/pkg/textnorm"
)

// Actions accepted by Transition.
const (
	ActionIssue         = "issue"
	ActionMarkUnclaimed = "markUnclaimed"
	ActionSoftDelete    = "softDelete"
)

var actionTargets = map[string]entity.OrderStatus{
	ActionIssue:         entity.OrderIssued,
	ActionMarkUnclaimed: entity.OrderUnclaimed,
	ActionSoftDelete:    entity.OrderDeleted,
}

const notesPreview = 50

// OrderUseCase pickup order workflow. Every mutation and its audit entry
// commit in one transaction.
type OrderUseCase struct {
	repos repository.Repos
	tx    repository.TxRunner
	clock clock.Clock
	log   *logger.Logger
}

// NewOrderUseCase builds the use case.
func NewOrderUseCase(repos repository.Repos, tx repository.TxRunner, clk clock.Clock, log *logger.Logger) *OrderUseCase {
	return &OrderUseCase{repos: repos, tx: tx, clock: clk, log: log.Component("orders")}
}

// Create registers a new active order on branchID.
func (uc *OrderUseCase) Create(ctx context.Context, p entity.Principal, branchID uint, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	var created *entity.Order
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		branch, err := repos.Branches.GetByID(ctx, branchID)
		if err != nil {
			return domain.Persistence("orders.Create", err)
		}
		if branch == nil {
			return domain.ErrNotFound
		}
		if err := uc.authorize(p, branchID, "create order"); err != nil {
			return err
		}

		o, err := uc.validate(p, in)
		if err != nil {
			return err
		}
		o.BranchID = branchID
		o.Status = entity.OrderActive
		if err := repos.Orders.Create(ctx, o); err != nil {
			return domain.Persistence("orders.Create", err)
		}
		if err := uc.record(ctx, repos, p, o, "order created: "+o.CustomerName); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.toOrderResponse(created), nil
}

func (uc *OrderUseCase) validate(p entity.Principal, in dto.CreateOrderRequest) (*entity.Order, error) {
	name, err := domain.RequiredText("customer_name", in.CustomerName, entity.OrderCustomerMax)
	if err != nil {
		return nil, err
	}
	phone, err := domain.NormalizePhone("phone", in.Phone)
	if err != nil {
		return nil, err
	}
	date, err := parseDate("order_date", in.OrderDate)
	if err != nil {
		return nil, err
	}
	notes, err := domain.OptionalText("notes", in.Notes, entity.OrderNotesMax)
	if err != nil {
		return nil, err
	}
	submitter, err := domain.OptionalText("submitter", in.Submitter, entity.OrderCustomerMax)
	if err != nil {
		return nil, err
	}
	if submitter == "" {
		submitter = p.Actor()
	}

	o := &entity.Order{
		CustomerName: name,
		Submitter:    submitter,
		Phone:        phone,
		Prepaid:      in.Prepaid,
		OrderDate:    date,
		Notes:        notes,
	}
	if !in.Prepaid && in.Amount != nil {
		if in.Amount.IsNegative() {
			return nil, domain.Invalid("amount", "must not be negative")
		}
		o.Amount = decimal.NewNullDecimal(in.Amount.Round(2))
	}
	return o, nil
}

// Transition moves an order to the status named by action. Any status may move to any target.
func (uc *OrderUseCase) Transition(ctx context.Context, p entity.Principal, orderID uint, action string) (*dto.OrderResponse, error) {
	target, ok := actionTargets[action]
	if !ok {
		return nil, domain.ErrInvalidAction
	}
	var updated *entity.Order
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		o, err := uc.load(ctx, repos, p, orderID, "change order status")
		if err != nil {
			return err
		}
		o.Status = target
		if err := repos.Orders.Update(ctx, o); err != nil {
			return domain.Persistence("orders.Transition", err)
		}
		if err := uc.record(ctx, repos, p, o, fmt.Sprintf("status changed to %s", target)); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.toOrderResponse(updated), nil
}

// UpdateNotes replaces the notes; an empty text clears them.
func (uc *OrderUseCase) UpdateNotes(ctx context.Context, p entity.Principal, orderID uint, notes string) (*dto.OrderResponse, error) {
	clean, err := domain.OptionalText("notes", notes, entity.OrderNotesMax)
	if err != nil {
		return nil, err
	}
	var updated *entity.Order
	err = uc.tx.Run(ctx, func(repos repository.Repos) error {
		o, err := uc.load(ctx, repos, p, orderID, "update order notes")
		if err != nil {
			return err
		}
		o.Notes = clean
		if err := repos.Orders.Update(ctx, o); err != nil {
			return domain.Persistence("orders.UpdateNotes", err)
		}
		if err := uc.record(ctx, repos, p, o, notesAction(clean)); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.toOrderResponse(updated), nil
}

func notesAction(notes string) string {
	if notes == "" {
		return "notes updated: (empty)"
	}
	preview, cut := textnorm.Truncate(notes, notesPreview)
	if cut {
		preview += "..."
	}
	return "notes updated: " + preview
}

// ListActive returns the active orders of a branch newest first with their freshness.
func (uc *OrderUseCase) ListActive(ctx context.Context, p entity.Principal, branchID uint) (*dto.OrderListResponse, error) {
	branch, err := uc.repos.Branches.GetByID(ctx, branchID)
	if err != nil {
		return nil, domain.Persistence("orders.ListActive", err)
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.authorize(p, branchID, "list orders"); err != nil {
		return nil, err
	}
	list, err := uc.repos.Orders.List(ctx, repository.OrderFilter{
		BranchIDs: []uint{branchID},
		Statuses:  []entity.OrderStatus{entity.OrderActive},
	})
	if err != nil {
		return nil, domain.Persistence("orders.ListActive", err)
	}

	out := &dto.OrderListResponse{Items: make([]dto.OrderResponse, 0, len(list))}
	for _, o := range list {
		resp := uc.toOrderResponse(o)
		switch entity.Freshness(resp.Freshness) {
		case entity.Fresh:
			out.Fresh++
		case entity.Stale:
			out.Stale++
		}
		out.Items = append(out.Items, *resp)
	}
	return out, nil
}

// Get returns one order.
func (uc *OrderUseCase) Get(ctx context.Context, p entity.Principal, orderID uint) (*dto.OrderResponse, error) {
	o, err := uc.load(ctx, uc.repos, p, orderID, "read order")
	if err != nil {
		return nil, err
	}
	return uc.toOrderResponse(o), nil
}

func (uc *OrderUseCase) load(ctx context.Context, repos repository.Repos, p entity.Principal, id uint, what string) (*entity.Order, error) {
	o, err := repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("orders.GetByID", err)
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.authorize(p, o.BranchID, what); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *OrderUseCase) authorize(p entity.Principal, branchID uint, what string) error {
	if access.CanAccess(p, branchID) {
		return nil
	}
	uc.log.Warn().Str("actor", p.Actor()).Uint("branch_id", branchID).Str("op", what).Msg("branch access denied")
	return domain.ErrForbidden
}

func (uc *OrderUseCase) record(ctx context.Context, repos repository.Repos, p entity.Principal, o *entity.Order, action string) error {
	return audit.Append(ctx, repos.Audit, uc.clock, entity.AuditEntry{
		Stream:    entity.StreamOrder,
		SubjectID: o.ID,
		BranchID:  o.BranchID,
		Actor:     p.Actor(),
		Action:    action,
	})
}

func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, domain.Invalid(field, "is required")
	}
	t, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		return time.Time{}, domain.Invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

func (uc *OrderUseCase) toOrderResponse(o *entity.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:           o.ID,
		BranchID:     o.BranchID,
		CustomerName: o.CustomerName,
		Submitter:    o.Submitter,
		Phone:        o.Phone,
		Prepaid:      o.Prepaid,
		OrderDate:    o.OrderDate.Format(dto.DateLayout),
		Notes:        o.Notes,
		Status:       string(o.Status),
		Freshness:    string(o.Freshness(uc.clock.Today())),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.Amount.Valid {
		amount := o.Amount.Decimal
		resp.Amount = &amount
	}
	return resp
}
