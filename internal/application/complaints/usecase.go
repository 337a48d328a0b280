package complaints

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
	"github.com/branchdesk/branchdesk-api/internal/domain/warranty"
	"github.com/branchdesk/branchdesk-api/pkg/clock"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// Quick status actions.
const (
	ActionPending       = "pending"
	ActionExchanged     = "exchanged"
	ActionSentForRepair = "sentForRepair"
	ActionRejected      = "rejected"
)

var actionTargets = map[string]entity.ComplaintStatus{
	ActionPending:       entity.ComplaintPending,
	ActionExchanged:     entity.ComplaintExchanged,
	ActionSentForRepair: entity.ComplaintSentForRepair,
	ActionRejected:      entity.ComplaintRejected,
}

// ArchiveOutcome result of Archive that is not an error.
type ArchiveOutcome string

const (
	ArchiveDone ArchiveOutcome = "archived"
	ArchiveNoOp ArchiveOutcome = "already_archived"
)

// BrowseLimit caps the admin cross-branch browser.
const BrowseLimit = 500

// Options policy switches.
type Options struct {
	// AllowArchivedEdit lets Edit and QuickStatusChange touch archived complaints.
	AllowArchivedEdit bool
}

// ComplaintUseCase complaint workflow with warranty and archival rules.
type ComplaintUseCase struct {
	repos repository.Repos
	tx    repository.TxRunner
	clock clock.Clock
	opts  Options
	log   *logger.Logger
}

// NewComplaintUseCase builds the use case.
func NewComplaintUseCase(repos repository.Repos, tx repository.TxRunner, clk clock.Clock, opts Options, log *logger.Logger) *ComplaintUseCase {
	return &ComplaintUseCase{repos: repos, tx: tx, clock: clk, opts: opts, log: log.Component("complaints")}
}

// Create accepts a new complaint on branchID. The receiver is the caller.
func (uc *ComplaintUseCase) Create(ctx context.Context, p entity.Principal, branchID uint, in dto.ComplaintRequest) (*dto.ComplaintResponse, error) {
	var created *entity.Complaint
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		branch, err := repos.Branches.GetByID(ctx, branchID)
		if err != nil {
			return domain.Persistence("complaints.Create", err)
		}
		if branch == nil {
			return domain.ErrNotFound
		}
		if err := uc.authorize(p, branchID, "create complaint"); err != nil {
			return err
		}

		c := &entity.Complaint{BranchID: branchID, ReceivedDate: uc.clock.Today()}
		if err := uc.apply(c, in); err != nil {
			return err
		}
		c.Receiver = p.Actor()
		if err := repos.Complaints.Create(ctx, c); err != nil {
			return domain.Persistence("complaints.Create", err)
		}
		if err := uc.record(ctx, repos, p, c, fmt.Sprintf("complaint created, status: %s", c.Status)); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toComplaintResponse(created), nil
}

// Edit revalidates every field, warranty included, and saves the complaint.
func (uc *ComplaintUseCase) Edit(ctx context.Context, p entity.Principal, complaintID uint, in dto.ComplaintRequest) (*dto.ComplaintResponse, error) {
	var updated *entity.Complaint
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		c, err := uc.load(ctx, repos, p, complaintID, "edit complaint")
		if err != nil {
			return err
		}
		if err := uc.checkArchived(c); err != nil {
			return err
		}
		if err := uc.apply(c, in); err != nil {
			return err
		}
		if c.Receiver == "" {
			c.Receiver = p.Actor()
		}
		if err := repos.Complaints.Update(ctx, c); err != nil {
			return domain.Persistence("complaints.Edit", err)
		}
		if err := uc.record(ctx, repos, p, c, fmt.Sprintf("complaint updated, status: %s", c.Status)); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toComplaintResponse(updated), nil
}

// apply validates in and copies it onto c. Required fields are checked first,
// then the warranty, then the optional fields; nothing is copied on failure.
func (uc *ComplaintUseCase) apply(c *entity.Complaint, in dto.ComplaintRequest) error {
	customer, err := domain.RequiredText("customer", in.Customer, entity.ComplaintCustomerMax)
	if err != nil {
		return err
	}
	phone, err := domain.NormalizePhone("phone", in.Phone)
	if err != nil {
		return err
	}
	brand, err := domain.RequiredText("brand", in.Brand, entity.ComplaintBrandMax)
	if err != nil {
		return err
	}
	model, err := domain.RequiredText("model", in.Model, entity.ComplaintModelMax)
	if err != nil {
		return err
	}
	defect, err := domain.RequiredText("defect", in.Defect, entity.ComplaintDefectMax)
	if err != nil {
		return err
	}
	purchase, err := parseDate("purchase_date", in.PurchaseDate)
	if err != nil {
		return err
	}
	if purchase.IsZero() {
		return domain.Invalid("purchase_date", "is required")
	}
	if !warranty.Valid(purchase, uc.clock.Today()) {
		return domain.ErrWarrantyExpired
	}

	color, err := domain.OptionalText("color", in.Color, entity.ComplaintColorMax)
	if err != nil {
		return err
	}
	received, err := parseDate("received_date", in.ReceivedDate)
	if err != nil {
		return err
	}
	status := entity.ComplaintPending
	if in.Status != "" {
		status = entity.ComplaintStatus(in.Status)
		if !status.Valid() {
			return domain.Invalid("status", "unknown status")
		}
	}
	if d := in.DiscountPercent; d != nil && status == entity.ComplaintRejected && (*d < 0 || *d > 100) {
		return domain.Invalid("discount_percent", "must be between 0 and 100")
	}
	resolution, err := domain.OptionalText("resolution", in.Resolution, entity.ComplaintResolutionMax)
	if err != nil {
		return err
	}
	notes, err := domain.OptionalText("notes", in.Notes, entity.ComplaintNotesMax)
	if err != nil {
		return err
	}
	price := decimal.NullDecimal{}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return domain.Invalid("price", "must not be negative")
		}
		price = decimal.NewNullDecimal(in.Price.Round(2))
	}

	c.Customer, c.Phone, c.Brand, c.Model, c.Color = customer, phone, brand, model, color
	c.PurchaseDate, c.Defect = purchase, defect
	if !received.IsZero() {
		c.ReceivedDate = received
	}
	c.DiscountPercent = nil
	if in.DiscountPercent != nil {
		d := *in.DiscountPercent
		c.DiscountPercent = &d
	}
	c.SetStatus(status)
	c.Resolution, c.Notes, c.Price = resolution, notes, price
	c.CustomerCalled = in.CustomerCalled
	return nil
}

// QuickStatusChange sets the status named by action without touching other fields.
func (uc *ComplaintUseCase) QuickStatusChange(ctx context.Context, p entity.Principal, complaintID uint, action string) (*dto.ComplaintResponse, error) {
	target, ok := actionTargets[action]
	if !ok {
		return nil, domain.ErrInvalidAction
	}
	var updated *entity.Complaint
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		c, err := uc.load(ctx, repos, p, complaintID, "change complaint status")
		if err != nil {
			return err
		}
		if err := uc.checkArchived(c); err != nil {
			return err
		}
		c.SetStatus(target)
		if err := repos.Complaints.Update(ctx, c); err != nil {
			return domain.Persistence("complaints.QuickStatusChange", err)
		}
		if err := uc.record(ctx, repos, p, c, fmt.Sprintf("status changed to %s", target)); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toComplaintResponse(updated), nil
}

// Archive hides a resolved complaint from the regular listings. Archiving an
// archived complaint is a no-op without an audit entry.
func (uc *ComplaintUseCase) Archive(ctx context.Context, p entity.Principal, complaintID uint) (*dto.ArchiveResponse, error) {
	out := &dto.ArchiveResponse{}
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		c, err := uc.load(ctx, repos, p, complaintID, "archive complaint")
		if err != nil {
			return err
		}
		if !c.Status.Archivable() {
			return domain.ErrNotResolved
		}
		if c.Archived {
			out.Outcome, out.Message = string(ArchiveNoOp), "complaint is already archived"
			out.Complaint = *toComplaintResponse(c)
			return nil
		}

		now := uc.clock.Now().UTC()
		c.Archived, c.ArchivedAt = true, &now
		if err := repos.Complaints.Update(ctx, c); err != nil {
			return domain.Persistence("complaints.Archive", err)
		}
		if err := uc.record(ctx, repos, p, c, "complaint archived"); err != nil {
			return err
		}
		out.Outcome, out.Message = string(ArchiveDone), "complaint archived"
		out.Complaint = *toComplaintResponse(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns the complaints of one branch, newest received first.
func (uc *ComplaintUseCase) List(ctx context.Context, p entity.Principal, branchID uint, q dto.ComplaintQuery) (*dto.ComplaintListResponse, error) {
	branch, err := uc.repos.Branches.GetByID(ctx, branchID)
	if err != nil {
		return nil, domain.Persistence("complaints.List", err)
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.authorize(p, branchID, "list complaints"); err != nil {
		return nil, err
	}
	f, err := toFilter(q)
	if err != nil {
		return nil, err
	}
	f.BranchIDs = []uint{branchID}
	if q.Archived {
		f.Archived = repository.IncludeArchived
	}
	return uc.list(ctx, "complaints.List", f)
}

// Browse is the admin view across all branches, archived complaints included
// (or only them), capped at BrowseLimit rows.
func (uc *ComplaintUseCase) Browse(ctx context.Context, p entity.Principal, q dto.ComplaintQuery) (*dto.ComplaintListResponse, error) {
	if !p.IsAdmin() {
		uc.log.Warn().Str("actor", p.Actor()).Msg("complaint browser denied to non-admin")
		return nil, domain.ErrForbidden
	}
	f, err := toFilter(q)
	if err != nil {
		return nil, err
	}
	if q.BranchID != entity.NoBranch {
		f.BranchIDs = []uint{q.BranchID}
	}
	f.Archived = repository.IncludeArchived
	if q.Archived {
		f.Archived = repository.OnlyArchived
	}
	if f.Limit <= 0 || f.Limit > BrowseLimit {
		f.Limit = BrowseLimit
	}
	return uc.list(ctx, "complaints.Browse", f)
}

// Export returns every complaint of a branch for the CSV download, archived included.
func (uc *ComplaintUseCase) Export(ctx context.Context, p entity.Principal, branchID uint) (*entity.Branch, []*entity.Complaint, error) {
	branch, err := uc.repos.Branches.GetByID(ctx, branchID)
	if err != nil {
		return nil, nil, domain.Persistence("complaints.Export", err)
	}
	if branch == nil {
		return nil, nil, domain.ErrNotFound
	}
	if err := uc.authorize(p, branchID, "export complaints"); err != nil {
		return nil, nil, err
	}
	list, err := uc.repos.Complaints.List(ctx, repository.ComplaintFilter{
		BranchIDs: []uint{branchID},
		Archived:  repository.IncludeArchived,
	})
	if err != nil {
		return nil, nil, domain.Persistence("complaints.Export", err)
	}
	return branch, list, nil
}

func (uc *ComplaintUseCase) list(ctx context.Context, op string, f repository.ComplaintFilter) (*dto.ComplaintListResponse, error) {
	list, err := uc.repos.Complaints.List(ctx, f)
	if err != nil {
		return nil, domain.Persistence(op, err)
	}
	out := &dto.ComplaintListResponse{Items: make([]dto.ComplaintResponse, 0, len(list))}
	for _, c := range list {
		out.Items = append(out.Items, *toComplaintResponse(c))
	}
	return out, nil
}

// Get returns one complaint.
func (uc *ComplaintUseCase) Get(ctx context.Context, p entity.Principal, complaintID uint) (*dto.ComplaintResponse, error) {
	c, err := uc.load(ctx, uc.repos, p, complaintID, "read complaint")
	if err != nil {
		return nil, err
	}
	return toComplaintResponse(c), nil
}

// Receipt loads a complaint and its branch for the printable receipt.
func (uc *ComplaintUseCase) Receipt(ctx context.Context, p entity.Principal, complaintID uint) (*entity.Complaint, *entity.Branch, error) {
	c, err := uc.load(ctx, uc.repos, p, complaintID, "print complaint")
	if err != nil {
		return nil, nil, err
	}
	branch, err := uc.repos.Branches.GetByID(ctx, c.BranchID)
	if err != nil {
		return nil, nil, domain.Persistence("complaints.Receipt", err)
	}
	if branch == nil {
		return nil, nil, domain.ErrNotFound
	}
	return c, branch, nil
}

func (uc *ComplaintUseCase) checkArchived(c *entity.Complaint) error {
	if c.Archived && !uc.opts.AllowArchivedEdit {
		return domain.ErrArchived
	}
	return nil
}

func (uc *ComplaintUseCase) load(ctx context.Context, repos repository.Repos, p entity.Principal, id uint, what string) (*entity.Complaint, error) {
	c, err := repos.Complaints.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("complaints.GetByID", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.authorize(p, c.BranchID, what); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *ComplaintUseCase) authorize(p entity.Principal, branchID uint, what string) error {
	if access.CanAccess(p, branchID) {
		return nil
	}
	uc.log.Warn().Str("actor", p.Actor()).Uint("branch_id", branchID).Str("op", what).Msg("branch access denied")
	return domain.ErrForbidden
}

func (uc *ComplaintUseCase) record(ctx context.Context, repos repository.Repos, p entity.Principal, c *entity.Complaint, action string) error {
	return audit.Append(ctx, repos.Audit, uc.clock, entity.AuditEntry{
		Stream:    entity.StreamComplaint,
		SubjectID: c.ID,
		BranchID:  c.BranchID,
		Actor:     p.Actor(),
		Action:    action,
	})
}

func toFilter(q dto.ComplaintQuery) (repository.ComplaintFilter, error) {
	f := repository.ComplaintFilter{Query: q.Q, Limit: q.Limit}
	if q.Status != "" {
		f.Status = entity.ComplaintStatus(q.Status)
		if !f.Status.Valid() {
			return f, domain.Invalid("status", "unknown status")
		}
	}
	from, err := parseDate("from", q.From)
	if err != nil {
		return f, err
	}
	if !from.IsZero() {
		f.From = &from
	}
	to, err := parseDate("to", q.To)
	if err != nil {
		return f, err
	}
	if !to.IsZero() {
		f.To = &to
	}
	return f, nil
}

// parseDate returns the zero time for an empty string.
func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		return time.Time{}, domain.Invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

func toComplaintResponse(c *entity.Complaint) *dto.ComplaintResponse {
	resp := &dto.ComplaintResponse{
		ID:              c.ID,
		BranchID:        c.BranchID,
		Customer:        c.Customer,
		Phone:           c.Phone,
		Brand:           c.Brand,
		Model:           c.Model,
		Color:           c.Color,
		ReceivedDate:    c.ReceivedDate.Format(dto.DateLayout),
		PurchaseDate:    c.PurchaseDate.Format(dto.DateLayout),
		WarrantyEnd:     warranty.End(c.PurchaseDate).Format(dto.DateLayout),
		Defect:          c.Defect,
		Status:          string(c.Status),
		DiscountPercent: c.DiscountPercent,
		Resolution:      c.Resolution,
		Notes:           c.Notes,
		CustomerCalled:  c.CustomerCalled,
		Receiver:        c.Receiver,
		Archived:        c.Archived,
		ArchivedAt:      c.ArchivedAt,
		CreatedAt:       c.CreatedAt,
	}
	if c.Price.Valid {
		price := c.Price.Decimal
		resp.Price = &price
	}
	return resp
}
