package complaints_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchdesk/branchdesk-api/internal/application/complaints"
	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/testutil/memstore"
	"github.com/branchdesk/branchdesk-api/pkg/clock"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

var today = time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)

type fixture struct {
	store  *memstore.Store
	uc     *complaints.ComplaintUseCase
	branch *entity.Branch
	other  *entity.Branch
	staff  entity.Principal
	admin  entity.Principal
}

func newFixture(t *testing.T, opts complaints.Options) *fixture {
	t.Helper()
	store := memstore.New()
	f := &fixture{store: store}
	f.branch = store.AddBranch("Teplice")
	f.other = store.AddBranch("Děčín")
	f.staff = entity.Principal{
		UserID: 7, Username: "eva", DisplayName: "Eva Malá",
		Role: entity.RoleUser, BranchIDs: []uint{f.branch.ID}, Authenticated: true,
	}
	f.admin = entity.Principal{UserID: 1, Username: "admin", DisplayName: "Admin", Role: entity.RoleAdmin, Authenticated: true}
	f.uc = complaints.NewComplaintUseCase(store.Repos(), store.Runner(), clock.Fixed(today), opts, logger.Nop())
	return f
}

func validRequest() dto.ComplaintRequest {
	return dto.ComplaintRequest{
		Customer:     "Karel Dvořák",
		Phone:        "603111222",
		Brand:        "Baťa",
		Model:        "Comfort",
		Color:        "černá",
		PurchaseDate: "2025-06-01",
		Defect:       "odlepená podrážka",
	}
}

func pct(v float64) *float64 { return &v }

func (f *fixture) create(t *testing.T, in dto.ComplaintRequest) *dto.ComplaintResponse {
	t.Helper()
	out, err := f.uc.Create(context.Background(), f.staff, f.branch.ID, in)
	require.NoError(t, err)
	return out
}

// ── Create ───────────────────────────────────────────────────────────────────

func TestCreate_Defaults(t *testing.T) {
	f := newFixture(t, complaints.Options{})
	out := f.create(t, validRequest())

	assert.Equal(t, "pending", out.Status)
	assert.Equal(t, "+420603111222", out.Phone)
	assert.Equal(t, "2026-03-01", out.ReceivedDate)
	assert.Equal(t, "2027-06-01", out.WarrantyEnd)
	assert.Equal(t, "Eva Malá", out.Receiver)
	assert.False(t, out.Archived)

	entries := f.store.Audit()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.StreamComplaint, entries[0].Stream)
	assert.Equal(t, "complaint created, status: pending", entries[0].Action)
}

func TestCreate_WarrantyBoundary(t *testing.T) {
	f := newFixture(t, complaints.Options{})

	in := validRequest()
	in.PurchaseDate = "2024-03-01" // ends today
	_, err := f.uc.Create(context.Background(), f.staff, f.branch.ID, in)
	require.NoError(t, err)

	in.PurchaseDate = "2024-02-29" // ends 2026-02-28
	_, err = f.uc.Create(context.Background(), f.staff, f.branch.ID, in)
	require.ErrorIs(t, err, domain.ErrWarrantyExpired)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, f.store.Audit(), 1)
}

func TestCreate_WarrantyCheckedBeforeOptionalFields(t *testing.T) {
	f := newFixture(t, complaints.Options{})
	in := validRequest()
	in.PurchaseDate = "2020-01-01"
	in.Status = "bogus"

	_, err := f.uc.Create(context.Background(), f.staff, f.branch.ID, in)
	assert.ErrorIs(t, err, domain.ErrWarrantyExpired)
}

func TestCreate_RequiredFields(t *testing.T) {
	cases := []struct {
		field string
		edit  func(*dto.ComplaintRequest)
	}{
		{"customer", func(r *dto.ComplaintRequest) { r.Customer = " " }},
		{"phone", func(r *dto.ComplaintRequest) { r.Phone = "12345" }},
		{"brand", func(r *dto.ComplaintRequest) { r.Brand = "" }},
		{"model", func(r *dto.ComplaintRequest) { r.Model = "" }},
		{"defect", func(r *dto.ComplaintRequest) { r.Defect = "" }},
		{"purchase_date", func(r *dto.ComplaintRequest) { r.PurchaseDate = "" }},
		{"received_date", func(r *dto.ComplaintRequest) { r.ReceivedDate = "yesterday" }},
		{"status", func(r *dto.ComplaintRequest) { r.Status = "lost" }},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			f := newFixture(t, complaints.Options{})
			in := validRequest()
			tc.edit(&in)

			_, err := f.uc.Create(context.Background(), f.staff, f.branch.ID, in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.Empty(t, f.store.Audit())
		})
	}
}

func TestCreate_DiscountKeptOnlyWhenRejected(t *testing.T) {
	f := newFixture(t, complaints.Options{})

	in := validRequest()
	in.Status, in.DiscountPercent = "rejected", pct(15)
	rejected := f.create(t, in)
	require.NotNil(t, rejected.DiscountPercent)
	assert.Equal(t, 15.0, *rejected.DiscountPercent)

	in.Status = "exchanged"
	exchanged := f.create(t, in)
	assert.Nil(t, exchanged.DiscountPercent)
}

func TestCreate_DiscountOutOfRange(t *testing.T) {
	f := newFixture(t, complaints.Options{})
	in := validRequest()
	in.Status, in.DiscountPercent = "rejected", pct(120)

	_, err := f.uc.Create(context.Background(), f.staff, f.branch.ID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_ForeignBranchIsForbidden(t *testing.T) {
	f := newFixture(t, complaints.Options{})
	_, err := f.uc.Create(context.Background(), f.staff, f.other.ID, validRequest())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ── Edit ─────────────────────────────────────────────────────────────────────

func TestEdit_RechecksWarrantyAndKeepsReceiver(t *testing.T) {
	f := newFixture(t, complaints.Options{})
	created := f.create(t, validRequest())

	in := validRequest()
	in.PurchaseDate = "2023-01-01"
	_, err := f.uc.Edit(context.Background(), f.admin, created.ID, in)
	require.ErrorIs(t, err, domain.ErrWarrantyExpired)

	in = validRequest()
	in.Notes = "zákazník volal"
	out, err := f.uc.Edit(context.Background(), f.admin, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Eva Malá", out.Receiver)
	assert.Equal(t, "zákazník volal", out.Notes)
	assert.Equal(t, "2026-03-01", out.ReceivedDate)

	entries := f.store.Audit()
	require.Len(t, entries, 2)
	assert.Equal(t, "complaint updated, status: pending", entries[1].Action)
	assert.Equal(t, "Admin", entries[1].Actor)
}

func TestEdit_ArchivedRejectedUnlessAllowed(t *testing.T) {
	f := newFixture(t, complaints.Options{})
	archivedAt := today
	c := f.store.AddComplaint(&entity.Complaint{
		BranchID: f.branch.ID, Customer: "A", Status: entity.ComplaintExchanged,
		PurchaseDate: today, ReceivedDate: today, Archived: true, ArchivedAt: &archivedAt,
	})

	_, err := f.uc.Edit(context.Background(), f.staff, c.ID, validRequest())
	assert.ErrorIs(t, err, domain.ErrArchived)
	_, err = f.uc.QuickStatusChange(context.Background(), f.staff, c.ID, complaints.ActionPending)
	assert.ErrorIs(t, err, domain.ErrArchived)

	allowed := complaints.NewComplaintUseCase(f.store.Repos(), f.store.Runner(), clock.Fixed(today),
		complaints.Options{AllowArchivedEdit: true}, logger.Nop())
	out, err := allowed.QuickStatusChange(context.Background(), f.staff, c.ID, complaints.ActionRejected)
	require.NoError(t, err)
	assert.Equal(t, "rejected", out.Status)
	assert.True(t, out.Archived)
}

// ── QuickStatusChange ────────────────────────────────────────────────────────

func TestQuickStatusChange_ClearsDiscount(t *testing.T) {
	f := newFixture(t, complaints.Options{})
	in := validRequest()
	in.Status, in.DiscountPercent = "rejected", pct(30)
	created := f.create(t, in)

	out, err := f.uc.QuickStatusChange(context.Background(), f.staff, created.ID, complaints.ActionSentForRepair)
	require.NoError(t, err)
	assert.Equal(t, "sent_for_repair", out.Status)
	assert.Nil(t, out.DiscountPercent)

	out, err = f.uc.QuickStatusChange(context.Background(), f.staff, created.ID, complaints.ActionRejected)
	require.NoError(t, err)
	assert.Nil(t, out.DiscountPercent)

	entries := f.store.Audit()
	assert.Equal(t, "status changed to sent_for_repair", entries[1].Action)
}

func TestQuickStatusChange_UnknownAction(t *testing.T) {
	f := newFixture(t, complaints.Options{})
	created := f.create(t, validRequest())

	_, err := f.uc.QuickStatusChange(context.Background(), f.staff, created.ID, "sent_for_repair")
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
	assert.Len(t, f.store.Audit(), 1)
}

// ── Archive ──────────────────────────────────────────────────────────────────

func TestArchive_OnlyResolved(t *testing.T) {
	for _, action := range []string{complaints.ActionPending, complaints.ActionSentForRepair} {
		t.Run(action, func(t *testing.T) {
			f := newFixture(t, complaints.Options{})
			created := f.create(t, validRequest())
			_, err := f.uc.QuickStatusChange(context.Background(), f.staff, created.ID, action)
			require.NoError(t, err)

			_, err = f.uc.Archive(context.Background(), f.staff, created.ID)
			require.ErrorIs(t, err, domain.ErrNotResolved)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "only resolved complaints can be archived", ve.Message)

			got, err := f.uc.Get(context.Background(), f.staff, created.ID)
			require.NoError(t, err)
			assert.False(t, got.Archived)
			assert.Len(t, f.store.Audit(), 2)
		})
	}
}

func TestArchive_IdempotentWithoutSecondAudit(t *testing.T) {
	f := newFixture(t, complaints.Options{})
	in := validRequest()
	in.Status = "exchanged"
	created := f.create(t, in)

	first, err := f.uc.Archive(context.Background(), f.staff, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(complaints.ArchiveDone), first.Outcome)
	assert.True(t, first.Complaint.Archived)
	require.NotNil(t, first.Complaint.ArchivedAt)
	assert.Equal(t, today, *first.Complaint.ArchivedAt)

	second, err := f.uc.Archive(context.Background(), f.staff, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(complaints.ArchiveNoOp), second.Outcome)

	entries := f.store.Audit()
	require.Len(t, entries, 2)
	assert.Equal(t, "complaint archived", entries[1].Action)
}

// ── List / Browse ────────────────────────────────────────────────────────────

func TestList_FiltersAndHidesArchived(t *testing.T) {
	f := newFixture(t, complaints.Options{})
	day := func(d int) time.Time { return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC) }
	f.store.AddComplaint(&entity.Complaint{BranchID: f.branch.ID, Customer: "Jiří Bílý", Brand: "Nike", Status: entity.ComplaintPending, ReceivedDate: day(1)})
	f.store.AddComplaint(&entity.Complaint{BranchID: f.branch.ID, Customer: "Anna", Brand: "Puma", Status: entity.ComplaintRejected, ReceivedDate: day(5)})
	f.store.AddComplaint(&entity.Complaint{BranchID: f.branch.ID, Customer: "Old", Brand: "Nike", Status: entity.ComplaintExchanged, ReceivedDate: day(3), Archived: true})
	f.store.AddComplaint(&entity.Complaint{BranchID: f.other.ID, Customer: "Far", Brand: "Nike", Status: entity.ComplaintPending, ReceivedDate: day(4)})

	out, err := f.uc.List(context.Background(), f.staff, f.branch.ID, dto.ComplaintQuery{})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Anna", out.Items[0].Customer)

	out, err = f.uc.List(context.Background(), f.staff, f.branch.ID, dto.ComplaintQuery{Q: "nike", Archived: true})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Old", out.Items[0].Customer)

	out, err = f.uc.List(context.Background(), f.staff, f.branch.ID, dto.ComplaintQuery{From: "2026-02-02", To: "2026-02-05"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)

	out, err = f.uc.List(context.Background(), f.staff, f.branch.ID, dto.ComplaintQuery{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Jiří Bílý", out.Items[0].Customer)

	_, err = f.uc.List(context.Background(), f.staff, f.branch.ID, dto.ComplaintQuery{Status: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.List(context.Background(), f.staff, f.other.ID, dto.ComplaintQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBrowse_AdminOnlyAcrossBranches(t *testing.T) {
	f := newFixture(t, complaints.Options{})
	f.store.AddComplaint(&entity.Complaint{BranchID: f.branch.ID, Customer: "A", Status: entity.ComplaintPending, ReceivedDate: today})
	f.store.AddComplaint(&entity.Complaint{BranchID: f.other.ID, Customer: "B", Status: entity.ComplaintRejected, ReceivedDate: today, Archived: true})

	_, err := f.uc.Browse(context.Background(), f.staff, dto.ComplaintQuery{})
	require.ErrorIs(t, err, domain.ErrForbidden)

	all, err := f.uc.Browse(context.Background(), f.admin, dto.ComplaintQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	archived, err := f.uc.Browse(context.Background(), f.admin, dto.ComplaintQuery{Archived: true})
	require.NoError(t, err)
	require.Len(t, archived.Items, 1)
	assert.Equal(t, "B", archived.Items[0].Customer)

	branch, err := f.uc.Browse(context.Background(), f.admin, dto.ComplaintQuery{BranchID: f.branch.ID})
	require.NoError(t, err)
	require.Len(t, branch.Items, 1)
	assert.Equal(t, "A", branch.Items[0].Customer)
}
