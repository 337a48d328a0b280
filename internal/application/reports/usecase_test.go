package reports_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchdesk/branchdesk-api/internal/application/complaints"
	"github.com/branchdesk/branchdesk-api/internal/application/reports"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/testutil/memstore"
	"github.com/branchdesk/branchdesk-api/pkg/clock"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

var now = time.Date(2026, 3, 5, 16, 0, 0, 0, time.UTC)

type recorder struct {
	receiptFor *entity.Complaint
	csvRows    int
	csvEnc     reports.Encoding
	snapshot   reports.Snapshot
}

func (r *recorder) ComplaintReceipt(_ context.Context, c *entity.Complaint, _ *entity.Branch, _ time.Time) ([]byte, error) {
	r.receiptFor = c
	return []byte("%PDF"), nil
}

func (r *recorder) ComplaintCSV(_ context.Context, _ *entity.Branch, list []*entity.Complaint, enc reports.Encoding) ([]byte, error) {
	r.csvRows, r.csvEnc = len(list), enc
	return []byte("csv"), nil
}

func (r *recorder) Workbook(_ context.Context, s reports.Snapshot) ([]byte, error) {
	r.snapshot = s
	return []byte("xlsx"), nil
}

type fixture struct {
	store   *memstore.Store
	rec     *recorder
	uc      *reports.ReportUseCase
	teplice *entity.Branch
	decin   *entity.Branch
	admin   entity.Principal
	staff   entity.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	f := &fixture{store: store, rec: &recorder{}}
	f.teplice = store.AddBranch("Teplice")
	f.decin = store.AddBranch("Děčín Město")
	f.admin = entity.Principal{UserID: 1, Role: entity.RoleAdmin, Authenticated: true}
	f.staff = entity.Principal{UserID: 2, Role: entity.RoleUser, BranchIDs: []uint{f.decin.ID}, Authenticated: true}

	clk := clock.Fixed(now)
	cuc := complaints.NewComplaintUseCase(store.Repos(), store.Runner(), clk, complaints.Options{}, logger.Nop())
	f.uc = reports.NewReportUseCase(cuc, store.Repos(), reports.Renderers{Receipt: f.rec, CSV: f.rec, Workbook: f.rec}, clk, logger.Nop())
	return f
}

func (f *fixture) complaint(branchID uint, archived bool) *entity.Complaint {
	return f.store.AddComplaint(&entity.Complaint{
		BranchID: branchID, Customer: "Jan", Brand: "Nike", Model: "Air",
		ReceivedDate: now, PurchaseDate: now, Status: entity.ComplaintExchanged, Archived: archived,
	})
}

func TestComplaintReceipt_ChecksBranchAccess(t *testing.T) {
	f := newFixture(t)
	c := f.complaint(f.teplice.ID, false)

	_, err := f.uc.ComplaintReceipt(context.Background(), f.staff, c.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	doc, err := f.uc.ComplaintReceipt(context.Background(), f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, reports.ContentTypePDF, doc.ContentType)
	assert.Equal(t, fmt.Sprintf("complaint_%d.pdf", c.ID), doc.Filename)
	assert.Equal(t, c.ID, f.rec.receiptFor.ID)
}

func TestComplaintCSV_IncludesArchived(t *testing.T) {
	f := newFixture(t)
	f.complaint(f.decin.ID, false)
	f.complaint(f.decin.ID, true)
	f.complaint(f.teplice.ID, false)

	doc, err := f.uc.ComplaintCSV(context.Background(), f.staff, f.decin.ID, reports.CP1250)
	require.NoError(t, err)
	assert.Equal(t, 2, f.rec.csvRows)
	assert.Equal(t, reports.CP1250, f.rec.csvEnc)
	assert.Equal(t, "text/csv; charset=windows-1250", doc.ContentType)
	assert.Equal(t, "complaints_Děčín_Město_20260305.csv", doc.Filename)

	_, err = f.uc.ComplaintCSV(context.Background(), f.staff, f.teplice.ID, reports.UTF8)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestWorkbook_AdminOnlyAndComplete(t *testing.T) {
	f := newFixture(t)
	f.store.AddOrder(&entity.Order{BranchID: f.teplice.ID, CustomerName: "Eva", OrderDate: now, Status: entity.OrderDeleted})
	f.complaint(f.decin.ID, true)

	_, err := f.uc.Workbook(context.Background(), f.staff)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	doc, err := f.uc.Workbook(context.Background(), f.admin)
	require.NoError(t, err)
	assert.Equal(t, "export_all_20260305.xlsx", doc.Filename)
	assert.Len(t, f.rec.snapshot.Orders, 1)
	assert.Len(t, f.rec.snapshot.Complaints, 1)
	assert.Equal(t, "Teplice", f.rec.snapshot.BranchName(f.teplice.ID))
	assert.Equal(t, "N/A", f.rec.snapshot.BranchName(999))
}

func TestParseEncoding(t *testing.T) {
	enc, ok := reports.ParseEncoding("")
	assert.True(t, ok)
	assert.Equal(t, reports.UTF8, enc)

	enc, ok = reports.ParseEncoding("windows-1250")
	assert.True(t, ok)
	assert.Equal(t, reports.CP1250, enc)

	_, ok = reports.ParseEncoding("latin1")
	assert.False(t, ok)
}
