package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/access"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
	"github.com/branchdesk/branchdesk-api/internal/infrastructure/database"
	"github.com/branchdesk/branchdesk-api/pkg/config"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedBranch(t *testing.T, db *database.DB, name string) *entity.Branch {
	t.Helper()
	b := &entity.Branch{Name: name, Company: "Obuv s.r.o."}
	require.NoError(t, database.NewBranchRepository(db.Gorm).Create(context.Background(), b))
	return b
}

func seedOrder(t *testing.T, db *database.DB, branchID uint, status entity.OrderStatus, date time.Time) *entity.Order {
	t.Helper()
	o := &entity.Order{
		BranchID: branchID, CustomerName: "Jan Novák", Phone: "+420123456789",
		OrderDate: date, Status: status,
		Amount: decimal.NewNullDecimal(decimal.RequireFromString("199.90")),
	}
	require.NoError(t, database.NewOrderRepository(db.Gorm).Create(context.Background(), o))
	return o
}

func seedComplaint(t *testing.T, db *database.DB, c *entity.Complaint) *entity.Complaint {
	t.Helper()
	if c.Customer == "" {
		c.Customer = "Eva Malá"
	}
	c.Phone, c.Defect = "+420777888999", "sole detached"
	if c.Brand == "" {
		c.Brand = "Baťa"
	}
	if c.Model == "" {
		c.Model = "Classic"
	}
	if c.PurchaseDate.IsZero() {
		c.PurchaseDate = day(2025, 3, 1)
	}
	if c.ReceivedDate.IsZero() {
		c.ReceivedDate = day(2026, 2, 1)
	}
	if c.Status == "" {
		c.Status = entity.ComplaintPending
	}
	require.NoError(t, database.NewComplaintRepository(db.Gorm).Create(context.Background(), c))
	return c
}

// ── TxRunner ─────────────────────────────────────────────────────────────────

func TestTxRunner_CommitsMutationAndAuditTogether(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	b := seedBranch(t, db, "Teplice")

	err := database.NewTxRunner(db.Gorm).Run(ctx, func(r repository.Repos) error {
		o := &entity.Order{BranchID: b.ID, CustomerName: "Petr", Phone: "+420111222333", OrderDate: day(2026, 1, 5), Status: entity.OrderActive}
		if err := r.Orders.Create(ctx, o); err != nil {
			return err
		}
		return r.Audit.Append(ctx, &entity.AuditEntry{
			Stream: entity.StreamOrder, SubjectID: o.ID, Actor: "eva", Action: "order created: Petr",
			At: time.Now().UTC(), BranchID: b.ID,
		})
	})
	require.NoError(t, err)

	orders, err := database.NewOrderRepository(db.Gorm).List(ctx, repository.OrderFilter{BranchIDs: []uint{b.ID}})
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	entries, err := database.NewAuditRepository(db.Gorm).Recent(ctx, repository.AuditQuery{Stream: entity.StreamOrder, Scope: access.Scope{All: true}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, orders[0].ID, entries[0].SubjectID)
}

func TestTxRunner_RollbackDiscardsMutationAndAudit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	b := seedBranch(t, db, "Teplice")
	boom := errors.New("boom")

	err := database.NewTxRunner(db.Gorm).Run(ctx, func(r repository.Repos) error {
		o := &entity.Order{BranchID: b.ID, CustomerName: "Petr", Phone: "+420111222333", OrderDate: day(2026, 1, 5), Status: entity.OrderActive}
		require.NoError(t, r.Orders.Create(ctx, o))
		require.NoError(t, r.Audit.Append(ctx, &entity.AuditEntry{Stream: entity.StreamOrder, SubjectID: o.ID, Actor: "eva", Action: "x", At: time.Now().UTC(), BranchID: b.ID}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	orders, err := database.NewOrderRepository(db.Gorm).List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
	entries, err := database.NewAuditRepository(db.Gorm).Recent(ctx, repository.AuditQuery{Stream: entity.StreamOrder, Scope: access.Scope{All: true}})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// ── Users ────────────────────────────────────────────────────────────────────

func TestUserRepo_LegacyBranchReadAndClearedOnWrite(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	teplice := seedBranch(t, db, "Teplice")
	decin := seedBranch(t, db, "Děčín")

	require.NoError(t, db.Gorm.Exec(
		"INSERT INTO users (username, password_hash, role, name, legacy_branch_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		"old", "plain", entity.RoleUser, "Old Timer", decin.ID, time.Now().UTC(),
	).Error)

	repo := database.NewUserRepository(db.Gorm)
	u, err := repo.GetByUsername(ctx, "old")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, []uint{decin.ID}, u.BranchIDs)
	legacy, ok := u.LegacyBranchID()
	assert.True(t, ok)
	assert.Equal(t, decin.ID, legacy)

	u.SetBranches(append(u.BranchIDs, teplice.ID))
	require.NoError(t, repo.Update(ctx, u))

	reloaded, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	_, ok = reloaded.LegacyBranchID()
	assert.False(t, ok, "legacy column is cleared once assignments are written")
	assert.ElementsMatch(t, []uint{teplice.ID, decin.ID}, reloaded.BranchIDs)
}

func TestUserRepo_DuplicatePINIsConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := database.NewUserRepository(db.Gorm)

	require.NoError(t, repo.Create(ctx, &entity.User{Username: "a", PasswordHash: "x", PIN: "1234", Role: entity.RoleUser}))
	err := repo.Create(ctx, &entity.User{Username: "b", PasswordHash: "x", PIN: "1234", Role: entity.RoleUser})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// users without a PIN do not collide
	require.NoError(t, repo.Create(ctx, &entity.User{Username: "c", PasswordHash: "x", Role: entity.RoleUser}))
	require.NoError(t, repo.Create(ctx, &entity.User{Username: "d", PasswordHash: "x", Role: entity.RoleUser}))
}

// ── Complaints ───────────────────────────────────────────────────────────────

func TestComplaintRepo_ListFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	b := seedBranch(t, db, "Teplice")
	other := seedBranch(t, db, "Děčín")

	seedComplaint(t, db, &entity.Complaint{BranchID: b.ID, Brand: "Adidas", ReceivedDate: day(2026, 1, 10)})
	seedComplaint(t, db, &entity.Complaint{BranchID: b.ID, Brand: "Nike", Status: entity.ComplaintExchanged, ReceivedDate: day(2026, 2, 10)})
	seedComplaint(t, db, &entity.Complaint{BranchID: b.ID, Brand: "Nike", Status: entity.ComplaintExchanged, Archived: true, ReceivedDate: day(2026, 3, 10)})
	seedComplaint(t, db, &entity.Complaint{BranchID: other.ID, Brand: "Nike"})

	repo := database.NewComplaintRepository(db.Gorm)

	got, err := repo.List(ctx, repository.ComplaintFilter{BranchIDs: []uint{b.ID}})
	require.NoError(t, err)
	require.Len(t, got, 2, "archived hidden by default")
	assert.Equal(t, "Nike", got[0].Brand, "newest received first")

	got, err = repo.List(ctx, repository.ComplaintFilter{BranchIDs: []uint{b.ID}, Query: "nik", Archived: repository.IncludeArchived})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	from, to := day(2026, 1, 1), day(2026, 1, 31)
	got, err = repo.List(ctx, repository.ComplaintFilter{BranchIDs: []uint{b.ID}, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Adidas", got[0].Brand)

	got, err = repo.List(ctx, repository.ComplaintFilter{Archived: repository.OnlyArchived})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Archived)
}

// ── Stats ────────────────────────────────────────────────────────────────────

func TestStatsRepo_OrderCounts_BulkMatchesPerBranch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	b1 := seedBranch(t, db, "Teplice")
	b2 := seedBranch(t, db, "Děčín")
	today := day(2026, 6, 15)

	seedOrder(t, db, b1.ID, entity.OrderActive, day(2026, 6, 10))    // fresh
	seedOrder(t, db, b1.ID, entity.OrderActive, day(2026, 5, 1))     // stale
	seedOrder(t, db, b1.ID, entity.OrderIssued, day(2026, 2, 1))
	seedOrder(t, db, b1.ID, entity.OrderUnclaimed, day(2026, 3, 1))
	seedOrder(t, db, b1.ID, entity.OrderDeleted, day(2026, 4, 1))
	seedOrder(t, db, b1.ID, entity.OrderIssued, day(2025, 12, 31))   // other year
	seedOrder(t, db, b1.ID, entity.OrderActive, day(2025, 11, 1))    // other year, still stale
	seedOrder(t, db, b2.ID, entity.OrderIssued, day(2026, 1, 20))

	repo := database.NewStatsRepository(db.Gorm)
	cutoff := entity.FreshCutoff(today)

	bulk, err := repo.OrderCountsByBranch(ctx, []uint{b1.ID, b2.ID}, 2026, cutoff)
	require.NoError(t, err)
	require.Len(t, bulk, 2)

	byID := map[uint]repository.OrderCounts{}
	for _, c := range bulk {
		byID[c.BranchID] = c
	}
	c1 := byID[b1.ID]
	assert.Equal(t, int64(2), c1.Active)
	assert.Equal(t, int64(1), c1.Issued)
	assert.Equal(t, int64(1), c1.Unclaimed)
	assert.Equal(t, int64(1), c1.Deleted)
	assert.Equal(t, int64(5), c1.Active+c1.Issued+c1.Unclaimed+c1.Deleted, "status counts add up to the year's orders")
	assert.Equal(t, int64(1), c1.Fresh)
	assert.Equal(t, int64(2), c1.Stale, "freshness ignores the year")
	assert.True(t, decimal.RequireFromString("199.90").Equal(c1.IssuedAmount))

	single, err := repo.OrderCountsForBranch(ctx, b1.ID, 2026, cutoff)
	require.NoError(t, err)
	assert.Equal(t, c1.Active, single.Active)
	assert.Equal(t, c1.Stale, single.Stale)

	empty, err := repo.OrderCountsForBranch(ctx, 9999, 2026, cutoff)
	require.NoError(t, err)
	assert.Equal(t, uint(9999), empty.BranchID)
	assert.Zero(t, empty.Active)
}

func TestStatsRepo_ComplaintCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	b := seedBranch(t, db, "Teplice")
	discount := 20.0

	seedComplaint(t, db, &entity.Complaint{BranchID: b.ID, Status: entity.ComplaintPending})
	seedComplaint(t, db, &entity.Complaint{BranchID: b.ID, Status: entity.ComplaintRejected, DiscountPercent: &discount})
	seedComplaint(t, db, &entity.Complaint{BranchID: b.ID, Status: entity.ComplaintRejected})
	seedComplaint(t, db, &entity.Complaint{BranchID: b.ID, Status: entity.ComplaintSentForRepair, ReceivedDate: day(2025, 8, 1)})
	seedComplaint(t, db, &entity.Complaint{BranchID: b.ID, Status: entity.ComplaintExchanged, Archived: true})

	repo := database.NewStatsRepository(db.Gorm)

	all, err := repo.ComplaintCountsByBranch(ctx, []uint{b.ID}, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(1), all[0].Pending)
	assert.Equal(t, int64(2), all[0].Rejected)
	assert.Equal(t, int64(1), all[0].Discounted)
	assert.Equal(t, int64(1), all[0].SentForRepair)
	assert.Equal(t, int64(0), all[0].Exchanged, "archived complaints are excluded")

	year := 2026
	only2026, err := repo.ComplaintCountsForBranch(ctx, b.ID, &year)
	require.NoError(t, err)
	assert.Equal(t, int64(0), only2026.SentForRepair)
	assert.Equal(t, int64(2), only2026.Rejected)
}

func TestStatsRepo_PeriodQueries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	b := seedBranch(t, db, "Teplice")
	seedOrder(t, db, b.ID, entity.OrderIssued, day(2026, 1, 3))
	seedOrder(t, db, b.ID, entity.OrderIssued, day(2026, 1, 9))
	seedOrder(t, db, b.ID, entity.OrderActive, day(2026, 4, 9))
	seedComplaint(t, db, &entity.Complaint{BranchID: b.ID, Brand: "Nike", ReceivedDate: day(2026, 4, 1)})
	seedComplaint(t, db, &entity.Complaint{BranchID: b.ID, Brand: "Nike", ReceivedDate: day(2026, 4, 2)})
	seedComplaint(t, db, &entity.Complaint{BranchID: b.ID, Brand: "Puma", ReceivedDate: day(2026, 4, 3)})

	repo := database.NewStatsRepository(db.Gorm)
	f := repository.PeriodFilter{Year: 2026}

	months, err := repo.OrdersPerMonth(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []repository.MonthCount{{Month: 1, Count: 2}, {Month: 4, Count: 1}}, months)

	cmonths, err := repo.ComplaintsPerMonth(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []repository.MonthCount{{Month: 4, Count: 3}}, cmonths)

	april := 4
	customers, err := repo.TopCustomers(ctx, repository.PeriodFilter{Year: 2026, Month: &april}, 10)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, int64(1), customers[0].Count)

	totals, err := repo.OrderTotals(ctx, repository.PeriodFilter{Year: 2026, Month: &april})
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Active)
	assert.Equal(t, int64(0), totals.Issued)

	ctotals, err := repo.ComplaintTotals(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(3), ctotals.Pending)

	brands, err := repo.TopComplaintBrands(ctx, f, 1)
	require.NoError(t, err)
	require.Len(t, brands, 1)
	assert.Equal(t, repository.NamedCount{Name: "Nike", Count: 2}, brands[0])
}

// ── Audit ────────────────────────────────────────────────────────────────────

func TestAuditRepo_RecentRespectsScopeAndLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := database.NewAuditRepository(db.Gorm)
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, &entity.AuditEntry{
			Stream: entity.StreamComplaint, SubjectID: uint(i + 1), Actor: "eva",
			Action: "status changed", At: base.Add(time.Duration(i) * time.Minute), BranchID: uint(1 + i%2),
		}))
	}
	require.NoError(t, repo.Append(ctx, &entity.AuditEntry{Stream: entity.StreamOrder, Actor: "admin", Action: "branch created", At: base, BranchID: entity.NoBranch}))

	got, err := repo.Recent(ctx, repository.AuditQuery{Stream: entity.StreamComplaint, Scope: access.Scope{IDs: []uint{1}}, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].At.After(got[1].At))
	for _, e := range got {
		assert.Equal(t, uint(1), e.BranchID)
	}

	none, err := repo.Recent(ctx, repository.AuditQuery{Stream: entity.StreamOrder, Scope: access.Scope{IDs: []uint{}}})
	require.NoError(t, err)
	assert.Empty(t, none)

	admin, err := repo.Recent(ctx, repository.AuditQuery{Stream: entity.StreamOrder, Scope: access.Scope{All: true}})
	require.NoError(t, err)
	require.Len(t, admin, 1)
	assert.Equal(t, uint(0), admin[0].SubjectID)
}
