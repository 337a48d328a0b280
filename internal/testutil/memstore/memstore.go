// Package memstore is an in-memory implementation of the repository ports for
// use-case tests. TxRunner snapshots the whole store and restores it when the
// callback fails, so rollback behaves like the database one.
// It is not safe for concurrent use.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
	"github.com/branchdesk/branchdesk-api/pkg/textnorm"
)

// Store holds every table.
type Store struct {
	mu sync.Mutex

	nextID     uint
	branches   map[uint]entity.Branch
	users      map[uint]entity.User
	orders     map[uint]entity.Order
	complaints map[uint]entity.Complaint
	audit      []entity.AuditEntry

	// FailAppend makes the next audit Append return this error.
	FailAppend error
	// Now stamps CreatedAt/UpdatedAt. Defaults to time.Now.
	Now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		branches:   map[uint]entity.Branch{},
		users:      map[uint]entity.User{},
		orders:     map[uint]entity.Order{},
		complaints: map[uint]entity.Complaint{},
		Now:        time.Now,
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// Repos returns repositories working directly on the store.
func (s *Store) Repos() repository.Repos {
	return repository.Repos{
		Branches:   branchRepo{s},
		Users:      userRepo{s},
		Orders:     orderRepo{s},
		Complaints: complaintRepo{s},
		Audit:      auditRepo{s},
	}
}

// Runner returns a TxRunner over the store.
func (s *Store) Runner() repository.TxRunner { return txRunner{s} }

// Audit returns a copy of every appended entry in insertion order.
func (s *Store) Audit() []entity.AuditEntry {
	return append([]entity.AuditEntry(nil), s.audit...)
}

// AddBranch inserts a branch and returns it.
func (s *Store) AddBranch(name string) *entity.Branch {
	b := &entity.Branch{Name: name, Company: "Obuv s.r.o."}
	_ = branchRepo{s}.Create(context.Background(), b)
	return b
}

// AddOrder inserts an order as-is.
func (s *Store) AddOrder(o *entity.Order) *entity.Order {
	_ = orderRepo{s}.Create(context.Background(), o)
	return o
}

// AddComplaint inserts a complaint as-is.
func (s *Store) AddComplaint(c *entity.Complaint) *entity.Complaint {
	_ = complaintRepo{s}.Create(context.Background(), c)
	return c
}

// AddUser inserts a user as-is.
func (s *Store) AddUser(u *entity.User) *entity.User {
	_ = userRepo{s}.Create(context.Background(), u)
	return u
}

// ── TxRunner ─────────────────────────────────────────────────────────────────

type txRunner struct{ s *Store }

type snapshot struct {
	nextID     uint
	branches   map[uint]entity.Branch
	users      map[uint]entity.User
	orders     map[uint]entity.Order
	complaints map[uint]entity.Complaint
	audit      []entity.AuditEntry
}

func (r txRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		nextID:     s.nextID,
		branches:   cloneMap(s.branches),
		users:      cloneMap(s.users),
		orders:     cloneMap(s.orders),
		complaints: cloneMap(s.complaints),
		audit:      append([]entity.AuditEntry(nil), s.audit...),
	}
	if err := fn(s.Repos()); err != nil {
		s.nextID = snap.nextID
		s.branches, s.users, s.orders, s.complaints, s.audit =
			snap.branches, snap.users, snap.orders, snap.complaints, snap.audit
		return err
	}
	return nil
}

func cloneMap[V any](m map[uint]V) map[uint]V {
	out := make(map[uint]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ── Branches ─────────────────────────────────────────────────────────────────

type branchRepo struct{ s *Store }

func (r branchRepo) Create(_ context.Context, b *entity.Branch) error {
	for _, other := range r.s.branches {
		if other.Name == b.Name {
			return domain.ErrConflict
		}
	}
	b.ID, b.CreatedAt = r.s.id(), r.s.Now()
	r.s.branches[b.ID] = *b
	return nil
}

func (r branchRepo) GetByID(_ context.Context, id uint) (*entity.Branch, error) {
	b, ok := r.s.branches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r branchRepo) GetByName(_ context.Context, name string) (*entity.Branch, error) {
	for _, b := range r.s.branches {
		if b.Name == name {
			b := b
			return &b, nil
		}
	}
	return nil, nil
}

func (r branchRepo) List(_ context.Context) ([]*entity.Branch, error) {
	out := make([]*entity.Branch, 0, len(r.s.branches))
	for _, b := range r.s.branches {
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r branchRepo) Update(_ context.Context, b *entity.Branch) error {
	for id, other := range r.s.branches {
		if id != b.ID && other.Name == b.Name {
			return domain.ErrConflict
		}
	}
	r.s.branches[b.ID] = *b
	return nil
}

func (r branchRepo) Delete(_ context.Context, id uint) error {
	delete(r.s.branches, id)
	for uid, u := range r.s.users {
		if !containsID(u.BranchIDs, id) {
			continue
		}
		kept := make([]uint, 0, len(u.BranchIDs))
		for _, b := range u.BranchIDs {
			if b != id {
				kept = append(kept, b)
			}
		}
		u.SetBranches(kept)
		r.s.users[uid] = u
	}
	return nil
}

func (r branchRepo) CountDependents(_ context.Context, id uint) (int64, int64, error) {
	var orders, complaints int64
	for _, o := range r.s.orders {
		if o.BranchID == id {
			orders++
		}
	}
	for _, c := range r.s.complaints {
		if c.BranchID == id {
			complaints++
		}
	}
	return orders, complaints, nil
}

// ── Users ────────────────────────────────────────────────────────────────────

type userRepo struct{ s *Store }

func (r userRepo) conflict(u *entity.User) bool {
	for id, other := range r.s.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username || (u.PIN != "" && other.PIN == u.PIN) {
			return true
		}
	}
	return false
}

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	if r.conflict(u) {
		return domain.ErrConflict
	}
	u.ID, u.CreatedAt = r.s.id(), r.s.Now()
	r.s.users[u.ID] = copyUser(*u)
	return nil
}

// copyUser keeps the legacy assignment that AttachLegacyBranch recorded.
func copyUser(u entity.User) entity.User {
	u.BranchIDs = append([]uint(nil), u.BranchIDs...)
	return u
}

func (r userRepo) GetByID(_ context.Context, id uint) (*entity.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	u = copyUser(u)
	return &u, nil
}

func (r userRepo) find(match func(entity.User) bool) *entity.User {
	for _, u := range r.s.users {
		if match(u) {
			u = copyUser(u)
			return &u
		}
	}
	return nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Username == username }), nil
}

func (r userRepo) GetByPIN(_ context.Context, pin string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.PIN != "" && u.PIN == pin }), nil
}

func (r userRepo) List(_ context.Context) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u = copyUser(u)
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r userRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.s.users[u.ID]; !ok {
		return nil
	}
	if r.conflict(u) {
		return domain.ErrConflict
	}
	u.SetBranches(u.BranchIDs)
	r.s.users[u.ID] = copyUser(*u)
	return nil
}

func (r userRepo) UpdatePasswordHash(_ context.Context, id uint, hash string) error {
	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	u.PasswordHash = hash
	r.s.users[id] = u
	return nil
}

func (r userRepo) Delete(_ context.Context, id uint) error {
	delete(r.s.users, id)
	return nil
}

func (r userRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.s.users)), nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, o *entity.Order) error {
	now := r.s.Now()
	o.ID, o.CreatedAt, o.UpdatedAt = r.s.id(), now, now
	r.s.orders[o.ID] = *o
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id uint) (*entity.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r orderRepo) Update(_ context.Context, o *entity.Order) error {
	o.UpdatedAt = r.s.Now()
	r.s.orders[o.ID] = *o
	return nil
}

func (r orderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	out := []*entity.Order{}
	for _, o := range r.s.orders {
		if len(f.BranchIDs) > 0 && !containsID(f.BranchIDs, o.BranchID) {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, o.Status) {
			continue
		}
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func containsStatus(list []entity.OrderStatus, s entity.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsID(list []uint, id uint) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

// ── Complaints ───────────────────────────────────────────────────────────────

type complaintRepo struct{ s *Store }

func copyComplaint(c entity.Complaint) entity.Complaint {
	if c.DiscountPercent != nil {
		d := *c.DiscountPercent
		c.DiscountPercent = &d
	}
	if c.ArchivedAt != nil {
		t := *c.ArchivedAt
		c.ArchivedAt = &t
	}
	return c
}

func (r complaintRepo) Create(_ context.Context, c *entity.Complaint) error {
	c.ID, c.CreatedAt = r.s.id(), r.s.Now()
	r.s.complaints[c.ID] = copyComplaint(*c)
	return nil
}

func (r complaintRepo) GetByID(_ context.Context, id uint) (*entity.Complaint, error) {
	c, ok := r.s.complaints[id]
	if !ok {
		return nil, nil
	}
	c = copyComplaint(c)
	return &c, nil
}

func (r complaintRepo) Update(_ context.Context, c *entity.Complaint) error {
	r.s.complaints[c.ID] = copyComplaint(*c)
	return nil
}

func (r complaintRepo) List(_ context.Context, f repository.ComplaintFilter) ([]*entity.Complaint, error) {
	term := textnorm.Fold(f.Query)
	out := []*entity.Complaint{}
	for _, c := range r.s.complaints {
		if len(f.BranchIDs) > 0 && !containsID(f.BranchIDs, c.BranchID) {
			continue
		}
		switch f.Archived {
		case repository.ExcludeArchived:
			if c.Archived {
				continue
			}
		case repository.OnlyArchived:
			if !c.Archived {
				continue
			}
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.From != nil && c.ReceivedDate.Before(*f.From) {
			continue
		}
		if f.To != nil && c.ReceivedDate.After(*f.To) {
			continue
		}
		if term != "" && !matches(c, term) {
			continue
		}
		c = copyComplaint(c)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedDate.Equal(out[j].ReceivedDate) {
			return out[i].ReceivedDate.After(out[j].ReceivedDate)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(c entity.Complaint, term string) bool {
	for _, field := range []string{c.Customer, c.Phone, c.Brand, c.Model, c.Color} {
		if strings.Contains(textnorm.Fold(field), term) {
			return true
		}
	}
	return false
}

// ── Audit ────────────────────────────────────────────────────────────────────

type auditRepo struct{ s *Store }

func (r auditRepo) Append(_ context.Context, e *entity.AuditEntry) error {
	if err := r.s.FailAppend; err != nil {
		r.s.FailAppend = nil
		return err
	}
	if e.Stream != entity.StreamComplaint {
		e.Stream = entity.StreamOrder
	}
	e.ID = r.s.id()
	r.s.audit = append(r.s.audit, *e)
	return nil
}

func (r auditRepo) Recent(_ context.Context, q repository.AuditQuery) ([]*entity.AuditEntry, error) {
	out := []*entity.AuditEntry{}
	if q.Scope.Empty() {
		return out, nil
	}
	for _, e := range r.s.audit {
		if e.Stream != q.Stream || !q.Scope.Contains(e.BranchID) {
			continue
		}
		e := e
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.After(out[j].At)
		}
		return out[i].ID > out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// ErrBoom is a generic storage failure for tests.
var ErrBoom = errors.New("disk on fire")
