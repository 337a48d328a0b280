package repository

import "context"

// Repos repositories bound to one transaction.
type Repos struct {
	Branches   BranchRepository
	Users      UserRepository
	Orders     OrderRepository
	Complaints ComplaintRepository
	Audit      AuditRepository
}

// TxRunner runs fn inside one database transaction. The mutation and its audit
// entry commit together: if fn returns an error everything is rolled back
// before Run returns.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}
