// Package access decides which branches a principal may see and change.
// Admins bypass branch checks; everybody else is limited to the branches
// assigned to them. The functions are pure and never fail: denial is a false
// result the caller must turn into domain.ErrForbidden.
package access

import (
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
)

// Scope is either every branch or an explicit set.
type Scope struct {
	All bool
	IDs []uint
}

// Visible returns the branches p may see.
func Visible(p entity.Principal) Scope {
	if p.IsAdmin() {
		return Scope{All: true}
	}
	if !p.Authenticated {
		return Scope{IDs: []uint{}}
	}
	return Scope{IDs: entity.UniqueIDs(p.BranchIDs)}
}

// CanAccess reports whether p may read and mutate data of branchID.
func CanAccess(p entity.Principal, branchID uint) bool {
	return Visible(p).Contains(branchID)
}

// Contains reports whether branchID is inside the scope.
func (s Scope) Contains(branchID uint) bool {
	if s.All {
		return true
	}
	for _, id := range s.IDs {
		if id == branchID {
			return true
		}
	}
	return false
}

// Empty reports a scope that grants nothing.
func (s Scope) Empty() bool {
	return !s.All && len(s.IDs) == 0
}

// Filter keeps the branches inside the scope, preserving order.
func (s Scope) Filter(branches []*entity.Branch) []*entity.Branch {
	out := make([]*entity.Branch, 0, len(branches))
	for _, b := range branches {
		if s.Contains(b.ID) {
			out = append(out, b)
		}
	}
	return out
}
