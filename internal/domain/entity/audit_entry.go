package entity

import "time"

// AuditStream separates the two history tables that the timeline merges.
type AuditStream string

const (
	// StreamOrder order changes plus branch-less admin actions.
	StreamOrder AuditStream = "order"
	// StreamComplaint complaint changes.
	StreamComplaint AuditStream = "complaint"
)

// AuditActionMax longest action text stored.
const AuditActionMax = 255

// AuditEntry one immutable fact about a mutation.
type AuditEntry struct {
	ID        uint
	Stream    AuditStream
	SubjectID uint // order or complaint id; 0 for admin actions
	Actor     string
	Action    string
	At        time.Time
	BranchID  uint // NoBranch for admin actions
}
