package entity

import "time"

// NoBranch is the branch scope of audit entries that do not belong to a branch
// (user and branch administration).
const NoBranch uint = 0

// Branch a physical shop; the unit access control partitions data by.
type Branch struct {
	ID        uint
	Name      string
	Address   string
	Company   string // owning company printed on receipts
	CreatedAt time.Time
}
