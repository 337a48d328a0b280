package dto

import "time"

// AuditEntryResponse one history line.
type AuditEntryResponse struct {
	ID        uint      `json:"id"`
	Stream    string    `json:"stream"`
	SubjectID uint      `json:"subject_id,omitempty"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	At        time.Time `json:"at"`
	BranchID  uint      `json:"branch_id"`
	Branch    string    `json:"branch"`
}

// TimelineResponse merged order and complaint history, newest first.
type TimelineResponse struct {
	Items []AuditEntryResponse `json:"items"`
}
