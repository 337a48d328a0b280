// Package reports produces the printable and downloadable documents: the
// complaint receipt, the per-branch complaint CSV and the admin workbook.
// Rendering lives in infrastructure behind the ports below; this package only
// gathers and authorizes the data.
package reports

import (
	"context"
	"time"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
)

// Encoding of a CSV download.
type Encoding string

const (
	// UTF8 with a byte order mark so Excel detects it.
	UTF8 Encoding = "utf-8"
	// CP1250 for older Czech Excel installs that ignore the BOM.
	CP1250 Encoding = "cp1250"
)

// ParseEncoding maps a query value to an Encoding, defaulting to UTF8.
func ParseEncoding(s string) (Encoding, bool) {
	switch Encoding(s) {
	case "", UTF8, "utf8":
		return UTF8, true
	case CP1250, "windows-1250":
		return CP1250, true
	}
	return "", false
}

// Snapshot everything the admin workbook lists.
type Snapshot struct {
	BranchNames map[uint]string
	Orders      []*entity.Order
	Complaints  []*entity.Complaint
	GeneratedAt time.Time
}

// BranchName returns the name or "N/A" for a branch that no longer exists.
func (s Snapshot) BranchName(id uint) string {
	if n, ok := s.BranchNames[id]; ok {
		return n
	}
	return "N/A"
}

// ReceiptRenderer renders the printable complaint receipt.
type ReceiptRenderer interface {
	ComplaintReceipt(ctx context.Context, c *entity.Complaint, b *entity.Branch, printedAt time.Time) ([]byte, error)
}

// ComplaintTableRenderer renders a branch's complaints as CSV.
type ComplaintTableRenderer interface {
	ComplaintCSV(ctx context.Context, b *entity.Branch, list []*entity.Complaint, enc Encoding) ([]byte, error)
}

// WorkbookRenderer renders the admin workbook with one sheet per entity.
type WorkbookRenderer interface {
	Workbook(ctx context.Context, s Snapshot) ([]byte, error)
}

// ComplaintSource the complaint reads a report needs, with branch authorization applied.
type ComplaintSource interface {
	Receipt(ctx context.Context, p entity.Principal, complaintID uint) (*entity.Complaint, *entity.Branch, error)
	Export(ctx context.Context, p entity.Principal, branchID uint) (*entity.Branch, []*entity.Complaint, error)
}

// Document a rendered file ready to be sent.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Content types of the documents.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ContentTypeCSV returns the CSV content type with the charset of enc.
func ContentTypeCSV(enc Encoding) string {
	if enc == CP1250 {
		return "text/csv; charset=windows-1250"
	}
	return "text/csv; charset=utf-8"
}

// ComplaintStatusLabel Czech label printed in documents.
func ComplaintStatusLabel(s entity.ComplaintStatus) string {
	switch s {
	case entity.ComplaintPending:
		return "Čeká"
	case entity.ComplaintExchanged:
		return "Výměna kus za kus"
	case entity.ComplaintSentForRepair:
		return "Odesláno k vyřízení"
	case entity.ComplaintRejected:
		return "Zamítnuto"
	}
	return string(s)
}

// OrderStatusLabel Czech label printed in documents.
func OrderStatusLabel(s entity.OrderStatus) string {
	switch s {
	case entity.OrderActive:
		return "aktivní"
	case entity.OrderIssued:
		return "vydáno"
	case entity.OrderUnclaimed:
		return "nevyzvednuto"
	case entity.OrderDeleted:
		return "smazáno"
	}
	return string(s)
}
