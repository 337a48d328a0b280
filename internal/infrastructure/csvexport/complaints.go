// Package csvexport writes the per-branch complaint CSV opened by staff in Excel
// and reads the branch list used to seed a new installation.
package csvexport

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/branchdesk/branchdesk-api/internal/application/reports"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/pkg/textnorm"
)

const (
	dateLayout     = "02.01.2006"
	dateTimeLayout = "02.01.2006 15:04"
	bom            = "\ufeff"
)

var complaintHeader = []string{
	"ID", "Pobočka", "Datum přijmu", "Datum zakoupení", "Zákazník", "Telefon", "Značka", "Model",
	"Barva", "Stav", "Sleva %", "Cena", "Popis závady", "Řešení", "Poznámky", "Archivováno", "Vytvořeno",
}

// ComplaintWriter implements reports.ComplaintTableRenderer.
type ComplaintWriter struct {
	// Comma is the field separator. Czech Excel expects ';'.
	Comma rune
}

// NewComplaintWriter builds a writer using ';' as separator.
func NewComplaintWriter() *ComplaintWriter { return &ComplaintWriter{Comma: ';'} }

var _ reports.ComplaintTableRenderer = (*ComplaintWriter)(nil)

// ComplaintCSV writes one row per complaint. UTF-8 output starts with a BOM;
// CP1250 output has none.
func (w *ComplaintWriter) ComplaintCSV(_ context.Context, b *entity.Branch, list []*entity.Complaint, enc reports.Encoding) ([]byte, error) {
	var buf bytes.Buffer
	var out io.Writer = &buf
	var closer io.Closer
	switch enc {
	case reports.CP1250:
		cw := textnorm.CP1250Writer(&buf)
		out, closer = cw, cw
	default:
		buf.WriteString(bom)
	}

	cw := csv.NewWriter(out)
	if w.Comma != 0 {
		cw.Comma = w.Comma
	}
	if err := cw.Write(complaintHeader); err != nil {
		return nil, fmt.Errorf("csv: header: %w", err)
	}
	for _, c := range list {
		if err := cw.Write(complaintRecord(b, c)); err != nil {
			return nil, fmt.Errorf("csv: complaint %d: %w", c.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv: flush: %w", err)
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			return nil, fmt.Errorf("csv: encode: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func complaintRecord(b *entity.Branch, c *entity.Complaint) []string {
	discount, price := "", ""
	if c.DiscountPercent != nil {
		discount = fmt.Sprintf("%g", *c.DiscountPercent)
	}
	if c.Price.Valid {
		price = c.Price.Decimal.StringFixed(2)
	}
	archived := "Ne"
	if c.Archived {
		archived = "Ano"
	}
	return []string{
		fmt.Sprint(c.ID),
		b.Name,
		c.ReceivedDate.Format(dateLayout),
		c.PurchaseDate.Format(dateLayout),
		c.Customer,
		c.Phone,
		c.Brand,
		c.Model,
		c.Color,
		reports.ComplaintStatusLabel(c.Status),
		discount,
		price,
		oneLine(c.Defect),
		oneLine(c.Resolution),
		oneLine(c.Notes),
		archived,
		c.CreatedAt.Format(dateTimeLayout),
	}
}

// oneLine flattens multi-line text so every complaint stays on one spreadsheet row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
