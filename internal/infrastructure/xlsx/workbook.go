// Package xlsx renders the admin export workbook with excelize: one sheet of
// orders and one of complaints across all branches.
package xlsx

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/branchdesk/branchdesk-api/internal/application/reports"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
)

// Sheet names.
const (
	SheetOrders     = "Odběry"
	SheetComplaints = "Reklamace"
)

const (
	dateLayout  = "02.01.2006"
	maxColWidth = 50
)

var (
	orderHeader = []string{"ID", "Pobočka", "Jméno", "Telefon", "Datum", "Stav", "Částka", "Kdo zadal", "Poznámky"}

	complaintHeader = []string{
		"ID", "Pobočka", "Zákazník", "Telefon", "Značka", "Model", "Barva", "Datum přijmu",
		"Datum zakoupení", "Stav", "Sleva %", "Cena", "Zavoláno", "Přijal", "Archivováno", "Poznámky",
	}
)

// WorkbookGenerator implements reports.WorkbookRenderer.
type WorkbookGenerator struct{}

// NewWorkbookGenerator builds the generator.
func NewWorkbookGenerator() *WorkbookGenerator { return &WorkbookGenerator{} }

var _ reports.WorkbookRenderer = (*WorkbookGenerator)(nil)

// Workbook renders s and returns the .xlsx bytes.
func (g *WorkbookGenerator) Workbook(_ context.Context, s reports.Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetOrders); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetComplaints); err != nil {
		return nil, fmt.Errorf("xlsx: add sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4A90E2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: header style: %w", err)
	}

	orders := make([][]any, 0, len(s.Orders))
	for _, o := range s.Orders {
		orders = append(orders, orderRow(s, o))
	}
	if err := writeSheet(f, SheetOrders, orderHeader, orders, header); err != nil {
		return nil, err
	}

	complaints := make([][]any, 0, len(s.Complaints))
	for _, c := range s.Complaints {
		complaints = append(complaints, complaintRow(s, c))
	}
	if err := writeSheet(f, SheetComplaints, complaintHeader, complaints, header); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}

func orderRow(s reports.Snapshot, o *entity.Order) []any {
	var amount any = ""
	if o.Amount.Valid {
		amount = o.Amount.Decimal.InexactFloat64()
	}
	return []any{
		o.ID,
		s.BranchName(o.BranchID),
		o.CustomerName,
		o.Phone,
		o.OrderDate.Format(dateLayout),
		reports.OrderStatusLabel(o.Status),
		amount,
		o.Submitter,
		o.Notes,
	}
}

func complaintRow(s reports.Snapshot, c *entity.Complaint) []any {
	var price, discount any = "", ""
	if c.Price.Valid {
		price = c.Price.Decimal.InexactFloat64()
	}
	if c.DiscountPercent != nil {
		discount = *c.DiscountPercent
	}
	return []any{
		c.ID,
		s.BranchName(c.BranchID),
		c.Customer,
		c.Phone,
		c.Brand,
		c.Model,
		c.Color,
		c.ReceivedDate.Format(dateLayout),
		c.PurchaseDate.Format(dateLayout),
		reports.ComplaintStatusLabel(c.Status),
		discount,
		price,
		yesNo(c.CustomerCalled),
		c.Receiver,
		yesNo(c.Archived),
		c.Notes,
	}
}

// writeSheet writes the header and rows, then sizes every column to its
// longest value, capped at maxColWidth.
func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, headerStyle int) error {
	widths := make([]int, len(header))
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
		widths[i] = utf8.RuneCountInString(h)
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return fmt.Errorf("xlsx: %s header: %w", sheet, err)
	}
	last, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("xlsx: %s header style: %w", sheet, err)
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("xlsx: %s row %d: %w", sheet, i+2, err)
		}
		for j, v := range r {
			if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[j] {
				widths[j] = n
			}
		}
	}

	for i, w := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, float64(min(w+2, maxColWidth))); err != nil {
			return fmt.Errorf("xlsx: %s column width: %w", sheet, err)
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Ano"
	}
	return "Ne"
}
