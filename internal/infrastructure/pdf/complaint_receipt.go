// Package pdf renders the complaint receipt handed to the customer when a
// complaint is received.
//
// Layout of the A4 page:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: company + branch      │  complaint no. + date      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CUSTOMER: name + phone                                     │
//	│  GOODS: brand / model / colour / purchase date              │
//	│  DEFECT: free text                                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  STATUS + resolution + price                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SIGNATURES: received by │ customer                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	mentity "github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"
	"github.com/shopspring/decimal"

	"github.com/branchdesk/branchdesk-api/internal/application/reports"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
)

// ── Colours ──────────────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 74, Green: 144, Blue: 226}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const dateLayout = "02.01.2006"

// ── Generator ────────────────────────────────────────────────────────────────

// FontFiles TTF files with Czech glyphs. The built-in helvetica is Latin-1 only,
// so without them characters such as "č" or "ř" print as replacements.
type FontFiles struct {
	Regular string
	Bold    string
}

// ReceiptGenerator implements reports.ReceiptRenderer with Maroto v2.
type ReceiptGenerator struct {
	family string
	fonts  []*mentity.CustomFont
}

// NewReceiptGenerator builds the generator. Empty FontFiles fall back to helvetica.
func NewReceiptGenerator(files FontFiles) (*ReceiptGenerator, error) {
	g := &ReceiptGenerator{family: "helvetica"}
	if files.Regular == "" {
		return g, nil
	}
	repo := repository.New().AddUTF8Font(customFamily, fontstyle.Normal, files.Regular)
	if files.Bold != "" {
		repo = repo.AddUTF8Font(customFamily, fontstyle.Bold, files.Bold)
	}
	fonts, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("pdf: load fonts: %w", err)
	}
	g.family, g.fonts = customFamily, fonts
	return g, nil
}

const customFamily = "receipt"

var _ reports.ReceiptRenderer = (*ReceiptGenerator)(nil)

// ComplaintReceipt renders the receipt and returns the PDF bytes.
func (g *ReceiptGenerator) ComplaintReceipt(_ context.Context, c *entity.Complaint, b *entity.Branch, printedAt time.Time) ([]byte, error) {
	builder := config.NewBuilder()
	if len(g.fonts) > 0 {
		builder = builder.WithCustomFonts(g.fonts)
	}
	cfg := builder.
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: g.family, Size: 9}).
		WithTitle(fmt.Sprintf("Reklamace č. %d", c.ID), true).
		WithAuthor(nonEmpty(b.Company, b.Name), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(c, b, printedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(section("ZÁKAZNÍK"))
	m.AddRows(fieldRow("Jméno", c.Customer), fieldRow("Telefon", phoneForPrint(c.Phone)))
	m.AddRows(section("ZBOŽÍ"))
	m.AddRows(
		fieldRow("Značka", c.Brand),
		fieldRow("Model", c.Model),
		fieldRow("Barva", nonEmpty(c.Color, "-")),
		fieldRow("Datum zakoupení", c.PurchaseDate.Format(dateLayout)),
		fieldRow("Datum přijetí", c.ReceivedDate.Format(dateLayout)),
	)
	m.AddRows(section("POPIS ZÁVADY"))
	m.AddRows(paragraphRows(c.Defect)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(statusRows(c)...)

	m.AddRows(row.New(20))
	m.AddRows(signatureRow(c))
	m.AddRows(footerRow(b))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate receipt: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Sections ─────────────────────────────────────────────────────────────────

// headerRow: company and branch (left), complaint number and dates (right).
func headerRow(c *entity.Complaint, b *entity.Branch, printedAt time.Time) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(nonEmpty(b.Company, b.Name), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Pobočka: "+b.Name, props.Text{Size: 9, Top: 9, Color: colorGray}),
			text.New(nonEmpty(b.Address, ""), props.Text{Size: 8, Top: 14, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("REKLAMAČNÍ PROTOKOL", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("č. %d", c.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Vytištěno: "+printedAt.Format("02.01.2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func section(title string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3}),
	))
}

func fieldRow(label, value string) core.Row {
	return row.New(5).Add(
		col.New(4).Add(text.New(label+":", props.Text{Size: 9, Color: colorGray, Top: 0.5})),
		col.New(8).Add(text.New(value, props.Text{Size: 9, Style: fontstyle.Bold, Top: 0.5})),
	)
}

// paragraphRows splits free text into one row per line so long defect
// descriptions wrap onto further pages instead of overflowing one row.
func paragraphRows(s string) []core.Row {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		for _, chunk := range splitEvery(l, 110) {
			rows = append(rows, row.New(5).Add(col.New(12).Add(
				text.New(chunk, props.Text{Size: 9, Top: 0.5, Left: 2}),
			)))
		}
	}
	return rows
}

// statusRows: current status, discount on a rejected complaint, resolution and price.
func statusRows(c *entity.Complaint) []core.Row {
	status := reports.ComplaintStatusLabel(c.Status)
	if c.Discounted() {
		status += fmt.Sprintf(" (sleva %s %%)", decimal.NewFromFloat(*c.DiscountPercent).String())
	}
	if c.Archived {
		status += ", archivováno"
	}
	rows := []core.Row{
		section("VYŘÍZENÍ"),
		fieldRow("Stav", status),
	}
	if c.Resolution != "" {
		rows = append(rows, fieldRow("Řešení", ""))
		rows = append(rows, paragraphRows(c.Resolution)...)
	}
	if c.Price.Valid {
		rows = append(rows, fieldRow("Cena", formatMoney(c.Price.Decimal)))
	}
	return rows
}

func signatureRow(c *entity.Complaint) core.Row {
	sig := func(caption string) core.Col {
		return col.New(5).Add(
			line.New(props.Line{Color: colorGray, Thickness: 0.2}),
			text.New(caption, props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)
	}
	return row.New(12).Add(
		sig("Převzal: "+nonEmpty(c.Receiver, "")),
		col.New(2),
		sig("Podpis zákazníka"),
	)
}

func footerRow(b *entity.Branch) core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New(
			"Reklamace bude vyřízena bez zbytečného odkladu, nejpozději do 30 dnů ode dne uplatnění. "+
				"O výsledku vás bude pobočka "+b.Name+" informovat telefonicky.",
			props.Text{Size: 7, Color: colorGray, Top: 4},
		),
	))
}

// ── helpers ──────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney renders an amount the Czech way: space-grouped thousands, decimal
// comma and the currency suffix. Ex: 1234.5 → "1 234,50 Kč".
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, c)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + string(buf) + "," + frac + " Kč"
}

// splitEvery splits s into chunks of at most n characters.
func splitEvery(s string, n int) []string {
	r := []rune(s)
	if len(r) == 0 {
		return []string{""}
	}
	var parts []string
	for len(r) > n {
		parts = append(parts, string(r[:n]))
		r = r[n:]
	}
	return append(parts, string(r))
}

// phoneForPrint groups the local digits the way staff read numbers back: "777 123 456".
func phoneForPrint(stored string) string {
	local := domain.LocalPhone(stored)
	if len(local) != 9 {
		return stored
	}
	return local[:3] + " " + local[3:6] + " " + local[6:]
}

