package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/infrastructure/pdf"
)

func TestComplaintReceipt_RendersPDF(t *testing.T) {
	gen, err := pdf.NewReceiptGenerator(pdf.FontFiles{})
	require.NoError(t, err)

	discount := 15.0
	c := &entity.Complaint{
		ID:              42,
		Customer:        "Jan Novak",
		Phone:           "+420777123456",
		Brand:           "Nike",
		Model:           "Air Max",
		ReceivedDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PurchaseDate:    time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC),
		Defect:          "Sole detached\nleft shoe",
		Status:          entity.ComplaintRejected,
		DiscountPercent: &discount,
		Resolution:      "Discount offered",
		Price:           decimal.NewNullDecimal(decimal.RequireFromString("1299.90")),
		Receiver:        "Jana",
	}
	b := &entity.Branch{ID: 1, Name: "Teplice", Address: "Hlavni 1", Company: "Obuv s.r.o."}

	out, err := gen.ComplaintReceipt(context.Background(), c, b, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestNewReceiptGenerator_MissingFontFails(t *testing.T) {
	_, err := pdf.NewReceiptGenerator(pdf.FontFiles{Regular: "/nonexistent/font.ttf"})
	assert.Error(t, err)
}
