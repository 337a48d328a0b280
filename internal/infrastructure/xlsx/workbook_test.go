package xlsx_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/branchdesk/branchdesk-api/internal/application/reports"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/infrastructure/xlsx"
)

func TestWorkbook_SheetsAndRows(t *testing.T) {
	day := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	snap := reports.Snapshot{
		BranchNames: map[uint]string{1: "Teplice"},
		Orders: []*entity.Order{
			{ID: 7, BranchID: 1, CustomerName: "Petr Svoboda", Phone: "+420777123456", OrderDate: day,
				Status: entity.OrderIssued, Amount: decimal.NewNullDecimal(decimal.RequireFromString("249.5"))},
			{ID: 8, BranchID: 99, CustomerName: "Eva", OrderDate: day, Status: entity.OrderActive},
		},
		Complaints: []*entity.Complaint{
			{ID: 3, BranchID: 1, Customer: "Jan Novák", Brand: "Nike", Model: "Air", ReceivedDate: day,
				PurchaseDate: day, Status: entity.ComplaintExchanged, Archived: true},
		},
	}

	out, err := xlsx.NewWorkbookGenerator().Workbook(context.Background(), snap)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{xlsx.SheetOrders, xlsx.SheetComplaints}, f.GetSheetList())

	rows, err := f.GetRows(xlsx.SheetOrders)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Pobočka", rows[0][1])
	assert.Equal(t, []string{"7", "Teplice", "Petr Svoboda", "+420777123456", "02.04.2026", "vydáno", "249.5"}, rows[1][:7])
	assert.Equal(t, "N/A", rows[2][1])

	rows, err = f.GetRows(xlsx.SheetComplaints)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jan Novák", rows[1][2])
	assert.Equal(t, "Výměna kus za kus", rows[1][9])
	assert.Equal(t, "Ano", rows[1][14])
}
