package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	billingdomain "github.com/smallbiznis/cantina/internal/billing/domain"
	"github.com/smallbiznis/cantina/internal/billing/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleStatement() billingdomain.Statement {
	return billingdomain.Statement{
		CompanyID:   1234,
		CompanyName: "Acme",
		Year:        2026,
		Month:       time.July,
		Currency:    "MXN",
		Rows: []engine.DailyRow{
			{Date: engine.Date{Year: 2026, Month: time.July, Day: 1}, ActualCount: 250, BilledCount: 300, SubtotalCents: 2400000},
			{Date: engine.Date{Year: 2026, Month: time.July, Day: 3}, ActualCount: 42, BilledCount: 42, SubtotalCents: 336000},
		},
		TotalCents: 2736000,
	}
}

func TestStatementCSV(t *testing.T) {
	file, err := StatementFile(sampleStatement(), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "statement-1234-2026-07.csv", file.Name)
	assert.Equal(t, "text/csv", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"date", "actual_count", "billed_count", "subtotal"}, records[0])
	assert.Equal(t, []string{"2026-07-01", "250", "300", "24000.00"}, records[1])
	assert.Equal(t, []string{"2026-07-03", "42", "42", "3360.00"}, records[2])
	assert.Equal(t, []string{"total", "", "", "27360.00"}, records[3])
}

func TestStatementExcel(t *testing.T) {
	file, err := StatementFile(sampleStatement(), FormatExcel)
	require.NoError(t, err)

	assert.Equal(t, "statement-1234-2026-07.xlsx", file.Name)

	book, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer book.Close()

	date, err := book.GetCellValue("Statement", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2026-07-01", date)

	total, err := book.GetCellValue("Statement", "D4")
	require.NoError(t, err)
	assert.Equal(t, "27360.00 MXN", total)
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := StatementFile(sampleStatement(), Format("pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
