package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	billingdomain "github.com/smallbiznis/cantina/internal/billing/domain"
	"github.com/smallbiznis/cantina/internal/invoice/format"
)

func statementCSV(statement billingdomain.Statement) (File, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"date", "actual_count", "billed_count", "subtotal"},
	}
	for _, row := range statement.Rows {
		records = append(records, []string{
			row.Date.String(),
			strconv.Itoa(row.ActualCount),
			strconv.Itoa(row.BilledCount),
			format.FormatCents(row.SubtotalCents),
		})
	}
	records = append(records, []string{"total", "", "", format.FormatCents(statement.TotalCents)})

	if err := w.WriteAll(records); err != nil {
		return File{}, err
	}

	return File{
		Name:        statementBaseName(statement) + ".csv",
		ContentType: "text/csv",
		Content:     buf.Bytes(),
	}, nil
}
