package export

import (
	"bytes"
	"fmt"

	billingdomain "github.com/smallbiznis/cantina/internal/billing/domain"
	"github.com/smallbiznis/cantina/internal/invoice/format"
	"github.com/xuri/excelize/v2"
)

func statementExcel(statement billingdomain.Statement) (File, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Statement"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Meals", "Billed", "Subtotal"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	f.SetRowStyle(sheet, 1, 1, headerStyle)

	for i, row := range statement.Rows {
		line := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", line), row.Date.String())
		f.SetCellValue(sheet, fmt.Sprintf("B%d", line), row.ActualCount)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", line), row.BilledCount)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", line), format.FormatCents(row.SubtotalCents))
	}

	totalRow := len(statement.Rows) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), format.FormatMoney(statement.TotalCents, statement.Currency))

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return File{}, err
	}

	return File{
		Name:        statementBaseName(statement) + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     buf.Bytes(),
	}, nil
}
