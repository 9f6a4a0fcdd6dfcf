// Package export renders billing statements as downloadable files.
package export

import (
	"errors"
	"fmt"

	billingdomain "github.com/smallbiznis/cantina/internal/billing/domain"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported_format")

// File is a rendered export ready to stream to a client.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// StatementFile renders a statement in the requested format.
func StatementFile(statement billingdomain.Statement, format Format) (File, error) {
	switch format {
	case FormatCSV:
		return statementCSV(statement)
	case FormatExcel:
		return statementExcel(statement)
	default:
		return File{}, ErrUnsupportedFormat
	}
}

func statementBaseName(statement billingdomain.Statement) string {
	return fmt.Sprintf("statement-%s-%04d-%02d", statement.CompanyID, statement.Year, int(statement.Month))
}
