package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	issuedAt := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		template string
		seq      int64
		want     string
	}{
		{"default template", DefaultInvoiceNumberTemplate, 7, "INV-202608-000007"},
		{"plain seq", "INV-{SEQ}", 42, "INV-42"},
		{"short year", "{YY}{MM}{DD}-{SEQ3}", 5, "260801-005"},
		{"seq wider than pad", "{SEQ2}", 123, "123"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatInvoiceNumber(tc.template, issuedAt, tc.seq)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatInvoiceNumberErrors(t *testing.T) {
	issuedAt := time.Now()

	_, err := FormatInvoiceNumber("", issuedAt, 1)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("INV-{SEQ}", issuedAt, 0)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("INV-{BOGUS}", issuedAt, 1)
	assert.Error(t, err)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "2751.00", FormatCents(275100))
	assert.Equal(t, "80.00", FormatCents(8000))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "-12.34", FormatCents(-1234))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "2751.00 MXN", FormatMoney(275100, "MXN"))
}
