package format

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var cento = decimal.NewFromInt(100)

// FormatCents renders integer cents as a fixed two-decimal amount, e.g.
// 275100 -> "2751.00". Billing math stays in integer cents; decimals exist
// only at this formatting boundary.
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(cento).StringFixed(2)
}

// FormatMoney renders cents with a currency code, e.g. "2751.00 MXN".
func FormatMoney(cents int64, currency string) string {
	return fmt.Sprintf("%s %s", FormatCents(cents), currency)
}
