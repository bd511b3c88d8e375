// Package core provides the client-side domain types: dates, amounts,
// transactions and the currency symbol table used for display.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value. It decodes from the JSON numbers the API
// emits and encodes back as an unquoted number with two decimal places,
// which is what the server expects on writes.
type Amount struct {
	decimal.Decimal
}

// NewAmount builds an Amount from a decimal value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// ParseAmount parses user input into an Amount. Both dot and comma
// decimal separators are accepted. Sign and range policy is left to the
// server, the authoritative validator; only unparsable input is rejected.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{Decimal: d}, nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.StringFixed(2)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// Add returns the sum of two amounts.
func (a Amount) Add(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Add(b.Decimal)}
}

// Sub returns the difference of two amounts.
func (a Amount) Sub(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Sub(b.Decimal)}
}

// Display renders the amount with two decimal places and no symbol,
// e.g. "1000.00".
func (a Amount) Display() string {
	return a.Decimal.StringFixed(2)
}

// currencySymbols maps ISO-4217-like codes to display symbols.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"INR": "₹",
	"BDT": "৳",
	"AUD": "A$",
	"CAD": "C$",
	"CHF": "CHF",
	"BRL": "R$",
	"KRW": "₩",
	"MXN": "MX$",
	"SGD": "S$",
	"PKR": "₨",
	"SAR": "SR",
	"AED": "د.إ",
	"THB": "฿",
	"MYR": "RM",
	"IDR": "Rp",
}

// CurrencySymbol returns the display symbol for a currency code. Codes
// outside the table fall back to the code itself.
func CurrencySymbol(code string) string {
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return code
}

// KnownCurrencies lists the codes present in the symbol table.
func KnownCurrencies() []string {
	codes := make([]string, 0, len(currencySymbols))
	for code := range currencySymbols {
		codes = append(codes, code)
	}
	return codes
}

// FormatMoney renders an amount prefixed with the symbol for the given
// currency code, e.g. "€12.34". Displayed values must always carry the
// symbol of the session's current currency.
func FormatMoney(a Amount, code string) string {
	return CurrencySymbol(code) + a.Display()
}

// FormatSigned renders an amount with a +/- prefix according to the
// transaction type, as the recent-activity feed shows it.
func FormatSigned(a Amount, typ TransactionType, code string) string {
	if typ == TypeIncome {
		return "+" + FormatMoney(a, code)
	}
	return "-" + FormatMoney(a, code)
}
