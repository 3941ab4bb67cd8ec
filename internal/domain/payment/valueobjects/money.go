package valueobjects

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/text/currency"
)

// isoMinorDigits lists the ISO 4217 exponents of currencies whose CLDR standard
// rounding in x/text uses fewer digits than ISO defines.
var isoMinorDigits = map[string]int{
	"AFN": 2, "ALL": 2, "AMD": 2, "COP": 2, "CRC": 2, "HUF": 2,
	"IDR": 2, "IQD": 3, "IRR": 2, "KPW": 2, "LAK": 2, "LBP": 2,
	"MGA": 2, "MMK": 2, "PKR": 2, "RSD": 2, "SLE": 2, "SLL": 2,
	"SOS": 2, "SYP": 2, "TWD": 2, "TZS": 2, "UZS": 2, "YER": 2,
}

// minorDigits returns the ISO 4217 exponent of unit.
func minorDigits(unit currency.Unit) int {
	if digits, ok := isoMinorDigits[unit.String()]; ok {
		return digits
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// Money is an amount in the minor unit of its ISO 4217 currency, e.g. cents for USD.
type Money struct {
	amount   int64
	currency currency.Unit
}

func NewMoney(amount int64, code string) (Money, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return Money{}, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	if amount <= 0 {
		return Money{}, fmt.Errorf("amount must be positive")
	}
	return Money{amount: amount, currency: unit}, nil
}

// ParseMoney converts a major-unit decimal such as "150000" or "9.99" into Money.
// Amounts finer than the currency's minor unit are rejected.
func ParseMoney(decimal string, code string) (Money, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return Money{}, fmt.Errorf("invalid currency %q: %w", code, err)
	}

	r, ok := new(big.Rat).SetString(strings.TrimSpace(decimal))
	if !ok {
		return Money{}, fmt.Errorf("invalid amount %q", decimal)
	}
	scale := minorDigits(unit)
	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
	r.Mul(r, new(big.Rat).SetInt(factor))
	if !r.IsInt() {
		return Money{}, fmt.Errorf("amount %q has more than %d decimal places for %s", decimal, scale, unit)
	}
	minor := r.Num()
	if !minor.IsInt64() || minor.Sign() <= 0 {
		return Money{}, fmt.Errorf("amount must be positive")
	}
	return Money{amount: minor.Int64(), currency: unit}, nil
}

// Amount returns the amount in minor units.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the ISO 4217 code.
func (m Money) Currency() string {
	return m.currency.String()
}

// Scale returns the number of minor-unit digits of the currency.
func (m Money) Scale() int {
	return minorDigits(m.currency)
}

// Decimal renders the amount in major units, e.g. "9.99".
func (m Money) Decimal() string {
	return new(big.Rat).SetFrac(
		big.NewInt(m.amount),
		new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(m.Scale())), nil),
	).FloatString(m.Scale())
}

func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

func (m Money) IsZero() bool {
	return m.amount == 0
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal(), m.Currency())
}
