// Package core holds the domain model and the summary aggregation logic.
//
// Monetary amounts are integer cents to avoid floating-point drift; parsing
// and formatting convert between cents and decimal strings.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a signed amount in cents. Positive values are income,
// negative values are expenses.
type Money struct {
	Cents int64
}

func (m Money) IsZero() bool    { return m.Cents == 0 }
func (m Money) IsIncome() bool  { return m.Cents > 0 }
func (m Money) IsExpense() bool { return m.Cents < 0 }

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// String renders the amount as a plain decimal, e.g. "-12.34".
func (m Money) String() string {
	return FormatCents(m.Cents)
}

// MarshalJSON emits the amount as an exact JSON decimal number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(FormatCents(m.Cents)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		m.Cents = 0
		return nil
	}
	cents, err := ParseCents(s)
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}

// FormatCents converts cents to a decimal string with two fractional digits.
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// ParseCents converts a signed decimal string to cents with half-up rounding
// on the third fractional digit. Both dot and comma separators are accepted.
//
// Examples:
//
//	ParseCents("12.34")  -> 1234, nil
//	ParseCents("-12,34") -> -1234, nil
//	ParseCents("12.345") -> 1235, nil (rounds up)
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	sign := int64(1)
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100.
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}

	// Take the first two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	return sign * (iv*100 + fracCents), nil
}

// Percent is a percentage with two fractional digits, stored as basis points
// (25.37% == 2537). Kept integral for the same reason Money is.
type Percent struct {
	BasisPoints int64
}

func (p Percent) String() string {
	return FormatCents(p.BasisPoints)
}

// MarshalJSON emits the percentage as an exact JSON decimal number.
func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(FormatCents(p.BasisPoints)), nil
}

// divHalfUp divides n by d (d > 0) rounding half-up away from zero,
// matching conventional financial rounding.
func divHalfUp(n, d int64) int64 {
	if d <= 0 {
		return 0
	}
	if n < 0 {
		return -((-2*n + d) / (2 * d))
	}
	return (2*n + d) / (2 * d)
}
