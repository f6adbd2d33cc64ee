package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a fixed-point currency amount in hundredths (two fractional digits)
type Money int64

// MinIncrement is the smallest step between two consecutive bids (0.01)
const MinIncrement Money = 1

// MaxMoney mirrors NUMERIC(10,2): eight integer digits and two fractional digits
const MaxMoney Money = 9_999_999_999

var ErrInvalidMoney = errors.New("invalid money amount")

// ParseMoney parses a decimal string such as "10", "10.5" or "10.05"
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidMoney)
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, hasPoint := strings.Cut(s, ".")
	if whole == "" && (!hasPoint || frac == "") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("%w: more than two fractional digits in %q", ErrInvalidMoney, s)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}

	var units, cents int64
	var err error
	if whole != "" {
		if units, err = strconv.ParseInt(whole, 10, 64); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidMoney, err)
		}
	}
	if frac != "" {
		if len(frac) == 1 {
			frac += "0"
		}
		cents, _ = strconv.ParseInt(frac, 10, 64)
	}

	if units > int64(MaxMoney)/100 {
		return 0, fmt.Errorf("%w: %q exceeds maximum", ErrInvalidMoney, s)
	}
	m := Money(units*100 + cents)
	if m > MaxMoney {
		return 0, fmt.Errorf("%w: %q exceeds maximum", ErrInvalidMoney, s)
	}
	if negative {
		m = -m
	}
	return m, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the amount with exactly two fractional digits
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes as a JSON number with two fractional digits
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores the amount as a decimal string for NUMERIC(10,2) columns
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan reads NUMERIC values. Postgres returns text; SQLite returns int64 for
// whole amounts and float64 otherwise.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return m.scanString(string(v))
	case string:
		return m.scanString(v)
	case int64:
		*m = Money(v * 100)
		return nil
	case float64:
		*m = Money(math.Round(v * 100))
		return nil
	case nil:
		return fmt.Errorf("%w: NULL", ErrInvalidMoney)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidMoney, src)
	}
}

func (m *Money) scanString(s string) error {
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
