// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("12.344") -> 1234, nil (rounds down)
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseAmount is ParseDecimalToCents without the positivity check; zero is
// accepted so stored records with a zero amount can still be read back.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
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
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
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
	// iv*100 + fracCents must fit in an int64
	if iv > (math.MaxInt64-fracCents)/100 {
		return 0, ErrInvalidAmount
	}
	return iv*100 + fracCents, nil
}

// ParseNumber reads a JSON number as stored by the browser tool, which may
// carry a sign or an exponent ("-50", "1.5e2"). Plain decimals go through
// ParseAmount so rounding stays half-up on the third digit.
func ParseNumber(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var cents int64
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, ErrInvalidAmount
		}
		scaled := math.Round(f * 100)
		if scaled >= math.MaxInt64 {
			return 0, ErrInvalidAmount
		}
		cents = int64(scaled)
	} else {
		var err error
		if cents, err = ParseAmount(s); err != nil {
			return 0, err
		}
	}
	if neg {
		cents = -cents
	}
	return cents, nil
}

// Add returns the sum of two amounts, saturating at the int64 bounds.
func (m Money) Add(o Money) Money {
	sum := m.Cents + o.Cents
	switch {
	case o.Cents > 0 && sum < m.Cents:
		return Money{Cents: math.MaxInt64}
	case o.Cents < 0 && sum > m.Cents:
		return Money{Cents: math.MinInt64}
	}
	return Money{Cents: sum}
}

// Sub returns m minus o, saturating at the int64 bounds.
func (m Money) Sub(o Money) Money {
	diff := m.Cents - o.Cents
	switch {
	case o.Cents < 0 && diff < m.Cents:
		return Money{Cents: math.MaxInt64}
	case o.Cents > 0 && diff > m.Cents:
		return Money{Cents: math.MinInt64}
	}
	return Money{Cents: diff}
}

// Decimal renders the amount as a plain decimal without trailing zero cents
// ("500", "12.5", "12.34").
func (m Money) Decimal() string {
	cents := uint64(m.Cents)
	sign := ""
	if m.Cents < 0 {
		sign = "-"
		cents = uint64(-(m.Cents + 1)) + 1
	}
	units, rem := cents/100, cents%100
	switch {
	case rem == 0:
		return fmt.Sprintf("%s%d", sign, units)
	case rem%10 == 0:
		return fmt.Sprintf("%s%d.%d", sign, units, rem/10)
	default:
		return fmt.Sprintf("%s%d.%02d", sign, units, rem)
	}
}

// Float returns the amount as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f", m.Float())
}
