package domain

import (
	"errors"
	"strconv"
	"strings"
)

// Price precision: 10 digits in total, 2 of them after the decimal point.
const (
	PriceMaxDigits     = 10
	PriceDecimalPlaces = 2
)

// Price parsing errors. Their text is the field message returned to clients.
var (
	ErrPriceInvalid       = errors.New(MsgInvalidNumber)
	ErrPriceTooManyDigits = errors.New("Ensure that there are no more than 10 digits in total.")
	ErrPriceTooManyPlaces = errors.New("Ensure that there are no more than 2 decimal places.")
	ErrPriceTooManyWhole  = errors.New("Ensure that there are no more than 8 digits before the decimal point.")
)

// Price is a fixed-point amount stored as an integer number of cents.
type Price int64

// ParsePrice parses a plain decimal literal such as "99.75", "-3" or ".5".
// Exponents, thousands separators and non-finite values are rejected.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrPriceInvalid
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, ErrPriceInvalid
	}
	if !allDigits(whole) || !allDigits(frac) {
		return 0, ErrPriceInvalid
	}

	// Count digits the way a decimal coefficient does: leading zeros of the
	// whole part are not significant, trailing zeros of the fraction are.
	significant := strings.TrimLeft(whole+frac, "0")
	decimals := len(frac)
	digits := len(significant)
	if decimals > digits {
		digits = decimals
	}
	wholeDigits := digits - decimals

	if digits > PriceMaxDigits {
		return 0, ErrPriceTooManyDigits
	}
	if decimals > PriceDecimalPlaces {
		return 0, ErrPriceTooManyPlaces
	}
	if wholeDigits > PriceMaxDigits-PriceDecimalPlaces {
		return 0, ErrPriceTooManyWhole
	}

	frac += strings.Repeat("0", PriceDecimalPlaces-len(frac))
	cents, err := strconv.ParseInt(strings.TrimLeft(whole, "0")+frac, 10, 64)
	if err != nil {
		return 0, ErrPriceInvalid
	}
	if negative {
		cents = -cents
	}
	return Price(cents), nil
}

// MustParsePrice is like ParsePrice but panics on error. Intended for tests
// and constants.
func MustParsePrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Cents returns the amount in cents.
func (p Price) Cents() int64 {
	return int64(p)
}

// String renders the price with exactly two fractional digits.
func (p Price) String() string {
	cents := int64(p)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	frac := strconv.FormatInt(cents%100, 10)
	if len(frac) < 2 {
		frac = "0" + frac
	}
	return sign + whole + "." + frac
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
