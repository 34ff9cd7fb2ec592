// Package format renders monetary values for display using Indian digit grouping.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const rupee = "₹"

// en-IN groups the last three digits, then pairs
var indian = language.MustParse("en-IN")

var (
	crore    = decimal.NewFromInt(10000000)
	lakh     = decimal.NewFromInt(100000)
	thousand = decimal.NewFromInt(1000)
)

// Options controls INR rendering
type Options struct {
	ShowSign bool // prefix positive amounts with "+"
	Compact  bool // use K / L / Cr suffixes from one thousand upwards
	Decimals int32
}

// INR formats amount as rupees, e.g. 12345678 -> ₹1,23,45,678
func INR(amount decimal.Decimal, opts Options) string {
	sign := ""
	switch {
	case amount.IsNegative():
		sign = "-"
	case opts.ShowSign && amount.IsPositive():
		sign = "+"
	}
	abs := amount.Abs()

	if opts.Compact {
		switch {
		case abs.GreaterThanOrEqual(crore):
			return sign + rupee + abs.Div(crore).StringFixed(2) + "Cr"
		case abs.GreaterThanOrEqual(lakh):
			return sign + rupee + abs.Div(lakh).StringFixed(2) + "L"
		case abs.GreaterThanOrEqual(thousand):
			return sign + rupee + abs.Div(thousand).StringFixed(1) + "K"
		}
	}

	fixed := abs.StringFixed(opts.Decimals)
	intPart, fracPart, hasFrac := strings.Cut(fixed, ".")
	out := sign + rupee + GroupIndian(intPart)
	if hasFrac {
		out += "." + fracPart
	}
	return out
}

// PnL formats a profit or loss with an explicit sign, zero included
func PnL(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return INR(amount, Options{})
	}
	return "+" + INR(amount, Options{})
}

// Percent formats value with the given number of decimals
func Percent(value float64, showSign bool, decimals int) string {
	sign := ""
	if showSign && value >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.*f%%", sign, decimals, value)
}

// GroupIndian inserts en-IN separators into a string of digits, e.g.
// 12345678 -> 1,23,45,678. Input that is not a non-negative integer is
// returned unchanged.
func GroupIndian(digits string) string {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 {
		return digits
	}
	return message.NewPrinter(indian).Sprint(number.Decimal(n))
}
