package usecase

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaskAccountNumber hides all but the last four characters of an account
// number for display in elicitation prompts.
func MaskAccountNumber(number string) string {
	if number == "" {
		return "Unknown"
	}
	if len(number) <= 4 {
		return number
	}
	return "****" + number[len(number)-4:]
}

// MaskPayee masks a destination for display. Payment addresses keep their
// domain-like suffix (e.g. ****@upi); account numbers keep the last four.
func MaskPayee(destination string) string {
	if destination == "" {
		return "Unknown"
	}
	if at := strings.LastIndex(destination, "@"); at > 0 {
		return "****" + destination[at:]
	}
	if isDigits(destination) {
		return MaskAccountNumber(destination)
	}
	return destination
}

// FormatAmount renders a decimal amount with two fraction digits.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
