package utils

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D`)

// FormatPhoneNumber strips formatting characters and leading zeros, keeping
// an optional country code prefix.
func FormatPhoneNumber(phoneNumber string) string {
	digits := nonDigit.ReplaceAllString(phoneNumber, "")
	return strings.TrimLeft(digits, "0")
}

// ValidatePhoneNumber accepts 7 to 15 digits (E.164 upper bound), ignoring
// formatting characters.
func ValidatePhoneNumber(phoneNumber string) bool {
	cleaned := nonDigit.ReplaceAllString(phoneNumber, "")
	return len(cleaned) >= 7 && len(cleaned) <= 15
}
