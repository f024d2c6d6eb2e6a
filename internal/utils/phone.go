package utils

import (
	"regexp"
	"strings"
)

var (
	phoneRegex     = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	phoneStripChar = regexp.MustCompile(`[\s\-().]`)
)

// NormalizePhone drops spaces, dashes, dots and parentheses.
func NormalizePhone(phone string) string {
	return phoneStripChar.ReplaceAllString(strings.TrimSpace(phone), "")
}

// IsValidPhone accepts 7 to 15 digits with an optional leading +, after
// normalization. Local numbers without a country code are allowed.
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(NormalizePhone(phone))
}

func MaskPhone(phone string) string {
	if len(phone) < 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
