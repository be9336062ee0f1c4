package utils

import "strings"

// MaskPhoneNumber hides the subscriber part of a phone number for logs.
// Only the country prefix and the last two digits stay visible:
// "+79991234567" becomes "+79*******67". Short inputs are fully masked.
func MaskPhoneNumber(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	d := digits.String()
	if len(d) < 7 {
		return "****"
	}

	return "+" + d[:2] + strings.Repeat("*", len(d)-4) + d[len(d)-2:]
}
