package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskPhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{"international", "+79991234567", "+79*******67"},
		{"with separators", "+7 (999) 123-45-67", "+79*******67"},
		{"without plus", "447700900123", "+44********23"},
		{"seven digits", "1234567", "+12***67"},
		{"too short", "+12345", "****"},
		{"empty", "", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, MaskPhoneNumber(tt.phone))
		})
	}
}
