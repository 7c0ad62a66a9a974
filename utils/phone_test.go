package utils

import "testing"

func TestFormatPhoneNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+1 (555) 123-4567", "15551234567"},
		{"00 44 7700 900123", "447700900123"},
		{"555.123.4567", "5551234567"},
	}
	for _, tc := range cases {
		if got := FormatPhoneNumber(tc.in); got != tc.want {
			t.Errorf("FormatPhoneNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	valid := []string{"5551234", "+1 555 123 4567", "447700900123"}
	for _, number := range valid {
		if !ValidatePhoneNumber(number) {
			t.Errorf("%q should be valid", number)
		}
	}

	invalid := []string{"", "12345", "123456789012345678", "abc"}
	for _, number := range invalid {
		if ValidatePhoneNumber(number) {
			t.Errorf("%q should be invalid", number)
		}
	}
}
