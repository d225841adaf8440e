package common

import (
	"testing"
)

func TestRedactAccountNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "account number after separator",
			in:   "account: 12345678901234",
			want: "account: ****1234",
		},
		{
			name: "letter prefix keeps the match away",
			in:   "ref KZ12345678901234",
			want: "ref KZ12345678901234",
		},
		{
			name: "bare long number",
			in:   "12345678901234567890",
			want: "****7890",
		},
		{
			name: "short numbers untouched",
			in:   "scenario 123 row 4567",
			want: "scenario 123 row 4567",
		},
		{
			name: "nine digits untouched",
			in:   "ref 123456789",
			want: "ref 123456789",
		},
		{
			name: "ten digits redacted",
			in:   "ref 1234567890",
			want: "ref ****7890",
		},
		{
			name: "multiple occurrences",
			in:   "from 1111222233334444 to 5555666677778888",
			want: "from ****4444 to ****8888",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactAccountNumbers(tt.in); got != tt.want {
				t.Errorf("RedactAccountNumbers(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
