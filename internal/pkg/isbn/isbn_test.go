package isbn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid ISBN-13", "9780134190440", true},
		{"valid ISBN-13 alternate", "9781449373320", true},
		{"ISBN-13 with bad check digit", "9780134190441", false},
		{"valid ISBN-10", "0134190440", true},
		{"valid ISBN-10 with X check digit", "080442957X", true},
		{"ISBN-10 with bad check digit", "0134190441", false},
		{"X anywhere but last position", "0X34190440", false},
		{"too short", "12345", false},
		{"too long", "97801341904400", false},
		{"hyphens are not normalized here", "978-0134190440", false},
		{"letters", "97801341904ab", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.input))
		})
	}
}
