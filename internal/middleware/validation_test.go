package middleware

import (
	"strings"
	"testing"
)

func TestValidatePublicID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid ULID", "01J8F3YQZ0X5T2M4N6P8R9S0TV", false},
		{"valid lowercase", "01j8f3yqz0x5t2m4n6p8r9s0tv", false},
		{"empty", "", true},
		{"too short", "01J8F3YQZ0", true},
		{"too long", "01J8F3YQZ0X5T2M4N6P8R9S0TVA", true},
		{"excluded letter I", "01J8F3YQZ0X5T2M4N6P8R9S0TI", true},
		{"excluded letter U", "01J8F3YQZ0X5T2M4N6P8R9S0TU", true},
		{"sql injection", "'; DROP TABLE chats; --abcd", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidatePublicID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePublicID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid", "Alice Chen", nil},
		{"valid unicode", "José García", nil},
		{"valid short", "Al", nil},
		{"empty", "", ErrDisplayNameEmpty},
		{"whitespace only", "   ", ErrDisplayNameEmpty},
		{"too long", strings.Repeat("a", 101), ErrDisplayNameTooLong},
		{"reserved system", "system", ErrDisplayNameReserved},
		{"reserved mixed case", "Admin", ErrDisplayNameReserved},
		{"reserved mention", "everyone", ErrDisplayNameReserved},
		{"mostly confusables", "I1l0O1", ErrDisplayNameInvalid},
		{"control character", "Alice\x00Chen", ErrDisplayNameInvalid},
		{"some confusables ok", "Olivia", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateDisplayName(tt.input)
			if err != tt.wantErr {
				t.Errorf("ValidateDisplayName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
