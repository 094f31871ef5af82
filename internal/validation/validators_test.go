package validation

import (
	"strings"
	"testing"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"valid", "Booking", ""},
		{"empty", "", "Subject is required."},
		{"whitespace only", "   ", "Subject is required."},
		{"too long", strings.Repeat("x", 11), "Subject cannot exceed 10 characters."},
		{"unicode within limit", "héllo wörl", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Required("Subject", 10)(tt.value); got != tt.want {
				t.Errorf("Required() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"artist@example.com", ""},
		{"  artist@example.com ", ""},
		{"bad", EmailMessage},
		{"a@b", EmailMessage},
		{"a b@example.com", EmailMessage},
		{"", "Email is required."},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := Email("Email")(tt.value); got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestMinLength(t *testing.T) {
	v := MinLength("Password", 6)
	if got := v("12345"); got != "Password must be at least 6 characters." {
		t.Errorf("short password: got %q", got)
	}
	if got := v("123456"); got != "" {
		t.Errorf("six characters should pass, got %q", got)
	}
	if got := v(""); got != "Password is required." {
		t.Errorf("empty password: got %q", got)
	}
}

func TestOptional(t *testing.T) {
	if got := Optional("Biography", 5)(""); got != "" {
		t.Errorf("empty optional should pass, got %q", got)
	}
	if got := Optional("Biography", 5)("toolong"); got != "Biography cannot exceed 5 characters." {
		t.Errorf("got %q", got)
	}
}

func TestFieldValidator(t *testing.T) {
	fv := New().
		Validate("email", "bad", Email("Email")).
		Validate("subject", "", Required("Subject", 100)).
		Validate("message", "hi", Required("Message", 100))

	if fv.OK() {
		t.Fatal("expected failures")
	}
	errs := fv.Errors()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	if errs["subject"] != "Subject is required." {
		t.Errorf("subject error = %q", errs["subject"])
	}
}
