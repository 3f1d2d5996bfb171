package util

import "testing"

func TestFormatPhone_Celular(t *testing.T) {
	got := FormatPhone("92981394605")
	if got != "(92) 98139-4605" {
		t.Fatalf("expected (92) 98139-4605, got %q", got)
	}
}

func TestFormatPhone_Fixo(t *testing.T) {
	got := FormatPhone("9298139460")
	if got != "(92) 9813-9460" {
		t.Fatalf("expected (92) 9813-9460, got %q", got)
	}
}

func TestFormatPhone_Partial(t *testing.T) {
	if got := FormatPhone("929"); got != "929" {
		t.Fatalf("expected partial input unchanged, got %q", got)
	}
}

func TestUnformatPhone_RoundTrip(t *testing.T) {
	inputs := []string{"", "9", "92", "9298", "929813946", "9298139460", "92981394605", "(92) 98139-4605"}
	for _, in := range inputs {
		formatted := FormatPhone(in)
		if UnformatPhone(formatted) != UnformatPhone(in) {
			t.Fatalf("round trip mismatch for %q: formatted %q", in, formatted)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	if !IsValidPhone("(92) 98139-4605") {
		t.Fatal("expected 11-digit phone to be valid")
	}
	if !IsValidPhone("9298139460") {
		t.Fatal("expected 10-digit phone to be valid")
	}
	if IsValidPhone("929813") {
		t.Fatal("expected short number to be invalid")
	}
}
