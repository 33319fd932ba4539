package env

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("MISE_TEST_VALUE", "  set ")
	if got := Get("MISE_TEST_VALUE", "x"); got != "set" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	t.Setenv("MISE_TEST_VALUE", "   ")
	if got := Get("MISE_TEST_VALUE", "x"); got != "x" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
}
