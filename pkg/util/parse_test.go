package util

import "testing"

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("expected default, got %d", got)
	}
	if got := ParseIntDefault("12", 7); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	if got := ParseIntDefault("abc", 7); got != 7 {
		t.Fatalf("expected default on garbage, got %d", got)
	}
}

func TestSplitCSV(t *testing.T) {
	got := SplitCSV("shopee, lazada,,tiktok ")
	if len(got) != 3 || got[0] != "shopee" || got[2] != "tiktok" {
		t.Fatalf("unexpected split %v", got)
	}
}

func TestClampInt(t *testing.T) {
	if ClampInt(5, 10, 100) != 10 {
		t.Fatalf("low clamp failed")
	}
	if ClampInt(500, 10, 100) != 100 {
		t.Fatalf("high clamp failed")
	}
	if ClampInt(50, 10, 100) != 50 {
		t.Fatalf("identity failed")
	}
}
