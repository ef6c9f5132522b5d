package util

import "testing"

func TestContainsAnyCaseInsensitive(t *testing.T) {
	if !ContainsAnyCaseInsensitive("AI Tools 2025", []string{"ai"}) {
		t.Fatalf("expected lowercase needle to match")
	}
	if !ContainsAnyCaseInsensitive("budget living tips", []string{"Budget"}) {
		t.Fatalf("expected uppercase needle to match")
	}
	if ContainsAnyCaseInsensitive("Morning Routine", []string{"", "  "}) {
		t.Fatalf("blank needles must not match")
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	if got := NormalizeWhitespace("  Retro \n\t Gaming  Revival "); got != "Retro Gaming Revival" {
		t.Fatalf("got %q", got)
	}
}

func TestParseCount(t *testing.T) {
	cases := map[string]int64{
		"200,000+": 200000,
		"1.5M":     1500000,
		"20K+":     20000,
		"950":      950,
		"":         0,
		"lots":     0,
	}
	for in, want := range cases {
		if got := ParseCount(in); got != want {
			t.Fatalf("ParseCount(%q) = %d, want %d", in, got, want)
		}
	}
}
