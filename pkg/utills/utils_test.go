package utils

import "testing"

func TestTitleFromMessage(t *testing.T) {
	if got := TitleFromMessage("Hello", 50); got != "Hello..." {
		t.Fatalf("expected 'Hello...', got %q", got)
	}

	long := ""
	for i := 0; i < 60; i++ {
		long += "a"
	}
	got := TitleFromMessage(long, 50)
	if len(got) != 53 {
		t.Fatalf("expected 50 runes plus marker, got %d chars: %q", len(got), got)
	}

	// multi-byte runes must not be split
	if got := TitleFromMessage("héllo wörld", 5); got != "héllo..." {
		t.Fatalf("expected 'héllo...', got %q", got)
	}
}

func TestHasLetterHasNumber(t *testing.T) {
	if !HasLetter("abc1") || !HasNumber("abc1") {
		t.Fatalf("expected both letter and number in 'abc1'")
	}
	if HasLetter("1234") {
		t.Fatalf("expected no letter in '1234'")
	}
	if HasNumber("abcd") {
		t.Fatalf("expected no number in 'abcd'")
	}
}
