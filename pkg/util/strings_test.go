package util

import (
	"strings"
	"testing"
)

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("expected default, got %d", got)
	}
	if got := ParseIntDefault("abc", 7); got != 7 {
		t.Fatalf("expected default on invalid, got %d", got)
	}
	if got := ParseIntDefault("42", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestTitle(t *testing.T) {
	if got := Title("technology"); got != "Technology" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := Title("consumer goods"); got != "Consumer Goods" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestTruncateWords(t *testing.T) {
	s := strings.Repeat("word ", 400)
	got := TruncateWords(s, 300)
	if WordCount(got) != 300 {
		t.Fatalf("expected 300 words, got %d", WordCount(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix")
	}

	short := "only three words"
	if got := TruncateWords(short, 300); got != short {
		t.Fatalf("short input should be unchanged, got %q", got)
	}
}
