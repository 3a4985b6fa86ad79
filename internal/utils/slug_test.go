package utils

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Hello   World", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Already-hyphenated title", "already-hyphenated-title"},
		{"Punctuation, everywhere! Right?", "punctuation-everywhere-right"},
		{"MiXeD CaSe", "mixed-case"},
		{"123 Numbers 456", "123-numbers-456"},
		{"", ""},
		{"!!!", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	title := "Some Fairly Ordinary Title"
	first := Slugify(title)
	for i := 0; i < 5; i++ {
		if got := Slugify(title); got != first {
			t.Fatalf("Slugify not deterministic: %q vs %q", got, first)
		}
	}
}

func TestSlugifyLength(t *testing.T) {
	long := strings.Repeat("word ", 50)
	slug := Slugify(long)
	if len(slug) > 100 {
		t.Errorf("slug exceeds 100 characters: %d", len(slug))
	}
	if strings.HasSuffix(slug, "-") {
		t.Errorf("truncated slug ends with hyphen: %q", slug)
	}
}
