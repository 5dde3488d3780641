package markdown

import (
	"strings"
	"testing"
)

func TestToPlainText(t *testing.T) {
	source := []byte("# Title\n\nSome *emphasized* text with a [link](https://example.com).\n")

	got := ToPlainText(source)

	if strings.Contains(got, "#") || strings.Contains(got, "*") || strings.Contains(got, "](") {
		t.Errorf("markdown syntax leaked into plain text: %q", got)
	}
	for _, want := range []string{"Title", "emphasized", "link"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in plain text, got %q", want, got)
		}
	}
}

func TestIsMarkdownPath(t *testing.T) {
	tests := map[string]bool{
		"notes.md":       true,
		"NOTES.MD":       true,
		"guide.markdown": true,
		"script.txt":     false,
		"md":             false,
	}
	for path, want := range tests {
		if got := IsMarkdownPath(path); got != want {
			t.Errorf("IsMarkdownPath(%q) = %v, want %v", path, got, want)
		}
	}
}
