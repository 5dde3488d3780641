package chunker

import (
	"strings"
	"testing"
)

func TestChunk_ShortTextSinglePiece(t *testing.T) {
	text := "Short text."
	chunks := Chunk(text, 100)
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("expected single unchanged chunk, got %#v", chunks)
	}
}

func TestChunk_DisabledWhenZero(t *testing.T) {
	text := strings.Repeat("word ", 200)
	chunks := Chunk(text, 0)
	if len(chunks) != 1 {
		t.Errorf("maxRunes 0 should disable chunking, got %d chunks", len(chunks))
	}
}

func TestChunk_PrefersParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("alpha ", 10)
	para2 := strings.Repeat("beta ", 10)
	text := strings.TrimSpace(para1) + "\n\n" + strings.TrimSpace(para2)

	chunks := Chunk(text, 80)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if strings.Contains(chunks[0], "beta") {
		t.Errorf("first chunk crossed the paragraph break: %q", chunks[0])
	}
}

func TestChunk_PrefersSentenceBoundary(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third one ends the text."
	chunks := Chunk(text, 50)

	for _, c := range chunks[:len(chunks)-1] {
		last := c[len(c)-1]
		if last != '.' && last != '!' && last != '?' {
			t.Errorf("chunk should end at a sentence boundary: %q", c)
		}
	}
}

func TestChunk_NoPieceExceedsLimit(t *testing.T) {
	text := strings.Repeat("some words to fill the text. ", 40)
	maxRunes := 100
	for _, c := range Chunk(text, maxRunes) {
		if n := len([]rune(c)); n > maxRunes {
			t.Errorf("chunk length %d exceeds limit %d", n, maxRunes)
		}
	}
}

func TestChunk_ContentPreserved(t *testing.T) {
	text := "One two three. Four five six. Seven eight nine. Ten eleven twelve."
	joined := strings.Join(Chunk(text, 25), " ")
	if strings.Join(strings.Fields(joined), " ") != strings.Join(strings.Fields(text), " ") {
		t.Errorf("chunking lost content:\ngot  %q\nwant %q", joined, text)
	}
}

func TestExtractContext(t *testing.T) {
	text := "one two three four five"

	if got := ExtractContext(text, 2); got != "four five" {
		t.Errorf("expected last 2 words, got %q", got)
	}
	if got := ExtractContext(text, 10); got != text {
		t.Errorf("short text should come back whole, got %q", got)
	}
	long := strings.Repeat("word ", DefaultContextWords*2)
	if got := ExtractContext(long, 0); len(strings.Fields(got)) != DefaultContextWords {
		t.Errorf("expected default of %d words, got %d", DefaultContextWords, len(strings.Fields(got)))
	}
}
