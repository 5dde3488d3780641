package placeholder

import (
	"strings"
	"testing"
)

func TestProtectRestore_RoundTrip(t *testing.T) {
	text := "Use `fmt.Println` to print. See <b>bold</b> text.\n```go\nfunc main() {}\n```\nDone."

	protected, m := Protect(text)

	if strings.Contains(protected, "fmt.Println") {
		t.Error("inline code should be replaced by a marker")
	}
	if strings.Contains(protected, "<b>") {
		t.Error("markup tags should be replaced by markers")
	}
	if strings.Contains(protected, "func main") {
		t.Error("fenced code should be replaced by a marker")
	}
	if m.Len() != 4 {
		t.Errorf("expected 4 protected fragments, got %d", m.Len())
	}

	if got := Restore(protected, m); got != text {
		t.Errorf("round trip mismatch:\ngot  %q\nwant %q", got, text)
	}
}

func TestProtect_PlainText(t *testing.T) {
	text := "Nothing structured here. Just sentences."

	protected, m := Protect(text)
	if protected != text {
		t.Errorf("plain text should be unchanged, got %q", protected)
	}
	if !m.Empty() {
		t.Errorf("expected empty map, got %d entries", m.Len())
	}
	if Instruction(m) != "" {
		t.Error("expected empty instruction for plain text")
	}
}

func TestRestore_UnknownMarkerKept(t *testing.T) {
	_, m := Protect("a `b` c")

	got := Restore("x [PH0] y [PH9] z", m)
	if !strings.Contains(got, "`b`") {
		t.Error("known marker should be restored")
	}
	if !strings.Contains(got, "[PH9]") {
		t.Error("unknown marker should be left alone")
	}
}

func TestRestore_DuplicatedMarker(t *testing.T) {
	_, m := Protect("a `b` c")

	got := Restore("[PH0] and [PH0]", m)
	if got != "`b` and `b`" {
		t.Errorf("expected both occurrences expanded, got %q", got)
	}
}

func TestInstruction_MentionsCount(t *testing.T) {
	_, m := Protect("one `a` two `b`")

	instr := Instruction(m)
	if !strings.Contains(instr, "2") {
		t.Errorf("instruction should mention the marker count, got %q", instr)
	}
}

func TestMarkersSurviveSentenceBoundaries(t *testing.T) {
	protected, m := Protect("Install with `go install`. Then run it.")
	if m.Len() != 1 {
		t.Fatalf("expected 1 fragment, got %d", m.Len())
	}
	if !strings.Contains(protected, "[PH0].") {
		t.Errorf("marker should carry no terminators of its own: %q", protected)
	}
}
