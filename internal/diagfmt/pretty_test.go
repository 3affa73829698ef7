package diagfmt

import (
	"strings"
	"testing"

	"quill/internal/diag"
	"quill/internal/source"
)

func fixtureBag() (*diag.Bag, *source.SourceMap) {
	sm := source.NewSourceMap([]source.NamedSource{
		{Name: "main.ql", Text: "namespace Demo {\n\nfunction F() : Int { oops }\n}\n"},
	}, "")
	bag := diag.NewBag(16)

	// "oops" sits on line 3, columns 22..26.
	src := sm.Sources()[0]
	start := src.Offset + 39
	bag.Add(diag.NewError(diag.ResNotFound, source.Span{Start: start, End: start + 4},
		`name "oops" not found`).
		WithNote(source.Span{Start: src.Offset, End: src.Offset + 9}, "while checking this package"))
	return bag, sm
}

func TestPrettyOutput(t *testing.T) {
	bag, sm := fixtureBag()
	var buf strings.Builder
	Pretty(&buf, bag, sm, PrettyOpts{ShowNotes: true})
	out := buf.String()

	if !strings.Contains(out, "main.ql:3:22: ERROR "+diag.ResNotFound.String()+": name \"oops\" not found") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "function F() : Int { oops }") {
		t.Errorf("missing source line:\n%s", out)
	}
	if !strings.Contains(out, "^~~~") {
		t.Errorf("missing underline:\n%s", out)
	}
	if !strings.Contains(out, "note: while checking this package") {
		t.Errorf("missing note:\n%s", out)
	}
}

func TestPrettyUnderlineAlignment(t *testing.T) {
	bag, sm := fixtureBag()
	var buf strings.Builder
	Pretty(&buf, bag, sm, PrettyOpts{})

	var lineRow, markRow string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "| function F()") {
			lineRow = line
		}
		if strings.Contains(line, "^") {
			markRow = line
		}
	}
	if lineRow == "" || markRow == "" {
		t.Fatalf("snippet rows not found:\n%s", buf.String())
	}
	caret := strings.Index(markRow, "^")
	oops := strings.Index(lineRow, "oops")
	if caret != oops {
		t.Errorf("caret at %d, token at %d:\n%s", caret, oops, buf.String())
	}
}

func TestPrettyContextLines(t *testing.T) {
	bag, sm := fixtureBag()
	var buf strings.Builder
	Pretty(&buf, bag, sm, PrettyOpts{Context: 2})
	out := buf.String()
	if !strings.Contains(out, "1 | namespace Demo {") {
		t.Errorf("missing context line:\n%s", out)
	}
}

func TestPrettySkipsNotesByDefault(t *testing.T) {
	bag, sm := fixtureBag()
	var buf strings.Builder
	Pretty(&buf, bag, sm, PrettyOpts{})
	if strings.Contains(buf.String(), "note:") {
		t.Errorf("notes should be off by default:\n%s", buf.String())
	}
}

func TestDisplayName(t *testing.T) {
	if got := displayName("<entry>", PathModeBasename); got != "<entry>" {
		t.Errorf("synthetic name rewritten to %q", got)
	}
	if got := displayName("src/deep/main.ql", PathModeBasename); got != "main.ql" {
		t.Errorf("basename = %q", got)
	}
	if got := displayName("src/main.ql", PathModeAuto); got != "src/main.ql" {
		t.Errorf("auto = %q", got)
	}
}
