package diagfmt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"quill/internal/diag"
	"quill/internal/source"
)

// Pretty formats diagnostics for humans. It walks bag.Items() and expects
// the bag to be sorted already. Every diagnostic prints as
//
//	<name>:<line>:<col>: <severity> <CODE>: <message>
//
// followed by the source line with a ^~~~ underline covering the primary
// span, then the notes in the same shape.
func Pretty(w io.Writer, bag *diag.Bag, sm *source.SourceMap, opts PrettyOpts) {
	p := prettyPrinter{w: w, sm: sm, opts: opts}
	for _, d := range bag.Items() {
		p.diagnostic(d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	sm   *source.SourceMap
	opts PrettyOpts
}

func (p *prettyPrinter) diagnostic(d diag.Diagnostic) {
	attrs := severityAttrs(d.Severity)
	p.header(d.Primary, p.paint(d.Severity.String(), attrs...), d.Code.String(), d.Message)
	p.snippet(d.Primary, attrs)
	if p.opts.ShowNotes {
		for _, n := range d.Notes {
			p.header(n.Span, p.paint("note", color.FgCyan), "", n.Msg)
			if !n.Span.Empty() {
				p.snippet(n.Span, []color.Attribute{color.FgCyan})
			}
		}
	}
}

func (p *prettyPrinter) header(span source.Span, label, code, msg string) {
	src, start, _ := p.sm.Resolve(span)
	if src != nil {
		fmt.Fprintf(p.w, "%s:%d:%d: ", displayName(src.Name, p.opts.PathMode), start.Line, start.Col)
	}
	if code != "" {
		fmt.Fprintf(p.w, "%s %s: %s\n", label, p.paint(code, color.Bold), msg)
	} else {
		fmt.Fprintf(p.w, "%s: %s\n", label, msg)
	}
}

// snippet prints the line holding the span start, preceded by up to
// Context lines of leading context, then the underline row.
func (p *prettyPrinter) snippet(span source.Span, attrs []color.Attribute) {
	src, start, end := p.sm.Resolve(span)
	if src == nil || start.Line == 0 {
		return
	}
	firstLine := start.Line
	if p.opts.Context > 0 {
		ctx := uint32(p.opts.Context)
		if ctx >= firstLine {
			firstLine = 1
		} else {
			firstLine -= ctx
		}
	}
	gutter := len(fmt.Sprintf("%d", start.Line))
	for ln := firstLine; ln <= start.Line; ln++ {
		fmt.Fprintf(p.w, "%*d | %s\n", gutter, ln, expandTabs(src.Line(ln)))
	}

	line := src.Line(start.Line)
	col := int(start.Col)
	if col < 1 || col > len(line)+1 {
		return
	}
	// Columns are byte offsets; display widths come from runewidth so
	// wide runes and tabs keep the caret aligned.
	pad := runewidth.StringWidth(expandTabs(line[:col-1]))
	stop := len(line)
	if end.Line == start.Line && int(end.Col) >= col && int(end.Col)-1 <= len(line) {
		stop = int(end.Col) - 1
	}
	width := runewidth.StringWidth(expandTabs(line[col-1 : stop]))
	if width < 1 {
		width = 1
	}
	marker := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(p.w, "%*s | %s%s\n", gutter, "", strings.Repeat(" ", pad), p.paint(marker, attrs...))
}

func (p *prettyPrinter) paint(s string, attrs ...color.Attribute) string {
	if !p.opts.Color || len(attrs) == 0 {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

func severityAttrs(sev diag.Severity) []color.Attribute {
	switch sev {
	case diag.SevError:
		return []color.Attribute{color.FgRed, color.Bold}
	case diag.SevWarning:
		return []color.Attribute{color.FgYellow, color.Bold}
	default:
		return []color.Attribute{color.FgCyan}
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

// displayName rewrites a source name per the path mode. Synthetic names
// like "<entry>" pass through untouched.
func displayName(name string, mode PathMode) string {
	if strings.HasPrefix(name, "<") {
		return name
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(name); err == nil {
			return abs
		}
	case PathModeRelative:
		if wd, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(wd, name); err == nil {
				return rel
			}
		}
	case PathModeBasename:
		return filepath.Base(name)
	}
	return name
}
