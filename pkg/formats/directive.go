package formats

import (
	"bufio"
	"io"
	"strings"
)

// Directive is one logical line of a Wavefront-style text file: a keyword
// followed by the remainder of the line with leading whitespace removed.
// Rest is kept verbatim so keywords like mtllib and usemtl can carry values
// containing spaces.
type Directive struct {
	Keyword string
	Rest    string
}

// Fields splits Rest into whitespace-separated fields.
func (d Directive) Fields() []string {
	return strings.Fields(d.Rest)
}

// DirectiveScanner splits a text source into directives, one per non-empty
// line. Trailing carriage returns are stripped so files with Windows line
// endings parse identically.
type DirectiveScanner struct {
	s    *bufio.Scanner
	cur  Directive
	line int
}

// NewDirectiveScanner returns a scanner reading from r.
func NewDirectiveScanner(r io.Reader) *DirectiveScanner {
	return &DirectiveScanner{s: bufio.NewScanner(r)}
}

// Scan advances to the next non-empty line. It returns false at end of
// input or on a read error; check Err afterwards.
func (ds *DirectiveScanner) Scan() bool {
	for ds.s.Scan() {
		ds.line++
		line := strings.TrimSuffix(ds.s.Text(), "\r")
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}

		if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
			ds.cur = Directive{
				Keyword: trimmed[:i],
				Rest:    strings.TrimLeft(trimmed[i+1:], " \t"),
			}
		} else {
			ds.cur = Directive{Keyword: trimmed}
		}
		return true
	}
	return false
}

// Directive returns the directive produced by the last successful Scan.
func (ds *DirectiveScanner) Directive() Directive {
	return ds.cur
}

// Line returns the 1-based source line number of the current directive.
func (ds *DirectiveScanner) Line() int {
	return ds.line
}

// Err returns the first I/O error encountered while scanning.
func (ds *DirectiveScanner) Err() error {
	return ds.s.Err()
}
