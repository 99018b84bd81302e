// Package report provides the output collaborators for a sweep run.
package report

import (
	"fmt"
	"io"

	"github.com/andyballingall/sweep/internal/walker"
)

// TextReporter implements walker.Reporter for line-oriented output: one
// line per (directory, rule) match on stdout, diagnostics on stderr, and a
// single summary line at the end.
type TextReporter struct {
	stdout    io.Writer
	stderr    io.Writer
	UseColour bool
}

const (
	colReset   = "\033[0m"
	colRed     = "\033[31m"
	colGreen   = "\033[32m"
	colGrey    = "\033[90m"
	colBoldRed = "\033[1;31m"
)

// NewTextReporter creates a TextReporter writing matches to stdout and
// diagnostics to stderr.
func NewTextReporter(stdout, stderr io.Writer, useColour bool) *TextReporter {
	return &TextReporter{stdout: stdout, stderr: stderr, UseColour: useColour}
}

// cs returns a string which will render with the given colour
// if colourisation is enabled.
func (tr *TextReporter) cs(c, s string) string {
	if !tr.UseColour {
		return s
	}
	return c + s + colReset
}

func (tr *TextReporter) Matched(dir, ruleName string) {
	fmt.Fprintf(tr.stdout, "%s: %s\n", tr.cs(colGreen, ruleName), dir)
}

func (tr *TextReporter) Cleaned(dir, ruleName string) {
	// The summary carries the count; the matched line already named the pair.
}

func (tr *TextReporter) CleanFailed(dir, ruleName string, err error) {
	fmt.Fprintf(tr.stderr, "%s %s at %s: %v\n",
		tr.cs(colBoldRed, "clean failed:"), ruleName, dir, err)
}

func (tr *TextReporter) RuleError(dir, ruleName string, err error) {
	fmt.Fprintf(tr.stderr, "%s %s at %s: %v\n",
		tr.cs(colRed, "rule error:"), ruleName, dir, err)
}

func (tr *TextReporter) WalkError(dir string, err error) {
	fmt.Fprintf(tr.stderr, "%s %s: %v\n", tr.cs(colRed, "walk error:"), dir, err)
}

func (tr *TextReporter) Summary(s walker.Summary) {
	fmt.Fprintf(tr.stdout, "cleaned %d of %d matched directories\n", s.Cleaned, s.Matched)
}
