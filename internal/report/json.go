package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/andyballingall/sweep/internal/walker"
)

// JSONReporter implements walker.Reporter by accumulating events and
// writing a single indented JSON document when the summary arrives.
type JSONReporter struct {
	w       io.Writer
	stderr  io.Writer
	start   time.Time
	matches []*jsonMatch
	index   map[string]*jsonMatch
	errors  []jsonError
}

type jsonMatch struct {
	Path    string `json:"path"`
	Rule    string `json:"rule"`
	Cleaned bool   `json:"cleaned"`
	Error   string `json:"error,omitempty"`
}

type jsonError struct {
	Path  string `json:"path"`
	Rule  string `json:"rule,omitempty"`
	Error string `json:"error"`
}

type jsonOutput struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  string `json:"duration"`
	Stats     struct {
		Matched uint64 `json:"matched"`
		Cleaned uint64 `json:"cleaned"`
	} `json:"stats"`
	Matches []*jsonMatch `json:"matches"`
	Errors  []jsonError  `json:"errors,omitempty"`
}

// NewJSONReporter creates a JSONReporter writing the document to w and
// write failures to stderr.
func NewJSONReporter(w, stderr io.Writer) *JSONReporter {
	return &JSONReporter{
		w:      w,
		stderr: stderr,
		start:  time.Now(),
		index:  map[string]*jsonMatch{},
	}
}

func (jr *JSONReporter) key(dir, ruleName string) string {
	return dir + "\x00" + ruleName
}

func (jr *JSONReporter) Matched(dir, ruleName string) {
	m := &jsonMatch{Path: dir, Rule: ruleName}
	jr.matches = append(jr.matches, m)
	jr.index[jr.key(dir, ruleName)] = m
}

func (jr *JSONReporter) Cleaned(dir, ruleName string) {
	if m, ok := jr.index[jr.key(dir, ruleName)]; ok {
		m.Cleaned = true
	}
}

func (jr *JSONReporter) CleanFailed(dir, ruleName string, err error) {
	if m, ok := jr.index[jr.key(dir, ruleName)]; ok {
		m.Error = err.Error()
	}
}

func (jr *JSONReporter) RuleError(dir, ruleName string, err error) {
	jr.errors = append(jr.errors, jsonError{Path: dir, Rule: ruleName, Error: err.Error()})
}

func (jr *JSONReporter) WalkError(dir string, err error) {
	jr.errors = append(jr.errors, jsonError{Path: dir, Error: err.Error()})
}

func (jr *JSONReporter) Summary(s walker.Summary) {
	end := time.Now()
	out := jsonOutput{
		StartTime: jr.start.Format(time.RFC3339),
		EndTime:   end.Format(time.RFC3339),
		Duration:  end.Sub(jr.start).String(),
		Matches:   jr.matches,
		Errors:    jr.errors,
	}
	out.Stats.Matched = s.Matched
	out.Stats.Cleaned = s.Cleaned
	if out.Matches == nil {
		out.Matches = []*jsonMatch{}
	}

	enc := json.NewEncoder(jr.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(jr.stderr, "write report: %v\n", err)
	}
}
