package report

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/andyballingall/sweep/internal/walker"
)

func TestTextReporter(t *testing.T) {
	t.Parallel()

	t.Run("plain output", func(t *testing.T) {
		t.Parallel()
		var stdout, stderr bytes.Buffer
		tr := NewTextReporter(&stdout, &stderr, false)

		tr.Matched("proj", "Built Rust project")
		tr.Cleaned("proj", "Built Rust project")
		tr.Matched("repo", "Makefile with clean target")
		tr.CleanFailed("repo", "Makefile with clean target", walker.ErrCleanExit)
		tr.RuleError("odd", "Built Rust project", errors.New("permission denied"))
		tr.WalkError("odd", errors.New("permission denied"))
		tr.Summary(walker.Summary{Matched: 2, Cleaned: 1})

		assert.Equal(t,
			"Built Rust project: proj\n"+
				"Makefile with clean target: repo\n"+
				"cleaned 1 of 2 matched directories\n",
			stdout.String())

		assert.Contains(t, stderr.String(), "clean failed: Makefile with clean target at repo")
		assert.Contains(t, stderr.String(), "rule error: Built Rust project at odd: permission denied")
		assert.Contains(t, stderr.String(), "walk error: odd: permission denied")
	})

	t.Run("matches go to stdout and errors to stderr", func(t *testing.T) {
		t.Parallel()
		var stdout, stderr bytes.Buffer
		tr := NewTextReporter(&stdout, &stderr, false)

		tr.Matched("proj", "rust")
		tr.RuleError("proj", "rust", errors.New("boom"))

		assert.NotContains(t, stdout.String(), "boom")
		assert.NotContains(t, stderr.String(), "proj\n")
	})

	t.Run("colour wraps the rule name", func(t *testing.T) {
		t.Parallel()
		var stdout, stderr bytes.Buffer
		tr := NewTextReporter(&stdout, &stderr, true)

		tr.Matched("proj", "rust")
		assert.Contains(t, stdout.String(), colGreen+"rust"+colReset+": proj")
	})
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	jr := NewJSONReporter(&out, &errOut)

	jr.Matched("proj", "Built Rust project")
	jr.Cleaned("proj", "Built Rust project")
	jr.Matched("repo", "Makefile with clean target")
	jr.CleanFailed("repo", "Makefile with clean target", walker.ErrCleanExit)
	jr.RuleError("odd", "Built Rust project", errors.New("permission denied"))
	jr.WalkError("gone", errors.New("vanished"))
	jr.Summary(walker.Summary{Matched: 2, Cleaned: 1})

	doc := out.String()
	require.True(t, gjson.Valid(doc))

	assert.Equal(t, int64(2), gjson.Get(doc, "stats.matched").Int())
	assert.Equal(t, int64(1), gjson.Get(doc, "stats.cleaned").Int())

	matches := gjson.Get(doc, "matches")
	require.Equal(t, int64(2), matches.Get("#").Int())
	assert.Equal(t, "proj", matches.Get("0.path").String())
	assert.True(t, matches.Get("0.cleaned").Bool())
	assert.Equal(t, "repo", matches.Get("1.path").String())
	assert.False(t, matches.Get("1.cleaned").Bool())
	assert.Contains(t, matches.Get("1.error").String(), "non-zero")

	errs := gjson.Get(doc, "errors")
	require.Equal(t, int64(2), errs.Get("#").Int())
	assert.Equal(t, "odd", errs.Get("0.path").String())
	assert.Equal(t, "Built Rust project", errs.Get("0.rule").String())
	assert.Equal(t, "gone", errs.Get("1.path").String())

	assert.NotEmpty(t, gjson.Get(doc, "duration").String())
	assert.Empty(t, errOut.String())
}

func TestJSONReporterEmptyRun(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	jr := NewJSONReporter(&out, io.Discard)
	jr.Summary(walker.Summary{})

	doc := out.String()
	require.True(t, gjson.Valid(doc))
	assert.True(t, gjson.Get(doc, "matches").IsArray())
	assert.Equal(t, int64(0), gjson.Get(doc, "matches.#").Int())
	assert.False(t, gjson.Get(doc, "errors").Exists())
}

// failingWriter refuses every write.
type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestJSONReporterReportsWriteFailure(t *testing.T) {
	t.Parallel()

	var errOut bytes.Buffer
	jr := NewJSONReporter(failingWriter{err: errors.New("pipe closed")}, &errOut)
	jr.Matched("proj", "Built Rust project")
	jr.Summary(walker.Summary{Matched: 1})

	assert.Contains(t, errOut.String(), "write report")
	assert.Contains(t, errOut.String(), "pipe closed")
}
