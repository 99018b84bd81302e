// Package walker drives the traversal of a directory tree, applying every
// rule to every visited directory.
package walker

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/andyballingall/sweep/internal/rule"
)

// Summary holds the run counters reported once at the end of a traversal.
type Summary struct {
	Matched uint64
	Cleaned uint64
}

// Add folds another summary in. Used when one run covers several roots.
func (s *Summary) Add(o Summary) {
	s.Matched += o.Matched
	s.Cleaned += o.Cleaned
}

// Reporter receives traversal events. Directory paths are given relative to
// the scanned root. Per-node errors go through RuleError/WalkError and never
// abort the walk. Summary is called by the owner of the run, once, after
// every root has been walked.
type Reporter interface {
	Matched(dir, ruleName string)
	Cleaned(dir, ruleName string)
	CleanFailed(dir, ruleName string, err error)
	RuleError(dir, ruleName string, err error)
	WalkError(dir string, err error)
	Summary(s Summary)
}

// Walker applies an ordered rule table to every directory reachable from a
// root. The rule order is fixed; traversal order between siblings is not
// significant.
type Walker struct {
	rules    []*rule.Rule
	reporter Reporter
	logger   *slog.Logger
	dryRun   bool
}

// New creates a Walker. With dryRun set, matches are reported but no clean
// command is ever spawned.
func New(rules []*rule.Rule, rep Reporter, logger *slog.Logger, dryRun bool) *Walker {
	return &Walker{
		rules:    rules,
		reporter: rep,
		logger:   logger.With("component", "walker"),
		dryRun:   dryRun,
	}
}

// Walk traverses the tree rooted at root, which must be an absolute path to
// a directory. Every reachable directory is visited exactly once; matching
// never prunes the traversal, because clean commands do not necessarily
// remove the directory they run in.
//
// The error return covers only an unusable root or a cancelled context.
// Everything that goes wrong below the root is reported through the
// Reporter and tolerated.
func (w *Walker) Walk(ctx context.Context, root string) (Summary, error) {
	var summary Summary

	info, err := os.Stat(root)
	if err != nil {
		return summary, err
	}
	if !info.IsDir() {
		return summary, &NotADirectoryError{Path: root}
	}

	stack := []string{root}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// An ancestor's cleanup may have removed a directory that was
		// already on the frontier.
		if _, sErr := os.Stat(dir); sErr != nil {
			if os.IsNotExist(sErr) {
				continue
			}
			w.reporter.WalkError(w.rel(root, dir), sErr)
			continue
		}

		w.processDir(ctx, root, dir, &summary)

		// Children are enumerated only after all rule processing, cleanup
		// included, so directories removed by a clean command are simply
		// absent here.
		entries, rErr := os.ReadDir(dir)
		if rErr != nil {
			w.reporter.WalkError(w.rel(root, dir), rErr)
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				stack = append(stack, filepath.Join(dir, e.Name()))
			}
		}
	}

	return summary, nil
}

// processDir evaluates every rule against dir in table order. A classify
// error stops rule evaluation for this directory only.
func (w *Walker) processDir(ctx context.Context, root, dir string, summary *Summary) {
	rel := w.rel(root, dir)

	for _, rl := range w.rules {
		matched, err := rl.Classify(ctx, dir)
		if err != nil {
			w.logger.Debug("classification failed", "rule", rl.Name(), "dir", dir, "error", err)
			w.reporter.RuleError(rel, rl.Name(), err)
			return
		}
		if !matched {
			continue
		}

		summary.Matched++
		w.reporter.Matched(rel, rl.Name())

		if w.dryRun {
			continue
		}

		ok, cErr := rl.Clean(ctx, dir)
		switch {
		case cErr != nil:
			w.reporter.CleanFailed(rel, rl.Name(), cErr)
		case !ok:
			w.reporter.CleanFailed(rel, rl.Name(), ErrCleanExit)
		default:
			summary.Cleaned++
			w.reporter.Cleaned(rel, rl.Name())
		}
	}
}

// rel converts dir to a root-relative display path; the root itself shows
// as ".".
func (w *Walker) rel(root, dir string) string {
	r, err := filepath.Rel(root, dir)
	if err != nil {
		return dir
	}
	return r
}
