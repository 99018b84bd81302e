// Package rule defines build-artifact directory signatures and the
// classify/clean protocol against a single directory.
package rule

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/andyballingall/sweep/internal/shell"
)

// Spec is the declarative form of a Rule. It is what the built-in table and
// the YAML rules file both describe; patterns are uncompiled regular
// expressions matched against whole child names.
type Spec struct {
	Name   string   `yaml:"name"`
	Files  []string `yaml:"files,omitempty"`
	Dirs   []string `yaml:"dirs,omitempty"`
	Verify []string `yaml:"verify,omitempty"`
	Clean  []string `yaml:"clean,omitempty"`
}

// Rule is an immutable directory signature. A directory matches when every
// required file pattern is satisfied by some plain file directly inside it,
// every required dir pattern by some immediate subdirectory, and every
// verify command exits 0 in it.
type Rule struct {
	spec         Spec
	filePatterns []*regexp.Regexp
	dirPatterns  []*regexp.Regexp
	runner       shell.Runner
}

// New compiles a Spec into a Rule. A malformed pattern yields an
// *InvalidPatternError; use this for rules read from configuration.
func New(s Spec, r shell.Runner) (*Rule, error) {
	files, err := compileAll(s.Name, s.Files)
	if err != nil {
		return nil, err
	}
	dirs, err := compileAll(s.Name, s.Dirs)
	if err != nil {
		return nil, err
	}
	return &Rule{
		spec:         s,
		filePatterns: files,
		dirPatterns:  dirs,
		runner:       r,
	}, nil
}

// MustNew is New for the built-in rule table, where a malformed pattern is a
// programmer error: it panics instead of returning it.
func MustNew(s Spec, r shell.Runner) *Rule {
	rl, err := New(s, r)
	if err != nil {
		panic(err)
	}
	return rl
}

// compileAll anchors each pattern to the whole name. The parentheses keep
// alternations like `Makefile|makefile` from binding to only one anchor.
func compileAll(ruleName string, patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(fmt.Sprintf("^(%s)$", p))
		if err != nil {
			return nil, &InvalidPatternError{Rule: ruleName, Pattern: p, Wrapped: err}
		}
		res = append(res, re)
	}
	return res, nil
}

// Name returns the rule's display label. It plays no part in matching.
func (r *Rule) Name() string { return r.spec.Name }

// Spec returns the declarative form the rule was built from.
func (r *Rule) Spec() Spec { return r.spec }

// Classify reports whether dir matches this rule.
//
// It enumerates the direct children of dir once. Plain files count towards
// file patterns, subdirectories towards dir patterns; symlinks and other
// entry types never contribute. Each required pattern must be satisfied by
// at least one child name; a single child may satisfy several patterns.
//
// A verify command exiting non-zero is an ordinary non-match, not an error.
// The error return is reserved for enumeration failures and process-level
// command failures (spawn errors, timeouts).
func (r *Rule) Classify(ctx context.Context, dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}

	fileSat := make([]bool, len(r.filePatterns))
	dirSat := make([]bool, len(r.dirPatterns))

	for _, e := range entries {
		name := e.Name()
		switch {
		case e.Type().IsRegular():
			markSatisfied(fileSat, r.filePatterns, name)
		case e.IsDir():
			markSatisfied(dirSat, r.dirPatterns, name)
		}
	}

	if !allSatisfied(fileSat) || !allSatisfied(dirSat) {
		return false, nil
	}

	for _, c := range r.spec.Verify {
		ok, rErr := r.runner.Run(ctx, c, dir)
		if rErr != nil {
			return false, rErr
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

// Clean runs the rule's clean commands in dir, front to back, stopping at
// the first failure. It returns (true, nil) when every command exited 0,
// (false, nil) when a command exited non-zero, and (false, err) when a
// command could not be run. Callers are expected to have seen Classify
// return true; that is not re-checked.
func (r *Rule) Clean(ctx context.Context, dir string) (bool, error) {
	for _, c := range r.spec.Clean {
		ok, err := r.runner.Run(ctx, c, dir)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func markSatisfied(sat []bool, patterns []*regexp.Regexp, name string) {
	for i, re := range patterns {
		if !sat[i] && re.MatchString(name) {
			sat[i] = true
		}
	}
}

func allSatisfied(sat []bool) bool {
	for _, s := range sat {
		if !s {
			return false
		}
	}
	return true
}
