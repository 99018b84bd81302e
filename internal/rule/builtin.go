package rule

import "github.com/andyballingall/sweep/internal/shell"

// builtins is the fixed rule table evaluated in priority order. It is
// declarative data; Builtin compiles it against the runner chosen at
// startup.
var builtins = []Spec{
	{
		Name:  "Built Rust project",
		Files: []string{"Cargo.toml"},
		Dirs:  []string{"target"},
		Clean: []string{"cargo clean"},
	},
	{
		Name:   "Makefile with clean target",
		Files:  []string{"Makefile|makefile"},
		Verify: []string{"make clean --dry-run"},
		Clean:  []string{"make clean"},
	},
	{
		Name:  "Python bytecode cache",
		Dirs:  []string{"__pycache__"},
		Clean: []string{"rm -r __pycache__"},
	},
}

// Builtin returns the built-in rules compiled against r. The patterns are
// compile-time constants, so a failure here panics via MustNew.
func Builtin(r shell.Runner) []*Rule {
	rules := make([]*Rule, 0, len(builtins))
	for _, s := range builtins {
		rules = append(rules, MustNew(s, r))
	}
	return rules
}
