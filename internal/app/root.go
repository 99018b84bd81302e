package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/andyballingall/sweep/internal/config"
	"github.com/andyballingall/sweep/internal/fsh"
	"github.com/andyballingall/sweep/internal/report"
	"github.com/andyballingall/sweep/internal/rule"
	"github.com/andyballingall/sweep/internal/shell"
	"github.com/andyballingall/sweep/internal/walker"
)

// Version is the current version of sweep, set at build time.
var Version = "dev"

var LongDescription = `
sweep finds build artifact directories - a Rust project carrying a target/
directory, a Makefile with a working clean target, a Python __pycache__ -
anywhere below the directories you point it at, and runs each rule's cleanup
commands against them.

Rules match on filesystem shape only (file and directory names); what
"clean" means is delegated entirely to the commands a rule carries.
`

// NewRootCmd creates the root command and wires up dependencies.
func NewRootCmd(ll *slog.LevelVar, stderr io.Writer) *cobra.Command {
	var dryRun bool
	var list bool
	var verbose bool
	var watch bool
	var debug bool
	var noColour bool
	var configPath string
	var timeout time.Duration
	outputVal := formatValue("text")

	rootCmd := &cobra.Command{
		Use:           "sweep [flags] <directory>...",
		Short:         "Find and clean build artifact directories",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Long:          LongDescription,
		Args:          cobra.ArbitraryArgs,
		Example: `
  sweep ~/src                    report and clean artifacts under ~/src
  sweep -n ~/src                 dry run: report matches, clean nothing
  sweep -l                       print the rule table and exit
  sweep -f rules.yml ~/src       add rules from a YAML file
  sweep -w -n ~/src              keep watching and re-report on changes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			errw := cmd.ErrOrStderr()

			if debug {
				ll.Set(slog.LevelDebug)
			}

			runner := shell.NewRunner(timeout, 0, verbose, stdout, errw)

			rules, err := buildRules(configPath, runner)
			if err != nil {
				return err
			}

			if list {
				return printRules(stdout, rules)
			}

			if len(args) == 0 {
				return errors.New("requires at least one directory to scan")
			}

			roots, err := resolveRoots(fsh.NewPathResolver(), args)
			if err != nil {
				return err
			}

			logger, logCloser, lErr := setupLogger(stderr, ll, roots[0])
			if lErr != nil {
				logger.Warn("logging to file disabled", "error", lErr)
			}
			if logCloser != nil {
				defer logCloser.Close()
			}

			newReporter := func() walker.Reporter {
				if outputVal == "json" {
					return report.NewJSONReporter(stdout, errw)
				}
				return report.NewTextReporter(stdout, errw, !noColour)
			}

			rep := newReporter()
			w := walker.New(rules, rep, logger, dryRun)
			var total walker.Summary
			for _, root := range roots {
				s, wErr := w.Walk(cmd.Context(), root)
				if wErr != nil {
					return wErr
				}
				total.Add(s)
			}
			rep.Summary(total)

			if watch {
				return runWatch(cmd.Context(), roots, rules, newReporter, logger)
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report matches without running clean commands")
	rootCmd.Flags().BoolVarP(&list, "list", "l", false, "Print the rule table and exit")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Trace shell commands and inherit their output")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep watching and re-scan (dry run) on changes")
	rootCmd.Flags().StringVarP(&configPath, "config", "f", "", "Path to a YAML rules file")
	rootCmd.Flags().DurationVar(&timeout, "timeout", shell.DefaultTimeout, "Wall-clock timeout per shell command")
	rootCmd.Flags().VarP(&outputVal, "output", "o", "Output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	rootCmd.PersistentFlags().BoolVarP(&noColour, "nocolour", "c", false, "Disable colour in output")
	// Support alternate spellings
	rootCmd.PersistentFlags().BoolVar(&noColour, "nocolor", false, "")
	rootCmd.PersistentFlags().BoolVar(&noColour, "noColor", false, "")
	rootCmd.PersistentFlags().BoolVar(&noColour, "noColour", false, "")
	_ = rootCmd.PersistentFlags().MarkHidden("nocolor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColour")

	return rootCmd
}

// resolveRoots canonicalizes the scan roots, rejecting anything that does
// not resolve to an existing directory.
func resolveRoots(resolver fsh.PathResolver, args []string) ([]string, error) {
	roots := make([]string, 0, len(args))
	for _, arg := range args {
		root, err := resolver.CanonicalPath(arg)
		if err == nil {
			var info os.FileInfo
			info, err = os.Stat(root)
			if err == nil && !info.IsDir() {
				return nil, &walker.NotADirectoryError{Path: arg}
			}
		}
		if err != nil {
			return nil, fmt.Errorf("invalid directory %q: %w", arg, err)
		}
		roots = append(roots, root)
	}
	return roots, nil
}

// buildRules assembles the rule table: built-ins first (unless replaced),
// then any rules from the config file, in file order.
func buildRules(configPath string, runner shell.Runner) ([]*rule.Rule, error) {
	var cfg *config.Config
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	}

	var rules []*rule.Rule
	if cfg == nil || !cfg.ReplaceBuiltins {
		rules = rule.Builtin(runner)
	}
	if cfg != nil {
		for _, s := range cfg.Rules {
			rl, err := rule.New(s, runner)
			if err != nil {
				return nil, err
			}
			rules = append(rules, rl)
		}
	}
	return rules, nil
}
