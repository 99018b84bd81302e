package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/andyballingall/sweep/internal/fsh"
	"github.com/andyballingall/sweep/internal/walker"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests require a POSIX shell")
	}
}

// runSweep runs the CLI against args with a log file diverted away from the
// scanned trees.
func runSweep(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(LogEnvVar, filepath.Join(t.TempDir(), "sweep.log"))

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), append([]string{"sweep"}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func mkRustProject(t *testing.T, root string) {
	t.Helper()
	proj := filepath.Join(root, "proj")
	require.NoError(t, os.MkdirAll(filepath.Join(proj, "target"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(proj, "Cargo.toml"), []byte("[package]\n"), 0o644))
}

func TestRunDryRunReportsWithoutCleaning(t *testing.T) {
	root := t.TempDir()
	mkRustProject(t, root)

	stdout, _, err := runSweep(t, "--dry-run", root)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Built Rust project: proj\n")
	assert.Contains(t, stdout, "cleaned 0 of 1 matched directories\n")
	assert.DirExists(t, filepath.Join(root, "proj", "target"))
}

func TestRunCleansPycache(t *testing.T) {
	skipWithoutShell(t)

	root := t.TempDir()
	cache := filepath.Join(root, "pkg", "__pycache__")
	require.NoError(t, os.MkdirAll(cache, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cache, "mod.pyc"), []byte("x"), 0o644))

	stdout, _, err := runSweep(t, root)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Python bytecode cache: pkg\n")
	assert.Contains(t, stdout, "cleaned 1 of 1 matched directories\n")
	assert.NoDirExists(t, cache)
}

func TestRunAggregatesMultipleRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	mkRustProject(t, rootA)
	mkRustProject(t, rootB)

	stdout, _, err := runSweep(t, "-n", rootA, rootB)
	require.NoError(t, err)
	assert.Contains(t, stdout, "cleaned 0 of 2 matched directories\n")
}

func TestRunJSONOutput(t *testing.T) {
	root := t.TempDir()
	mkRustProject(t, root)

	stdout, _, err := runSweep(t, "-n", "-o", "json", root)
	require.NoError(t, err)

	require.True(t, gjson.Valid(stdout))
	assert.Equal(t, int64(1), gjson.Get(stdout, "stats.matched").Int())
	assert.Equal(t, int64(0), gjson.Get(stdout, "stats.cleaned").Int())
	assert.Equal(t, "proj", gjson.Get(stdout, "matches.0.path").String())
	assert.Equal(t, "Built Rust project", gjson.Get(stdout, "matches.0.rule").String())
}

func TestRunList(t *testing.T) {
	stdout, _, err := runSweep(t, "--list")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Built Rust project")
	assert.Contains(t, stdout, "Makefile with clean target")
	assert.Contains(t, stdout, "Python bytecode cache")
	assert.Contains(t, stdout, "verify: make clean --dry-run")
	assert.Contains(t, stdout, "clean:  cargo clean")
}

func TestRunConfigRules(t *testing.T) {
	skipWithoutShell(t)

	t.Run("config rule cleans", func(t *testing.T) {
		root := t.TempDir()
		junk := filepath.Join(root, "site", "junk")
		require.NoError(t, os.MkdirAll(junk, 0o755))

		rulesPath := filepath.Join(t.TempDir(), "rules.yml")
		require.NoError(t, os.WriteFile(rulesPath, []byte(`
rules:
  - name: Junk dir
    dirs: ["junk"]
    clean: ["rm -r junk"]
`), 0o644))

		stdout, _, err := runSweep(t, "-f", rulesPath, root)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Junk dir: site\n")
		assert.NoDirExists(t, junk)
	})

	t.Run("replaceBuiltins drops the builtin table", func(t *testing.T) {
		root := t.TempDir()
		mkRustProject(t, root)

		rulesPath := filepath.Join(t.TempDir(), "rules.yml")
		require.NoError(t, os.WriteFile(rulesPath, []byte(`
replaceBuiltins: true
rules:
  - name: Nothing
    dirs: ["never-present"]
`), 0o644))

		stdout, _, err := runSweep(t, "-n", "-f", rulesPath, root)
		require.NoError(t, err)
		assert.NotContains(t, stdout, "Built Rust project")
		assert.Contains(t, stdout, "cleaned 0 of 0 matched directories\n")
	})

	t.Run("bad pattern in config is fatal", func(t *testing.T) {
		rulesPath := filepath.Join(t.TempDir(), "rules.yml")
		require.NoError(t, os.WriteFile(rulesPath, []byte(`
rules:
  - name: Broken
    dirs: ["("]
`), 0o644))

		_, stderr, err := runSweep(t, "-n", "-f", rulesPath, t.TempDir())
		require.Error(t, err)
		assert.Contains(t, stderr, "invalid pattern")
	})

	t.Run("missing config file is fatal", func(t *testing.T) {
		_, _, err := runSweep(t, "-f", filepath.Join(t.TempDir(), "absent.yml"), t.TempDir())
		require.Error(t, err)
	})
}

func TestRunUsageErrors(t *testing.T) {
	t.Run("no directories", func(t *testing.T) {
		_, stderr, err := runSweep(t)
		require.Error(t, err)
		assert.Contains(t, stderr, "requires at least one directory")
	})

	t.Run("missing root", func(t *testing.T) {
		_, _, err := runSweep(t, filepath.Join(t.TempDir(), "gone"))
		require.Error(t, err)
	})

	t.Run("root is a file", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "f")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		_, stderr, err := runSweep(t, file)
		require.Error(t, err)
		assert.Contains(t, stderr, "not a directory")
	})

	t.Run("unknown output format", func(t *testing.T) {
		_, _, err := runSweep(t, "-o", "xml", t.TempDir())
		require.Error(t, err)
	})
}

// fixedResolver stands in for fsh.PathResolver in root validation tests.
type fixedResolver struct{ err error }

func (f fixedResolver) CanonicalPath(path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return path, nil
}

func TestResolveRoots(t *testing.T) {
	t.Parallel()

	t.Run("resolver errors are wrapped", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("no such device")
		_, err := resolveRoots(fixedResolver{err: boom}, []string{"x"})
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), `invalid directory "x"`)
	})

	t.Run("plain file is rejected", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "f")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		_, err := resolveRoots(fixedResolver{}, []string{file})
		var nde *walker.NotADirectoryError
		require.ErrorAs(t, err, &nde)
	})

	t.Run("directories pass through canonicalized", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		roots, err := resolveRoots(fsh.NewPathResolver(), []string{dir, dir})
		require.NoError(t, err)
		require.Len(t, roots, 2)
		assert.True(t, filepath.IsAbs(roots[0]))
	})
}

func TestRunVerboseTracesCommands(t *testing.T) {
	skipWithoutShell(t)

	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repo, 0o755))
	// A Makefile whose clean target always works, without needing make
	// installed: the verify command is opaque to sweep either way, so the
	// builtin table is replaced by a rule with a plain shell verify.
	require.NoError(t, os.WriteFile(filepath.Join(repo, "Makefile"), []byte("clean:\n"), 0o644))

	rulesPath := filepath.Join(t.TempDir(), "rules.yml")
	require.NoError(t, os.WriteFile(rulesPath, []byte(`
replaceBuiltins: true
rules:
  - name: Traced
    files: ["Makefile"]
    verify: ["echo checking"]
`), 0o644))

	_, stderr, err := runSweep(t, "-n", "-v", "-f", rulesPath, root)
	require.NoError(t, err)
	// `sh -x` traces each verify command on stderr.
	assert.Contains(t, stderr, "echo checking")
}
