package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "trl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"rewrite", "extract", "unify", "metrics", "trace", "test"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("pretty"))
}

func TestRewriteCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	rewrite, _, err := cmd.Find([]string{"rewrite"})
	require.NoError(t, err)

	for _, name := range []string{"iterations", "label", "trace-db", "extract", "out"} {
		assert.NotNil(t, rewrite.Flags().Lookup(name), name)
	}
	assert.Equal(t, "n", rewrite.Flags().Lookup("iterations").Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "rewrite", "testdata/programs/chain.yaml", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestUsePretty(t *testing.T) {
	buf := &bytes.Buffer{}

	opts := &RootOptions{}
	assert.False(t, opts.UsePretty(buf), "buffers are not terminals")

	opts = &RootOptions{Pretty: true, PrettySet: true}
	assert.True(t, opts.UsePretty(buf))

	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, (&RootOptions{}).UsePretty(f), "regular files are not terminals")
}

func TestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	(&RootOptions{}).Logger(buf).Debug("hidden")
	(&RootOptions{}).Logger(buf).Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	(&RootOptions{Verbose: true}).Logger(buf).Debug("visible")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "visible")
}

func TestVerboseRewriteLogsToStderr(t *testing.T) {
	stdout, stderr, err := execute(t, "rewrite", "testdata/programs/chain.yaml", "-v")
	require.NoError(t, err)
	assert.Equal(t, "root: c;a => b;b => c;\n", stdout)
	assert.Contains(t, stderr, "loaded testdata/programs/chain.yaml: 1 statements, 2 rules")
	assert.Contains(t, stderr, "rewrite iteration")
	assert.Contains(t, stderr, "rewrite finished after 3 iterations")
}
