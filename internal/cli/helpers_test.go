package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const greetingMatches = `
matches:
  - trigger: ":hi"
    replace: "hello"
    word: true
  - trigger: ":x"
    replace: "plain"
    label: Plain
  - trigger: ":x"
    replace: "other"
    label: Other
`

// fixture is a temporary config file pointing at a match directory and a
// journal inside the same temporary directory.
type fixture struct {
	root    string
	matches string
	config  string
	journal string
}

func newFixture(t *testing.T, matches string) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		root:    root,
		matches: filepath.Join(root, "match"),
		config:  filepath.Join(root, "config.toml"),
		journal: filepath.Join(root, "journal.db"),
	}
	require.NoError(t, os.MkdirAll(f.matches, 0o755))
	f.writeMatches(t, matches)

	cfg := fmt.Sprintf("[paths]\nmatches = %q\n\n[journal]\npath = %q\n", f.matches, f.journal)
	require.NoError(t, os.WriteFile(f.config, []byte(cfg), 0o644))
	return f
}

func (f fixture) writeMatches(t *testing.T, matches string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.matches, "base.yml"), []byte(matches), 0o644))
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

type response[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
}

func decodeResponse[T any](t *testing.T, out string) response[T] {
	t.Helper()
	var resp response[T]
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}
