package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execCLI runs the root command with the given stdin and args, capturing
// stdout and stderr.
func execCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "medscribe", root.Use)

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[strings.Fields(sub.Use)[0]] = true
	}
	for _, want := range []string{"analyze", "suggest", "templates"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestGetCLIContext_Uninitialized(t *testing.T) {
	cmd := &cobra.Command{Use: "bare"}
	_, err := GetCLIContext(cmd)
	require.Error(t, err)
}

func TestFormatTable(t *testing.T) {
	out := FormatTable(
		[]string{"ID", "NAME"},
		[][]string{
			{"general_consultation", "General Consultation"},
			{"emergency", "Emergency"},
		},
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "--")
	assert.Contains(t, lines[2], "general_consultation")

	// Every column is padded, so all lines share a width.
	for _, line := range lines[1:] {
		assert.Equal(t, len(lines[0]), len(line))
	}
}

func TestFormatTable_Empty(t *testing.T) {
	assert.Equal(t, "", FormatTable(nil, nil))
}
