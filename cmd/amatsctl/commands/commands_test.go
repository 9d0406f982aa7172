package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestEncodeCommand(t *testing.T) {
	out, err := run(t, newEncodeCmd(), "2", "weeks")
	require.NoError(t, err)
	assert.Equal(t, "20160", out)

	out, err = run(t, newEncodeCmd(), "1", "Year")
	require.NoError(t, err)
	assert.Equal(t, "525600", out)

	_, err = run(t, newEncodeCmd(), "2", "fortnights")
	assert.Error(t, err)
	_, err = run(t, newEncodeCmd(), "two", "weeks")
	assert.Error(t, err)
}

func TestDescribeCommand(t *testing.T) {
	out, err := run(t, newDescribeCmd(), "90")
	require.NoError(t, err)
	assert.Equal(t, "1 hour and 30 minutes", out)

	out, err = run(t, newDescribeCmd(), "--exact", "1501")
	require.NoError(t, err)
	assert.Equal(t, "1 day, 1 hour and 1 minute", out)

	_, err = run(t, newDescribeCmd(), "-5")
	assert.Error(t, err)
}
