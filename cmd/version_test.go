package cmd

import (
	"bytes"
	"testing"

	"github.com/longkey1/bookchat/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() {
		versionCmd.SetOut(nil)
		versionCmd.Flags().Set("short", "false")
	})

	require.NoError(t, versionCmd.RunE(versionCmd, nil))
	assert.Equal(t, version.Info()+"\n", buf.String())

	buf.Reset()
	require.NoError(t, versionCmd.Flags().Set("short", "true"))
	require.NoError(t, versionCmd.RunE(versionCmd, nil))
	assert.Equal(t, version.Short()+"\n", buf.String())

	assert.Contains(t, versionCmd.Long, "bookchat")
}
