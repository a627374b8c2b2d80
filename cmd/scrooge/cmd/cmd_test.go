package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/smallbiznis/scrooge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestTypesListsLabels(t *testing.T) {
	out := execute(t, "types")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "OpenStack Tenant")
	assert.Contains(t, out, "ip_address")

	out = execute(t, "types", "--lang", "pl")
	assert.Contains(t, out, "Maszyna wirtualna")
}

func TestVersion(t *testing.T) {
	out := execute(t, "version")
	if !strings.HasPrefix(out, "scrooge version ") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRegisterSnowflake(t *testing.T) {
	node, err := RegisterSnowflake(config.Config{NodeID: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(7), node.Generate().Node())

	_, err = RegisterSnowflake(config.Config{NodeID: 4096})
	assert.Error(t, err)
}
