package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	assert.True(t, names["configure"])
	assert.True(t, names["patches"])
	assert.True(t, names["watch"])
}

func TestRootCmd_VersionTemplate(t *testing.T) {
	require.NotNil(t, rootCmd.Annotations)
	assert.Contains(t, rootCmd.Annotations, "buildDate")
	assert.Contains(t, rootCmd.Annotations, "commit")
}
