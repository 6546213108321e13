package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownRejectsInvalidSteps(t *testing.T) {
	for _, arg := range []string{"abc", "0", "-2"} {
		cmd := newRootCommand()
		cmd.SetArgs([]string{"down", "--", arg})

		err := cmd.Execute()
		require.Error(t, err, arg)
		assert.Contains(t, err.Error(), "steps must be a positive integer")
	}
}

func TestCommandsAreRegistered(t *testing.T) {
	cmd := newRootCommand()

	for _, name := range []string{"up", "down", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}
