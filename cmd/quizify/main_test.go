package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("QUIZIFY_DATABASE_FILE", db)
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate"})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(db)
	require.NoError(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate", "--config", filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, cmd.Execute())
}
