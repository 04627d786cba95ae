package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "004_existing.go"), []byte("package migrations\n"), 0o644))

	require.NoError(t, createMigration(dir, "add_index"))

	content, err := os.ReadFile(filepath.Join(dir, "005_add_index.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `Version:     "005_add_index"`)
	assert.Contains(t, string(content), "func up005(")

	require.NoError(t, createMigration(dir, "add_index"))
	assert.FileExists(t, filepath.Join(dir, "006_add_index.go"))
}
