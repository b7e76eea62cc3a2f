package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureDataDirectoryCreatesPath(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "nested", "data")

	err := EnsureDataDirectory(target, zap.NewNop().Sugar())
	require.NoError(t, err)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDataDirectoryExistingPath(t *testing.T) {
	base := t.TempDir()
	err := EnsureDataDirectory(base, zap.NewNop().Sugar())
	assert.NoError(t, err)
}

func TestInitLogger(t *testing.T) {
	logger, sugar, err := InitLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NotNil(t, sugar)
}
