package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	if _, err := Initialize(tempDir, zap.NewNop().Sugar()); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(tempDir)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("OpenAppLog", func(t *testing.T) {
		fd, err := cfg.OpenAppLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("ReadAppLog", func(t *testing.T) {
		fd, err := cfg.ReadAppLog()
		assert.Nil(t, err)
		fd.Close()
	})
}

func TestInitializeFs_keepsExisting(t *testing.T) {
	fsys := afero.NewMemMapFs()
	custom := []byte("history_size: 7\narg_limit: 3\nprompt: \"$ \"\ncolor: never\napp_log: \"\"\nlog_level: warn\n")
	require.NoError(t, afero.WriteFile(fsys, "/etc/sish/config.yaml", custom, 0600))

	cfg, err := InitializeFs(fsys, "/etc/sish", zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.HistorySize)
	assert.Equal(t, "$ ", cfg.Prompt)

	contents, err := afero.ReadFile(fsys, "/etc/sish/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, custom, contents)
}
