package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"instaapp/internal/config"

	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		require.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("sets unset variables only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("INSTAAPP_TEST_A=from-file\nINSTAAPP_TEST_B=from-file\n"), 0o600))

		t.Setenv("INSTAAPP_TEST_B", "from-env")
		t.Setenv("INSTAAPP_TEST_A", "")
		require.NoError(t, os.Unsetenv("INSTAAPP_TEST_A"))

		require.NoError(t, config.LoadDotEnv(path))

		require.Equal(t, "from-file", os.Getenv("INSTAAPP_TEST_A"))
		require.Equal(t, "from-env", os.Getenv("INSTAAPP_TEST_B"))
	})
}
