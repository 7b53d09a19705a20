package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "key")
	t.Setenv("SESSION_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "US", cfg.TargetRegion)
	assert.Equal(t, 5, cfg.MaxCandidates)
	assert.Equal(t, 2*time.Second, cfg.DrinkCue)
	assert.Equal(t, 3*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.Development())
	assert.Empty(t, cfg.RedisAddress)
	assert.Empty(t, cfg.MQTTBrokerURL)
}

func TestLoadRequiresKeys(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "")
	os.Unsetenv("YOUTUBE_API_KEY")
	t.Setenv("SESSION_SECRET", "secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("YOUTUBE_API_KEY=filekey\nSESSION_SECRET=filesecret\nMAX_CANDIDATES=3\nTARGET_REGION=SE\n"), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"YOUTUBE_API_KEY", "SESSION_SECRET", "MAX_CANDIDATES", "TARGET_REGION"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "filekey", cfg.YouTubeAPIKey)
	assert.Equal(t, 3, cfg.MaxCandidates)
	assert.Equal(t, "SE", cfg.TargetRegion)
}

func TestLoadValidates(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "key")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("MAX_CANDIDATES", "0")
	t.Setenv("TARGET_REGION", "USA")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_CANDIDATES")
	assert.Contains(t, err.Error(), "TARGET_REGION")
}
