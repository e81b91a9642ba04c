package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	for _, key := range []string{"TABLE_NAME", "INDEX_NAME", "LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "RecipeData", cfg.TableName)
	assert.Equal(t, "GS1", cfg.IndexName)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("table_name: FromFile\ntopic_arn: arn:file\nlog:\n  level: debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("TABLE_NAME", "FromEnv")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "FromEnv", cfg.TableName)
	assert.Equal(t, "arn:file", cfg.TopicArn)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestEnvTransformDropsUnknown(t *testing.T) {
	assert.Equal(t, "", envTransform("PATH"))
	assert.Equal(t, "log.level", envTransform("LOG_LEVEL"))
	assert.Equal(t, "endpoint", envTransform("AWS_ENDPOINT_URL"))
}
