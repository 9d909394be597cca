package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWhenNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	cfg, err := Load("threadmon")
	require.NoError(t, err)

	assert.Equal(t, "threadmon", cfg.Service.Name)
	assert.Equal(t, 4, cfg.Pool.WorkerCount)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "prometheus_text", cfg.Exporter.Format)
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	require.NoError(t, os.Setenv("POOL_WORKER_COUNT", "9"))
	defer os.Unsetenv("POOL_WORKER_COUNT")

	cfg, err := Load("threadmon")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Pool.WorkerCount)
}
