package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalNetworkJSON = `{
  "network": {"nodes": [1, 2], "links": [{"node1": 1, "node2": 2, "delay": 1.0, "bandwidth": 100.0}]},
  "flows": [{"flow_id": 1, "arrival_rate": 2.0, "burst_size": 4.0, "max_e2e_delay": 20.0, "max_pkt_size": 1.5, "src": 1, "dest": 2}]
}`

func TestLoaderLoadDefaults(t *testing.T) {
	l := NewLoader(WithConfigPaths("/nonexistent/path.json"))
	cfg, err := l.Load(Overrides{
		"network.nodes": []int64{1, 2},
		"flows": []map[string]any{
			{"flow_id": 1, "src": 1, "dest": 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "cqfsim", cfg.App.Name)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 1000.0, cfg.Simulation.CycleDurationUs)
}

func TestLoaderLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "network_config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(minimalNetworkJSON), 0644))

	cfg, err := LoadFromFile(configPath, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, cfg.Network.Nodes)
	require.Len(t, cfg.Network.Links, 1)
	assert.Equal(t, 100.0, cfg.Network.Links[0].Bandwidth)
	require.Len(t, cfg.Flows, 1)
	assert.Equal(t, int64(1), cfg.Flows[0].FlowID)
}

func TestLoaderEnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "network_config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(minimalNetworkJSON), 0644))

	os.Setenv("CQFSIM_LOG_LEVEL", "debug")
	defer os.Unsetenv("CQFSIM_LOG_LEVEL")

	cfg, err := LoadFromFile(configPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoaderOverridesWinOverEverything(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "network_config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(minimalNetworkJSON), 0644))

	os.Setenv("CQFSIM_LOG_LEVEL", "debug")
	defer os.Unsetenv("CQFSIM_LOG_LEVEL")

	cfg, err := LoadFromFile(configPath, Overrides{"log.level": "warn"})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoaderWithEnvPrefix(t *testing.T) {
	os.Setenv("CUSTOM_LOG_LEVEL", "warn")
	defer os.Unsetenv("CUSTOM_LOG_LEVEL")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "network_config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(minimalNetworkJSON), 0644))

	cfg, err := LoadFromFile(configPath, nil, WithEnvPrefix("CUSTOM_"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoaderRejectsMissingRequiredFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "network_config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{}`), 0644))

	_, err := LoadFromFile(configPath, nil)
	assert.Error(t, err)
}
