package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "./csv", config.SourceDir)
	assert.Equal(t, "./dat", config.BinaryDir)
	assert.Equal(t, "./out", config.OutputDir)
	assert.Equal(t, "./data", config.StoreDir)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Bind)
	assert.Equal(t, "info", config.Logging.Level)
	require.Len(t, config.Versions, 3)
	assert.Equal(t, Version{ID: "06", Name: "新世纪五笔"}, config.Versions[0])
	assert.NoError(t, config.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")
		expectedConfig := &Config{
			SourceDir: "/custom/csv",
			BinaryDir: "/custom/dat",
			OutputDir: "/custom/out",
			StoreDir:  "/custom/data",
			Header:    Header{File: "/custom/header.bin", Size: 16},
			Versions:  []Version{{ID: "86", Name: "86-18030"}},
			Server:    Server{Bind: "0.0.0.0", Port: 9000},
			Logging:   Logging{Level: "debug"},
		}

		err := SaveConfig(expectedConfig, configPath)
		require.NoError(t, err)

		loadedConfig, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, expectedConfig, loadedConfig)
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		err := os.WriteFile(configPath, []byte("source_dir: /src\nheader:\n  size: 32\n"), 0600)
		require.NoError(t, err)

		loaded, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, "/src", loaded.SourceDir)
		assert.Equal(t, 32, loaded.Header.Size)
		assert.Equal(t, 8080, loaded.Server.Port)
		assert.Len(t, loaded.Versions, 3)
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := LoadConfig("/non/existent/config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("load invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "invalid.yaml")
		err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
		require.NoError(t, err)

		_, err = LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("load invalid values", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		err := os.WriteFile(configPath, []byte("logging:\n  level: loud\n"), 0600)
		require.NoError(t, err)

		_, err = LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config file")
	})
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"empty source", func(c *Config) { c.SourceDir = "" }, "source_dir"},
		{"negative header", func(c *Config) { c.Header.Size = -1 }, "header.size"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"duplicate version", func(c *Config) { c.Versions = append(c.Versions, Version{ID: "06"}) }, "listed twice"},
		{"empty version", func(c *Config) { c.Versions = append(c.Versions, Version{}) }, "empty id"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)
			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestVersionLookup(t *testing.T) {
	config := DefaultConfig()
	v, ok := config.Version("98")
	require.True(t, ok)
	assert.Equal(t, "98五笔", v.Name)

	_, ok = config.Version("99")
	assert.False(t, ok)
}

func TestHeaderBlob(t *testing.T) {
	t.Run("zero filled without file", func(t *testing.T) {
		config := DefaultConfig()
		config.Header.Size = 8
		blob, err := config.HeaderBlob()
		require.NoError(t, err)
		assert.Equal(t, make([]byte, 8), blob)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "header.bin")
		require.NoError(t, os.WriteFile(path, []byte("HEAD"), 0600))

		config := DefaultConfig()
		config.Header = Header{File: path, Size: 4}
		blob, err := config.HeaderBlob()
		require.NoError(t, err)
		assert.Equal(t, []byte("HEAD"), blob)

		config.Header.Size = 5
		_, err = config.HeaderBlob()
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		config := DefaultConfig()
		config.Header.File = filepath.Join(t.TempDir(), "missing.bin")
		_, err := config.HeaderBlob()
		assert.Error(t, err)
	})
}

func TestSaveConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	config := DefaultConfig()

	err := SaveConfig(config, configPath)
	require.NoError(t, err)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loadedConfig, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loadedConfig)
}

func TestBootstrapConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	config, err := BootstrapConfig(configPath, "/work")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/work", "csv"), config.SourceDir)
	assert.Equal(t, filepath.Join("/work", "data"), config.StoreDir)
	assert.True(t, ConfigExists(configPath))

	loadedConfig, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loadedConfig)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, "wubitab")
}

func TestConfigExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingPath := filepath.Join(tmpDir, "exists.yaml")
	nonExistentPath := filepath.Join(tmpDir, "does-not-exist.yaml")

	err := os.WriteFile(existingPath, []byte("test"), 0644)
	require.NoError(t, err)

	assert.True(t, ConfigExists(existingPath))
	assert.False(t, ConfigExists(nonExistentPath))
}

func TestConfigYAMLMarshalling(t *testing.T) {
	config := DefaultConfig()
	config.Header = Header{File: "h.bin", Size: 12}

	data, err := yaml.Marshal(config)
	require.NoError(t, err)
	assert.Contains(t, string(data), "source_dir:")
	assert.Contains(t, string(data), "新世纪五笔")

	var unmarshalled Config
	err = yaml.Unmarshal(data, &unmarshalled)
	require.NoError(t, err)

	assert.Equal(t, config, &unmarshalled)
}

func TestSaveConfigErrorHandling(t *testing.T) {
	config := DefaultConfig()

	// a regular file cannot be used as a directory
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))
	invalidPath := filepath.Join(blocker, "sub", "config.yaml")

	err := SaveConfig(config, invalidPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create config directory")
}
