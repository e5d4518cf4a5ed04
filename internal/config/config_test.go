package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DefaultsWhenNoConfigFile(t *testing.T) {
	viper.Reset()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	tmpDir := t.TempDir()
	require.NoError(t, os.Chdir(tmpDir))
	defer func() { _ = os.Chdir(oldWd) }()

	require.NoError(t, os.Setenv("HOME", tmpDir))
	defer os.Unsetenv("HOME")

	err = Init()
	// Default Server is "" which fails Validate; expected since no config
	// file supplied one here.
	require.Error(t, err)
	var cfgErr *ErrConfig
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "server", cfgErr.Field)
}

func TestInit_ReadsTOMLFile(t *testing.T) {
	viper.Reset()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	tmpDir := t.TempDir()
	require.NoError(t, os.Chdir(tmpDir))
	defer func() { _ = os.Chdir(oldWd) }()

	toml := `
server = "10.0.0.5"
port = 24801
client_name = "workstation"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "synergo.toml"), []byte(toml), 0o644))

	require.NoError(t, Init())
	c := Get()
	assert.Equal(t, "10.0.0.5", c.Server)
	assert.Equal(t, 24801, c.Port)
	assert.Equal(t, "workstation", c.ClientName)
	assert.Equal(t, 8, c.MouseMoveThreshold, "unset keys fall through to defaults")
}

func TestGet_ReturnsDefaultConfigBeforeInit(t *testing.T) {
	cfg = nil
	c := Get()
	assert.Equal(t, DefaultConfig.Port, c.Port)
}

func TestConfig_DurationConversions(t *testing.T) {
	c := Config{ConnectTimeout: 10, HeartbeatInterval: 3, MouseMoveThreshold: 8}
	assert.Equal(t, float64(10*1e9), float64(c.ConnectTimeoutDuration()))
	assert.Equal(t, float64(3*1e9), float64(c.HeartbeatIntervalDuration()))
	assert.Equal(t, float64(8*1e6), float64(c.MouseMoveThresholdDuration()))
}

func TestConfig_TLSMinVersionConstant(t *testing.T) {
	assert.Equal(t, uint16(0x0301), Config{TLSMinVersion: "1.0"}.TLSMinVersionConstant())
	assert.Equal(t, uint16(0x0304), Config{TLSMinVersion: "1.3"}.TLSMinVersionConstant())
	assert.Equal(t, uint16(0x0303), Config{TLSMinVersion: "bogus"}.TLSMinVersionConstant())
}

func TestValidate(t *testing.T) {
	base := DefaultConfig
	base.Server = "10.0.0.5"

	t.Run("valid config passes", func(t *testing.T) {
		c := base
		assert.NoError(t, Validate(&c))
	})

	t.Run("empty server rejected", func(t *testing.T) {
		c := base
		c.Server = ""
		assert.Error(t, Validate(&c))
	})

	t.Run("port out of range rejected", func(t *testing.T) {
		c := base
		c.Port = 70000
		assert.Error(t, Validate(&c))
	})

	t.Run("mtls without pem_path rejected", func(t *testing.T) {
		c := base
		c.MTLS = true
		c.PEMPath = ""
		err := Validate(&c)
		require.Error(t, err)
		var cfgErr *ErrConfig
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "pem_path", cfgErr.Field)
	})

	t.Run("mtls with pem_path accepted", func(t *testing.T) {
		c := base
		c.MTLS = true
		c.PEMPath = "/etc/synergo/client.pem"
		assert.NoError(t, Validate(&c))
	})

	t.Run("negative threshold rejected", func(t *testing.T) {
		c := base
		c.MouseMoveThreshold = -1
		assert.Error(t, Validate(&c))
	})

	t.Run("unrecognized tls_min_version rejected", func(t *testing.T) {
		c := base
		c.TLSMinVersion = "2.0"
		assert.Error(t, Validate(&c))
	})
}

func TestGetConfigPath_UsesViperFileWhenLoaded(t *testing.T) {
	viper.Reset()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "synergo.toml")
	require.NoError(t, os.WriteFile(path, []byte(`server = "10.0.0.5"`), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	assert.Equal(t, path, GetConfigPath())
}
