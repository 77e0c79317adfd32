package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/datahub/pkg/config"
)

func withViper(t *testing.T, settings map[string]interface{}) {
	t.Cleanup(viper.Reset)
	for k, v := range settings {
		viper.Set(k, v)
	}
}

func TestClientConfigFromProfile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "profiles")
	require.NoError(t, config.SaveProfile(file, "staging", "Accesskey-staging", "https://staging.example.com"))
	withViper(t, map[string]interface{}{
		keyProfilesFile: file,
		keyProfile:      "staging",
		keyLogLevel:     "debug",
		keyTimeout:      time.Minute,
	})

	cfg, err := clientConfig()
	require.NoError(t, err)
	assert.Equal(t, "Accesskey-staging", cfg.AccessKey)
	assert.Equal(t, "https://staging.example.com", cfg.BaseURL())
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestClientConfigKeyOverridesProfile(t *testing.T) {
	withViper(t, map[string]interface{}{
		keyProfilesFile: filepath.Join(t.TempDir(), "missing"),
		keyKey:          "Accesskey-explicit",
		keyURL:          "http://localhost:8080/",
	})

	cfg, err := clientConfig()
	require.NoError(t, err)
	assert.Equal(t, "Accesskey-explicit", cfg.AccessKey)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL())
	assert.Equal(t, config.DefaultTimeout, cfg.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestClientConfigUnknownProfile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "profiles")
	require.NoError(t, config.SaveProfile(file, "default", "Accesskey-default", ""))
	withViper(t, map[string]interface{}{
		keyProfilesFile: file,
		keyProfile:      "nope",
	})

	_, err := clientConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrNoProfile)
}
