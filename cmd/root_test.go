package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/applyfill/internal/browser"
	"github.com/spigell/applyfill/internal/observe"
)

func TestGetConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("thresholds.high", 90)
	viper.Set("exclude.paths", []string{"extras"})
	viper.Set("fill.delay", "250ms")

	config, err := getConfig()
	require.NoError(t, err)

	assert.Equal(t, 50, config.Thresholds.Low)
	assert.Equal(t, 90, config.Thresholds.High)
	assert.Equal(t, 40, config.Detection.MinConfidence)
	assert.Equal(t, 30, config.Detection.Weights.URL)
	assert.Equal(t, observe.MinQuiet, config.Watch.Quiet)
	assert.Equal(t, []string{"extras"}, config.Exclude.Paths)
	assert.Equal(t, "250ms", config.Fill.Delay.String())
}

func TestRedactedConfig(t *testing.T) {
	config := &Config{Browser: browser.Config{RemoteURL: "wss://chrome.example.com?token=s3cret"}}

	out := redacted(config)
	assert.Equal(t, "[redacted]", out.Browser.RemoteURL)
	assert.Equal(t, "wss://chrome.example.com?token=s3cret", config.Browser.RemoteURL)
}

func TestLoadProfileRequiresPath(t *testing.T) {
	_, err := loadProfile(&Config{})
	assert.ErrorContains(t, err, "APPLYFILL_PROFILE")
}
