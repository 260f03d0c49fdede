package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	var config CadenceConfig
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, "0.0.0.0:3000", config.RestConfig.HostAddr)
	assert.Equal(t, 100, config.ConvertConfig.MaxOutputMB)
	assert.Equal(t, 300000, config.ConvertConfig.TimeoutMS)
	assert.Equal(t, 5*time.Minute, config.ConvertConfig.Timeout())
	assert.EqualValues(t, 100*1024*1024, config.ConvertConfig.MaxOutputBytes())
	assert.Equal(t, "yt-dlp", config.ToolConfig.Binary())
	assert.Equal(t, "info", config.LogLevel)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE_MB", "5")
	t.Setenv("CONVERSION_TIMEOUT_MS", "1500")
	t.Setenv("YTDLP_PATH", "/opt/bin/yt-dlp")
	t.Setenv("API_HOST_ADDR", "127.0.0.1:9000")

	var config CadenceConfig
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, "127.0.0.1:9000", config.RestConfig.HostAddr)
	assert.EqualValues(t, 5*1024*1024, config.ConvertConfig.MaxOutputBytes())
	assert.Equal(t, 1500*time.Millisecond, config.ConvertConfig.Timeout())
	assert.Equal(t, "/opt/bin/yt-dlp", config.ToolConfig.Binary())
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	for _, test := range []struct{ key, value string }{
		{"MAX_FILE_SIZE_MB", "0"},
		{"CONVERSION_TIMEOUT_MS", "-1"},
		{"CONVERSION_TIMEOUT_MS", "soon"},
		{"LOG_LEVEL", "chatty"},
	} {
		t.Run(test.key+"="+test.value, func(t *testing.T) {
			t.Setenv(test.key, test.value)

			var config CadenceConfig
			assert.Error(t, config.LoadFromEnv())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadence.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  host_address: "127.0.0.1:4000"
conversion:
  max_file_size_mb: 42
yt_dlp:
  binary_path: /usr/local/bin/yt-dlp
log_level: debug
`), 0o600))

	var config CadenceConfig
	require.NoError(t, config.LoadFromFile(path))

	assert.Equal(t, "127.0.0.1:4000", config.RestConfig.HostAddr)
	assert.Equal(t, 42, config.ConvertConfig.MaxOutputMB)
	assert.Equal(t, 300000, config.ConvertConfig.TimeoutMS, "unset values take their default")
	assert.Equal(t, "/usr/local/bin/yt-dlp", config.ToolConfig.Binary())
	assert.Equal(t, "debug", config.LogLevel)
}

func TestLoadFromFile_Missing(t *testing.T) {
	var config CadenceConfig
	assert.Error(t, config.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")))
}

func testConfig(t *testing.T, hostAddr string) CadenceConfig {
	var config CadenceConfig
	require.NoError(t, config.LoadFromEnv())
	config.RestConfig.HostAddr = hostAddr
	config.ToolConfig.BinaryPath = filepath.Join(t.TempDir(), "yt-dlp")

	return config
}

func TestCadence_RunStopsOnCancel(t *testing.T) {
	cadence := New(testConfig(t, "127.0.0.1:0"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cadence.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Cadence did not stop after context cancellation")
	}
}

func TestCadence_RunReportsCrash(t *testing.T) {
	cadence := New(testConfig(t, "127.0.0.1:-1"))

	done := make(chan error, 1)
	go func() { done <- cadence.Run(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rest-gateway crashed")
	case <-time.After(5 * time.Second):
		t.Fatal("Cadence did not stop after the gateway crashed")
	}
}
