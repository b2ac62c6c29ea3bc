package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolcase/toolcase"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8002", cfg.Addr)
	assert.Equal(t, "http", cfg.Transport)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.Timeout))
	require.NoError(t, cfg.validate())

	// A missing file also yields the defaults.
	cfg, err = loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8002", cfg.Addr)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
secret: hunter2
transport: stdio
timeout: 5s
disabled_toolkits:
  - github
`), 0o600))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "hunter2", cfg.Secret)
	assert.Equal(t, "stdio", cfg.Transport)
	assert.Equal(t, 5*time.Second, time.Duration(cfg.Timeout))
	assert.Equal(t, []string{"github"}, cfg.DisabledToolkits)
	require.NoError(t, cfg.validate())
}

func TestConfig_ValidateRejectsUnknownTransport(t *testing.T) {
	cfg := defaultConfig()
	cfg.Transport = "carrier-pigeon"
	require.Error(t, cfg.validate())
}

func TestBuiltinToolkit_Registers(t *testing.T) {
	catalog := toolcase.NewCatalog()
	fqns, err := catalog.AddToolkit(builtinToolkit())
	require.NoError(t, err)
	require.Len(t, fqns, 3)

	_, err = catalog.GetByName("Utils.Echo", "")
	require.NoError(t, err)
	_, err = catalog.GetByName("Utils.CurrentTime", "")
	require.NoError(t, err)
	_, err = catalog.GetByName("Utils.GenerateId", "")
	require.NoError(t, err)
}
