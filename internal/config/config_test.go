package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(10<<20), cfg.Editor.MaxUploadBytes)
	assert.Empty(t, cfg.Editor.InitialSnapshot)
	assert.Equal(t, "Helvetica", cfg.Render.FontFamily)
	assert.Equal(t, float64(96), cfg.Render.PreviewDPI)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoad_File(t *testing.T) {
	snap := writeFile(t, "start.json", "{}")
	path := writeFile(t, "config.yaml", `
server:
  port: 9000
  shutdown_timeout: 3s
editor:
  initial_snapshot: `+snap+`
render:
  preview_dpi: 150
logger:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, snap, cfg.Editor.InitialSnapshot)
	assert.Equal(t, float64(150), cfg.Render.PreviewDPI)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("INVOICE_PORT", "9191")
	t.Setenv("INVOICE_LOG_LEVEL", "warn")
	t.Setenv("INVOICE_RENDER_FONT_FAMILY", "Times")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "Times", cfg.Render.FontFamily)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad port", func(t *testing.T) {
		path := writeFile(t, "config.yaml", "server:\n  port: 70000\n")
		_, err := Load(path)
		assert.ErrorContains(t, err, "server.port")
	})

	t.Run("missing initial snapshot", func(t *testing.T) {
		t.Setenv("INVOICE_INITIAL_SNAPSHOT", filepath.Join(t.TempDir(), "gone.json"))
		_, err := Load("")
		assert.ErrorContains(t, err, "editor.initial_snapshot")
	})
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server: ServerConfig{Port: 8080},
		Editor: EditorConfig{MaxUploadBytes: 1},
		Render: RenderConfig{PreviewDPI: 72},
		Logger: LoggerConfig{Format: "json"},
	}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.Logger.Format = "xml"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Editor.MaxUploadBytes = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Render.PreviewDPI = 0
	assert.Error(t, bad.Validate())
}
