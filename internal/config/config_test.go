package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg Config)
	}{
		{
			name:    "partial file keeps defaults",
			content: "addr: \":9090\"\ndebug: true\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, ":9090", cfg.Addr)
				assert.True(t, cfg.Debug)
				assert.Equal(t, Default().DBPath, cfg.DBPath)
				assert.Equal(t, "output_csv", cfg.OutputDir)
			},
		},
		{
			name:    "all fields",
			content: "db: /tmp/c.db\naddr: localhost:1\noutput_dir: out\nreport_title: Mine\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Config{DBPath: "/tmp/c.db", Addr: "localhost:1", OutputDir: "out", ReportTitle: "Mine"}, cfg)
			},
		},
		{
			name:    "invalid yaml",
			content: "addr: [unterminated\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CYCLES_DB", "/data/cycles.db")
	t.Setenv("CYCLES_ADDR", ":7000")
	t.Setenv("CYCLES_OUTPUT_DIR", "exports")
	t.Setenv("CYCLES_DEBUG", "true")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "/data/cycles.db", cfg.DBPath)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "exports", cfg.OutputDir)
	assert.True(t, cfg.Debug)

	t.Setenv("CYCLES_DEBUG", "sometimes")
	assert.Error(t, cfg.ApplyEnv())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	cfg := Default()
	cfg.DBPath = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.OutputDir = ""
	assert.Error(t, cfg.Validate())
}
