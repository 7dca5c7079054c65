package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sats-budget/internal/common"
	"github.com/Veraticus/sats-budget/internal/ofx"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SATS_TEST_DIR", "/srv/budget")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/budget.db", filepath.Join(home, "budget.db")},
		{"$SATS_TEST_DIR/budget.db", "/srv/budget/budget.db"},
		{"/abs/budget.db", "/abs/budget.db"},
		{"~other/budget.db", "~other/budget.db"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	s, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "/home/tester/.local/share/sats/budget.db", s.DatabasePath)
	assert.Equal(t, DefaultInflationRate, s.InflationRate)
	assert.False(t, s.UseFloor)
	assert.Equal(t, ofx.UnitBTC, s.ImportUnit)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "console", s.LogFormat)
}

func TestLoadFrom_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /data/budget.db
projection:
  inflation_rate: 0.05
  use_floor: true
import:
  unit: sats
`), 0o600))

	t.Setenv("SATS_PROJECTION_INFLATION_RATE", "0.12")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(EnvKeyReplacer())
	v.AutomaticEnv()
	require.NoError(t, v.ReadInConfig())

	s, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "/data/budget.db", s.DatabasePath)
	assert.InDelta(t, 0.12, s.InflationRate, 1e-12)
	assert.True(t, s.UseFloor)
	assert.Equal(t, ofx.UnitSats, s.ImportUnit)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"unknown unit", "import.unit", "usd"},
		{"inflation at -100%", "projection.inflation_rate", -1.0},
		{"bad log level", "logging.level", "loud"},
		{"empty database path", "database.path", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			_, err := LoadFrom(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "")
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_NAME", "")
	t.Setenv("HOME", "/home/tester")

	_, err := LoadSheetsConfig()
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	viper.Set("sheets.service_account_path", "~/keys/sa.json")
	viper.Set("sheets.spreadsheet_id", "abc123")
	cfg, err := LoadSheetsConfig()
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/keys/sa.json", cfg.ServiceAccountPath)
	assert.Equal(t, "abc123", cfg.SpreadsheetID)

	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "from-env")
	cfg, err = LoadSheetsConfig()
	require.NoError(t, err)
	assert.Equal(t, "abc123", cfg.SpreadsheetID)
}
