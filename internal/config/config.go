package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/sats-budget/internal/common"
	"github.com/Veraticus/sats-budget/internal/ofx"
)

// EnvPrefix prefixes every environment variable viper reads.
const EnvPrefix = "SATS"

// Defaults.
const (
	DefaultDatabasePath  = "$HOME/.local/share/sats/budget.db"
	DefaultInflationRate = 0.08
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
)

// Settings is the typed view of the configuration.
type Settings struct {
	DatabasePath  string
	LogLevel      string
	LogFormat     string
	ImportUnit    ofx.Unit
	InflationRate float64
	UseFloor      bool
}

// EnvKeyReplacer maps nested keys to env names, so projection.use_floor is
// read from SATS_PROJECTION_USE_FLOOR.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
	v.SetDefault("projection.inflation_rate", DefaultInflationRate)
	v.SetDefault("projection.use_floor", false)
	v.SetDefault("import.unit", string(ofx.UnitBTC))
}

// Load reads settings from the global viper instance.
func Load() (*Settings, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates settings from v.
func LoadFrom(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)

	unit, err := ofx.ParseUnit(v.GetString("import.unit"))
	if err != nil {
		return nil, fmt.Errorf("%w: import.unit: %w", common.ErrInvalidConfig, err)
	}

	s := &Settings{
		DatabasePath:  ExpandPath(v.GetString("database.path")),
		LogLevel:      v.GetString("logging.level"),
		LogFormat:     v.GetString("logging.format"),
		ImportUnit:    unit,
		InflationRate: v.GetFloat64("projection.inflation_rate"),
		UseFloor:      v.GetBool("projection.use_floor"),
	}

	if s.DatabasePath == "" {
		return nil, fmt.Errorf("%w: database.path is empty", common.ErrInvalidConfig)
	}
	if math.IsNaN(s.InflationRate) || s.InflationRate <= -1 {
		return nil, fmt.Errorf("%w: projection.inflation_rate must exceed -1, got %v", common.ErrInvalidConfig, s.InflationRate)
	}
	if _, err := common.ParseLevel(s.LogLevel); err != nil {
		return nil, err
	}
	return s, nil
}
