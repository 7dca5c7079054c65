package config

import (
	"github.com/spf13/viper"

	"github.com/Veraticus/sats-budget/internal/sheets"
)

// LoadSheetsConfig builds the Google Sheets configuration. Values come from
// viper (config file or SATS_SHEETS_* env vars) first, then GOOGLE_SHEETS_*
// env vars, then defaults.
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(viper.GetString("sheets.service_account_path"))
	config.ClientID = viper.GetString("sheets.client_id")
	config.ClientSecret = viper.GetString("sheets.client_secret")
	config.RefreshToken = viper.GetString("sheets.refresh_token")
	config.SpreadsheetID = viper.GetString("sheets.spreadsheet_id")
	if v := viper.GetString("sheets.spreadsheet_name"); v != "" {
		config.SpreadsheetName = v
	}
	if v := viper.GetString("sheets.timezone"); v != "" {
		config.TimeZone = v
	}

	config.LoadFromEnv()
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
