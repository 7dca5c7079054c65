package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/sats-budget/internal/common"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		config  Config
		wantErr bool
	}{
		{
			name: "partial oauth credentials",
			config: Config{
				ClientID:      "test-client",
				ClientSecret:  "", // Missing secret
				RefreshToken:  "test-token",
				BatchSize:     100,
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "zero retry delay is valid",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryAttempts:      0, // No retries
				RetryDelay:         0, // No delay
			},
			wantErr: false,
		},
		{
			name: "negative retry delay",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryAttempts:      3,
				RetryDelay:         -1 * time.Second,
			},
			wantErr: true,
			errMsg:  "retry delay cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "env-client")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "env-secret")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "env-token")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_NAME", "Household")
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")

	config := DefaultConfig()
	config.ClientID = "explicit-client"
	config.LoadFromEnv()

	assert.Equal(t, "explicit-client", config.ClientID)
	assert.Equal(t, "env-secret", config.ClientSecret)
	assert.Equal(t, "env-token", config.RefreshToken)
	assert.Equal(t, "Household", config.SpreadsheetName)
	assert.NoError(t, config.Validate())
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, DefaultSpreadsheetName, config.SpreadsheetName)
	assert.Equal(t, 1000, config.BatchSize)
	assert.True(t, config.EnableFormatting)
	assert.ErrorIs(t, config.Validate(), common.ErrMissingConfig)
}
