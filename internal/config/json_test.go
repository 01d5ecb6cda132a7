package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Success(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"app": map[string]any{
			"version":        "1.0.0",
			"token_sign_key": "key",
			"token_issuer":   "idp",
			"token_duration": "90m",
			"address_format": "bech32",
			"bech32_prefix":  "cosmos",
		},
		"log":     map[string]any{"level": "warn"},
		"storage": map[string]any{"db": map[string]any{"dsn": "badger:///data"}},
		"server": map[string]any{
			"http_address":    "localhost:8080",
			"grpc_address":    "localhost:9090",
			"request_timeout": "20s",
		},
		"adapter": map[string]any{
			"mode":                  "placeholder",
			"ledger_url":            "http://ledger",
			"request_timeout":       "3s",
			"placeholder_signers":   []string{"A", "B", "C"},
			"placeholder_threshold": 2,
		},
		"workers": map[string]any{"refresh_interval": "10s"},
	})

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "key", cfg.App.TokenSignKey)
	assert.Equal(t, "idp", cfg.App.TokenIssuer)
	assert.Equal(t, 90*time.Minute, cfg.App.TokenDuration)
	assert.Equal(t, "bech32", cfg.App.AddressFormat)
	assert.Equal(t, "cosmos", cfg.App.Bech32Prefix)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "badger:///data", cfg.Storage.DB.DSN)
	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress)
	assert.Equal(t, "localhost:9090", cfg.Server.GRPCAddress)
	assert.Equal(t, 20*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "placeholder", cfg.Adapter.Mode)
	assert.Equal(t, "http://ledger", cfg.Adapter.LedgerURL)
	assert.Equal(t, 3*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, []string{"A", "B", "C"}, cfg.Adapter.PlaceholderSigners)
	assert.Equal(t, 2, cfg.Adapter.PlaceholderThreshold)
	assert.Equal(t, 10*time.Second, cfg.Workers.RefreshInterval)
}

func TestParseJSON_FileNotFound(t *testing.T) {
	cfg, err := parseJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading a json file")
}

func TestParseJSON_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	cfg, err := parseJSON(path)
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding json configs")
}

func TestParseJSON_InvalidDuration(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"server": map[string]any{"request_timeout": "forever"},
	})

	_, err := parseJSON(path)
	assert.Error(t, err)
}

func TestParseJSON_EmptyObject(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{})

	cfg, err := parseJSON(path)
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `"1m30s"`, want: 90 * time.Second},
		{name: "nanoseconds", input: `1000000000`, want: time.Second},
		{name: "bool", input: `true`, wantErr: true},
		{name: "garbage string", input: `"abc"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Duration(2 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, `"2m0s"`, string(data))
}
