// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"

	"github.com/MKhiriev/go-multisig-keeper/models"
)

// StructuredConfig is the top-level configuration container for the
// multisig keeper. It aggregates all sub-configurations and is populated by
// merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env      : direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings: version, identity token
	// verification and the accepted account address format.
	App App `envPrefix:"APP_"`

	// Log holds logger settings.
	Log Log `envPrefix:"LOG_"`

	// Storage selects and configures the vault persistence backend.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and timeout settings for the HTTP and
	// gRPC servers.
	Server Server `envPrefix:"SERVER_"`

	// Adapter configures the ledger collaborator used to fetch vault
	// snapshots and broadcast executed transactions.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds configuration for background worker processes.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// Version is the semantic version string of the running application.
	// Exposed via the /api/version endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// TokenSignKey is the HMAC key shared with the identity provider and
	// used to verify identity tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the expected "iss" claim of identity tokens.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is the lifetime of tokens issued for development and
	// tests.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// AddressFormat is the account address encoding accepted by the
	// validators: "evm", "bech32" or "opaque".
	// Env: APP_ADDRESS_FORMAT
	AddressFormat string `env:"ADDRESS_FORMAT"`

	// Bech32Prefix is the human-readable part required of bech32 addresses.
	// Empty accepts any prefix.
	// Env: APP_BECH32_PREFIX
	Bech32Prefix string `env:"BECH32_PREFIX"`

	// Build is the linker-injected build metadata. It is set by the binary
	// and never read from the environment.
	Build models.AppBuildInfo
}

// Log holds logger settings.
type Log struct {
	// Level is a zerolog level name.
	// Env: LOG_LEVEL
	Level string `env:"LEVEL"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address of the HTTP server ("host:port").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the TCP address of the gRPC server ("host:port").
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration of the persistence backend.
type Storage struct {
	// DB holds the backend connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds the storage DSN. The scheme selects the backend:
//   - empty or "memory"                : in-process memory;
//   - "postgres://" or "postgresql://" : PostgreSQL;
//   - "sqlite://<path>"                : SQLite file;
//   - "badger://<dir>"                 : Badger directory.
type DB struct {
	// DSN is the data source name.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter configures the ledger collaborator.
type Adapter struct {
	// Mode is "placeholder" (deterministic generated vaults) or "http"
	// (ledger gateway).
	// Env: ADAPTER_MODE
	Mode string `env:"MODE"`

	// LedgerURL is the base URL of the ledger gateway in http mode.
	// Env: ADAPTER_LEDGER_URL
	LedgerURL string `env:"LEDGER_URL"`

	// RequestTimeout bounds every outbound ledger call.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// PlaceholderSigners overrides the generated signer set in placeholder
	// mode (comma separated).
	// Env: ADAPTER_PLACEHOLDER_SIGNERS
	PlaceholderSigners []string `env:"PLACEHOLDER_SIGNERS" envSeparator:","`

	// PlaceholderThreshold overrides the generated threshold in placeholder
	// mode.
	// Env: ADAPTER_PLACEHOLDER_THRESHOLD
	PlaceholderThreshold int `env:"PLACEHOLDER_THRESHOLD"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// RefreshInterval is how often registered vaults are re-fetched from the
	// ledger. Zero keeps the default; a negative value disables the worker.
	// Env: WORKERS_REFRESH_INTERVAL
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL"`
}

// Supported address formats.
const (
	AddressFormatEVM    = "evm"
	AddressFormatBech32 = "bech32"
	AddressFormatOpaque = "opaque"
)

// Supported ledger adapter modes.
const (
	AdapterModePlaceholder = "placeholder"
	AdapterModeHTTP        = "http"
)

// Defaults applied to zero-valued fields after merging.
const (
	defaultVersion               = "dev"
	defaultTokenIssuer           = "multisig-keeper"
	defaultTokenDuration         = time.Hour
	defaultRequestTimeout        = 30 * time.Second
	defaultAdapterRequestTimeout = 10 * time.Second
	defaultRefreshInterval       = time.Minute
	defaultLogLevel              = "info"
)

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (later sources override non-zero fields of earlier ones):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(os.Args[1:]).
		withJSON().
		build()
}
