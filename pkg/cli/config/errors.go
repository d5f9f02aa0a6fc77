package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound  = goerr.New("configuration file not found")
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrMissingRequired = goerr.New("required option is missing")
	ErrUnknownProvider = goerr.New("unknown provider")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	FlagKey       = "flag"
	ProviderKey   = "provider"
	FieldKey      = "field"
	ValueKey      = "value"
)
