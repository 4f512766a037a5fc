// Package config handles configuration loading, parsing, and validation
// from environment variables, an optional .env file, and an optional config file.
// It provides type-safe access to the settings the server needs while keeping
// configuration details out of business logic.
package config
