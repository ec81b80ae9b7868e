package config

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", \"signet\" or \"regtest\")")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\" or \"error\")")

	// ErrInvalidUtxoBackend indicates an unknown utxo store backend.
	ErrInvalidUtxoBackend = errors.New("config: invalid utxo backend (must be \"bolt\" or \"leveldb\")")

	// ErrEmptyUtxoPath indicates the utxo store path is empty.
	ErrEmptyUtxoPath = errors.New("config: utxo path must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigFile indicates the configuration file is not valid YAML.
	ErrInvalidConfigFile = errors.New("config: invalid configuration file")
)
