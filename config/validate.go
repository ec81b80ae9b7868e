package config

import (
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig returns the first invalid setting, or nil.
func ValidateConfig(cfg Config) error {
	if _, err := cfg.NetParams(); err != nil {
		return err
	}
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}
	switch cfg.UtxoBackend {
	case "bolt", "leveldb":
	default:
		return ErrInvalidUtxoBackend
	}
	if cfg.UtxoPath == "" {
		return ErrEmptyUtxoPath
	}
	return nil
}
