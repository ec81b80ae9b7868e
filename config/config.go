// Package config loads the settings shared by the wallet tools.
package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk wallet tool configuration.
type Config struct {
	Network     string `yaml:"network"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file,omitempty"`
	UtxoBackend string `yaml:"utxo_backend"`
	UtxoPath    string `yaml:"utxo_path"`
	LockTime    uint32 `yaml:"lock_time"`
	Sequence    uint32 `yaml:"sequence"`
}

// DefaultConfig returns mainnet settings with a bolt store under the
// user's home directory.
func DefaultConfig() Config {
	return Config{
		Network:     "mainnet",
		LogLevel:    "info",
		UtxoBackend: "bolt",
		UtxoPath:    filepath.Join(DefaultDataDir(), "utxos.db"),
		LockTime:    0,
		Sequence:    wire.MaxTxInSequenceNum,
	}
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".psbt-wallet"
	}
	return filepath.Join(home, ".psbt-wallet")
}

// LoadConfig reads path over DefaultConfig, so missing keys keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, errors.Wrapf(ErrConfigNotFound, "%s", path)
		}
		return cfg, errors.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.WithSecondaryError(errors.Wrapf(ErrInvalidConfigFile, "%s: %v", path, err), err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating the parent directory.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(err, "config: create directory")
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "config: encode")
	}
	header := []byte("# psbt-wallet configuration\n")
	return errors.Wrap(os.WriteFile(path, append(header, b...), 0600), "config: write")
}

// NetParams maps the network name onto chain parameters.
func (c Config) NetParams() (*chaincfg.Params, error) {
	switch strings.ToLower(c.Network) {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNet3Params, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	}
	return nil, errors.Wrapf(ErrInvalidNetwork, "%q", c.Network)
}

// SetupLogging applies the level and destination to the standard logrus
// logger. The returned closer releases the log file, if any.
func (c Config) SetupLogging() (func() error, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrapf(ErrInvalidLogLevel, "%q", c.LogLevel), err)
	}
	logrus.SetLevel(level)
	if c.LogFile == "" {
		return func() error { return nil }, nil
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "config: open log file")
	}
	logrus.SetOutput(f)
	return f.Close, nil
}
