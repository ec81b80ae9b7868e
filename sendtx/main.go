// Command sendtx builds and signs spends for one wallet script.
//
//	sendtx add-utxo -script <hex> -utxo <txid>:<vout> -value <sats>
//	sendtx send     -script <hex> -to <address> -amount <sats> [-key <hex>] [-prev-tx <hex>]
//	sendtx sign     -script <hex> -key <hex> -psbt <base64>
//
// Without -key, send prints a PSBT for an offline signer. With -key (or
// WALLET_KEY in the environment) it prints the signed raw transaction.
// A PSBT spending a legacy script needs the raw funding transaction in
// -prev-tx.
package main

import (
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	wallet "psbt-wallet"
	"psbt-wallet/config"
	"psbt-wallet/utxostore"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: sendtx add-utxo|send|sign [flags]")
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "add-utxo":
		err = addUtxo(os.Args[2:])
	case "send":
		err = send(os.Args[2:])
	case "sign":
		err = sign(os.Args[2:])
	default:
		err = errors.Newf("unknown command %q", os.Args[1])
	}
	if err != nil {
		logrus.Fatalf("%+v", err)
	}
}

type common struct {
	configPath string
	scriptHex  string
	keyHex     string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file (defaults are used when empty)")
	fs.StringVar(&c.scriptHex, "script", "", "wallet locking script, hex")
	fs.StringVar(&c.keyHex, "key", os.Getenv("WALLET_KEY"), "private key, hex (omit for watch-only)")
}

func (c *common) loadConfig() (config.Config, func() error, error) {
	cfg := config.DefaultConfig()
	if c.configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(c.configPath); err != nil {
			return cfg, nil, err
		}
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return cfg, nil, err
	}
	closeLog, err := cfg.SetupLogging()
	if err != nil {
		return cfg, nil, err
	}
	return cfg, closeLog, nil
}

// openWallet builds a full wallet when a key is given and a watch-only one
// otherwise.
func (c *common) openWallet(cfg config.Config, utxos wallet.UtxoSource) (*wallet.Wallet, error) {
	netParams, err := cfg.NetParams()
	if err != nil {
		return nil, err
	}
	pkScript, err := wallet.ScriptFromHex(c.scriptHex)
	if err != nil {
		return nil, err
	}
	sequence := cfg.Sequence
	wcfg := wallet.Config{
		NetParams: netParams,
		Utxos:     utxos,
		LockTime:  cfg.LockTime,
		Sequence:  &sequence,
		Logger:    logrus.WithField("component", "wallet"),
	}
	if c.keyHex == "" {
		return wallet.NewWatchOnly(pkScript, wcfg)
	}
	key, err := hex.DecodeString(c.keyHex)
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrap(wallet.ErrInvalidKey, "decode key hex"), err)
	}
	defer clear(key)
	return wallet.NewFull(key, pkScript, wcfg)
}

func addUtxo(args []string) error {
	fs := flag.NewFlagSet("add-utxo", flag.ExitOnError)
	var c common
	c.register(fs)
	outpoint := fs.String("utxo", "", "outpoint as <txid>:<vout>")
	value := fs.Int64("value", 0, "output value in satoshis")
	_ = fs.Parse(args)

	cfg, closeLog, err := c.loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	op, err := parseOutPoint(*outpoint)
	if err != nil {
		return err
	}
	pkScript, err := wallet.ScriptFromHex(c.scriptHex)
	if err != nil {
		return err
	}
	store, err := utxostore.Open(cfg.UtxoBackend, cfg.UtxoPath)
	if err != nil {
		return err
	}
	defer store.Close()

	u := wallet.Utxo{OutPoint: op, Value: *value, PkScript: pkScript}
	if err := store.Put(u); err != nil {
		return err
	}
	logrus.WithField("utxo", op.String()).Info("stored utxo")
	return nil
}

func send(args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	var c common
	c.register(fs)
	to := fs.String("to", "", "destination address")
	amount := fs.Int64("amount", 0, "amount in satoshis")
	prevTxHex := fs.String("prev-tx", "", "raw funding transaction of the spent utxo, hex")
	_ = fs.Parse(args)

	cfg, closeLog, err := c.loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := utxostore.Open(cfg.UtxoBackend, cfg.UtxoPath)
	if err != nil {
		return err
	}
	defer store.Close()

	w, err := c.openWallet(cfg, store)
	if err != nil {
		return err
	}
	defer w.Close()

	tx, err := w.Send(*amount, *to)
	if err != nil {
		return err
	}
	switch tx := tx.(type) {
	case *wallet.SignedTransaction:
		raw, err := tx.Hex()
		if err != nil {
			return err
		}
		fmt.Println(raw)
	case *wallet.UnsignedTransaction:
		if *prevTxHex != "" {
			prev, err := parseTx(*prevTxHex)
			if err != nil {
				return err
			}
			if tx, err = tx.WithPrevTx(0, prev); err != nil {
				return err
			}
		}
		b64, err := tx.EncodePsbt()
		if err != nil {
			return err
		}
		logrus.Info("watch-only wallet: sign this psbt offline")
		fmt.Println(b64)
	}
	return nil
}

func sign(args []string) error {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	var c common
	c.register(fs)
	packet := fs.String("psbt", "", "base64 psbt to sign")
	_ = fs.Parse(args)

	cfg, closeLog, err := c.loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	w, err := c.openWallet(cfg, nil)
	if err != nil {
		return err
	}
	defer w.Close()

	unsigned, err := wallet.DecodePsbt(*packet)
	if err != nil {
		return err
	}
	signed, err := w.SignTransaction(unsigned)
	if err != nil {
		return err
	}
	raw, err := signed.Hex()
	if err != nil {
		return err
	}
	fmt.Println(raw)
	return nil
}

func parseOutPoint(s string) (wallet.OutPoint, error) {
	txid, vout, ok := strings.Cut(s, ":")
	if !ok {
		return wallet.OutPoint{}, errors.Newf("outpoint %q must be <txid>:<vout>", s)
	}
	index, err := strconv.ParseUint(vout, 10, 32)
	if err != nil {
		return wallet.OutPoint{}, errors.Wrapf(err, "parse vout %q", vout)
	}
	return wallet.NewOutPoint(txid, uint32(index))
}

func parseTx(s string) (*wire.MsgTx, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Wrap(err, "decode transaction hex")
	}
	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, errors.Wrap(err, "parse transaction")
	}
	return &tx, nil
}
