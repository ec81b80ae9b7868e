package main

import (
	"encoding/hex"
	"flag"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/sirupsen/logrus"

	wallet "psbt-wallet"
	"psbt-wallet/config"
)

func main() {
	configPath := flag.String("config", "", "config file (defaults are used when empty)")
	network := flag.String("network", "", "override the configured network")
	mnemonic := flag.String("mnemonic", "", "derive from this BIP39 mnemonic instead of a random key")
	newMnemonic := flag.Bool("new-mnemonic", false, "generate a fresh BIP39 mnemonic and derive from it")
	path := flag.String("path", "m/84'/0'/0'/0/0", "BIP32 derivation path used with a mnemonic")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			logrus.Fatalf("%+v", err)
		}
	}
	if *network != "" {
		cfg.Network = *network
	}
	netParams, err := cfg.NetParams()
	if err != nil {
		logrus.Fatalf("%+v", err)
	}

	if *newMnemonic {
		if *mnemonic, err = wallet.NewMnemonic(256); err != nil {
			logrus.Fatalf("%+v", err)
		}
		logrus.Printf("new mnemonic %s", *mnemonic)
	}

	var privateKey *btcec.PrivateKey
	if *mnemonic != "" {
		indexes, err := wallet.ParseDerivationPath(*path)
		if err != nil {
			logrus.Fatalf("%+v", err)
		}
		keyBytes, err := wallet.PrivateKeyFromMnemonic(*mnemonic, "", indexes)
		if err != nil {
			logrus.Fatalf("%+v", err)
		}
		privateKey, _ = btcec.PrivKeyFromBytes(keyBytes)
		logrus.Printf("derived key at %s", *path)
	} else {
		if privateKey, err = btcec.NewPrivateKey(); err != nil {
			logrus.Fatalf("%+v", err)
		}
	}
	defer privateKey.Zero()

	logrus.Printf("private key %s", hex.EncodeToString(privateKey.Serialize()))
	logrus.Printf("public key %s", hex.EncodeToString(privateKey.PubKey().SerializeCompressed()))

	for _, kind := range []wallet.ScriptKind{wallet.PubKeyHash, wallet.WitnessPubKeyHash, wallet.TaprootKeyPath} {
		pkScript, err := wallet.ScriptForKey(privateKey.PubKey(), kind)
		if err != nil {
			logrus.Fatalf("%+v", err)
		}
		_, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript.Bytes(), netParams)
		if err != nil || len(addrs) != 1 {
			logrus.Fatalf("no address for %s script: %v", kind, err)
		}
		logrus.Printf("%-6s address %s script %s", kind, addrs[0].EncodeAddress(), pkScript)

		// Decoding the address must give back the same script.
		roundTrip, err := wallet.ScriptFromAddress(addrs[0].EncodeAddress(), netParams)
		if err != nil || !roundTrip.Equal(pkScript) {
			logrus.Fatalf("%s address does not round trip: %v", kind, err)
		}
	}
}
