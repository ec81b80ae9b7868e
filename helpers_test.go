package psbt_wallet

import (
	"encoding/hex"
	"sync/atomic"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "4f302977e29281f228a7a208a4707e489996824085af1b05ad14a9b4a34edb5d"

func testKeyBytes(t *testing.T) []byte {
	t.Helper()
	b, err := hex.DecodeString(testKeyHex)
	require.NoError(t, err)
	return b
}

func pubKeyOf(t *testing.T, key []byte) *btcec.PublicKey {
	t.Helper()
	_, pub := btcec.PrivKeyFromBytes(key)
	return pub
}

func scriptFor(t *testing.T, key []byte, kind ScriptKind) ScriptRef {
	t.Helper()
	s, err := ScriptForKey(pubKeyOf(t, key), kind)
	require.NoError(t, err)
	return s
}

// randomScript returns a P2WPKH script for a fresh key.
func randomScript(t *testing.T) ScriptRef {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	s, err := ScriptForKey(priv.PubKey(), WitnessPubKeyHash)
	require.NoError(t, err)
	return s
}

func txID(b byte) chainhash.Hash {
	var h chainhash.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func utxoFor(pkScript ScriptRef, id byte, index uint32, value int64) Utxo {
	return Utxo{OutPoint: OutPoint{TxID: txID(id), Index: index}, Value: value, PkScript: pkScript}
}

// fundingTx returns a transaction paying value to pkScript at output 1
// and the utxo it creates.
func fundingTx(t *testing.T, pkScript ScriptRef, value int64) (*wire.MsgTx, Utxo) {
	t.Helper()
	prev := wire.NewMsgTx(2)
	prev.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: txID(7)}, nil, nil))
	prev.AddTxOut(wire.NewTxOut(500, randomScript(t).Bytes()))
	prev.AddTxOut(wire.NewTxOut(value, pkScript.Bytes()))
	u := Utxo{OutPoint: OutPoint{TxID: prev.TxHash(), Index: 1}, Value: value, PkScript: pkScript}
	return prev, u
}

// failingSource is a UtxoSource whose backend is broken.
type failingSource struct{ err error }

func (s failingSource) SelectUtxo(ScriptRef, int64) (Utxo, error) { return Utxo{}, s.err }

func quietLogger() (*logrus.Entry, *test.Hook) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(l), hook
}

func testConfig(utxos ...Utxo) Config {
	log, _ := quietLogger()
	return Config{NetParams: &chaincfg.RegressionNetParams, Utxos: StaticUtxos(utxos), Logger: log}
}

func newFullWallet(t *testing.T, key []byte, kind ScriptKind, utxoValues ...int64) *Wallet {
	t.Helper()
	pkScript := scriptFor(t, key, kind)
	utxos := make([]Utxo, len(utxoValues))
	for i, v := range utxoValues {
		utxos[i] = utxoFor(pkScript, byte(i+1), uint32(i), v)
	}
	w, err := NewFull(key, pkScript, testConfig(utxos...))
	require.NoError(t, err)
	return w
}

// flakySigner wraps the default signer and fails from call failAt on.
type flakySigner struct {
	calls  atomic.Int32
	failAt int32
}

func (s *flakySigner) Sign(digest []byte, key *btcec.PrivateKey, scheme SignatureScheme) ([]byte, error) {
	if s.calls.Add(1) >= s.failAt {
		return nil, errors.New("device rejected request")
	}
	return Secp256k1Signer{}.Sign(digest, key, scheme)
}

// garbageSigner returns well formed but wrong signatures.
type garbageSigner struct{}

func (garbageSigner) Sign(digest []byte, key *btcec.PrivateKey, scheme SignatureScheme) ([]byte, error) {
	other, _ := btcec.PrivKeyFromBytes([]byte{0x42})
	return Secp256k1Signer{}.Sign(digest, other, scheme)
}
