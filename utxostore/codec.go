// Package utxostore keeps spendable outputs on disk and serves them to a
// wallet as its UTXO source.
package utxostore

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"

	wallet "psbt-wallet"
)

// Store is implemented by every backend in this package.
type Store interface {
	wallet.UtxoSource
	Put(u wallet.Utxo) error
	Delete(u wallet.Utxo) error
	ListByScript(pkScript wallet.ScriptRef) ([]wallet.Utxo, error)
	Close() error
}

// Open opens the backend named by kind ("bolt" or "leveldb") at path.
func Open(kind, path string) (Store, error) {
	switch kind {
	case "bolt", "":
		return OpenBoltStore(path)
	case "leveldb":
		return OpenLevelStore(path)
	}
	return nil, errors.Newf("utxostore: unknown backend %q", kind)
}

const (
	scriptPrefixLen = sha256.Size
	keyLen          = scriptPrefixLen + chainhash.HashSize + 4
)

// scriptPrefix groups all utxos of one locking script under a fixed-size
// key prefix.
func scriptPrefix(pkScript wallet.ScriptRef) []byte {
	h := sha256.Sum256(pkScript.Bytes())
	return h[:]
}

// utxoKey is sha256(script) || txid || big-endian index.
func utxoKey(u wallet.Utxo) []byte {
	k := make([]byte, 0, keyLen)
	k = append(k, scriptPrefix(u.PkScript)...)
	k = append(k, u.OutPoint.TxID[:]...)
	return binary.BigEndian.AppendUint32(k, u.OutPoint.Index)
}

// utxoValue is big-endian value || script.
func utxoValue(u wallet.Utxo) []byte {
	v := make([]byte, 8, 8+u.PkScript.Len())
	binary.BigEndian.PutUint64(v, uint64(u.Value))
	return append(v, u.PkScript.Bytes()...)
}

func decodeUtxo(k, v []byte) (wallet.Utxo, error) {
	if len(k) != keyLen || len(v) <= 8 {
		return wallet.Utxo{}, errors.Wrapf(ErrCorruptRecord, "key %d bytes, value %d bytes", len(k), len(v))
	}
	var u wallet.Utxo
	copy(u.OutPoint.TxID[:], k[scriptPrefixLen:scriptPrefixLen+chainhash.HashSize])
	u.OutPoint.Index = binary.BigEndian.Uint32(k[scriptPrefixLen+chainhash.HashSize:])
	u.Value = int64(binary.BigEndian.Uint64(v[:8]))
	u.PkScript = wallet.NewScriptRef(v[8:])
	return u, nil
}

func validate(u wallet.Utxo) error {
	switch {
	case u.OutPoint.IsZero():
		return errors.Wrap(ErrInvalidUtxo, "zero txid")
	case u.Value <= 0:
		return errors.Wrapf(ErrInvalidUtxo, "value %d", u.Value)
	case u.PkScript.IsEmpty():
		return errors.Wrap(ErrInvalidUtxo, "empty script")
	}
	return nil
}
