package utxostore

import "github.com/cockroachdb/errors"

var (
	// ErrNotFound indicates the utxo is not in the store.
	ErrNotFound = errors.New("utxostore: utxo not found")

	// ErrCorruptRecord indicates a stored record could not be decoded.
	ErrCorruptRecord = errors.New("utxostore: corrupt record")

	// ErrInvalidUtxo indicates a utxo that cannot be stored.
	ErrInvalidUtxo = errors.New("utxostore: invalid utxo")
)
