package psbt_wallet

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidAmount indicates a non-positive amount or output value.
	ErrInvalidAmount = errors.New("wallet: amount must be greater than zero")

	// ErrInvalidScript indicates an empty, malformed or unsupported script.
	ErrInvalidScript = errors.New("wallet: invalid script")

	// ErrInvalidAddress indicates the destination address could not be decoded.
	ErrInvalidAddress = errors.New("wallet: invalid address")

	// ErrInvalidKey indicates empty or malformed private key material.
	ErrInvalidKey = errors.New("wallet: invalid private key")

	// ErrNoSigningKey indicates signing was attempted by a watch-only wallet.
	ErrNoSigningKey = errors.New("wallet: no signing key (watch-only)")

	// ErrSigningFailed indicates the signing primitive or script verification failed.
	ErrSigningFailed = errors.New("wallet: signing failed")

	// ErrNoUtxoAvailable indicates no spendable output could be selected.
	ErrNoUtxoAvailable = errors.New("wallet: no utxo available")

	// ErrInsufficientFunds indicates outputs worth more than the spent inputs.
	ErrInsufficientFunds = errors.New("wallet: insufficient funds")

	// ErrZeroOutPoint indicates an input references the all-zero txid.
	ErrZeroOutPoint = errors.New("wallet: outpoint has zero txid")

	// ErrEmptyTransaction indicates a transaction without inputs or outputs.
	ErrEmptyTransaction = errors.New("wallet: transaction needs at least one input and one output")

	// ErrForeignUtxo indicates a utxo locked by a script other than the wallet's.
	ErrForeignUtxo = errors.New("wallet: utxo not locked by wallet script")

	// ErrInvalidPsbt indicates a PSBT that cannot be turned into an unsigned transaction.
	ErrInvalidPsbt = errors.New("wallet: invalid psbt")

	// ErrInvalidMnemonic indicates the mnemonic fails BIP39 validation.
	ErrInvalidMnemonic = errors.New("wallet: invalid BIP39 mnemonic")
)

// markedError ties a sentinel to an error chain. The sentinel and every
// error in the chain match errors.Is from the standard library and from
// cockroachdb/errors.
type markedError struct {
	cause error
	mark  error
}

func mark(err, sentinel error) error {
	return &markedError{cause: errors.Mark(err, sentinel), mark: sentinel}
}

func (e *markedError) Error() string { return e.cause.Error() }

func (e *markedError) Unwrap() error { return e.cause }

func (e *markedError) Is(target error) bool { return target == e.mark }

func (e *markedError) Format(s fmt.State, verb rune) { errors.FormatError(e, s, verb) }

func (e *markedError) FormatError(p errors.Printer) error { return e.cause }
