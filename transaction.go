package psbt_wallet

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
)

type Stage int

const (
	StageUnsigned Stage = 1
	StageSigned   Stage = 2
)

// Transaction is either an *UnsignedTransaction or a *SignedTransaction.
type Transaction interface {
	Stage() Stage
	MsgTx() *wire.MsgTx
	TxHash() chainhash.Hash
	Outputs() []TxOutput
}

// UnsignedTransaction is a fully constructed spend whose inputs carry no
// authorization yet. It is immutable; accessors return copies.
type UnsignedTransaction struct {
	version  int32
	inputs   []TxInput
	spent    []TxOutput
	outputs  []TxOutput
	lockTime uint32

	// prevTxs[i], when known, is the transaction that created the output
	// spent by inputs[i]. Legacy inputs need it in a PSBT.
	prevTxs []*wire.MsgTx
}

// NewUnsignedTransaction validates and assembles an unsigned transaction.
// spent[i] is the output consumed by inputs[i]. Unlocking data on the
// inputs is discarded.
func NewUnsignedTransaction(version int32, inputs []TxInput, spent []TxOutput, outputs []TxOutput, lockTime uint32) (*UnsignedTransaction, error) {
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, errors.Wrapf(ErrEmptyTransaction, "%d inputs, %d outputs", len(inputs), len(outputs))
	}
	if len(spent) != len(inputs) {
		return nil, errors.Newf("wallet: %d spent outputs for %d inputs", len(spent), len(inputs))
	}
	tx := &UnsignedTransaction{
		version:  version,
		inputs:   make([]TxInput, len(inputs)),
		spent:    make([]TxOutput, len(spent)),
		outputs:  make([]TxOutput, len(outputs)),
		lockTime: lockTime,
		prevTxs:  make([]*wire.MsgTx, len(inputs)),
	}
	var totalIn, totalOut int64
	seen := make(map[OutPoint]struct{}, len(inputs))
	for i, in := range inputs {
		if in.PreviousOutPoint.IsZero() {
			return nil, errors.Wrapf(ErrZeroOutPoint, "input %d", i)
		}
		if _, dup := seen[in.PreviousOutPoint]; dup {
			return nil, errors.Newf("wallet: input %d spends %s twice", i, in.PreviousOutPoint)
		}
		seen[in.PreviousOutPoint] = struct{}{}
		if spent[i].PkScript.IsEmpty() {
			return nil, errors.Wrapf(ErrInvalidScript, "input %d spends an output with empty script", i)
		}
		if spent[i].Value <= 0 || spent[i].Value > btcutil.MaxSatoshi {
			return nil, errors.Wrapf(ErrInvalidAmount, "input %d spends value %d", i, spent[i].Value)
		}
		if totalIn += spent[i].Value; totalIn > btcutil.MaxSatoshi {
			return nil, errors.Wrapf(ErrInvalidAmount, "spent outputs exceed %d", int64(btcutil.MaxSatoshi))
		}
		tx.inputs[i] = TxInput{PreviousOutPoint: in.PreviousOutPoint, Sequence: in.Sequence}
		tx.spent[i] = spent[i]
	}
	for i, out := range outputs {
		if out.Value <= 0 || out.Value > btcutil.MaxSatoshi {
			return nil, errors.Wrapf(ErrInvalidAmount, "output %d value %d", i, out.Value)
		}
		if out.PkScript.IsEmpty() {
			return nil, errors.Wrapf(ErrInvalidScript, "output %d has empty script", i)
		}
		if totalOut += out.Value; totalOut > btcutil.MaxSatoshi {
			return nil, errors.Wrapf(ErrInvalidAmount, "outputs exceed %d", int64(btcutil.MaxSatoshi))
		}
		tx.outputs[i] = out
	}
	if totalOut > totalIn {
		return nil, errors.Wrapf(ErrInsufficientFunds, "outputs exceed inputs by %d", totalOut-totalIn)
	}
	return tx, nil
}

func (tx *UnsignedTransaction) Stage() Stage { return StageUnsigned }

// WithPrevTx returns a copy of tx that records prev as the transaction
// creating the output spent by input index. prev must hash to the input's
// txid and carry the recorded spent output at the input's index.
func (tx *UnsignedTransaction) WithPrevTx(index int, prev *wire.MsgTx) (*UnsignedTransaction, error) {
	if index < 0 || index >= len(tx.inputs) {
		return nil, errors.Newf("wallet: input %d out of range", index)
	}
	if err := matchPrevTx(prev, tx.inputs[index].PreviousOutPoint, tx.spent[index]); err != nil {
		return nil, errors.Wrapf(err, "input %d", index)
	}
	cp := *tx
	cp.prevTxs = append([]*wire.MsgTx(nil), tx.prevTxs...)
	cp.prevTxs[index] = prev.Copy()
	return &cp, nil
}

func matchPrevTx(prev *wire.MsgTx, op OutPoint, spent TxOutput) error {
	if prev == nil {
		return errors.New("wallet: nil previous transaction")
	}
	if prev.TxHash() != op.TxID {
		return errors.Newf("wallet: previous transaction %s is not %s", prev.TxHash(), op.TxID)
	}
	if int(op.Index) >= len(prev.TxOut) {
		return errors.Newf("wallet: previous transaction has no output %d", op.Index)
	}
	out := prev.TxOut[op.Index]
	if out.Value != spent.Value || !bytes.Equal(out.PkScript, spent.PkScript.Bytes()) {
		return errors.Newf("wallet: output %s differs from the spent output", op)
	}
	return nil
}

func (tx *UnsignedTransaction) Version() int32 { return tx.version }

func (tx *UnsignedTransaction) LockTime() uint32 { return tx.lockTime }

func (tx *UnsignedTransaction) Inputs() []TxInput {
	ins := make([]TxInput, len(tx.inputs))
	for i, in := range tx.inputs {
		ins[i] = in.clone()
	}
	return ins
}

// SpentOutputs returns the outputs consumed by each input, in input order.
func (tx *UnsignedTransaction) SpentOutputs() []TxOutput {
	return append([]TxOutput(nil), tx.spent...)
}

func (tx *UnsignedTransaction) Outputs() []TxOutput {
	return append([]TxOutput(nil), tx.outputs...)
}

// MsgTx returns a fresh wire transaction with the standard field layout.
func (tx *UnsignedTransaction) MsgTx() *wire.MsgTx {
	return buildMsgTx(tx.version, tx.inputs, tx.outputs, tx.lockTime)
}

func (tx *UnsignedTransaction) TxHash() chainhash.Hash {
	return tx.MsgTx().TxHash()
}

func (tx *UnsignedTransaction) prevOutFetcher() txscript.PrevOutputFetcher {
	prevOuts := make(map[wire.OutPoint]*wire.TxOut, len(tx.inputs))
	for i, in := range tx.inputs {
		prevOuts[in.PreviousOutPoint.wire()] = tx.spent[i].wire()
	}
	return txscript.NewMultiPrevOutFetcher(prevOuts)
}

func buildMsgTx(version int32, inputs []TxInput, outputs []TxOutput, lockTime uint32) *wire.MsgTx {
	msgTx := wire.NewMsgTx(version)
	for _, in := range inputs {
		msgTx.AddTxIn(in.wire())
	}
	for _, out := range outputs {
		msgTx.AddTxOut(out.wire())
	}
	msgTx.LockTime = lockTime
	return msgTx
}

// SignedTransaction is an UnsignedTransaction whose every input carries a
// verified unlocking script or witness. It has no path back to unsigned.
type SignedTransaction struct {
	unsigned *UnsignedTransaction
	inputs   []TxInput
}

func (tx *SignedTransaction) Stage() Stage { return StageSigned }

func (tx *SignedTransaction) Version() int32 { return tx.unsigned.version }

func (tx *SignedTransaction) LockTime() uint32 { return tx.unsigned.lockTime }

func (tx *SignedTransaction) Inputs() []TxInput {
	ins := make([]TxInput, len(tx.inputs))
	for i, in := range tx.inputs {
		ins[i] = in.clone()
	}
	return ins
}

func (tx *SignedTransaction) SpentOutputs() []TxOutput { return tx.unsigned.SpentOutputs() }

func (tx *SignedTransaction) Outputs() []TxOutput { return tx.unsigned.Outputs() }

func (tx *SignedTransaction) MsgTx() *wire.MsgTx {
	return buildMsgTx(tx.unsigned.version, tx.inputs, tx.unsigned.outputs, tx.unsigned.lockTime)
}

// TxHash is the txid, which excludes witness data.
func (tx *SignedTransaction) TxHash() chainhash.Hash {
	return tx.MsgTx().TxHash()
}

// Serialize encodes the transaction in the standard wire format, including
// witness data when any input has it.
func (tx *SignedTransaction) Serialize() ([]byte, error) {
	var b bytes.Buffer
	if err := tx.MsgTx().Serialize(&b); err != nil {
		return nil, errors.Wrap(err, "serialize transaction")
	}
	return b.Bytes(), nil
}

func (tx *SignedTransaction) Hex() (string, error) {
	b, err := tx.Serialize()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Verify executes every input against the locking script of the output it
// spends.
func (tx *SignedTransaction) Verify() error {
	return verifyInputs(tx.MsgTx(), tx.unsigned)
}

func verifyInputs(msgTx *wire.MsgTx, unsigned *UnsignedTransaction) error {
	fetcher := unsigned.prevOutFetcher()
	sigHashes := txscript.NewTxSigHashes(msgTx, fetcher)
	for i, spent := range unsigned.spent {
		vm, err := txscript.NewEngine(spent.PkScript.Bytes(), msgTx, i,
			txscript.StandardVerifyFlags, nil, sigHashes, spent.Value, fetcher)
		if err != nil {
			return errors.Wrapf(err, "input %d: create script engine", i)
		}
		if err := vm.Execute(); err != nil {
			return errors.Wrapf(err, "input %d: script verification", i)
		}
	}
	return nil
}
