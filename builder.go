package psbt_wallet

import (
	"bytes"
	"strings"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
)

// Psbt packs tx into a BIP174 packet for an offline signer. Segwit and
// taproot inputs record the spent output as a witness utxo. Legacy inputs
// record the full previous transaction, which must have been attached with
// WithPrevTx.
func (tx *UnsignedTransaction) Psbt() (*psbt.Packet, error) {
	p, err := psbt.NewFromUnsignedTx(tx.MsgTx())
	if err != nil {
		return nil, errors.Wrap(err, "create psbt")
	}
	updater, err := psbt.NewUpdater(p)
	if err != nil {
		return nil, errors.Wrap(err, "create psbt updater")
	}
	for i, spent := range tx.spent {
		if !spent.PkScript.isLegacy() {
			if err := updater.AddInWitnessUtxo(spent.wire(), i); err != nil {
				return nil, errors.Wrapf(err, "input %d: add witness utxo", i)
			}
			continue
		}
		if tx.prevTxs[i] == nil {
			return nil, errors.Wrapf(ErrInvalidPsbt, "input %d: legacy input needs its previous transaction", i)
		}
		if err := updater.AddInNonWitnessUtxo(tx.prevTxs[i].Copy(), i); err != nil {
			return nil, errors.Wrapf(err, "input %d: add non-witness utxo", i)
		}
	}
	return p, nil
}

// EncodePsbt returns the base64 PSBT of tx.
func (tx *UnsignedTransaction) EncodePsbt() (string, error) {
	p, err := tx.Psbt()
	if err != nil {
		return "", err
	}
	s, err := p.B64Encode()
	if err != nil {
		return "", errors.Wrap(err, "encode psbt")
	}
	return s, nil
}

func (tx *UnsignedTransaction) SerializePsbt() ([]byte, error) {
	p, err := tx.Psbt()
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if err := p.Serialize(&b); err != nil {
		return nil, errors.Wrap(err, "serialize psbt")
	}
	return b.Bytes(), nil
}

// DecodePsbt parses a base64 PSBT back into an unsigned transaction.
func DecodePsbt(b64 string) (*UnsignedTransaction, error) {
	p, err := psbt.NewFromRawBytes(strings.NewReader(strings.TrimSpace(b64)), true)
	if err != nil {
		return nil, mark(errors.Wrap(err, "parse psbt"), ErrInvalidPsbt)
	}
	return UnsignedFromPsbt(p)
}

func DecodePsbtBytes(raw []byte) (*UnsignedTransaction, error) {
	p, err := psbt.NewFromRawBytes(bytes.NewReader(raw), false)
	if err != nil {
		return nil, mark(errors.Wrap(err, "parse psbt"), ErrInvalidPsbt)
	}
	return UnsignedFromPsbt(p)
}

// UnsignedFromPsbt rebuilds an unsigned transaction from a packet that
// carries the spent output of every input and no signatures.
func UnsignedFromPsbt(p *psbt.Packet) (*UnsignedTransaction, error) {
	if p == nil || p.UnsignedTx == nil {
		return nil, errors.Wrap(ErrInvalidPsbt, "missing unsigned tx")
	}
	if len(p.Inputs) != len(p.UnsignedTx.TxIn) {
		return nil, errors.Wrapf(ErrInvalidPsbt, "%d input records for %d inputs", len(p.Inputs), len(p.UnsignedTx.TxIn))
	}
	msgTx := p.UnsignedTx
	inputs := make([]TxInput, len(msgTx.TxIn))
	spent := make([]TxOutput, len(msgTx.TxIn))
	prevTxs := make([]*wire.MsgTx, len(msgTx.TxIn))
	for i, txIn := range msgTx.TxIn {
		pin := p.Inputs[i]
		if len(pin.PartialSigs) > 0 || len(pin.FinalScriptSig) > 0 || len(pin.FinalScriptWitness) > 0 || len(pin.TaprootKeySpendSig) > 0 {
			return nil, errors.Wrapf(ErrInvalidPsbt, "input %d already carries signatures", i)
		}
		op := OutPoint{TxID: txIn.PreviousOutPoint.Hash, Index: txIn.PreviousOutPoint.Index}
		switch {
		case pin.NonWitnessUtxo != nil:
			prev := pin.NonWitnessUtxo
			if prev.TxHash() != op.TxID {
				return nil, errors.Wrapf(ErrInvalidPsbt, "input %d: non-witness utxo does not match outpoint", i)
			}
			if int(op.Index) >= len(prev.TxOut) {
				return nil, errors.Wrapf(ErrInvalidPsbt, "input %d: output index %d out of range", i, op.Index)
			}
			out := prev.TxOut[op.Index]
			spent[i] = TxOutput{Value: out.Value, PkScript: NewScriptRef(out.PkScript)}
			if w := pin.WitnessUtxo; w != nil && (w.Value != out.Value || !bytes.Equal(w.PkScript, out.PkScript)) {
				return nil, errors.Wrapf(ErrInvalidPsbt, "input %d: witness utxo contradicts non-witness utxo", i)
			}
			prevTxs[i] = prev
		case pin.WitnessUtxo != nil:
			spent[i] = TxOutput{Value: pin.WitnessUtxo.Value, PkScript: NewScriptRef(pin.WitnessUtxo.PkScript)}
			if spent[i].PkScript.isLegacy() {
				return nil, errors.Wrapf(ErrInvalidPsbt, "input %d: legacy input without non-witness utxo", i)
			}
		default:
			return nil, errors.Wrapf(ErrInvalidPsbt, "input %d: spent output unknown", i)
		}
		inputs[i] = TxInput{
			PreviousOutPoint: op,
			Sequence:         txIn.Sequence,
		}
	}
	outputs := make([]TxOutput, len(msgTx.TxOut))
	for i, txOut := range msgTx.TxOut {
		outputs[i] = TxOutput{Value: txOut.Value, PkScript: NewScriptRef(txOut.PkScript)}
	}
	tx, err := NewUnsignedTransaction(msgTx.Version, inputs, spent, outputs, msgTx.LockTime)
	if err != nil {
		return nil, mark(err, ErrInvalidPsbt)
	}
	for i, prev := range prevTxs {
		if prev != nil {
			tx.prevTxs[i] = prev.Copy()
		}
	}
	return tx, nil
}

// Fee is the value of the spent outputs not paid to any output. Both
// totals are bounded by btcutil.MaxSatoshi at construction.
func (tx *UnsignedTransaction) Fee() int64 {
	var in, out int64
	for _, s := range tx.spent {
		in += s.Value
	}
	for _, o := range tx.outputs {
		out += o.Value
	}
	return in - out
}
