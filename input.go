package psbt_wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/cockroachdb/errors"
)

// OutPoint identifies one output of a previous transaction.
type OutPoint struct {
	TxID  chainhash.Hash `json:"tx_id"`
	Index uint32         `json:"index"`
}

// NewOutPoint parses a txid in the usual byte-reversed hex form.
func NewOutPoint(txID string, index uint32) (OutPoint, error) {
	h, err := chainhash.NewHashFromStr(txID)
	if err != nil {
		return OutPoint{}, errors.Wrapf(err, "parse txid %q", txID)
	}
	return OutPoint{TxID: *h, Index: index}, nil
}

// IsZero reports whether the outpoint carries the all-zero txid.
func (o OutPoint) IsZero() bool {
	return o.TxID == chainhash.Hash{}
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID, o.Index)
}

func (o OutPoint) wire() wire.OutPoint {
	return wire.OutPoint{Hash: o.TxID, Index: o.Index}
}

// Utxo is an unspent output together with the data needed to spend it.
type Utxo struct {
	OutPoint OutPoint  `json:"out_point"`
	Value    int64     `json:"value"`
	PkScript ScriptRef `json:"-"`
}

func (u Utxo) TxOut() TxOutput {
	return TxOutput{Value: u.Value, PkScript: u.PkScript}
}

type TxInput struct {
	PreviousOutPoint OutPoint
	UnlockingScript  ScriptRef
	Witness          [][]byte
	Sequence         uint32
}

// IsAuthorized reports whether the input carries a script sig or a witness.
func (in TxInput) IsAuthorized() bool {
	return !in.UnlockingScript.IsEmpty() || len(in.Witness) > 0
}

func (in TxInput) clone() TxInput {
	out := in
	if len(in.Witness) > 0 {
		out.Witness = make([][]byte, len(in.Witness))
		for i, item := range in.Witness {
			out.Witness[i] = append([]byte(nil), item...)
		}
	}
	return out
}

func (in TxInput) wire() *wire.TxIn {
	txIn := wire.NewTxIn(&wire.OutPoint{Hash: in.PreviousOutPoint.TxID, Index: in.PreviousOutPoint.Index},
		in.UnlockingScript.Bytes(), nil)
	txIn.Sequence = in.Sequence
	if len(in.Witness) > 0 {
		txIn.Witness = make(wire.TxWitness, len(in.Witness))
		for i, item := range in.Witness {
			txIn.Witness[i] = append([]byte(nil), item...)
		}
	}
	return txIn
}

type TxOutput struct {
	Value    int64
	PkScript ScriptRef
}

func (o TxOutput) wire() *wire.TxOut {
	return wire.NewTxOut(o.Value, o.PkScript.Bytes())
}
