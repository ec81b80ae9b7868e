package psbt_wallet

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/cockroachdb/errors"
)

// ScriptRef is an immutable locking or unlocking script. The zero value is
// the empty script.
type ScriptRef struct {
	b []byte
}

// NewScriptRef copies b into a new ScriptRef.
func NewScriptRef(b []byte) ScriptRef {
	if len(b) == 0 {
		return ScriptRef{}
	}
	return ScriptRef{b: append([]byte(nil), b...)}
}

// Bytes returns a copy of the raw script.
func (s ScriptRef) Bytes() []byte {
	if len(s.b) == 0 {
		return nil
	}
	return append([]byte(nil), s.b...)
}

func (s ScriptRef) Len() int { return len(s.b) }

func (s ScriptRef) IsEmpty() bool { return len(s.b) == 0 }

func (s ScriptRef) Equal(o ScriptRef) bool { return bytes.Equal(s.b, o.b) }

func (s ScriptRef) String() string { return hex.EncodeToString(s.b) }

func (s ScriptRef) Class() txscript.ScriptClass { return txscript.GetScriptClass(s.b) }

// Kind maps the script onto one of the spend templates this wallet can sign.
func (s ScriptRef) Kind() (ScriptKind, bool) {
	switch s.Class() {
	case txscript.PubKeyHashTy:
		return PubKeyHash, true
	case txscript.WitnessV0PubKeyHashTy:
		return WitnessPubKeyHash, true
	case txscript.WitnessV1TaprootTy:
		return TaprootKeyPath, true
	}
	return 0, false
}

// isLegacy reports whether spending s uses the legacy sighash, which does
// not commit to the spent amount.
func (s ScriptRef) isLegacy() bool {
	return !txscript.IsWitnessProgram(s.b)
}

// ScriptFromAddress decodes a base58 or bech32 address for netParams and
// returns its locking script.
func ScriptFromAddress(address string, netParams *chaincfg.Params) (ScriptRef, error) {
	if address == "" {
		return ScriptRef{}, errors.Wrap(ErrInvalidAddress, "empty address")
	}
	addr, err := btcutil.DecodeAddress(address, netParams)
	if err != nil {
		return ScriptRef{}, mark(errors.Wrapf(err, "decode address %q", address), ErrInvalidAddress)
	}
	if !addr.IsForNet(netParams) {
		return ScriptRef{}, errors.Wrapf(ErrInvalidAddress, "address %q is not for network %s", address, netParams.Name)
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return ScriptRef{}, mark(errors.Wrapf(err, "script for %q", address), ErrInvalidAddress)
	}
	return NewScriptRef(pkScript), nil
}

func ScriptFromHex(scriptHex string) (ScriptRef, error) {
	b, err := hex.DecodeString(scriptHex)
	if err != nil {
		return ScriptRef{}, mark(errors.Wrap(err, "decode script hex"), ErrInvalidScript)
	}
	if len(b) == 0 {
		return ScriptRef{}, errors.Wrap(ErrInvalidScript, "empty script")
	}
	return NewScriptRef(b), nil
}

// ScriptForKey builds the locking script of the given kind for pub.
// Taproot scripts commit to the BIP86 key-path-only output key.
func ScriptForKey(pub *btcec.PublicKey, kind ScriptKind) (ScriptRef, error) {
	if pub == nil {
		return ScriptRef{}, errors.Wrap(ErrInvalidKey, "nil public key")
	}
	var (
		pkScript []byte
		err      error
	)
	switch kind {
	case PubKeyHash:
		pkScript, err = txscript.NewScriptBuilder().
			AddOp(txscript.OP_DUP).AddOp(txscript.OP_HASH160).
			AddData(btcutil.Hash160(pub.SerializeCompressed())).
			AddOp(txscript.OP_EQUALVERIFY).AddOp(txscript.OP_CHECKSIG).
			Script()
	case WitnessPubKeyHash:
		pkScript, err = txscript.NewScriptBuilder().
			AddOp(txscript.OP_0).
			AddData(btcutil.Hash160(pub.SerializeCompressed())).
			Script()
	case TaprootKeyPath:
		outputKey := txscript.ComputeTaprootKeyNoScript(pub)
		pkScript, err = txscript.NewScriptBuilder().
			AddOp(txscript.OP_1).
			AddData(schnorr.SerializePubKey(outputKey)).
			Script()
	default:
		return ScriptRef{}, errors.Wrapf(ErrInvalidScript, "unsupported script kind %d", kind)
	}
	if err != nil {
		return ScriptRef{}, mark(errors.Wrap(err, "build script"), ErrInvalidScript)
	}
	return NewScriptRef(pkScript), nil
}
