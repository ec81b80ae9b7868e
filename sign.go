package psbt_wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/cockroachdb/errors"
)

// inputSigner computes unlocking data for every input of one transaction
// with a single present key and sighash type.
type inputSigner struct {
	key      *presentKey
	pkScript ScriptRef
	signer   Signer
	hashType txscript.SigHashType
}

// signAll returns the authorized inputs in order. It works on a private
// copy of tx; on error nothing is returned.
func (s *inputSigner) signAll(tx *UnsignedTransaction) ([]TxInput, error) {
	msgTx := tx.MsgTx()
	fetcher := tx.prevOutFetcher()
	sigHashes := txscript.NewTxSigHashes(msgTx, fetcher)

	signed := make([]TxInput, len(tx.inputs))
	for i, in := range tx.inputs {
		spent := tx.spent[i]
		if !spent.PkScript.Equal(s.pkScript) {
			return nil, errors.Wrapf(ErrSigningFailed, "input %d is locked by foreign script %s", i, spent.PkScript)
		}
		kind, _ := s.pkScript.Kind()

		out := in.clone()
		switch kind {
		case PubKeyHash:
			if s.hashType&^txscript.SigHashAnyOneCanPay == txscript.SigHashSingle && i >= len(tx.outputs) {
				return nil, errors.Wrapf(ErrSigningFailed, "input %d: sighash single without matching output", i)
			}
			digest, err := txscript.CalcSignatureHash(spent.PkScript.Bytes(), s.hashType, msgTx, i)
			if err != nil {
				return nil, mark(errors.Wrapf(err, "input %d: legacy sighash", i), ErrSigningFailed)
			}
			sig, err := s.sign(digest, s.key.key, ECDSA, i)
			if err != nil {
				return nil, err
			}
			sigScript, err := txscript.NewScriptBuilder().
				AddData(append(sig, byte(s.hashType))).
				AddData(s.key.pubKey).
				Script()
			if err != nil {
				return nil, mark(errors.Wrapf(err, "input %d: build script sig", i), ErrSigningFailed)
			}
			out.UnlockingScript = NewScriptRef(sigScript)
		case WitnessPubKeyHash:
			digest, err := txscript.CalcWitnessSigHash(spent.PkScript.Bytes(), sigHashes, s.hashType, msgTx, i, spent.Value)
			if err != nil {
				return nil, mark(errors.Wrapf(err, "input %d: witness sighash", i), ErrSigningFailed)
			}
			sig, err := s.sign(digest, s.key.key, ECDSA, i)
			if err != nil {
				return nil, err
			}
			out.Witness = [][]byte{append(sig, byte(s.hashType)), append([]byte(nil), s.key.pubKey...)}
		case TaprootKeyPath:
			hashType := s.hashType
			if hashType == txscript.SigHashAll {
				hashType = txscript.SigHashDefault
			}
			digest, err := txscript.CalcTaprootSignatureHash(sigHashes, hashType, msgTx, i, fetcher)
			if err != nil {
				return nil, mark(errors.Wrapf(err, "input %d: taproot sighash", i), ErrSigningFailed)
			}
			tweaked := tweakTaprootKey(s.key.key)
			sig, err := s.sign(digest, tweaked, Schnorr, i)
			tweaked.Zero()
			if err != nil {
				return nil, err
			}
			if hashType != txscript.SigHashDefault {
				sig = append(sig, byte(hashType))
			}
			out.Witness = [][]byte{sig}
		default:
			return nil, errors.Wrapf(ErrSigningFailed, "input %d: unsupported script %s", i, spent.PkScript.Class())
		}
		signed[i] = out
	}

	if err := verifyInputs(buildMsgTx(tx.version, signed, tx.outputs, tx.lockTime), tx); err != nil {
		return nil, mark(err, ErrSigningFailed)
	}
	return signed, nil
}

func (s *inputSigner) sign(digest []byte, key *btcec.PrivateKey, scheme SignatureScheme, index int) ([]byte, error) {
	sig, err := s.signer.Sign(digest, key, scheme)
	if err != nil {
		return nil, mark(errors.Wrapf(err, "input %d", index), ErrSigningFailed)
	}
	if len(sig) == 0 {
		return nil, errors.Wrapf(ErrSigningFailed, "input %d: signer returned empty signature", index)
	}
	return sig, nil
}
