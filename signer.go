package psbt_wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/cockroachdb/errors"
)

// Signer is the signing primitive. Implementations return the bare
// signature over digest, without a sighash byte: DER for ECDSA, 64 bytes
// for Schnorr. Hardware or remote signers can stand in for the default.
type Signer interface {
	Sign(digest []byte, key *btcec.PrivateKey, scheme SignatureScheme) ([]byte, error)
}

// Secp256k1Signer signs in process with btcec. ECDSA nonces follow
// RFC6979, so signatures are deterministic.
type Secp256k1Signer struct{}

func (Secp256k1Signer) Sign(digest []byte, key *btcec.PrivateKey, scheme SignatureScheme) ([]byte, error) {
	if key == nil {
		return nil, errors.Wrap(ErrSigningFailed, "nil key")
	}
	if len(digest) != 32 {
		return nil, errors.Wrapf(ErrSigningFailed, "digest must be 32 bytes, got %d", len(digest))
	}
	switch scheme {
	case ECDSA:
		return ecdsa.Sign(key, digest).Serialize(), nil
	case Schnorr:
		sig, err := schnorr.Sign(key, digest)
		if err != nil {
			return nil, mark(errors.Wrap(err, "schnorr sign"), ErrSigningFailed)
		}
		return sig.Serialize(), nil
	}
	return nil, errors.Wrapf(ErrSigningFailed, "unknown signature scheme %d", scheme)
}
