package psbt_wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/cockroachdb/errors"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// SigningCapability is either a held private key or nothing. The set of
// implementations is closed; only a present key ever reaches signing code.
type SigningCapability interface {
	HasKey() bool
	String() string
	capability()
}

type absentKey struct{}

func (absentKey) HasKey() bool { return false }

func (absentKey) String() string { return "absent" }

func (absentKey) capability() {}

type presentKey struct {
	key *btcec.PrivateKey
	// pubKey is the serialized public key that matched the wallet script.
	pubKey []byte
}

func (*presentKey) HasKey() bool { return true }

func (*presentKey) String() string { return "present(redacted)" }

func (k *presentKey) GoString() string { return k.String() }

func (*presentKey) capability() {}

// zero wipes the key scalar.
func (k *presentKey) zero() {
	if k.key != nil {
		k.key.Zero()
		k.key = nil
	}
}

// parsePrivateKey interprets b as a big-endian scalar in [1, n-1].
// Short keys are left padded.
func parsePrivateKey(b []byte) (*btcec.PrivateKey, error) {
	if len(b) == 0 {
		return nil, errors.Wrap(ErrInvalidKey, "empty key")
	}
	if len(b) > 32 {
		return nil, errors.Wrapf(ErrInvalidKey, "key is %d bytes, max 32", len(b))
	}
	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(b)
	if overflow {
		scalar.Zero()
		return nil, errors.Wrap(ErrInvalidKey, "key exceeds curve order")
	}
	if scalar.IsZero() {
		return nil, errors.Wrap(ErrInvalidKey, "key is zero")
	}
	key := secp256k1.NewPrivateKey(&scalar)
	scalar.Zero()
	return key, nil
}

// newPresentKey binds key to pkScript, failing when the key cannot spend it.
func newPresentKey(key *btcec.PrivateKey, pkScript ScriptRef) (*presentKey, error) {
	kind, ok := pkScript.Kind()
	if !ok {
		return nil, errors.Wrapf(ErrInvalidScript, "cannot sign for script class %s", pkScript.Class())
	}
	pub, ok := matchingPubKey(key.PubKey(), kind, pkScript)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidKey, "key does not control %s script", kind)
	}
	return &presentKey{key: key, pubKey: pub}, nil
}

// matchingPubKey returns the public key encoding committed to by pkScript.
// P2PKH may commit to either the compressed or uncompressed form.
func matchingPubKey(pub *btcec.PublicKey, kind ScriptKind, pkScript ScriptRef) ([]byte, bool) {
	switch kind {
	case PubKeyHash:
		for _, enc := range [][]byte{pub.SerializeCompressed(), pub.SerializeUncompressed()} {
			compare, err := txscript.NewScriptBuilder().
				AddOp(txscript.OP_DUP).AddOp(txscript.OP_HASH160).
				AddData(btcutil.Hash160(enc)).
				AddOp(txscript.OP_EQUALVERIFY).AddOp(txscript.OP_CHECKSIG).
				Script()
			if err == nil && NewScriptRef(compare).Equal(pkScript) {
				return enc, true
			}
		}
	case WitnessPubKeyHash, TaprootKeyPath:
		want, err := ScriptForKey(pub, kind)
		if err == nil && want.Equal(pkScript) {
			if kind == TaprootKeyPath {
				return schnorr.SerializePubKey(txscript.ComputeTaprootKeyNoScript(pub)), true
			}
			return pub.SerializeCompressed(), true
		}
	}
	return nil, false
}

// tweakTaprootKey applies the BIP86 key-path tweak to priv. The caller
// owns the returned key and should zero it.
func tweakTaprootKey(priv *btcec.PrivateKey) *btcec.PrivateKey {
	var d secp256k1.ModNScalar
	d.Set(&priv.Key)
	pub := priv.PubKey()
	if pub.SerializeCompressed()[0] == secp256k1.PubKeyFormatCompressedOdd {
		d.Negate()
	}
	tweak := chainhash.TaggedHash(chainhash.TagTapTweak, schnorr.SerializePubKey(pub))
	var t secp256k1.ModNScalar
	t.SetBytes((*[32]byte)(tweak))
	d.Add(&t)
	key := secp256k1.NewPrivateKey(&d)
	d.Zero()
	return key
}
