package psbt_wallet

import "github.com/btcsuite/btcd/wire"

type ScriptKind int

const (
	PubKeyHash        ScriptKind = 1
	WitnessPubKeyHash ScriptKind = 2
	TaprootKeyPath    ScriptKind = 3
)

func (k ScriptKind) String() string {
	switch k {
	case PubKeyHash:
		return "p2pkh"
	case WitnessPubKeyHash:
		return "p2wpkh"
	case TaprootKeyPath:
		return "p2tr"
	}
	return "unknown"
}

type SignatureScheme int

const (
	ECDSA   SignatureScheme = 1
	Schnorr SignatureScheme = 2
)

const (
	TxVersion       int32  = 2
	DefaultLockTime uint32 = 0
	DefaultSequence uint32 = wire.MaxTxInSequenceNum
)
