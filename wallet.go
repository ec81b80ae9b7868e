package psbt_wallet

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Config carries the collaborators and transaction defaults of a Wallet.
// Zero values select mainnet, no UTXO source, the in-process signer,
// SigHashAll, lock-time 0 and final sequence numbers.
type Config struct {
	NetParams   *chaincfg.Params
	Utxos       UtxoSource
	Signer      Signer
	SighashType txscript.SigHashType
	LockTime    uint32
	Sequence    *uint32
	Logger      *logrus.Entry
}

// Wallet builds spends from its own locking script and, in full mode,
// signs them. Construction never consults the key; signing is only
// reachable through a present SigningCapability.
type Wallet struct {
	netParams  *chaincfg.Params
	pkScript   ScriptRef
	capability SigningCapability
	utxos      UtxoSource
	signer     Signer
	hashType   txscript.SigHashType
	lockTime   uint32
	sequence   uint32
	log        *logrus.Entry
}

// NewFull creates a wallet that holds privateKey and can sign spends of
// pkScript. The key bytes are copied; the caller may wipe its slice.
func NewFull(privateKey []byte, pkScript ScriptRef, cfg Config) (*Wallet, error) {
	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	if pkScript.IsEmpty() {
		key.Zero()
		return nil, errors.Wrap(ErrInvalidScript, "empty wallet script")
	}
	present, err := newPresentKey(key, pkScript)
	if err != nil {
		key.Zero()
		return nil, err
	}
	return newWallet(pkScript, present, cfg)
}

// NewWatchOnly creates a wallet without key material. It can build
// transactions for pkScript but can never sign them.
func NewWatchOnly(pkScript ScriptRef, cfg Config) (*Wallet, error) {
	if pkScript.IsEmpty() {
		return nil, errors.Wrap(ErrInvalidScript, "empty wallet script")
	}
	return newWallet(pkScript, absentKey{}, cfg)
}

func newWallet(pkScript ScriptRef, capability SigningCapability, cfg Config) (*Wallet, error) {
	if err := validateSighashType(cfg.SighashType); err != nil {
		if p, ok := capability.(*presentKey); ok {
			p.zero()
		}
		return nil, err
	}
	w := &Wallet{
		netParams:  cfg.NetParams,
		pkScript:   pkScript,
		capability: capability,
		utxos:      cfg.Utxos,
		signer:     cfg.Signer,
		hashType:   cfg.SighashType,
		lockTime:   cfg.LockTime,
		sequence:   DefaultSequence,
		log:        cfg.Logger,
	}
	if w.netParams == nil {
		w.netParams = &chaincfg.MainNetParams
	}
	if w.signer == nil {
		w.signer = Secp256k1Signer{}
	}
	if w.hashType == 0 {
		w.hashType = txscript.SigHashAll
	}
	if cfg.Sequence != nil {
		w.sequence = *cfg.Sequence
	}
	if w.log == nil {
		w.log = logrus.StandardLogger().WithField("component", "wallet")
	}
	w.log = w.log.WithField("mode", w.Mode())
	return w, nil
}

func validateSighashType(t txscript.SigHashType) error {
	switch t &^ txscript.SigHashAnyOneCanPay {
	case 0:
		if t == 0 {
			return nil
		}
	case txscript.SigHashAll, txscript.SigHashNone, txscript.SigHashSingle:
		return nil
	}
	return errors.Newf("wallet: unsupported sighash type 0x%02x", uint32(t))
}

func (w *Wallet) PkScript() ScriptRef { return w.pkScript }

func (w *Wallet) NetParams() *chaincfg.Params { return w.netParams }

func (w *Wallet) IsWatchOnly() bool { return !w.capability.HasKey() }

func (w *Wallet) Capability() SigningCapability { return w.capability }

func (w *Wallet) Mode() string {
	if w.IsWatchOnly() {
		return "watch-only"
	}
	return "full"
}

// Close wipes any held key. The wallet is watch-only afterwards.
func (w *Wallet) Close() {
	if p, ok := w.capability.(*presentKey); ok {
		p.zero()
		w.capability = absentKey{}
		w.log = w.log.WithField("mode", w.Mode())
	}
}

// Build constructs the unsigned spend of amount to dest from one utxo
// selected for the wallet's script. It never signs.
func (w *Wallet) Build(amount int64, dest ScriptRef) (*UnsignedTransaction, error) {
	if amount <= 0 {
		return nil, errors.Wrapf(ErrInvalidAmount, "amount %d", amount)
	}
	if dest.IsEmpty() {
		return nil, errors.Wrap(ErrInvalidScript, "empty destination script")
	}
	if w.utxos == nil {
		return nil, errors.Wrap(ErrNoUtxoAvailable, "no utxo source configured")
	}
	utxo, err := w.utxos.SelectUtxo(w.pkScript, amount)
	if err != nil {
		return nil, errors.Wrap(err, "select utxo")
	}
	return w.BuildFrom([]Utxo{utxo}, []TxOutput{{Value: amount, PkScript: dest}})
}

// BuildFrom constructs an unsigned transaction spending utxos, in order,
// to outputs, in order. Every utxo must be locked by the wallet's script.
func (w *Wallet) BuildFrom(utxos []Utxo, outputs []TxOutput) (*UnsignedTransaction, error) {
	inputs := make([]TxInput, len(utxos))
	spent := make([]TxOutput, len(utxos))
	for i, u := range utxos {
		if !u.PkScript.Equal(w.pkScript) {
			return nil, errors.Wrapf(ErrForeignUtxo, "utxo %s", u.OutPoint)
		}
		inputs[i] = TxInput{PreviousOutPoint: u.OutPoint, Sequence: w.sequence}
		spent[i] = u.TxOut()
	}
	tx, err := NewUnsignedTransaction(TxVersion, inputs, spent, outputs, w.lockTime)
	if err != nil {
		return nil, err
	}
	w.log.WithFields(logrus.Fields{
		"txid":    tx.TxHash().String(),
		"inputs":  len(inputs),
		"outputs": len(outputs),
	}).Debug("built unsigned transaction")
	return tx, nil
}

// Send pays amount to address. A full wallet returns a
// *SignedTransaction; a watch-only wallet returns the
// *UnsignedTransaction for offline signing.
func (w *Wallet) Send(amount int64, address string) (Transaction, error) {
	if amount <= 0 {
		return nil, errors.Wrapf(ErrInvalidAmount, "amount %d", amount)
	}
	dest, err := ScriptFromAddress(address, w.netParams)
	if err != nil {
		return nil, err
	}
	return w.SendToScript(amount, dest)
}

func (w *Wallet) SendToScript(amount int64, dest ScriptRef) (Transaction, error) {
	tx, err := w.Build(amount, dest)
	if err != nil {
		return nil, err
	}
	if w.IsWatchOnly() {
		return tx, nil
	}
	return w.SignTransaction(tx)
}

// SignTransaction authorizes every input of tx. It fails with
// ErrNoSigningKey on a watch-only wallet. tx is never modified and no
// partially signed transaction is ever returned.
func (w *Wallet) SignTransaction(tx *UnsignedTransaction) (*SignedTransaction, error) {
	present, ok := w.capability.(*presentKey)
	if !ok {
		return nil, errors.Wrap(ErrNoSigningKey, "sign transaction")
	}
	if tx == nil {
		return nil, errors.Wrap(ErrEmptyTransaction, "nil transaction")
	}
	s := &inputSigner{key: present, pkScript: w.pkScript, signer: w.signer, hashType: w.hashType}
	inputs, err := s.signAll(tx)
	if err != nil {
		w.log.WithError(err).WithField("txid", tx.TxHash().String()).Debug("signing failed")
		return nil, err
	}
	signed := &SignedTransaction{unsigned: tx, inputs: inputs}
	w.log.WithField("txid", signed.TxHash().String()).Debug("signed transaction")
	return signed, nil
}
