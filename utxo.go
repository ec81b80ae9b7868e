package psbt_wallet

import (
	"bytes"
	"sort"

	"github.com/cockroachdb/errors"
)

// UtxoSource selects a spendable output locked by pkScript that covers
// amount. Implementations return ErrNoUtxoAvailable when none exists.
type UtxoSource interface {
	SelectUtxo(pkScript ScriptRef, amount int64) (Utxo, error)
}

// StaticUtxos is an in-memory UtxoSource.
type StaticUtxos []Utxo

func (s StaticUtxos) SelectUtxo(pkScript ScriptRef, amount int64) (Utxo, error) {
	return SelectSmallest(s, pkScript, amount)
}

// SelectSmallest picks the smallest candidate locked by pkScript whose
// value covers amount. Ties go to the lowest outpoint. Candidates with a
// zero txid are never selected.
func SelectSmallest(candidates []Utxo, pkScript ScriptRef, amount int64) (Utxo, error) {
	eligible := make([]Utxo, 0, len(candidates))
	for _, u := range candidates {
		if u.OutPoint.IsZero() || u.Value < amount || !u.PkScript.Equal(pkScript) {
			continue
		}
		eligible = append(eligible, u)
	}
	if len(eligible) == 0 {
		return Utxo{}, errors.Wrapf(ErrNoUtxoAvailable, "need %d for script %s", amount, pkScript)
	}
	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		if c := bytes.Compare(a.OutPoint.TxID[:], b.OutPoint.TxID[:]); c != 0 {
			return c < 0
		}
		return a.OutPoint.Index < b.OutPoint.Index
	})
	return eligible[0], nil
}
