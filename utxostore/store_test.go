package utxostore

import (
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	wallet "psbt-wallet"
)

type opener func(t *testing.T, path string) Store

var backends = map[string]opener{
	"bolt": func(t *testing.T, path string) Store {
		s, err := OpenBoltStore(filepath.Join(path, "utxos.db"))
		require.NoError(t, err)
		return s
	},
	"leveldb": func(t *testing.T, path string) Store {
		s, err := OpenLevelStore(filepath.Join(path, "utxos"))
		require.NoError(t, err)
		return s
	},
}

func hash(b byte) chainhash.Hash {
	var h chainhash.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func utxo(script wallet.ScriptRef, id byte, index uint32, value int64) wallet.Utxo {
	return wallet.Utxo{OutPoint: wallet.OutPoint{TxID: hash(id), Index: index}, Value: value, PkScript: script}
}

var (
	scriptA = wallet.NewScriptRef(append([]byte{0x00, 0x14}, make([]byte, 20)...))
	scriptB = wallet.NewScriptRef(append([]byte{0x00, 0x14}, bytesOf(0x11, 20)...))
)

func bytesOf(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestStore_PutListSelect(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			s := open(t, t.TempDir())
			defer s.Close()

			require.NoError(t, s.Put(utxo(scriptA, 1, 0, 5000)))
			require.NoError(t, s.Put(utxo(scriptA, 2, 1, 1500)))
			require.NoError(t, s.Put(utxo(scriptB, 3, 0, 100)))

			got, err := s.ListByScript(scriptA)
			require.NoError(t, err)
			assert.ElementsMatch(t, []wallet.Utxo{utxo(scriptA, 1, 0, 5000), utxo(scriptA, 2, 1, 1500)}, got)

			u, err := s.SelectUtxo(scriptA, 1000)
			require.NoError(t, err)
			assert.Equal(t, utxo(scriptA, 2, 1, 1500), u)

			u, err = s.SelectUtxo(scriptA, 2000)
			require.NoError(t, err)
			assert.Equal(t, hash(1), u.OutPoint.TxID)

			_, err = s.SelectUtxo(scriptB, 101)
			assert.ErrorIs(t, err, wallet.ErrNoUtxoAvailable)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			s := open(t, t.TempDir())
			defer s.Close()

			u := utxo(scriptA, 1, 0, 5000)
			require.NoError(t, s.Put(u))
			require.NoError(t, s.Delete(u))
			assert.ErrorIs(t, s.Delete(u), ErrNotFound)

			got, err := s.ListByScript(scriptA)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestStore_RejectsInvalid(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			s := open(t, t.TempDir())
			defer s.Close()

			assert.ErrorIs(t, s.Put(wallet.Utxo{Value: 10, PkScript: scriptA}), ErrInvalidUtxo)
			assert.ErrorIs(t, s.Put(utxo(scriptA, 1, 0, 0)), ErrInvalidUtxo)
			assert.ErrorIs(t, s.Put(utxo(wallet.ScriptRef{}, 1, 0, 10)), ErrInvalidUtxo)
		})
	}
}

func TestStore_Reopen(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			s := open(t, dir)
			require.NoError(t, s.Put(utxo(scriptB, 4, 2, 777)))
			require.NoError(t, s.Close())

			s = open(t, dir)
			defer s.Close()
			got, err := s.ListByScript(scriptB)
			require.NoError(t, err)
			assert.Equal(t, []wallet.Utxo{utxo(scriptB, 4, 2, 777)}, got)
		})
	}
}

func TestStore_FeedsWallet(t *testing.T) {
	s := backends["bolt"](t, t.TempDir())
	defer s.Close()
	require.NoError(t, s.Put(utxo(scriptA, 1, 0, 5000)))

	w, err := wallet.NewWatchOnly(scriptA, wallet.Config{Utxos: s})
	require.NoError(t, err)
	tx, err := w.Build(1000, scriptB)
	require.NoError(t, err)
	assert.Equal(t, hash(1), tx.Inputs()[0].PreviousOutPoint.TxID)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open("bolt", filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open("leveldb", filepath.Join(dir, "b"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open("sqlite", dir)
	assert.Error(t, err)
}

func TestDecodeUtxo_Corrupt(t *testing.T) {
	_, err := decodeUtxo([]byte{0x01}, []byte{0x02})
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestWalletBuild_CorruptRecordNotReportedAsEmpty(t *testing.T) {
	s, err := OpenBoltStore(filepath.Join(t.TempDir(), "utxos.db"))
	require.NoError(t, err)
	defer s.Close()

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUtxos).Put(utxoKey(utxo(scriptA, 1, 0, 5000)), []byte{0x01})
	})
	require.NoError(t, err)

	w, err := wallet.NewWatchOnly(scriptA, wallet.Config{Utxos: s})
	require.NoError(t, err)
	_, err = w.Build(1000, scriptB)
	assert.ErrorIs(t, err, ErrCorruptRecord)
	assert.NotErrorIs(t, err, wallet.ErrNoUtxoAvailable)
}
