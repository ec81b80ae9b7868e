package utxostore

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	wallet "psbt-wallet"
)

var bucketUtxos = []byte("utxos")

// BoltStore keeps utxos in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens or creates the database at dbPath, creating the
// parent directory if needed.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, errors.Wrap(err, "utxostore: create directory")
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "utxostore: open bolt db")
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketUtxos)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "utxostore: create bucket")
	}
	logrus.WithField("path", dbPath).Debug("opened bolt utxo store")
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) Put(u wallet.Utxo) error {
	if err := validate(u); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUtxos).Put(utxoKey(u), utxoValue(u))
	})
}

// Delete removes u, typically once a transaction spending it is broadcast.
func (s *BoltStore) Delete(u wallet.Utxo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketUtxos)
		k := utxoKey(u)
		if b.Get(k) == nil {
			return errors.Wrapf(ErrNotFound, "%s", u.OutPoint)
		}
		return b.Delete(k)
	})
}

func (s *BoltStore) ListByScript(pkScript wallet.ScriptRef) ([]wallet.Utxo, error) {
	prefix := scriptPrefix(pkScript)
	var utxos []wallet.Utxo
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketUtxos).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			u, err := decodeUtxo(k, v)
			if err != nil {
				return err
			}
			utxos = append(utxos, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return utxos, nil
}

func (s *BoltStore) SelectUtxo(pkScript wallet.ScriptRef, amount int64) (wallet.Utxo, error) {
	utxos, err := s.ListByScript(pkScript)
	if err != nil {
		return wallet.Utxo{}, err
	}
	return wallet.SelectSmallest(utxos, pkScript, amount)
}
