package utxostore

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	wallet "psbt-wallet"
)

// LevelStore keeps utxos in a goleveldb database.
type LevelStore struct {
	db *leveldb.DB
}

func OpenLevelStore(dir string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errors.Wrap(err, "utxostore: open leveldb")
	}
	logrus.WithField("path", dir).Debug("opened leveldb utxo store")
	return &LevelStore{db: db}, nil
}

func (s *LevelStore) Close() error { return s.db.Close() }

func (s *LevelStore) Put(u wallet.Utxo) error {
	if err := validate(u); err != nil {
		return err
	}
	return errors.Wrap(s.db.Put(utxoKey(u), utxoValue(u), nil), "utxostore: put")
}

func (s *LevelStore) Delete(u wallet.Utxo) error {
	k := utxoKey(u)
	ok, err := s.db.Has(k, nil)
	if err != nil {
		return errors.Wrap(err, "utxostore: lookup")
	}
	if !ok {
		return errors.Wrapf(ErrNotFound, "%s", u.OutPoint)
	}
	return errors.Wrap(s.db.Delete(k, nil), "utxostore: delete")
}

func (s *LevelStore) ListByScript(pkScript wallet.ScriptRef) ([]wallet.Utxo, error) {
	iter := s.db.NewIterator(util.BytesPrefix(scriptPrefix(pkScript)), nil)
	defer iter.Release()

	var utxos []wallet.Utxo
	for iter.Next() {
		u, err := decodeUtxo(iter.Key(), iter.Value())
		if err != nil {
			return nil, err
		}
		utxos = append(utxos, u)
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "utxostore: iterate")
	}
	return utxos, nil
}

func (s *LevelStore) SelectUtxo(pkScript wallet.ScriptRef, amount int64) (wallet.Utxo, error) {
	utxos, err := s.ListByScript(pkScript)
	if err != nil {
		return wallet.Utxo{}, err
	}
	return wallet.SelectSmallest(utxos, pkScript, amount)
}
