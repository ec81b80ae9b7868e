package psbt_wallet

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// NewMnemonic returns a fresh BIP39 mnemonic with 128 or 256 bits of entropy.
func NewMnemonic(bits int) (string, error) {
	if bits != 128 && bits != 256 {
		return "", errors.Newf("wallet: entropy bits must be 128 or 256, got %d", bits)
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", errors.Wrap(err, "generate entropy")
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Wrap(err, "encode mnemonic")
	}
	return mnemonic, nil
}

// ParseDerivationPath parses paths like m/84'/0'/0'/0/0. Both ' and h mark
// hardened components.
func ParseDerivationPath(path string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, errors.Newf("wallet: derivation path %q must start with m", path)
	}
	indexes := make([]uint32, 0, len(parts)-1)
	for _, p := range parts[1:] {
		hardened := strings.HasSuffix(p, "'") || strings.HasSuffix(p, "h")
		p = strings.TrimRight(p, "'h")
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil || n >= uint64(bip32.FirstHardenedChild) {
			return nil, errors.Newf("wallet: bad path component %q in %q", p, path)
		}
		idx := uint32(n)
		if hardened {
			idx += bip32.FirstHardenedChild
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}

// PrivateKeyFromMnemonic derives the private key at path from a BIP39
// mnemonic. The returned bytes are suitable for NewFull.
func PrivateKeyFromMnemonic(mnemonic, passphrase string, path []uint32) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, mark(errors.Wrap(err, "mnemonic to seed"), ErrInvalidMnemonic)
	}
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "master key")
	}
	for _, idx := range path {
		key, err = key.NewChildKey(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "derive child %d", idx)
		}
	}
	return append([]byte(nil), key.Key...), nil
}
