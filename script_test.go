package psbt_wallet

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptRef_Immutable(t *testing.T) {
	raw := []byte{0x51, 0x52}
	s := NewScriptRef(raw)
	raw[0] = 0x00
	assert.Equal(t, []byte{0x51, 0x52}, s.Bytes())

	b := s.Bytes()
	b[1] = 0x00
	assert.Equal(t, []byte{0x51, 0x52}, s.Bytes())
	assert.Equal(t, "5152", s.String())
	assert.True(t, s.Equal(NewScriptRef([]byte{0x51, 0x52})))
	assert.True(t, NewScriptRef(nil).Equal(ScriptRef{}))
	assert.True(t, NewScriptRef([]byte{}).IsEmpty())
}

func TestScriptForKey(t *testing.T) {
	pub := pubKeyOf(t, testKeyBytes(t))
	tests := []struct {
		kind  ScriptKind
		len   int
		class txscript.ScriptClass
	}{
		{PubKeyHash, 25, txscript.PubKeyHashTy},
		{WitnessPubKeyHash, 22, txscript.WitnessV0PubKeyHashTy},
		{TaprootKeyPath, 34, txscript.WitnessV1TaprootTy},
	}
	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			s, err := ScriptForKey(pub, tc.kind)
			require.NoError(t, err)
			assert.Equal(t, tc.len, s.Len())
			assert.Equal(t, tc.class, s.Class())
			kind, ok := s.Kind()
			assert.True(t, ok)
			assert.Equal(t, tc.kind, kind)
		})
	}

	_, err := ScriptForKey(nil, PubKeyHash)
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = ScriptForKey(pub, ScriptKind(99))
	assert.ErrorIs(t, err, ErrInvalidScript)
}

func TestScriptFromAddress(t *testing.T) {
	pub := pubKeyOf(t, testKeyBytes(t))
	net := &chaincfg.TestNet3Params

	p2pkh, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(pub.SerializeCompressed()), net)
	require.NoError(t, err)
	p2wpkh, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pub.SerializeCompressed()), net)
	require.NoError(t, err)

	for addr, kind := range map[string]ScriptKind{
		p2pkh.EncodeAddress():  PubKeyHash,
		p2wpkh.EncodeAddress(): WitnessPubKeyHash,
	} {
		s, err := ScriptFromAddress(addr, net)
		require.NoError(t, err, addr)
		want, err := ScriptForKey(pub, kind)
		require.NoError(t, err)
		assert.True(t, want.Equal(s), addr)
	}

	_, err = ScriptFromAddress(p2wpkh.EncodeAddress(), &chaincfg.MainNetParams)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	_, err = ScriptFromAddress("", net)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	_, err = ScriptFromAddress("tb1qqqqq", net)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestScriptFromHex(t *testing.T) {
	s, err := ScriptFromHex("0014" + "5662a3e128e04aef586b4cd9ce79cdd06fae97e7")
	require.NoError(t, err)
	assert.Equal(t, txscript.WitnessV0PubKeyHashTy, s.Class())

	_, err = ScriptFromHex("zz")
	assert.ErrorIs(t, err, ErrInvalidScript)
	_, err = ScriptFromHex("")
	assert.ErrorIs(t, err, ErrInvalidScript)
}
