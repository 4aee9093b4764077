package keys

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/AlexZinkM/wart-wallet/internal/address"
	"github.com/AlexZinkM/wart-wallet/internal/model"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const abandon12 = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestDeriveFixtures(t *testing.T) {
	tests := []struct {
		name      string
		mnemonic  string
		wordCount int
		kind      model.PathKind
		priv      string
		pub       string
		addr      string
	}{
		{
			name:      "12 words hardened",
			mnemonic:  abandon12,
			wordCount: 12,
			kind:      model.PathHardened,
			priv:      "5bff2d57924e62b6541b24a0411c03c98824b592ad957dfd4802fb1b92e730b7",
			pub:       "020e33fa33df35fdbaed1ac67a85e5cbda50553198087d964f6ea3cc33842bdcc2",
			addr:      "6b58cd2e313545fb6ae599df9a6f18f153fc84b4539a7f54",
		},
		{
			name:      "12 words non-hardened",
			mnemonic:  abandon12,
			wordCount: 12,
			kind:      model.PathNonHardened,
			priv:      "3915b730d9b4bdd849f7f0ba744da81b8080648fd150848c6ba6ea99fba0a04f",
			pub:       "02e454109b6bc565dc5800b51384a6846202031167e75fbf1e2d542051606e957d",
			addr:      "d222fd5b2d4124c4e45b5b31a2086b1901230699ab1a1edb",
		},
		{
			name:      "24 words hardened",
			mnemonic:  strings.Repeat("abandon ", 23) + "art",
			wordCount: 24,
			kind:      model.PathHardened,
			priv:      "d609668577df4961a3fba82b82824eafdd8823221ef86918a86af88c839436e1",
			pub:       "03edee1afeb186c4794966c2c58b00e014610f8a3466b910df89e26190354f203b",
			addr:      "b7c5f0ce83bbb80e180d93375ce09495dd3f0e74b0d60c03",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Derive(tt.mnemonic, tt.wordCount, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.priv, hex.EncodeToString(w.PrivateKey))
			assert.Equal(t, tt.pub, hex.EncodeToString(w.PublicKey))
			assert.Equal(t, tt.addr, w.Address)
			assert.Equal(t, tt.mnemonic, w.Mnemonic)
			assert.Equal(t, tt.wordCount, w.WordCount)
			assert.Equal(t, tt.kind, w.PathKind)
		})
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	a, err := Derive(abandon12, 12, model.PathHardened)
	require.NoError(t, err)
	b, err := Derive("  ABANDON abandon abandon abandon abandon abandon\tabandon abandon abandon abandon abandon about\n", 12, model.PathHardened)
	require.NoError(t, err)

	assert.Equal(t, a.PrivateKey, b.PrivateKey)
	assert.Equal(t, a.PublicKey, b.PublicKey)
	assert.Equal(t, a.Address, b.Address)
	assert.Equal(t, abandon12, b.Mnemonic)
}

func TestDeriveInvalid(t *testing.T) {
	tests := []struct {
		name      string
		mnemonic  string
		wordCount int
		kind      model.PathKind
		err       error
	}{
		{"too few words", "abandon abandon about", 12, model.PathHardened, ErrInvalidMnemonic},
		{"word count mismatch", abandon12, 24, model.PathHardened, ErrInvalidMnemonic},
		{"bad checksum", strings.Repeat("abandon ", 12), 12, model.PathHardened, ErrInvalidMnemonic},
		{"unknown word", strings.Repeat("abandon ", 11) + "notaword", 12, model.PathHardened, ErrInvalidMnemonic},
		{"empty", "", 12, model.PathHardened, ErrInvalidMnemonic},
		{"unsupported word count", abandon12, 15, model.PathHardened, ErrInvalidWordCount},
		{"unknown path kind", abandon12, 12, model.PathKind("weird"), ErrInvalidPathKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Derive(tt.mnemonic, tt.wordCount, tt.kind)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, w)
		})
	}
}

func TestGenerate(t *testing.T) {
	for _, wc := range []int{12, 24} {
		for _, kind := range []model.PathKind{model.PathHardened, model.PathNonHardened} {
			w, err := Generate(wc, kind)
			require.NoError(t, err)

			assert.Len(t, strings.Fields(w.Mnemonic), wc)
			assert.Len(t, w.PrivateKey, 32)
			assert.Len(t, w.PublicKey, 33)
			assert.Len(t, w.Address, address.Len)
			assert.True(t, address.Validate(w.Address))
			assert.Equal(t, address.Encode(w.PublicKey), w.Address)

			// the mnemonic restores the same wallet
			again, err := Derive(w.Mnemonic, wc, kind)
			require.NoError(t, err)
			assert.Equal(t, w.PrivateKey, again.PrivateKey)
		}
	}
}

func TestGenerateFromFixedEntropy(t *testing.T) {
	w, err := GenerateFrom(bytes.NewReader(make([]byte, 16)), 12, model.PathHardened)
	require.NoError(t, err)
	assert.Equal(t, abandon12, w.Mnemonic)
	assert.Equal(t, "6b58cd2e313545fb6ae599df9a6f18f153fc84b4539a7f54", w.Address)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestGenerateEntropyFailure(t *testing.T) {
	w, err := GenerateFrom(failingReader{}, 12, model.PathHardened)
	assert.ErrorIs(t, err, ErrEntropySource)
	assert.Nil(t, w)

	// short read
	w, err = GenerateFrom(bytes.NewReader(make([]byte, 8)), 24, model.PathHardened)
	assert.ErrorIs(t, err, ErrEntropySource)
	assert.Nil(t, w)
}

func TestImportFromPrivateKey(t *testing.T) {
	w, err := ImportFromPrivateKey("5bff2d57924e62b6541b24a0411c03c98824b592ad957dfd4802fb1b92e730b7")
	require.NoError(t, err)
	assert.Equal(t, "020e33fa33df35fdbaed1ac67a85e5cbda50553198087d964f6ea3cc33842bdcc2", hex.EncodeToString(w.PublicKey))
	assert.Equal(t, "6b58cd2e313545fb6ae599df9a6f18f153fc84b4539a7f54", w.Address)
	assert.Empty(t, w.Mnemonic)
	assert.Zero(t, w.WordCount)
	assert.Empty(t, w.PathKind)

	w, err = ImportFromPrivateKey("0x0000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "751e76e8199196d454941c45d1b3a323f1433bd6ffded884", w.Address)
}

func TestImportFromPrivateKeyInvalid(t *testing.T) {
	n := hex.EncodeToString(btcec.S256().N.Bytes())
	for _, in := range []string{
		"",
		"abc",
		"zz" + strings.Repeat("0", 62),
		strings.Repeat("0", 64),
		strings.Repeat("f", 64),
		n,
		strings.Repeat("1", 66),
	} {
		w, err := ImportFromPrivateKey(in)
		assert.ErrorIs(t, err, ErrInvalidPrivateKey, in)
		assert.Nil(t, w)
	}
}

func TestPathFor(t *testing.T) {
	p, err := PathFor(model.PathHardened)
	require.NoError(t, err)
	assert.Equal(t, "m/44'/2070'/0'/0/0", p.String())

	p, err = PathFor(model.PathNonHardened)
	require.NoError(t, err)
	assert.Equal(t, "m/44'/2070'/0/0/0", p.String())

	_, err = PathFor("")
	assert.ErrorIs(t, err, ErrInvalidPathKind)
}
