package crypto

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/wart-wallet/internal/keys"
	"github.com/AlexZinkM/wart-wallet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{N: 1 << 10, R: 8, P: 1}

const testPrivateKey = "5bff2d57924e62b6541b24a0411c03c98824b592ad957dfd4802fb1b92e730b7"

func testWallet(t *testing.T) *model.Wallet {
	t.Helper()
	w, err := keys.ImportFromPrivateKey(testPrivateKey)
	require.NoError(t, err)
	return w
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	w := testWallet(t)
	secret := w.Secrets()

	blob, err := Encrypt(secret, []byte("correct horse"), testParams)
	require.NoError(t, err)

	got, err := Decrypt(blob, []byte("correct horse"))
	require.NoError(t, err)
	assert.Equal(t, secret, *got)
	assert.Equal(t, "6b58cd2e313545fb6ae599df9a6f18f153fc84b4539a7f54", got.Address)
}

func TestEncryptFreshSaltAndNonce(t *testing.T) {
	secret := testWallet(t).Secrets()

	a, err := Encrypt(secret, []byte("pw"), testParams)
	require.NoError(t, err)
	b, err := Encrypt(secret, []byte("pw"), testParams)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEncryptRejects(t *testing.T) {
	secret := testWallet(t).Secrets()

	_, err := Encrypt(secret, nil, testParams)
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = Encrypt(secret, []byte("pw"), Params{N: 1000, R: 8, P: 1})
	assert.Error(t, err)

	_, err = Encrypt(secret, []byte("pw"), Params{N: 1 << 10, R: 0, P: 1})
	assert.Error(t, err)
}

func TestParamsMemoryBound(t *testing.T) {
	assert.NoError(t, DefaultParams.validate())
	assert.NoError(t, Params{N: MaxN, R: 8, P: 1}.validate())
	assert.Error(t, Params{N: MaxN, R: 32, P: 1}.validate())
	assert.Error(t, Params{N: MaxN, R: 9, P: 1}.validate())
	assert.Error(t, Params{N: MaxN * 2, R: 1, P: 1}.validate())
}

func TestDecryptWrongPassword(t *testing.T) {
	blob, err := Encrypt(testWallet(t).Secrets(), []byte("right"), testParams)
	require.NoError(t, err)

	_, err = Decrypt(blob, []byte("wrong"))
	assert.ErrorIs(t, err, ErrDecryption)

	_, err = Decrypt(blob, nil)
	assert.ErrorIs(t, err, ErrDecryption)
}

func tamper(t *testing.T, blob model.EncryptedBlob, mutate func(*model.VaultEnvelope)) model.EncryptedBlob {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(string(blob))
	require.NoError(t, err)
	var env model.VaultEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	mutate(&env)
	out, err := json.Marshal(env)
	require.NoError(t, err)
	return model.EncryptedBlob(base64.StdEncoding.EncodeToString(out))
}

func TestDecryptCorrupted(t *testing.T) {
	blob, err := Encrypt(testWallet(t).Secrets(), []byte("pw"), testParams)
	require.NoError(t, err)

	flipCipher := func(env *model.VaultEnvelope) {
		ct, _ := base64.StdEncoding.DecodeString(env.CipherText)
		ct[0] ^= 0x01
		env.CipherText = base64.StdEncoding.EncodeToString(ct)
	}

	cases := map[string]model.EncryptedBlob{
		"empty":            "",
		"not base64":       "!!!not-base64!!!",
		"not json":         model.EncryptedBlob(base64.StdEncoding.EncodeToString([]byte("hello"))),
		"flipped cipher":   tamper(t, blob, flipCipher),
		"short nonce":      tamper(t, blob, func(e *model.VaultEnvelope) { e.Nonce = "AAAA" }),
		"other version":    tamper(t, blob, func(e *model.VaultEnvelope) { e.Version = 2 }),
		"other kdf":        tamper(t, blob, func(e *model.VaultEnvelope) { e.KDF = "pbkdf2" }),
		"huge N":           tamper(t, blob, func(e *model.VaultEnvelope) { e.N = 1 << 30 }),
		"huge N*r":         tamper(t, blob, func(e *model.VaultEnvelope) { e.N, e.R = 1<<20, 32 }),
		"different salt":   tamper(t, blob, func(e *model.VaultEnvelope) { e.Salt = base64.StdEncoding.EncodeToString(make([]byte, 32)) }),
		"truncated cipher": tamper(t, blob, func(e *model.VaultEnvelope) { e.CipherText = e.CipherText[:8] }),
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decrypt(b, []byte("pw"))
			assert.ErrorIs(t, err, ErrDecryption)
		})
	}
}

func TestDecryptMismatchedSecret(t *testing.T) {
	secret := testWallet(t).Secrets()
	secret.Address = "751e76e8199196d454941c45d1b3a323f1433bd6ffded884"

	blob, err := Encrypt(secret, []byte("pw"), testParams)
	require.NoError(t, err)

	_, err = Decrypt(blob, []byte("pw"))
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestWalletFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.wart")
	w := testWallet(t)

	_, err := EncryptWallet(path, w, []byte("pw"), testParams)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	addr, err := ReadWalletAddress(path)
	require.NoError(t, err)
	assert.Equal(t, w.Address, addr)

	got, err := DecryptWallet(path, []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, w.PrivateKey, got.PrivateKey)
	assert.Equal(t, w.PublicKey, got.PublicKey)
	assert.Empty(t, got.Mnemonic)

	_, err = EncryptWallet(path, w, []byte("pw"), testParams)
	assert.ErrorIs(t, err, ErrFileExists)
}

func TestWriteWalletFileEmptyExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.wart")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	blob, err := Encrypt(testWallet(t).Secrets(), []byte("pw"), testParams)
	require.NoError(t, err)
	assert.NoError(t, WriteWalletFile(path, blob))
}

func TestReadWalletFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadWalletFile(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrWalletNotFound)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0600))
	_, err = ReadWalletFile(empty)
	assert.ErrorIs(t, err, ErrWalletNotFound)

	blob, err := Encrypt(testWallet(t).Secrets(), []byte("pw"), testParams)
	require.NoError(t, err)

	withBOM := filepath.Join(dir, "bom")
	require.NoError(t, os.WriteFile(withBOM, append(append([]byte{}, utf8BOM...), []byte(string(blob)+"\n")...), 0600))
	got, err := ReadWalletFile(withBOM)
	require.NoError(t, err)
	assert.Equal(t, blob, got)
}
