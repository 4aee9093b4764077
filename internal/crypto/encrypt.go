package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlexZinkM/wart-wallet/internal/model"

	"golang.org/x/crypto/scrypt"
)

const (
	envelopeVersion = 1
	kdfScrypt       = "scrypt"
	scryptKeyLen    = 32
	saltLen         = 32
	nonceLen        = 12
)

// Params are the scrypt costs used for new blobs.
//
// The default N=2^18 (~256MB RAM, 0.5-2s) stays usable on phones while
// keeping brute force expensive. N=2^20 fails on mobile because of
// per-app memory limits.
type Params struct {
	N int
	R int
	P int
}

// DefaultParams are used when no other costs are configured
var DefaultParams = Params{N: 1 << 18, R: 8, P: 1}

const (
	// MaxN is the largest scrypt N accepted for new or stored blobs
	MaxN      = 1 << 20
	// maxMemory caps the scrypt working set 128*N*r at 1 GiB
	maxMemory = 1 << 30
)

var (
	// ErrEmptyPassword is returned when encrypting without a password
	ErrEmptyPassword = errors.New("password cannot be empty")
	// ErrFileExists is returned instead of overwriting a non-empty wallet file
	ErrFileExists = errors.New("file is not empty")
)

// Encrypt seals the secret fields under a key derived from password.
// Every call draws a fresh salt and nonce, so two blobs of the same secret differ.
// password must be []byte for security (caller should zero it after use)
func Encrypt(secret model.SecretFields, password []byte, params Params) (model.EncryptedBlob, error) {
	if len(password) == 0 {
		return "", ErrEmptyPassword
	}
	if err := params.validate(); err != nil {
		return "", err
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(password, salt, params)
	if err != nil {
		return "", err
	}

	plaintext, err := json.Marshal(secret)
	if err != nil {
		return "", fmt.Errorf("failed to marshal wallet secrets: %w", err)
	}
	defer clear(plaintext) // wipe plaintext bytes from memory

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	envelope := model.VaultEnvelope{
		Version:    envelopeVersion,
		KDF:        kdfScrypt,
		N:          params.N,
		R:          params.R,
		P:          params.P,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
		Address:    secret.Address,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return model.EncryptedBlob(base64.StdEncoding.EncodeToString(raw)), nil
}

// EncryptWallet encrypts wallet secrets and writes the blob to filePath.
// password must be []byte for security (caller should zero it after use)
func EncryptWallet(filePath string, w *model.Wallet, password []byte, params Params) (model.EncryptedBlob, error) {
	blob, err := Encrypt(w.Secrets(), password, params)
	if err != nil {
		return "", err
	}
	if err := WriteWalletFile(filePath, blob); err != nil {
		return "", err
	}
	return blob, nil
}

// WriteWalletFile writes the blob as UTF-8 text. An existing non-empty file is never overwritten.
func WriteWalletFile(filePath string, blob model.EncryptedBlob) error {
	if fileInfo, err := os.Stat(filePath); err == nil && fileInfo.Size() > 0 {
		return ErrFileExists
	}

	if err := os.WriteFile(filePath, []byte(blob), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func newGCM(password, salt []byte, params Params) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, params.N, params.R, params.P, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}

// validate bounds the costs so a crafted blob cannot demand more than maxMemory
func (p Params) validate() error {
	if p.N < 2 || p.N > MaxN || p.N&(p.N-1) != 0 {
		return fmt.Errorf("scrypt N must be a power of two in [2, 2^20], got %d", p.N)
	}
	if p.R < 1 || p.R > 32 {
		return fmt.Errorf("scrypt r must be in [1, 32], got %d", p.R)
	}
	if p.P < 1 || p.P > 16 {
		return fmt.Errorf("scrypt p must be in [1, 16], got %d", p.P)
	}
	if int64(128)*int64(p.N)*int64(p.R) > maxMemory {
		return fmt.Errorf("scrypt 128*N*r exceeds %d bytes", maxMemory)
	}
	return nil
}
