package crypto

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlexZinkM/wart-wallet/internal/address"
	"github.com/AlexZinkM/wart-wallet/internal/keys"
	"github.com/AlexZinkM/wart-wallet/internal/model"
)

// ErrDecryption covers wrong passwords and corrupted blobs alike.
// Keep this generic to avoid leaking which one it was.
var ErrDecryption = errors.New("failed to decrypt wallet: invalid password")

// ErrWalletNotFound is returned when the wallet file is missing or empty
var ErrWalletNotFound = errors.New("wallet file not found")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decrypt opens a blob produced by Encrypt.
// password must be []byte for security (caller should zero it after use)
func Decrypt(blob model.EncryptedBlob, password []byte) (*model.SecretFields, error) {
	if len(password) == 0 {
		return nil, ErrDecryption
	}

	envelope, err := decodeEnvelope(blob)
	if err != nil {
		return nil, ErrDecryption
	}

	salt, err := base64.StdEncoding.DecodeString(envelope.Salt)
	if err != nil || len(salt) < 16 {
		return nil, ErrDecryption
	}
	nonce, err := base64.StdEncoding.DecodeString(envelope.Nonce)
	if err != nil || len(nonce) != nonceLen {
		return nil, ErrDecryption
	}
	ciphertext, err := base64.StdEncoding.DecodeString(envelope.CipherText)
	if err != nil {
		return nil, ErrDecryption
	}

	params := Params{N: envelope.N, R: envelope.R, P: envelope.P}
	if params.validate() != nil {
		return nil, ErrDecryption
	}

	aesGCM, err := newGCM(password, salt, params)
	if err != nil {
		return nil, ErrDecryption
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryption
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	var secret model.SecretFields
	if err := json.Unmarshal(plaintext, &secret); err != nil {
		return nil, ErrDecryption
	}
	if err := checkSecret(&secret); err != nil {
		return nil, ErrDecryption
	}

	return &secret, nil
}

// DecryptWallet reads the wallet file and rebuilds the wallet it holds.
// The returned wallet has no mnemonic: only keys and address are stored.
func DecryptWallet(filePath string, password []byte) (*model.Wallet, error) {
	blob, err := ReadWalletFile(filePath)
	if err != nil {
		return nil, err
	}

	secret, err := Decrypt(blob, password)
	if err != nil {
		return nil, err
	}
	return WalletFromSecrets(secret)
}

// WalletFromSecrets converts decrypted secret fields back into a wallet
func WalletFromSecrets(secret *model.SecretFields) (*model.Wallet, error) {
	priv, err := hex.DecodeString(secret.PrivateKey)
	if err != nil {
		return nil, ErrDecryption
	}
	pub, err := hex.DecodeString(secret.PublicKey)
	if err != nil {
		clear(priv)
		return nil, ErrDecryption
	}
	return &model.Wallet{
		PrivateKey: priv,
		PublicKey:  pub,
		Address:    secret.Address,
	}, nil
}

// ReadWalletFile reads the blob stored at filePath
func ReadWalletFile(filePath string) (model.EncryptedBlob, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: file does not exist", ErrWalletNotFound)
		}
		return "", fmt.Errorf("failed to stat file: %w", err)
	}

	if fileInfo.Size() == 0 {
		return "", fmt.Errorf("%w: file is empty", ErrWalletNotFound)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	// Skip UTF-8 BOM if present
	fileData = bytes.TrimPrefix(fileData, utf8BOM)

	return model.EncryptedBlob(strings.TrimSpace(string(fileData))), nil
}

// ReadWalletAddress reads only the address from the wallet file (without decryption)
func ReadWalletAddress(filePath string) (string, error) {
	blob, err := ReadWalletFile(filePath)
	if err != nil {
		return "", err
	}

	envelope, err := decodeEnvelope(blob)
	if err != nil {
		return "", fmt.Errorf("failed to decode wallet file: %w", err)
	}
	if !address.Validate(envelope.Address) {
		return "", fmt.Errorf("%w: wallet file holds %q", address.ErrInvalidAddress, envelope.Address)
	}

	return envelope.Address, nil
}

func decodeEnvelope(blob model.EncryptedBlob) (*model.VaultEnvelope, error) {
	raw, err := base64.StdEncoding.DecodeString(string(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to decode blob: %w", err)
	}

	var envelope model.VaultEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if envelope.Version != envelopeVersion || envelope.KDF != kdfScrypt {
		return nil, fmt.Errorf("unsupported envelope version %d (%s)", envelope.Version, envelope.KDF)
	}
	return &envelope, nil
}

// checkSecret verifies the keypair and address invariant of decrypted fields
func checkSecret(secret *model.SecretFields) error {
	priv, err := hex.DecodeString(secret.PrivateKey)
	if err != nil {
		return err
	}
	defer clear(priv)

	key, err := keys.ParsePrivateKey(priv)
	if err != nil {
		return err
	}
	pub := key.PubKey().SerializeCompressed()
	key.Zero()

	if hex.EncodeToString(pub) != secret.PublicKey {
		return errors.New("public key does not match private key")
	}
	if address.Encode(pub) != secret.Address {
		return errors.New("address does not match public key")
	}
	return nil
}
