package model

import (
	"encoding/hex"
)

// PathKind selects the hardened or non-hardened account level of the derivation path
type PathKind string

const (
	PathHardened    PathKind = "hardened"
	PathNonHardened PathKind = "non-hardened"
)

// Valid reports whether k is a known path kind
func (k PathKind) Valid() bool {
	return k == PathHardened || k == PathNonHardened
}

// Wallet is a derived or imported keypair together with its address.
// It is treated as a value: replace it, never patch individual fields.
type Wallet struct {
	Mnemonic   string   // empty for imported keys
	WordCount  int      // 0 for imported keys
	PathKind   PathKind // empty for imported keys
	PrivateKey []byte   // 32 bytes
	PublicKey  []byte   // 33 bytes, compressed point
	Address    string   // 48 lowercase hex chars
}

// Secrets returns the subset of the wallet that goes into the vault
func (w *Wallet) Secrets() SecretFields {
	return SecretFields{
		PrivateKey: hex.EncodeToString(w.PrivateKey),
		PublicKey:  hex.EncodeToString(w.PublicKey),
		Address:    w.Address,
	}
}

// Clone returns a deep copy; the caller owns (and should Wipe) the copy
func (w *Wallet) Clone() *Wallet {
	c := *w
	c.PrivateKey = append([]byte(nil), w.PrivateKey...)
	c.PublicKey = append([]byte(nil), w.PublicKey...)
	return &c
}

// Wipe zeroes key material held by the wallet
func (w *Wallet) Wipe() {
	clear(w.PrivateKey)
	w.Mnemonic = ""
}

// SecretFields is the plaintext stored inside an encrypted blob
type SecretFields struct {
	PrivateKey string `json:"privateKey"` // 64 hex chars
	PublicKey  string `json:"publicKey"`  // 66 hex chars
	Address    string `json:"address"`
}

// EncryptedBlob is the opaque string written to the wallet file
type EncryptedBlob string

// VaultEnvelope is the decoded form of an EncryptedBlob
type VaultEnvelope struct {
	Version    int    `json:"version"`
	KDF        string `json:"kdf"`
	N          int    `json:"n"`
	R          int    `json:"r"`
	P          int    `json:"p"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
	Address    string `json:"address"` // clear-text copy, lets balance work while locked
}
