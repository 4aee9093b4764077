package keys

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/AlexZinkM/wart-wallet/internal/address"
	"github.com/AlexZinkM/wart-wallet/internal/model"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
)

// CoinType is the registered BIP44 coin type of the network
const CoinType = 2070

var (
	ErrInvalidMnemonic   = errors.New("invalid mnemonic")
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrEntropySource     = errors.New("entropy source unavailable")
	ErrInvalidWordCount  = errors.New("word count must be 12 or 24")
	ErrInvalidPathKind   = errors.New("path kind must be hardened or non-hardened")
)

// entropyBytes maps supported word counts to entropy sizes
var entropyBytes = map[int]int{
	12: 16,
	24: 32,
}

// PathFor returns the derivation path for the given kind:
// m/44'/2070'/0'/0/0 (hardened) or m/44'/2070'/0/0/0 (non-hardened).
func PathFor(kind model.PathKind) (DerivationPath, error) {
	account := uint32(0)
	switch kind {
	case model.PathHardened:
		account += hdkeychain.HardenedKeyStart
	case model.PathNonHardened:
	default:
		return nil, ErrInvalidPathKind
	}
	return DerivationPath{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + CoinType,
		account,
		0,
		0,
	}, nil
}

// Generate creates a wallet from fresh entropy drawn from crypto/rand
func Generate(wordCount int, kind model.PathKind) (*model.Wallet, error) {
	return GenerateFrom(rand.Reader, wordCount, kind)
}

// GenerateFrom creates a wallet from entropy read from r
func GenerateFrom(r io.Reader, wordCount int, kind model.PathKind) (*model.Wallet, error) {
	size, ok := entropyBytes[wordCount]
	if !ok {
		return nil, ErrInvalidWordCount
	}
	path, err := PathFor(kind)
	if err != nil {
		return nil, err
	}

	entropy := make([]byte, size)
	defer clear(entropy)
	if _, err := io.ReadFull(r, entropy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropySource, err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mnemonic: %w", err)
	}

	return fromMnemonic(mnemonic, wordCount, kind, path)
}

// Derive restores a wallet from a mnemonic sentence.
// Word count and checksum failures both surface as ErrInvalidMnemonic.
func Derive(mnemonic string, wordCount int, kind model.PathKind) (*model.Wallet, error) {
	if _, ok := entropyBytes[wordCount]; !ok {
		return nil, ErrInvalidWordCount
	}
	path, err := PathFor(kind)
	if err != nil {
		return nil, err
	}

	words := strings.Fields(strings.ToLower(mnemonic))
	if len(words) != wordCount {
		return nil, fmt.Errorf("%w: must have exactly %d words", ErrInvalidMnemonic, wordCount)
	}

	return fromMnemonic(strings.Join(words, " "), wordCount, kind, path)
}

// ImportFromPrivateKey builds a wallet around a hex encoded 32 byte scalar.
// The returned wallet has no mnemonic and no path.
func ImportFromPrivateKey(hex64 string) (*model.Wallet, error) {
	hex64 = strings.TrimPrefix(strings.TrimSpace(hex64), "0x")
	if len(hex64) != 64 {
		return nil, fmt.Errorf("%w: expected 64 hex characters", ErrInvalidPrivateKey)
	}
	raw, err := hex.DecodeString(hex64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed hex", ErrInvalidPrivateKey)
	}
	defer clear(raw)

	priv, err := ParsePrivateKey(raw)
	if err != nil {
		return nil, err
	}
	return newWallet(priv), nil
}

// ParsePrivateKey checks that raw is a scalar in [1, n-1] and returns the key.
func ParsePrivateKey(raw []byte) (*btcec.PrivateKey, error) {
	if len(raw) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("%w: expected %d bytes", ErrInvalidPrivateKey, btcec.PrivKeyBytesLen)
	}
	// PrivKeyFromBytes reduces modulo n, so range-check first
	k := new(big.Int).SetBytes(raw)
	if k.Sign() == 0 || k.Cmp(btcec.S256().N) >= 0 {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidPrivateKey)
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	return priv, nil
}

func fromMnemonic(mnemonic string, wordCount int, kind model.PathKind, path DerivationPath) (*model.Wallet, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	defer clear(seed)

	priv, err := deriveKey(seed, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}

	w := newWallet(priv)
	w.Mnemonic = mnemonic
	w.WordCount = wordCount
	w.PathKind = kind
	return w, nil
}

func deriveKey(seed []byte, path DerivationPath) (*btcec.PrivateKey, error) {
	node, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}
	for _, step := range path {
		node, err = node.Derive(step)
		if err != nil {
			return nil, err
		}
	}
	return node.ECPrivKey()
}

func newWallet(priv *btcec.PrivateKey) *model.Wallet {
	pub := priv.PubKey().SerializeCompressed()
	return &model.Wallet{
		PrivateKey: priv.Serialize(),
		PublicKey:  pub,
		Address:    address.Encode(pub),
	}
}
