// Package signer produces recoverable secp256k1 signatures in the
// 65 byte r | s | recoveryId layout expected by the node.
package signer

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/AlexZinkM/wart-wallet/internal/keys"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// SignatureLen is the length of a serialized signature
const SignatureLen = 65

// compact signatures carry 27 + recoveryId in their first byte
const compactMagic = 27

var ErrSigning = errors.New("signing failed")

// Signature is r(32) | s(32) | recoveryId(1)
type Signature [SignatureLen]byte

// R returns the r component
func (s Signature) R() []byte { return s[0:32] }

// S returns the s component
func (s Signature) S() []byte { return s[32:64] }

// RecoveryID returns the recovery byte, 0 or 1
func (s Signature) RecoveryID() byte { return s[64] }

// Hex returns the lowercase hex transport form
func (s Signature) Hex() string { return hex.EncodeToString(s[:]) }

// Sign signs a 32 byte digest with an RFC6979 deterministic nonce.
func Sign(digest [32]byte, privateKey []byte) (Signature, error) {
	var sig Signature

	priv, err := keys.ParsePrivateKey(privateKey)
	if err != nil {
		return sig, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	defer priv.Zero()

	compact := ecdsa.SignCompact(priv, digest[:], false)

	recID, err := RecoveryID(compact[0])
	if err != nil {
		return sig, err
	}

	copy(sig[0:64], compact[1:65])
	sig[64] = recID
	return sig, nil
}

// RecoveryID converts the compact header byte v into a recovery id,
// rejecting anything outside {27, 28}.
func RecoveryID(v byte) (byte, error) {
	if v != compactMagic && v != compactMagic+1 {
		return 0, fmt.Errorf("%w: unexpected recovery header %d", ErrSigning, v)
	}
	return v - compactMagic, nil
}

// Recover returns the compressed public key that produced sig over digest
func Recover(digest [32]byte, sig Signature) ([]byte, error) {
	if sig[64] > 1 {
		return nil, fmt.Errorf("invalid recovery id %d", sig[64])
	}
	compact := make([]byte, SignatureLen)
	compact[0] = compactMagic + sig[64]
	copy(compact[1:], sig[0:64])

	pub, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return nil, err
	}
	return pub.SerializeCompressed(), nil
}

// ParseSignature decodes the hex transport form
func ParseSignature(s string) (Signature, error) {
	var sig Signature
	raw, err := hex.DecodeString(s)
	if err != nil {
		return sig, err
	}
	if len(raw) != SignatureLen {
		return sig, fmt.Errorf("signature must be %d bytes, got %d", SignatureLen, len(raw))
	}
	copy(sig[:], raw)
	return sig, nil
}
