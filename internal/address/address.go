// Package address implements the network address encoding:
// hex(RIPEMD160(SHA256(pubkey))) followed by the first 4 bytes of
// SHA256 of that hash, 48 lowercase hex characters in total.
package address

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// BodyLen is the raw length of the hash160 part
	BodyLen = 20
	// ChecksumLen is the raw length of the checksum suffix
	ChecksumLen = 4
	// Len is the length of an encoded address in hex characters
	Len = 2 * (BodyLen + ChecksumLen)
)

// ErrInvalidAddress is returned when an address fails validation
var ErrInvalidAddress = errors.New("invalid address")

// Encode derives the address of a serialized public key
func Encode(publicKey []byte) string {
	body := btcutil.Hash160(publicKey)
	return hex.EncodeToString(body) + hex.EncodeToString(checksum(body))
}

// Validate reports whether addr is a canonical address.
// Only lowercase hex is canonical; any uppercase character makes it invalid.
func Validate(addr string) bool {
	if len(addr) != Len {
		return false
	}
	raw, err := hex.DecodeString(addr)
	if err != nil {
		return false
	}
	// byte-exact comparison against the canonical encoding
	want := hex.EncodeToString(raw[:BodyLen]) + hex.EncodeToString(checksum(raw[:BodyLen]))
	return want == addr
}

// RawBody returns the 20 byte hash160 part of a valid address
func RawBody(addr string) ([BodyLen]byte, error) {
	var body [BodyLen]byte
	if !Validate(addr) {
		return body, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	raw, _ := hex.DecodeString(addr[:2*BodyLen])
	copy(body[:], raw)
	return body, nil
}

func checksum(body []byte) []byte {
	return chainhash.HashB(body)[:ChecksumLen]
}
