// Package txcodec serializes a transfer into the fixed 79 byte message that
// gets signed. Field order and widths are part of the wire contract:
//
//	pinHash(32) | pinHeight(4) | nonceId(4) | reserved(3) | feeE8(8) | toAddr(20) | amountE8(8)
//
// All integers are big-endian.
package txcodec

import (
	"encoding/binary"

	"github.com/AlexZinkM/wart-wallet/internal/model"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MessageLen is the length of an encoded transaction message
const MessageLen = 32 + 4 + 4 + 3 + 8 + 20 + 8

// Encode returns the canonical message bytes of tx
func Encode(tx *model.Transaction) []byte {
	msg := make([]byte, 0, MessageLen)
	msg = append(msg, tx.PinHash[:]...)
	msg = binary.BigEndian.AppendUint32(msg, tx.PinHeight)
	msg = binary.BigEndian.AppendUint32(msg, tx.NonceID)
	msg = append(msg, 0, 0, 0) // reserved
	msg = binary.BigEndian.AppendUint64(msg, tx.FeeE8)
	msg = append(msg, tx.ToAddress[:]...)
	msg = binary.BigEndian.AppendUint64(msg, tx.AmountE8)
	return msg
}

// Digest returns SHA256 of the encoded message
func Digest(tx *model.Transaction) [32]byte {
	return chainhash.HashH(Encode(tx))
}
