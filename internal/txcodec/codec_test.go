package txcodec

import (
	"encoding/hex"
	"testing"

	"github.com/AlexZinkM/wart-wallet/internal/model"

	"github.com/stretchr/testify/assert"
)

func exampleTx() model.Transaction {
	return model.Transaction{
		PinHeight: 100,
		NonceID:   1,
		FeeE8:     1000,
		AmountE8:  100000000,
	}
}

func TestEncodeLayout(t *testing.T) {
	tx := exampleTx()
	msg := Encode(&tx)

	assert.Len(t, msg, MessageLen)
	assert.Equal(t, 79, MessageLen)
	assert.Equal(t,
		"0000000000000000000000000000000000000000000000000000000000000000"+ // pinHash
			"00000064"+ // pinHeight
			"00000001"+ // nonceId
			"000000"+ // reserved
			"00000000000003e8"+ // feeE8
			"0000000000000000000000000000000000000000"+ // toAddr
			"0000000005f5e100", // amountE8
		hex.EncodeToString(msg))
}

func TestDigest(t *testing.T) {
	tx := exampleTx()
	d := Digest(&tx)
	assert.Equal(t, "d78e38d6a733122fdc5c69cdcc97c2beae34f35ca72fa7d321a88e359dc00491", hex.EncodeToString(d[:]))
}

func TestEncodeFieldPositions(t *testing.T) {
	tx := model.Transaction{
		PinHeight: 0x01020304,
		NonceID:   0x05060708,
		FeeE8:     0x1112131415161718,
		AmountE8:  0x2122232425262728,
	}
	for i := range tx.PinHash {
		tx.PinHash[i] = 0xaa
	}
	for i := range tx.ToAddress {
		tx.ToAddress[i] = 0xbb
	}
	msg := Encode(&tx)

	assert.Equal(t, tx.PinHash[:], msg[0:32])
	assert.Equal(t, []byte{1, 2, 3, 4}, msg[32:36])
	assert.Equal(t, []byte{5, 6, 7, 8}, msg[36:40])
	assert.Equal(t, []byte{0, 0, 0}, msg[40:43])
	assert.Equal(t, []byte{0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18}, msg[43:51])
	assert.Equal(t, tx.ToAddress[:], msg[51:71])
	assert.Equal(t, []byte{0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27, 0x28}, msg[71:79])
}

func TestDigestChangesWithEveryField(t *testing.T) {
	base := exampleTx()
	baseDigest := Digest(&base)

	mutations := map[string]func(tx *model.Transaction){
		"pinHeight": func(tx *model.Transaction) { tx.PinHeight++ },
		"pinHash":   func(tx *model.Transaction) { tx.PinHash[31] = 1 },
		"nonceId":   func(tx *model.Transaction) { tx.NonceID++ },
		"toAddress": func(tx *model.Transaction) { tx.ToAddress[0] = 1 },
		"amountE8":  func(tx *model.Transaction) { tx.AmountE8++ },
		"feeE8":     func(tx *model.Transaction) { tx.FeeE8++ },
	}
	seen := map[[32]byte]string{baseDigest: "base"}
	for name, mutate := range mutations {
		tx := exampleTx()
		mutate(&tx)
		d := Digest(&tx)
		assert.NotEqual(t, baseDigest, d, name)
		_, dup := seen[d]
		assert.False(t, dup, name)
		seen[d] = name
	}
}
