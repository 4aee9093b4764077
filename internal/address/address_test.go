package address

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compressed public key of the scalar 1 (the generator point)
const generatorPubKey = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

func TestEncode(t *testing.T) {
	pub, err := hex.DecodeString(generatorPubKey)
	require.NoError(t, err)

	addr := Encode(pub)
	assert.Equal(t, "751e76e8199196d454941c45d1b3a323f1433bd6ffded884", addr)
	assert.Len(t, addr, Len)
	assert.True(t, Validate(addr))
}

func TestValidate(t *testing.T) {
	valid := "6b58cd2e313545fb6ae599df9a6f18f153fc84b4539a7f54"

	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"valid", valid, true},
		{"empty", "", false},
		{"too short", valid[:47], false},
		{"too long", valid + "0", false},
		{"raw body only", valid[:40], false},
		{"not hex", "zz" + valid[2:], false},
		{"uppercase", strings.ToUpper(valid), false},
		{"body mutated", "7" + valid[1:], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.addr))
		})
	}
}

func TestValidateChecksumMutation(t *testing.T) {
	valid := "751e76e8199196d454941c45d1b3a323f1433bd6ffded884"
	for i := 2 * BodyLen; i < Len; i++ {
		for _, c := range "0123456789abcdef" {
			if byte(c) == valid[i] {
				continue
			}
			mutated := valid[:i] + string(c) + valid[i+1:]
			assert.False(t, Validate(mutated), mutated)
		}
	}
}

func TestRawBody(t *testing.T) {
	body, err := RawBody("751e76e8199196d454941c45d1b3a323f1433bd6ffded884")
	require.NoError(t, err)
	assert.Equal(t, "751e76e8199196d454941c45d1b3a323f1433bd6", hex.EncodeToString(body[:]))

	_, err = RawBody("751e76e8199196d454941c45d1b3a323f1433bd6ffded885")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
