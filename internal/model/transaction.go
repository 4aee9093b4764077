package model

// Transaction holds the fields that are signed for a transfer.
// Build a fresh one per send attempt.
type Transaction struct {
	PinHeight uint32
	PinHash   [32]byte
	NonceID   uint32
	ToAddress [20]byte // raw address body, checksum excluded
	AmountE8  uint64
	FeeE8     uint64
}

// ChainHead is the chain tip snapshot a transaction is pinned to
type ChainHead struct {
	PinHeight uint32
	PinHash   [32]byte
}

// AccountState is the balance and last used nonce reported by the node
type AccountState struct {
	BalanceE8 uint64
	NonceID   *uint32 // nil when the account never sent anything
}

// SubmitRequest is the body of POST transaction/add
type SubmitRequest struct {
	PinHeight   uint32 `json:"pinHeight"`
	NonceID     uint32 `json:"nonceId"`
	ToAddr      string `json:"toAddr"`
	AmountE8    uint64 `json:"amountE8"`
	FeeE8       uint64 `json:"feeE8"`
	Signature65 string `json:"signature65"`
}
