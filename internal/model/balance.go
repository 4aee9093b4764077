package model

// BalanceResponse represents response for GET /wallet/balance
type BalanceResponse struct {
	Address   string  `json:"address"`
	Balance   string  `json:"balance"`             // display units, 8 decimals
	BalanceE8 uint64  `json:"balanceE8"`           // smallest unit
	NextNonce *uint32 `json:"nextNonce,omitempty"` // nil when the nonce space is exhausted
	PinHeight uint32  `json:"pinHeight"`
	PinHash   string  `json:"pinHash"`
	Rate      string  `json:"rate,omitempty"`
	Fiat      string  `json:"fiat,omitempty"`
	Currency  string  `json:"currency,omitempty"`
}
