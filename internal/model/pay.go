package model

import "encoding/json"

// SendRequest represents request for POST /wallet/send
type SendRequest struct {
	ToAddr string `json:"toAddr"`
	Amount string `json:"amount"` // display units, e.g. "1.5"
	Fee    string `json:"fee"`    // display units, rounded by the node
}

// SendResponse represents response for POST /wallet/send
type SendResponse struct {
	TxHash    string          `json:"txHash"` // sha256 of the signed message
	NonceID   uint32          `json:"nonceId"`
	AmountE8  uint64          `json:"amountE8"`
	FeeE8     uint64          `json:"feeE8"`
	Signature string          `json:"signature65"`
	Node      json.RawMessage `json:"node,omitempty"` // node acceptance payload
}
