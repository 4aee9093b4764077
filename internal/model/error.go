package model

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes returned in ErrorResponse.Code
const (
	CodeInvalidMnemonic   = "INVALID_MNEMONIC"
	CodeInvalidPrivateKey = "INVALID_PRIVATE_KEY"
	CodeEntropySource     = "ENTROPY_SOURCE"
	CodeInvalidAddress    = "INVALID_ADDRESS"
	CodeDecryption        = "INVALID_PASSWORD"
	CodeInvalidNonce      = "INVALID_NONCE"
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeInvalidFee        = "INVALID_FEE"
	CodeSigning           = "SIGNING_FAILED"
	CodeNodeUnavailable   = "NODE_UNAVAILABLE"
	CodeNodeRejected      = "NODE_REJECTED"
	CodeWalletState       = "WALLET_STATE"
	CodeFileExists        = "FILE_EXISTS"
	CodeCooldown          = "COOLDOWN"
	CodeBadRequest        = "BAD_REQUEST"
	CodeInternal          = "INTERNAL"
)
