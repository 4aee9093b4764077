package model

// GenerateRequest represents request for POST /wallet/generate
type GenerateRequest struct {
	WordCount int      `json:"wordCount"`
	PathKind  PathKind `json:"pathKind"`
}

// DeriveRequest represents request for POST /wallet/derive
type DeriveRequest struct {
	Mnemonic  string   `json:"mnemonic"`
	WordCount int      `json:"wordCount"`
	PathKind  PathKind `json:"pathKind"`
}

// ImportRequest represents request for POST /wallet/import
type ImportRequest struct {
	PrivateKey string `json:"privateKey"`
}

// WalletResponse is returned once after generate/derive/import so the user can back the wallet up
type WalletResponse struct {
	Mnemonic   string   `json:"mnemonic,omitempty"`
	WordCount  int      `json:"wordCount,omitempty"`
	PathKind   PathKind `json:"pathKind,omitempty"`
	PrivateKey string   `json:"privateKey"`
	PublicKey  string   `json:"publicKey"`
	Address    string   `json:"address"`
	QR         string   `json:"QR,omitempty"` // base64 PNG of the address
}

// StatusResponse is a generic acknowledgement
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Address string `json:"address,omitempty"`
}

// ExportResponse carries the encrypted wallet blob
type ExportResponse struct {
	Blob string `json:"blob"`
}

// ValidateResponse represents response for GET /address/validate
type ValidateResponse struct {
	Valid bool `json:"valid"`
}
