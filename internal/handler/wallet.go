package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/wart-wallet/internal/address"
	"github.com/AlexZinkM/wart-wallet/internal/client"
	"github.com/AlexZinkM/wart-wallet/internal/common"
	"github.com/AlexZinkM/wart-wallet/internal/crypto"
	"github.com/AlexZinkM/wart-wallet/internal/keys"
	"github.com/AlexZinkM/wart-wallet/internal/model"
	"github.com/AlexZinkM/wart-wallet/internal/session"
	"github.com/AlexZinkM/wart-wallet/internal/signer"
	"github.com/AlexZinkM/wart-wallet/warthog"

	"github.com/rs/zerolog/log"
)

const maxBodySize = 1 << 20

// PasswordFunc returns a copy of the wallet password; the caller zeroes it
type PasswordFunc func() ([]byte, error)

// WalletHandler serves the wallet endpoints
type WalletHandler struct {
	svc      *warthog.Service
	password PasswordFunc
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(svc *warthog.Service, password PasswordFunc) (*WalletHandler, error) {
	if svc == nil {
		return nil, errors.New("wallet service not set")
	}
	if password == nil {
		return nil, errors.New("password source not set")
	}
	return &WalletHandler{svc: svc, password: password}, nil
}

// Generate handles POST /wallet/generate
// @Summary      Generate new wallet
// @Description  Generates a fresh mnemonic and stages the derived wallet until it is saved or discarded
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.GenerateRequest  true  "Word count (12 or 24) and path kind"
// @Success      200      {object}  model.WalletResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /wallet/generate [post]
func (h *WalletHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.GenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.svc.Generate(&req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Derive handles POST /wallet/derive
// @Summary      Restore wallet from mnemonic
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.DeriveRequest  true  "Mnemonic, word count and path kind"
// @Success      200      {object}  model.WalletResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /wallet/derive [post]
func (h *WalletHandler) Derive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.DeriveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.svc.Derive(&req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Import handles POST /wallet/import
// @Summary      Import raw private key
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportRequest  true  "64 hex char private key"
// @Success      200      {object}  model.WalletResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /wallet/import [post]
func (h *WalletHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ImportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.svc.Import(&req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Save handles POST /wallet/save
// @Summary      Save pending wallet
// @Description  Encrypts the pending wallet with the startup password and writes it to the wallet file
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /wallet/save [post]
func (h *WalletHandler) Save(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	// Get password as []byte, use it, then zero it immediately
	passwordBytes, err := h.password()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: model.CodeBadRequest})
		return
	}
	defer clear(passwordBytes) // Always clear password from memory

	resp, err := h.svc.SaveWallet(r.Context(), passwordBytes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Discard handles POST /wallet/discard
// @Summary      Discard pending wallet
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Router       /wallet/discard [post]
func (h *WalletHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	if err := h.svc.Discard(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "Pending wallet discarded"})
}

// Unlock handles POST /wallet/unlock
// @Summary      Unlock wallet file
// @Description  Decrypts the wallet file with the startup password and loads it
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Failure      401  {object}  model.ErrorResponse
// @Router       /wallet/unlock [post]
func (h *WalletHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	passwordBytes, err := h.password()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: model.CodeBadRequest})
		return
	}
	defer clear(passwordBytes)

	resp, err := h.svc.Unlock(r.Context(), passwordBytes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Clear handles POST /wallet/clear
// @Summary      Forget the wallet in memory
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Router       /wallet/clear [post]
func (h *WalletHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	h.svc.Clear()
	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "Wallet cleared"})
}

// Export handles GET /wallet/export
// @Summary      Export encrypted wallet
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.ExportResponse
// @Router       /wallet/export [get]
func (h *WalletHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	resp, err := h.svc.ExportWallet()
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="wallet.wart"`)
	writeJSON(w, http.StatusOK, resp)
}

// GetBalance handles GET /wallet/balance
// @Summary      Get wallet balance
// @Description  Refreshes chain head, balance and nonce from the node
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.BalanceResponse
// @Failure      503  {object}  model.ErrorResponse
// @Router       /wallet/balance [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	balance, err := h.svc.GetBalance(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// Send handles POST /wallet/send
// @Summary      Send WART
// @Description  Signs a transfer with the loaded wallet and submits it to the node
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.SendRequest  true  "Destination, amount and fee"
// @Success      200      {object}  model.SendResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /wallet/send [post]
func (h *WalletHandler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SendRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.svc.Send(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ValidateAddress handles GET /address/validate
// @Summary      Validate address
// @Tags         address
// @Produce      json
// @Param        address  query     string  true  "48 hex char address"
// @Success      200      {object}  model.ValidateResponse
// @Router       /address/validate [get]
func (h *WalletHandler) ValidateAddress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	addr := r.URL.Query().Get("address")
	if addr == "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "Please enter an address", Code: model.CodeBadRequest})
		return
	}
	writeJSON(w, http.StatusOK, model.ValidateResponse{Valid: address.Validate(addr)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: model.CodeBadRequest})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

// classify maps an operation error to an HTTP status and error code.
// Order matters: a fee rounding failure also wraps the node error.
func classify(err error) (int, string) {
	var (
		fileExists *warthog.FileExistsError
		cooldown   *warthog.CooldownError
	)

	switch {
	case errors.Is(err, common.ErrInvalidFee):
		return http.StatusBadRequest, model.CodeInvalidFee
	case errors.Is(err, common.ErrInvalidAmount):
		return http.StatusBadRequest, model.CodeInvalidAmount
	case errors.Is(err, keys.ErrInvalidMnemonic):
		return http.StatusBadRequest, model.CodeInvalidMnemonic
	case errors.Is(err, keys.ErrInvalidPrivateKey):
		return http.StatusBadRequest, model.CodeInvalidPrivateKey
	case errors.Is(err, keys.ErrInvalidWordCount), errors.Is(err, keys.ErrInvalidPathKind):
		return http.StatusBadRequest, model.CodeBadRequest
	case errors.Is(err, address.ErrInvalidAddress):
		return http.StatusBadRequest, model.CodeInvalidAddress
	case errors.Is(err, crypto.ErrDecryption):
		return http.StatusUnauthorized, model.CodeDecryption
	case errors.Is(err, crypto.ErrWalletNotFound):
		return http.StatusNotFound, model.CodeWalletState
	case errors.As(err, &fileExists):
		return http.StatusConflict, model.CodeFileExists
	case errors.As(err, &cooldown):
		return http.StatusTooManyRequests, model.CodeCooldown
	case errors.Is(err, session.ErrWalletLoaded),
		errors.Is(err, session.ErrNoPendingWallet),
		errors.Is(err, session.ErrNoWallet),
		errors.Is(err, session.ErrNotReady):
		return http.StatusConflict, model.CodeWalletState
	case errors.Is(err, client.ErrInvalidNonce):
		return http.StatusBadGateway, model.CodeInvalidNonce
	case errors.Is(err, client.ErrNodeRejected):
		return http.StatusUnprocessableEntity, model.CodeNodeRejected
	case errors.Is(err, client.ErrNodeUnavailable):
		return http.StatusServiceUnavailable, model.CodeNodeUnavailable
	case errors.Is(err, keys.ErrEntropySource):
		return http.StatusInternalServerError, model.CodeEntropySource
	case errors.Is(err, signer.ErrSigning):
		return http.StatusInternalServerError, model.CodeSigning
	default:
		return http.StatusInternalServerError, model.CodeInternal
	}
}
