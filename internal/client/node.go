package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AlexZinkM/wart-wallet/internal/model"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
)

const (
	defaultNodeURL  = "https://node.wartscan.io"
	maxResponseSize = 1 << 20
)

var (
	// ErrNodeUnavailable covers network failures, timeouts and unusable node responses
	ErrNodeUnavailable = errors.New("node unavailable")
	// ErrNodeRejected is matched by RejectedError
	ErrNodeRejected = errors.New("node rejected request")
	// ErrInvalidNonce is returned when the node reports a nonce outside the uint32 range
	ErrInvalidNonce = errors.New("invalid nonceId: must be a 32-bit unsigned integer")
)

// RejectedError is a non-success answer from the node
type RejectedError struct {
	Status  int
	Code    int64
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("node rejected request: status %d", e.Status)
	}
	return fmt.Sprintf("node rejected request: status %d: %s", e.Status, e.Message)
}

// Is makes errors.Is(err, ErrNodeRejected) hold for any RejectedError
func (e *RejectedError) Is(target error) bool {
	return target == ErrNodeRejected
}

// NodeClient talks to a Warthog node over its JSON HTTP API
type NodeClient struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
}

// Option customizes a NodeClient
type Option func(*NodeClient)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(n *NodeClient) { n.client = c }
}

// WithRateLimit caps outgoing requests per second. Zero or less disables the cap.
func WithRateLimit(perSecond int) Option {
	return func(n *NodeClient) {
		if perSecond <= 0 {
			n.limiter = ratelimit.NewUnlimited()
			return
		}
		n.limiter = ratelimit.New(perSecond)
	}
}

// NewNodeClient creates a client for the node at baseURL (path segments are appended to it).
// An empty baseURL selects the public wartscan node.
func NewNodeClient(baseURL string, timeout time.Duration, opts ...Option) *NodeClient {
	if baseURL == "" {
		baseURL = defaultNodeURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	n := &NodeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		cb:      newCircuitBreaker(),
		limiter: ratelimit.NewUnlimited(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// BaseURL returns the node the client talks to
func (n *NodeClient) BaseURL() string {
	return n.baseURL
}

type chainHeadPayload struct {
	PinHeight json.Number `json:"pinHeight"`
	PinHash   string      `json:"pinHash"`
}

// ChainHead fetches the pin height and pin hash new transactions must reference
func (n *NodeClient) ChainHead(ctx context.Context) (*model.ChainHead, error) {
	var payload chainHeadPayload
	if err := n.getJSON(ctx, "chain/head", &payload); err != nil {
		return nil, err
	}

	height, err := strconv.ParseUint(payload.PinHeight.String(), 10, 32)
	if err != nil {
		return nil, errors.Wrapf(ErrNodeUnavailable, "malformed pinHeight %q", payload.PinHeight)
	}

	hash, err := hex.DecodeString(strings.TrimPrefix(payload.PinHash, "0x"))
	if err != nil || len(hash) != 32 {
		return nil, errors.Wrapf(ErrNodeUnavailable, "malformed pinHash %q", payload.PinHash)
	}

	head := &model.ChainHead{PinHeight: uint32(height)}
	copy(head.PinHash[:], hash)
	return head, nil
}

type balancePayload struct {
	Balance   json.Number  `json:"balance"`
	BalanceE8 json.Number  `json:"balanceE8"`
	NonceID   *json.Number `json:"nonceId"`
}

// AccountState fetches the balance (E8) and last used nonce of address.
// A missing nonceId means the account has not sent anything yet.
func (n *NodeClient) AccountState(ctx context.Context, address string) (*model.AccountState, error) {
	var payload balancePayload
	if err := n.getJSON(ctx, "account/"+url.PathEscape(address)+"/balance", &payload); err != nil {
		return nil, err
	}

	state := &model.AccountState{}

	raw := payload.BalanceE8
	if raw == "" {
		raw = payload.Balance
	}
	if raw != "" {
		balance, err := strconv.ParseUint(raw.String(), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrNodeUnavailable, "malformed balance %q", raw)
		}
		state.BalanceE8 = balance
	}

	if payload.NonceID != nil {
		nonce, err := ParseNonce(payload.NonceID.String())
		if err != nil {
			return nil, err
		}
		state.NonceID = &nonce
	}

	return state, nil
}

// ParseNonce validates a nonceId reported by the node: 0 <= n <= 4294967295
func ParseNonce(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidNonce, "got %q", s)
	}
	return uint32(v), nil
}

type roundedFeePayload struct {
	RoundedE8 json.Number `json:"roundedE8"`
}

// RoundFee asks the node to round a decimal WART fee to its 16 bit fee encoding, in E8
func (n *NodeClient) RoundFee(ctx context.Context, feeWart string) (uint64, error) {
	var payload roundedFeePayload
	if err := n.getJSON(ctx, "tools/encode16bit/from_string/"+url.PathEscape(feeWart), &payload); err != nil {
		return 0, err
	}

	rounded, err := strconv.ParseUint(payload.RoundedE8.String(), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrNodeUnavailable, "malformed roundedE8 %q", payload.RoundedE8)
	}
	return rounded, nil
}

// SubmitTransaction posts a signed transaction and returns the node's acceptance payload
func (n *NodeClient) SubmitTransaction(ctx context.Context, req *model.SubmitRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal transaction")
	}
	return n.do(ctx, http.MethodPost, "transaction/add", body)
}

func (n *NodeClient) getJSON(ctx context.Context, path string, out interface{}) error {
	payload, err := n.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrapf(ErrNodeUnavailable, "failed to decode %s: %v", path, err)
	}
	return nil
}

// do performs one request through the limiter and the circuit breaker and
// returns the response payload with any {data: ...} envelope removed.
func (n *NodeClient) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	n.limiter.Take()

	res, err := n.cb.Execute(func() (interface{}, error) {
		return n.roundTrip(ctx, method, path, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.Wrapf(ErrNodeUnavailable, "%s %s: %v", method, path, err)
		}
		return nil, err
	}
	return res.(json.RawMessage), nil
}

func (n *NodeClient) roundTrip(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, n.baseURL+"/"+path, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s request", path)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrNodeUnavailable, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrapf(ErrNodeUnavailable, "failed to read %s response: %v", path, err)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("node request")

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, errors.Wrapf(ErrNodeUnavailable, "%s %s: status %d", method, path, resp.StatusCode)
	}

	return unwrapEnvelope(resp.StatusCode, raw)
}

// nodeEnvelope is the optional wrapper some nodes put around payloads:
// {"code": 0, "data": {...}} on success, {"code": n, "error": "..."} on failure.
type nodeEnvelope struct {
	Code    *int64          `json:"code"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// unwrapEnvelope normalizes both {data: T} and bare T into T
func unwrapEnvelope(status int, raw []byte) (json.RawMessage, error) {
	var env nodeEnvelope
	isObject := json.Unmarshal(raw, &env) == nil

	if status < 200 || status >= 300 || (isObject && env.Code != nil && *env.Code != 0) {
		rejected := &RejectedError{Status: status}
		if isObject {
			if env.Code != nil {
				rejected.Code = *env.Code
			}
			rejected.Message = env.Error
			if rejected.Message == "" {
				rejected.Message = env.Message
			}
		}
		return nil, rejected
	}

	if isObject && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		return env.Data, nil
	}
	return raw, nil
}

func newCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "node",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a rejected request proves the node is up
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNodeRejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				log.Warn().Msg("node seems down, stop allowing requests")
			}
			if from == gobreaker.StateOpen && to == gobreaker.StateHalfOpen {
				log.Info().Msg("checking node status")
			}
			if from == gobreaker.StateHalfOpen && to == gobreaker.StateClosed {
				log.Info().Msg("node seems ok, restart allowing requests")
			}
		},
	})
}
