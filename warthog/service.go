// Package warthog implements the wallet operations exposed by the service:
// creating, saving and unlocking a wallet, refreshing its node state and sending WART.
package warthog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AlexZinkM/wart-wallet/internal/crypto"
	"github.com/AlexZinkM/wart-wallet/internal/model"
	"github.com/AlexZinkM/wart-wallet/internal/session"

	"github.com/shopspring/decimal"
)

// warmUpTimeout bounds the refresh that follows loading a wallet
const warmUpTimeout = 10 * time.Second

// Node is the subset of the node API the operations use
type Node interface {
	ChainHead(ctx context.Context) (*model.ChainHead, error)
	AccountState(ctx context.Context, address string) (*model.AccountState, error)
	RoundFee(ctx context.Context, feeWart string) (uint64, error)
	SubmitTransaction(ctx context.Context, req *model.SubmitRequest) (json.RawMessage, error)
}

// RateSource prices one WART in a fiat currency
type RateSource interface {
	Rate(ctx context.Context) (decimal.Decimal, error)
	Currency() string
}

// FileExistsError is an error when file already exists and is not empty
type FileExistsError struct {
	Message string
}

func (e *FileExistsError) Error() string {
	return e.Message
}

// IsFileExistsError checks if error is FileExistsError
func IsFileExistsError(err error) bool {
	var target *FileExistsError
	return errors.As(err, &target)
}

// CooldownError is returned when a send comes too soon after the previous one
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, please wait %v", e.Remaining.Round(time.Second))
}

// Service runs wallet operations against one wallet file, one session and one node
type Service struct {
	filePath string
	session  *session.Session
	node     Node
	rates    RateSource
	params   crypto.Params
	cooldown time.Duration
	now      func() time.Time

	sendMu sync.Mutex
}

// Option customizes a Service
type Option func(*Service)

// WithRates enables fiat valuation of balances
func WithRates(r RateSource) Option {
	return func(s *Service) { s.rates = r }
}

// WithScryptParams sets the KDF costs used for new wallet files
func WithScryptParams(p crypto.Params) Option {
	return func(s *Service) { s.params = p }
}

// WithCooldown sets the minimum delay between two sends
func WithCooldown(d time.Duration) Option {
	return func(s *Service) { s.cooldown = d }
}

// NewService creates a Service. filePath is where the encrypted wallet lives.
func NewService(filePath string, sess *session.Session, node Node, opts ...Option) *Service {
	s := &Service{
		filePath: filePath,
		session:  sess,
		node:     node,
		params:   crypto.DefaultParams,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session exposes the wallet slot the service works on
func (s *Service) Session() *session.Session {
	return s.session
}
