// Package session holds the single wallet slot of a running wallet service
// together with the node state a send depends on.
package session

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/AlexZinkM/wart-wallet/internal/model"
)

// State of the wallet slot
type State int

const (
	// StateUnloaded means no wallet is in memory
	StateUnloaded State = iota
	// StatePending is a generated, derived or imported wallet that has not been saved yet
	StatePending
	// StateLoaded is a saved or unlocked wallet that can send
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoaded:
		return "loaded"
	default:
		return "unloaded"
	}
}

var (
	ErrWalletLoaded    = errors.New("a wallet is already loaded, clear it first")
	ErrNoPendingWallet = errors.New("no pending wallet")
	ErrNoWallet        = errors.New("no wallet loaded")
	ErrNotReady        = errors.New("nonce or chain head not available, refresh balance and try again")
	ErrNonceExhausted  = errors.New("nonce space exhausted")
)

// Session is the one wallet slot. All methods are safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	state    State
	wallet   *model.Wallet
	head     *model.ChainHead
	account  *model.AccountState
	lastSend time.Time
	// sent is the last nonce submitted from this slot; it outlives Invalidate
	sent     *uint32
}

// New returns an empty session
func New() *Session {
	return &Session{}
}

// State returns the current slot state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Stage puts a freshly created wallet into the slot as pending.
// A previous pending wallet is wiped and replaced.
func (s *Session) Stage(w *model.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoaded {
		return ErrWalletLoaded
	}
	s.reset()
	s.wallet = w
	s.state = StatePending
	return nil
}

// Commit hands the pending wallet to persist and promotes it to loaded once persist succeeds.
// On error the wallet stays pending.
func (s *Session) Commit(persist func(w *model.Wallet) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePending {
		return ErrNoPendingWallet
	}
	if err := persist(s.wallet); err != nil {
		return err
	}
	s.state = StateLoaded
	return nil
}

// Discard drops the pending wallet
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePending {
		return ErrNoPendingWallet
	}
	s.reset()
	return nil
}

// Load installs an unlocked wallet. A pending wallet is replaced.
func (s *Session) Load(w *model.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoaded {
		return ErrWalletLoaded
	}
	s.reset()
	s.wallet = w
	s.state = StateLoaded
	return nil
}

// Clear wipes whatever the slot holds. Readers never see a half cleared slot.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	if s.wallet != nil {
		s.wallet.Wipe()
	}
	s.wallet = nil
	s.head = nil
	s.account = nil
	s.sent = nil
	s.state = StateUnloaded
}

// Wallet returns a copy of the wallet in the slot (pending or loaded).
// The caller should Wipe the copy when done.
func (s *Session) Wallet() (*model.Wallet, State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.wallet == nil {
		return nil, s.state, ErrNoWallet
	}
	return s.wallet.Clone(), s.state, nil
}

// Address returns the address of the loaded wallet
func (s *Session) Address() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateLoaded {
		return "", ErrNoWallet
	}
	return s.wallet.Address, nil
}

// Update stores a fresh chain head and account state for address and returns
// the stored account. A node nonce behind the last locally submitted one is
// replaced by the local one. It is a no-op (returning false) when the loaded
// wallet changed meanwhile.
func (s *Session) Update(address string, head *model.ChainHead, account *model.AccountState) (*model.AccountState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLoaded || s.wallet.Address != address {
		return nil, false
	}
	if s.sent != nil && (account.NonceID == nil || *account.NonceID < *s.sent) {
		merged := *account
		sent := *s.sent
		merged.NonceID = &sent
		account = &merged
	}
	s.head = head
	s.account = account
	return account, true
}

// Invalidate forgets the chain head and nonce, blocking sends until the next Update.
// The wallet itself is kept.
func (s *Session) Invalidate(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wallet != nil && s.wallet.Address == address {
		s.head = nil
		s.account = nil
	}
}

// Snapshot is a read-only view of the slot
type Snapshot struct {
	State   State
	Address string
	Head    *model.ChainHead
	Account *model.AccountState
}

// Snapshot returns the current view of the slot
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{State: s.state, Head: s.head, Account: s.account}
	if s.wallet != nil {
		snap.Address = s.wallet.Address
	}
	return snap
}

// SendContext is everything needed to build and sign one transaction
type SendContext struct {
	Wallet    *model.Wallet // copy, Wipe after use
	Head      model.ChainHead
	NextNonce uint32
}

// SendContext returns the loaded wallet with the pinned chain head and the next nonce
func (s *Session) SendContext() (*SendContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateLoaded {
		return nil, ErrNoWallet
	}
	if s.head == nil || s.account == nil {
		return nil, ErrNotReady
	}
	nonce, err := NextNonce(s.account)
	if err != nil {
		return nil, err
	}
	return &SendContext{
		Wallet:    s.wallet.Clone(),
		Head:      *s.head,
		NextNonce: nonce,
	}, nil
}

// NextNonce is the nonce the next transaction must use: 0 for a fresh account, last+1 otherwise
func NextNonce(account *model.AccountState) (uint32, error) {
	if account.NonceID == nil {
		return 0, nil
	}
	if *account.NonceID == math.MaxUint32 {
		return 0, ErrNonceExhausted
	}
	return *account.NonceID + 1, nil
}

// LastSend returns when the last transaction was submitted
func (s *Session) LastSend() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSend
}

// MarkSent records a submitted transaction and consumes its nonce locally,
// so a second send before the next refresh does not reuse it.
func (s *Session) MarkSent(at time.Time, nonce uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSend = at
	s.sent = &nonce
	if s.account != nil {
		account := *s.account
		account.NonceID = &nonce
		s.account = &account
	}
}
