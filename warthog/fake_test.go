package warthog

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/AlexZinkM/wart-wallet/internal/model"

	"github.com/shopspring/decimal"
)

type fakeNode struct {
	mu sync.Mutex

	head      model.ChainHead
	account   model.AccountState
	roundedE8 uint64
	// lagging keeps the account nonce unchanged after a submit
	lagging   bool
	// onAccount runs inside AccountState, before it answers
	onAccount func()

	headErr    error
	accountErr error
	feeErr     error
	submitErr  error

	feeQueries []string
	submitted  []model.SubmitRequest
}

func newFakeNode() *fakeNode {
	n := &fakeNode{
		head:      model.ChainHead{PinHeight: 1000},
		account:   model.AccountState{BalanceE8: 250000000},
		roundedE8: 1000000,
	}
	for i := range n.head.PinHash {
		n.head.PinHash[i] = byte(i)
	}
	return n
}

func (n *fakeNode) ChainHead(context.Context) (*model.ChainHead, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.headErr != nil {
		return nil, n.headErr
	}
	head := n.head
	return &head, nil
}

func (n *fakeNode) AccountState(context.Context, string) (*model.AccountState, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.onAccount != nil {
		n.onAccount()
	}
	if n.accountErr != nil {
		return nil, n.accountErr
	}
	account := n.account
	return &account, nil
}

func (n *fakeNode) RoundFee(_ context.Context, fee string) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.feeQueries = append(n.feeQueries, fee)
	if n.feeErr != nil {
		return 0, n.feeErr
	}
	return n.roundedE8, nil
}

func (n *fakeNode) SubmitTransaction(_ context.Context, req *model.SubmitRequest) (json.RawMessage, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.submitErr != nil {
		return nil, n.submitErr
	}
	n.submitted = append(n.submitted, *req)
	if !n.lagging {
		nonce := req.NonceID
		n.account.NonceID = &nonce
	}
	return json.RawMessage(`{"txHash":"ok"}`), nil
}

func (n *fakeNode) set(fn func(n *fakeNode)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fn(n)
}

type fakeRates struct {
	rate     decimal.Decimal
	err      error
	currency string
}

func (r *fakeRates) Rate(context.Context) (decimal.Decimal, error) {
	return r.rate, r.err
}

func (r *fakeRates) Currency() string {
	return r.currency
}
