package warthog

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/AlexZinkM/wart-wallet/internal/common"
	"github.com/AlexZinkM/wart-wallet/internal/crypto"
	"github.com/AlexZinkM/wart-wallet/internal/model"
	"github.com/AlexZinkM/wart-wallet/internal/session"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// GetBalance returns balance, next nonce and chain head for the wallet.
// With a loaded wallet this is a Refresh; otherwise the address is read from
// the wallet file, which needs no password, and nothing is stored.
func (s *Service) GetBalance(ctx context.Context) (*model.BalanceResponse, error) {
	if s.session.State() == session.StateLoaded {
		return s.Refresh(ctx)
	}

	address, err := crypto.ReadWalletAddress(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet address: %w", err)
	}

	head, account, err := s.fetchState(ctx, address)
	if err != nil {
		return nil, err
	}
	return s.balanceResponse(ctx, address, head, account), nil
}

// Refresh fetches chain head and account state for the loaded wallet and stores them.
// On failure the stored state is invalidated, which blocks sending, but the wallet stays loaded.
func (s *Service) Refresh(ctx context.Context) (*model.BalanceResponse, error) {
	address, err := s.session.Address()
	if err != nil {
		return nil, err
	}

	head, account, err := s.fetchState(ctx, address)
	if err != nil {
		s.session.Invalidate(address)
		log.Warn().Err(err).Str("address", address).Msg("refresh failed, sending blocked until next refresh")
		return nil, err
	}

	stored, ok := s.session.Update(address, head, account)
	if !ok {
		return nil, fmt.Errorf("%w: wallet changed during refresh", session.ErrNoWallet)
	}
	return s.balanceResponse(ctx, address, head, stored), nil
}

// warmUp refreshes a freshly loaded wallet so it can send without a balance call first.
// Failures are logged by Refresh and leave sending blocked until the next refresh.
func (s *Service) warmUp(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, warmUpTimeout)
	defer cancel()
	_, _ = s.Refresh(ctx)
}

func (s *Service) fetchState(ctx context.Context, address string) (*model.ChainHead, *model.AccountState, error) {
	var (
		head    *model.ChainHead
		account *model.AccountState
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		head, err = s.node.ChainHead(gctx)
		if err != nil {
			return fmt.Errorf("failed to get chain head: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		account, err = s.node.AccountState(gctx, address)
		if err != nil {
			return fmt.Errorf("failed to get balance: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return head, account, nil
}

func (s *Service) balanceResponse(ctx context.Context, address string, head *model.ChainHead, account *model.AccountState) *model.BalanceResponse {
	resp := &model.BalanceResponse{
		Address:   address,
		Balance:   common.E8ToWart(account.BalanceE8),
		BalanceE8: account.BalanceE8,
		PinHeight: head.PinHeight,
		PinHash:   hex.EncodeToString(head.PinHash[:]),
	}
	if nonce, err := session.NextNonce(account); err == nil {
		resp.NextNonce = &nonce
	}

	if s.rates == nil || s.rates.Currency() == "" {
		return resp
	}

	// a missing rate never fails the balance
	rate, err := s.rates.Rate(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to get rate")
		return resp
	}

	wart := decimal.NewFromBigInt(new(big.Int).SetUint64(account.BalanceE8), -common.WartDecimals)
	resp.Rate = rate.String()
	resp.Fiat = wart.Mul(rate).StringFixed(2)
	resp.Currency = s.rates.Currency()
	return resp
}
