package warthog

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/wart-wallet/internal/address"
	"github.com/AlexZinkM/wart-wallet/internal/client"
	"github.com/AlexZinkM/wart-wallet/internal/common"
	"github.com/AlexZinkM/wart-wallet/internal/model"
	"github.com/AlexZinkM/wart-wallet/internal/session"
	"github.com/AlexZinkM/wart-wallet/internal/signer"
	"github.com/AlexZinkM/wart-wallet/internal/txcodec"

	"github.com/rs/zerolog/log"
)

// Send builds, signs and submits a transfer from the loaded wallet.
// The chain head and nonce come from the last successful Refresh.
func (s *Service) Send(ctx context.Context, req *model.SendRequest) (*model.SendResponse, error) {
	// one send at a time keeps nonces and the cooldown consistent
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.cooldown > 0 {
		if last := s.session.LastSend(); !last.IsZero() {
			if elapsed := s.now().Sub(last); elapsed < s.cooldown {
				return nil, &CooldownError{Remaining: s.cooldown - elapsed}
			}
		}
	}

	toBody, err := address.RawBody(req.ToAddr)
	if err != nil {
		return nil, err
	}

	amountE8, err := common.WartToE8(req.Amount)
	if err != nil {
		return nil, err
	}

	feeE8, err := s.roundFee(ctx, req.Fee)
	if err != nil {
		return nil, err
	}

	sc, err := s.session.SendContext()
	if err != nil {
		if errors.Is(err, session.ErrNonceExhausted) {
			return nil, fmt.Errorf("%w: %w", client.ErrInvalidNonce, err)
		}
		return nil, err
	}
	defer sc.Wallet.Wipe()

	tx := &model.Transaction{
		PinHeight: sc.Head.PinHeight,
		PinHash:   sc.Head.PinHash,
		NonceID:   sc.NextNonce,
		ToAddress: toBody,
		AmountE8:  amountE8,
		FeeE8:     feeE8,
	}
	digest := txcodec.Digest(tx)

	sig, err := signer.Sign(digest, sc.Wallet.PrivateKey)
	if err != nil {
		return nil, err
	}

	payload, err := s.node.SubmitTransaction(ctx, &model.SubmitRequest{
		PinHeight:   tx.PinHeight,
		NonceID:     tx.NonceID,
		ToAddr:      req.ToAddr,
		AmountE8:    tx.AmountE8,
		FeeE8:       tx.FeeE8,
		Signature65: sig.Hex(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	s.session.MarkSent(s.now(), tx.NonceID)

	txHash := hex.EncodeToString(digest[:])
	log.Info().
		Str("txHash", txHash).
		Str("to", req.ToAddr).
		Uint64("amountE8", tx.AmountE8).
		Uint64("feeE8", tx.FeeE8).
		Uint32("nonceId", tx.NonceID).
		Msg("transaction submitted")

	if _, err := s.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("refresh after send failed")
	}

	return &model.SendResponse{
		TxHash:    txHash,
		NonceID:   tx.NonceID,
		AmountE8:  tx.AmountE8,
		FeeE8:     tx.FeeE8,
		Signature: sig.Hex(),
		Node:      payload,
	}, nil
}

// roundFee checks the fee locally and lets the node round it to its fee encoding.
// Every failure, including an unreachable node, is an invalid fee.
func (s *Service) roundFee(ctx context.Context, fee string) (uint64, error) {
	fee = strings.TrimSpace(fee)
	if err := common.ValidateFee(fee); err != nil {
		return 0, err
	}

	feeE8, err := s.node.RoundFee(ctx, fee)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to round: %w", common.ErrInvalidFee, err)
	}
	if feeE8 == 0 {
		return 0, fmt.Errorf("%w: rounds to zero", common.ErrInvalidFee)
	}
	return feeE8, nil
}
