package warthog

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/AlexZinkM/wart-wallet/internal/crypto"
	"github.com/AlexZinkM/wart-wallet/internal/keys"
	"github.com/AlexZinkM/wart-wallet/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

// Generate creates a wallet from a fresh mnemonic and stages it as pending
func (s *Service) Generate(req *model.GenerateRequest) (*model.WalletResponse, error) {
	w, err := keys.Generate(req.WordCount, req.PathKind)
	if err != nil {
		return nil, err
	}
	return s.stage(w)
}

// Derive restores a wallet from a mnemonic and stages it as pending
func (s *Service) Derive(req *model.DeriveRequest) (*model.WalletResponse, error) {
	w, err := keys.Derive(req.Mnemonic, req.WordCount, req.PathKind)
	if err != nil {
		return nil, err
	}
	return s.stage(w)
}

// Import wraps a raw private key into a wallet and stages it as pending
func (s *Service) Import(req *model.ImportRequest) (*model.WalletResponse, error) {
	w, err := keys.ImportFromPrivateKey(req.PrivateKey)
	if err != nil {
		return nil, err
	}
	return s.stage(w)
}

func (s *Service) stage(w *model.Wallet) (*model.WalletResponse, error) {
	qrCode, err := generateQRCode(w.Address)
	if err != nil {
		w.Wipe()
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	resp := &model.WalletResponse{
		Mnemonic:   w.Mnemonic,
		WordCount:  w.WordCount,
		PathKind:   w.PathKind,
		PrivateKey: hex.EncodeToString(w.PrivateKey),
		PublicKey:  hex.EncodeToString(w.PublicKey),
		Address:    w.Address,
		QR:         qrCode,
	}

	if err := s.session.Stage(w); err != nil {
		w.Wipe()
		return nil, err
	}

	log.Info().Str("address", w.Address).Msg("wallet staged")
	return resp, nil
}

// SaveWallet encrypts the pending wallet, writes it to the wallet file and loads it.
// password must be []byte for security (caller should zero it after use)
func (s *Service) SaveWallet(ctx context.Context, password []byte) (*model.StatusResponse, error) {
	var address string
	err := s.session.Commit(func(w *model.Wallet) error {
		if _, err := crypto.EncryptWallet(s.filePath, w, password, s.params); err != nil {
			if errors.Is(err, crypto.ErrFileExists) {
				return &FileExistsError{Message: "file is not empty"}
			}
			return fmt.Errorf("failed to encrypt wallet: %w", err)
		}
		address = w.Address
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("address", address).Str("file", s.filePath).Msg("wallet saved")
	s.warmUp(ctx)
	return &model.StatusResponse{
		Success: true,
		Message: "Wallet saved successfully",
		Address: address,
	}, nil
}

// Discard drops the pending wallet without saving it
func (s *Service) Discard() error {
	return s.session.Discard()
}

// Unlock decrypts the wallet file and loads it.
// password must be []byte for security (caller should zero it after use)
func (s *Service) Unlock(ctx context.Context, password []byte) (*model.StatusResponse, error) {
	w, err := crypto.DecryptWallet(s.filePath, password)
	if err != nil {
		return nil, err
	}
	if err := s.session.Load(w); err != nil {
		w.Wipe()
		return nil, err
	}

	log.Info().Str("address", w.Address).Msg("wallet unlocked")
	s.warmUp(ctx)
	return &model.StatusResponse{
		Success: true,
		Message: "Wallet unlocked",
		Address: w.Address,
	}, nil
}

// Clear wipes the wallet from memory. The wallet file is left alone.
func (s *Service) Clear() {
	s.session.Clear()
	log.Info().Msg("wallet cleared")
}

// ExportWallet returns the encrypted blob stored in the wallet file
func (s *Service) ExportWallet() (*model.ExportResponse, error) {
	blob, err := crypto.ReadWalletFile(s.filePath)
	if err != nil {
		return nil, err
	}
	return &model.ExportResponse{Blob: string(blob)}, nil
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Get PNG image
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
