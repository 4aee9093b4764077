// Re-encrypts a wallet file under a new password. The new blob gets a fresh salt and nonce.
// Usage: go run ./cmd/rekey -in wallet.wart -out wallet.new.wart
package main

import (
	"bytes"
	"flag"
	"os"

	"github.com/AlexZinkM/wart-wallet/internal/config"
	"github.com/AlexZinkM/wart-wallet/internal/crypto"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	inPath  = flag.String("in", "", "wallet file to read")
	outPath = flag.String("out", "", "wallet file to write (must not exist or be empty)")
	scryptN = flag.Int("scrypt-n", crypto.DefaultParams.N, "scrypt cost for the new blob")
)

func main() {
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *inPath == "" || *outPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	oldPassword, err := config.ReadPassword("Current wallet password: ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read password")
	}
	defer clear(oldPassword)

	wallet, err := crypto.DecryptWallet(*inPath, oldPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to decrypt wallet")
	}
	defer wallet.Wipe()

	newPassword, err := config.ReadPassword("New wallet password: ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read password")
	}
	defer clear(newPassword)

	confirm, err := config.ReadPassword("Repeat new password: ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read password")
	}
	defer clear(confirm)

	if !bytes.Equal(newPassword, confirm) {
		log.Fatal().Msg("passwords do not match")
	}

	params := crypto.DefaultParams
	params.N = *scryptN
	if _, err := crypto.EncryptWallet(*outPath, wallet, newPassword, params); err != nil {
		log.Fatal().Err(err).Msg("failed to write wallet")
	}

	log.Info().Str("address", wallet.Address).Str("out", *outPath).Msg("wallet re-encrypted")
}
