// Warthog wallet service.
// Usage: WALLET_FILE_PATH=wallet.wart go run ./cmd/wartwallet
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexZinkM/wart-wallet/internal/api"
	"github.com/AlexZinkM/wart-wallet/internal/client"
	"github.com/AlexZinkM/wart-wallet/internal/config"
	"github.com/AlexZinkM/wart-wallet/internal/crypto"
	"github.com/AlexZinkM/wart-wallet/internal/handler"
	"github.com/AlexZinkM/wart-wallet/internal/session"
	"github.com/AlexZinkM/wart-wallet/warthog"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := config.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg := config.Get()

	setupLogger(cfg.LogLevel, cfg.LogPretty)

	if err := config.PromptForPassword(); err != nil {
		log.Fatal().Err(err).Msg("failed to read password")
	}

	node := client.NewNodeClient(config.GetNodeURL(), cfg.NodeTimeout, client.WithRateLimit(cfg.NodeRateLimit))

	opts := []warthog.Option{
		warthog.WithScryptParams(crypto.Params{N: cfg.ScryptN, R: crypto.DefaultParams.R, P: crypto.DefaultParams.P}),
		warthog.WithCooldown(config.GetPayCooldown()),
	}
	if cfg.RateCurrency != "" {
		opts = append(opts, warthog.WithRates(client.NewRateClient(cfg.RateCoinID, cfg.RateCurrency)))
	}
	svc := warthog.NewService(config.GetWalletFilePath(), session.New(), node, opts...)

	walletHandler, err := handler.NewWalletHandler(svc, config.GetPasswordBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create handler")
	}

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           api.SetupRouter(walletHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("node", node.BaseURL()).
			Str("wallet", config.GetWalletFilePath()).
			Msg("wallet service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("received interrupt signal, shutting down...")

	// wipe keys before exiting
	svc.Clear()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func setupLogger(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
