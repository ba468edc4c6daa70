package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/archerypulse/archery-vision/internal/batch"
	"github.com/archerypulse/archery-vision/internal/llm"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Optional .env in the working directory; absence is fine.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env file")
	}

	cfg, err := llm.ConfigFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// SIGINT/SIGTERM stop the batch between images.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := &batch.Runner{
		Dir: ".",
		Factory: func(ctx context.Context) (batch.Engine, error) {
			return llm.NewEngine(ctx, cfg)
		},
		Sampler: batch.NewRSSSampler(),
		Prober:  batch.NewDirSizeProber(),
		Out:     os.Stdout,
	}

	summary, _, err := runner.Run(ctx)
	switch {
	case errors.Is(err, batch.ErrNoImages):
		return
	case errors.Is(err, context.Canceled):
		log.Warn().Msg("batch interrupted")
		return
	case err != nil:
		log.Fatal().Err(err).Msg("batch failed")
	}

	log.Info().
		Str("backend", summary.Backend).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("batch complete")
}
