package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/linguamates/callrelay/internal/adapters/http"
	"github.com/linguamates/callrelay/internal/adapters/openai"
	"github.com/linguamates/callrelay/internal/adapters/ws"
	"github.com/linguamates/callrelay/internal/app"
	"github.com/linguamates/callrelay/internal/config"
	"github.com/linguamates/callrelay/internal/segments"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	store, err := segments.NewStore(cfg.SegmentDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open segment store")
	}

	speech := openai.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.TranscribeModel, cfg.ChatModel)
	if cfg.OpenAIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set, translation will fail")
	}

	promReg := prometheus.NewRegistry()
	metrics := app.NewMetrics(promReg)

	table := ws.NewTable()
	coord := app.NewCoordinator(app.NewRegistry(), table, metrics)
	pipeline := app.NewPipeline(coord, store, speech, speech, cfg.SegmentTimeout, metrics)
	ctl := ws.NewController(coord, pipeline, table, cfg.ReadLimit, cfg.PingPeriod)
	transcribe := &router.TranscribeHandler{Store: store, STT: speech}

	r := router.SetupRouter(ctx, cfg, coord, ctl, transcribe, promReg)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("call relay started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
