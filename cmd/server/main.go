package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/medaid-ai/medaid/internal/api"
	"github.com/medaid-ai/medaid/internal/config"
	"github.com/medaid-ai/medaid/internal/core"
	"github.com/medaid-ai/medaid/internal/logger"
	"github.com/medaid-ai/medaid/internal/metrics"
	"github.com/medaid-ai/medaid/internal/web"
)

// bodySlack covers the JSON envelope around a base64 audio payload.
const bodySlack = 64 << 10

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}

	// Setup logging
	log, closer, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(log)
	log.Debug("Service starting in debug mode")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	prompts, err := core.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize model clients
	llm, err := core.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.ChatModel, prompts, log)
	if err != nil {
		return err
	}
	defer llm.Close()

	synth, err := core.NewGeminiSynthesizer(ctx, cfg.GeminiAPIKey, cfg.TTSModel, cfg.TTSVoice, log)
	if err != nil {
		return err
	}

	advice := core.NewAdviceService(llm, m, log)
	speech := core.NewSpeechService(synth, cfg.TTSConcurrency, m, log)
	transcription := core.NewTranscriptionService(llm, cfg.MaxAudioBytes, m, log)

	router := api.NewRouter(api.RouterConfig{
		API:          api.NewAPIHandler(advice, speech, transcription, log),
		Web:          web.NewHandler(advice, log),
		Metrics:      m,
		Gatherer:     reg,
		Logger:       log,
		MaxBodyBytes: int64(cfg.MaxAudioBytes)*4/3 + bodySlack,
	})

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout, // speech synthesis fans out to many model calls
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", "addr", serverAddr, "chat_model", cfg.ChatModel, "tts_model", cfg.TTSModel)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("could not listen on %s: %w", serverAddr, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down server")

	// Give active connections time to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exiting gracefully")
	return nil
}
