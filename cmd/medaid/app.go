package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/medaid-ai/medaid/internal/chat"
	"github.com/medaid-ai/medaid/internal/client"
	"github.com/medaid-ai/medaid/internal/config"
	"github.com/medaid-ai/medaid/internal/logger"
	"github.com/medaid-ai/medaid/internal/speech"
	"github.com/medaid-ai/medaid/internal/store"
	"github.com/medaid-ai/medaid/internal/ui"
)

// globalOptions are flags shared by every subcommand. Empty values fall back
// to the environment.
type globalOptions struct {
	server   string
	database string
	language string
	width    int
}

func addGlobalFlags(cmd *cobra.Command, opts *globalOptions) {
	cmd.PersistentFlags().StringVar(&opts.server, "server", "", "MedAid server URL (env MEDAID_SERVER_URL)")
	cmd.PersistentFlags().StringVar(&opts.database, "db", "", "thread database path (env MEDAID_DB_PATH)")
	cmd.PersistentFlags().StringVarP(&opts.language, "lang", "l", "", "response language: en, hi or bn (env MEDAID_LANGUAGE)")
	cmd.PersistentFlags().IntVar(&opts.width, "width", 80, "render width in columns")
}

// app holds everything a subcommand needs.
type app struct {
	cfg      *config.ClientConfig
	log      *slog.Logger
	client   *client.Client
	store    *store.SQLiteStore
	repo     *chat.Repository
	speech   *speech.Controller
	language chat.Language
	width    int
	out      io.Writer

	closeLog io.Closer
}

func newApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if opts.server != "" {
		cfg.ServerURL = opts.server
	}
	if opts.database != "" {
		cfg.DatabasePath = opts.database
	}
	if opts.language != "" {
		cfg.Language = opts.language
	}
	lang, err := chat.ParseLanguage(cfg.Language)
	if err != nil {
		return nil, err
	}

	// Logs go to stderr so they never mix with rendered output.
	log, closeLog, err := logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile, Stdout: os.Stderr})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)

	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		closeLog.Close()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		client:   client.New(cfg.ServerURL, cfg.Timeout, log),
		store:    db,
		repo:     chat.NewRepository(db, log),
		language: lang,
		width:    opts.width,
		out:      cmd.OutOrStdout(),
		closeLog: closeLog,
	}
	a.speech = speech.NewController(a.microphone(), a.player(), a.client.SpeechToText, log)
	return a, nil
}

// microphone returns nil when the record command is unusable; the controller
// then reports the device as unavailable.
func (a *app) microphone() speech.Microphone {
	mic, err := speech.NewCommandMicrophone(a.cfg.RecordCommand)
	if err != nil {
		a.log.Warn("Microphone disabled", "error", err)
		return nil
	}
	return mic
}

func (a *app) player() speech.Player {
	player, err := speech.NewCommandPlayer(a.cfg.PlayCommand)
	if err != nil {
		a.log.Warn("Speaker disabled", "error", err)
		return nil
	}
	return player
}

func (a *app) Close() {
	a.speech.Stop()
	if err := a.store.Close(); err != nil {
		a.log.Warn("Failed to close thread database", "error", err)
	}
	a.closeLog.Close()
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}

// ask runs one chat turn against thread, which may be nil, and returns the
// updated thread.
func (a *app) ask(ctx context.Context, thread *chat.Thread, lang chat.Language, text string) (chat.Thread, error) {
	reply, err := a.client.Chat(ctx, text, lang, chat.ToModelContext(thread))
	if err != nil {
		return chat.Thread{}, err
	}
	return chat.AppendTurn(thread, lang, text, reply.Advice), nil
}

// speak synthesizes text and plays it, blocking until playback ends.
func (a *app) speak(ctx context.Context, text string) error {
	err := a.speech.Speak(ctx, func(ctx context.Context) (string, error) {
		return a.client.TextToSpeech(ctx, text)
	})
	if err != nil {
		return err
	}
	return a.speech.Wait(ctx)
}

// describe turns an error into a line for the user.
func describe(err error) string {
	var apiErr *client.APIError
	var devErr *speech.DeviceError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, speech.ErrEmptyRecording):
		return "Nothing was recorded."
	case errors.Is(err, speech.ErrDeviceUnavailable):
		return "No audio device available. Check MEDAID_RECORD_CMD and MEDAID_PLAY_CMD."
	case errors.As(err, &devErr):
		return fmt.Sprintf("The %s failed: %v", devErr.Device, devErr.Err)
	case errors.Is(err, speech.ErrBusy):
		return "Audio is busy. Use /stop first."
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	default:
		return err.Error()
	}
}

func (a *app) fail(err error) {
	a.println(ui.Error(describe(err)))
}
