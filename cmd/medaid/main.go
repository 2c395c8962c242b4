package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, stop := signalContext(context.Background())
	defer stop()

	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:           "medaid",
		Short:         "MedAid - AI symptom checker in your terminal",
		Long:          "Describe your symptoms and get general guidance in English, Hindi or Bengali.\nMedAid is not a substitute for professional medical advice.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addGlobalFlags(rootCmd, opts)

	rootCmd.AddCommand(newChatCmd(opts))
	rootCmd.AddCommand(newAskCmd(opts))
	rootCmd.AddCommand(newListenCmd(opts))
	rootCmd.AddCommand(newRemediesCmd(opts))
	rootCmd.AddCommand(newThreadsCmd(opts))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// signalContext is cancelled on Ctrl-C or SIGTERM so deferred cleanup runs.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
