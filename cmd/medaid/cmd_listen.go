package main

import (
	"bufio"
	"errors"

	"github.com/spf13/cobra"

	"github.com/medaid-ai/medaid/internal/speech"
	"github.com/medaid-ai/medaid/internal/ui"
)

func newListenCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Record from the microphone and print the transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.speech.StartRecording(ctx); err != nil {
				return errors.New(describe(err))
			}
			a.println(ui.SpeechStatus(a.speech.MicState(), a.speech.PlaybackState()))

			// Any line, or end of input, stops the recording.
			bufio.NewScanner(cmd.InOrStdin()).Scan()

			a.println(ui.SpeechStatus(speech.MicTranscribing, speech.PlaybackIdle))
			text, err := a.speech.StopRecording(ctx)
			if err != nil {
				return errors.New(describe(err))
			}
			a.println(text)
			return nil
		},
	}
}
