package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medaid-ai/medaid/internal/chat"
	"github.com/medaid-ai/medaid/internal/ui"
)

func newAskCmd(opts *globalOptions) *cobra.Command {
	var (
		threadID string
		speak    bool
	)
	cmd := &cobra.Command{
		Use:   "ask <symptoms...>",
		Short: "Ask one question and save it as a thread",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			session := chat.NewSession(a.repo.Load(ctx))
			lang := a.language
			if threadID != "" {
				session = session.Select(threadID)
				current := session.Current()
				if current == nil {
					return errors.New("no thread with id " + threadID)
				}
				if !cmd.Flags().Changed("lang") {
					lang = current.Language
				}
			}

			text := strings.Join(args, " ")
			thread, err := a.ask(ctx, session.Current(), lang, text)
			if err != nil {
				return errors.New(describe(err))
			}
			session = session.Commit(thread)
			if err := a.repo.Persist(ctx, session.Threads); err != nil {
				a.println(ui.Notice("Could not save this conversation: " + err.Error()))
			}

			last := thread.Messages[len(thread.Messages)-1]
			a.println(ui.Message(last, a.width))
			a.println(ui.DimStyle.Render("thread " + thread.ID))

			if speak {
				a.println(ui.DimStyle.Render("… preparing audio"))
				if err := a.speak(ctx, last.Text); err != nil {
					a.fail(err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&threadID, "thread", "t", "", "continue an existing thread")
	cmd.Flags().BoolVarP(&speak, "speak", "s", false, "read the answer aloud")
	return cmd
}

func newRemediesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remedies <symptoms...>",
		Short: "Suggest herbal remedies for the symptoms",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			remedies, err := a.client.Remedies(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return errors.New(describe(err))
			}
			a.println(ui.Message(chat.AssistantMessage(remedies), a.width))
			return nil
		},
	}
}
