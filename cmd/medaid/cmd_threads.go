package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medaid-ai/medaid/internal/chat"
	"github.com/medaid-ai/medaid/internal/ui"
)

func newThreadsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Manage saved conversations",
	}
	cmd.AddCommand(newThreadsListCmd(opts))
	cmd.AddCommand(newThreadsShowCmd(opts))
	cmd.AddCommand(newThreadsDeleteCmd(opts))
	return cmd
}

func newThreadsListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved threads, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			threads := a.repo.Load(cmd.Context())
			if len(threads) == 0 {
				a.println(ui.DimStyle.Render("No saved threads."))
				return nil
			}
			for _, t := range threads {
				a.println(ui.ThreadLine(t, false))
			}
			return nil
		},
	}
}

func newThreadsShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print every message of a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			t := chat.FindThread(a.repo.Load(cmd.Context()), args[0])
			if t == nil {
				return fmt.Errorf("no thread with id %s", args[0])
			}
			a.println(ui.TitleStyle.Render(t.Title))
			a.println(ui.Thread(*t, a.width))
			return nil
		},
	}
}

func newThreadsDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a thread",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			threads := a.repo.Load(ctx)
			if chat.FindThread(threads, args[0]) == nil {
				return fmt.Errorf("no thread with id %s", args[0])
			}
			if err := a.repo.Persist(ctx, chat.DeleteThread(threads, args[0])); err != nil {
				return err
			}
			a.println("Deleted thread " + args[0])
			return nil
		},
	}
}
