package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medaid-ai/medaid/internal/chat"
	"github.com/medaid-ai/medaid/internal/speech"
	"github.com/medaid-ai/medaid/internal/ui"
)

const chatHelp = `Type your symptoms and press Enter.

  /new             start a new conversation
  /threads         list saved conversations
  /open <id>       continue a saved conversation
  /delete [id]     delete a conversation (default: the current one)
  /lang <en|hi|bn> change the response language
  /mic             record your voice, press Enter to stop
  /speak           read the last answer aloud
  /stop            stop reading aloud
  /remedies        suggest herbal remedies for the last question
  /quit            leave`

// chatLoop is the state of one interactive session.
type chatLoop struct {
	*app
	ctx     context.Context
	session chat.Session
	lang    chat.Language
	draft   string
}

func newChatCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.client.Health(ctx); err != nil {
				a.println(ui.Notice("MedAid server is not reachable at " + a.cfg.ServerURL + ": " + describe(err)))
			}

			l := &chatLoop{
				app:     a,
				ctx:     ctx,
				session: chat.NewSession(a.repo.Load(ctx)),
				lang:    a.language,
			}
			return l.run(bufio.NewScanner(cmd.InOrStdin()))
		},
	}
}

func (l *chatLoop) run(in *bufio.Scanner) error {
	l.println(ui.TitleStyle.Render("MedAid") + " " + ui.DimStyle.Render("/help for commands"))
	l.prompt()

	for in.Scan() {
		line := strings.TrimSpace(in.Text())

		if l.speech.MicState() == speech.MicRecording {
			// text typed while recording goes before the transcript
			if line != "" && !strings.HasPrefix(line, "/") {
				l.draft = speech.AppendTranscript(l.draft, line)
			}
			l.stopRecording()
			l.prompt()
			continue
		}

		switch {
		case line == "" && l.draft == "":
		case line == "":
			l.send(l.draft)
		case strings.HasPrefix(line, "/"):
			if quit := l.command(line); quit {
				return nil
			}
		default:
			l.send(speech.AppendTranscript(l.draft, line))
		}

		if l.ctx.Err() != nil {
			return l.ctx.Err()
		}
		l.prompt()
	}
	return in.Err()
}

func (l *chatLoop) prompt() {
	if status := ui.SpeechStatus(l.speech.MicState(), l.speech.PlaybackState()); status != "" {
		l.println(status)
	}
	if l.draft != "" {
		l.println(ui.DimStyle.Render("Draft: ") + l.draft + ui.DimStyle.Render("  (Enter to send, or keep typing)"))
	}
	fmt.Fprintf(l.out, "%s > ", l.lang)
}

func (l *chatLoop) command(line string) (quit bool) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/help":
		l.println(chatHelp)
	case "/quit", "/exit":
		return true
	case "/new":
		l.session = l.session.New()
		l.lang = l.language
		l.draft = ""
		l.println(ui.DimStyle.Render("New conversation."))
	case "/threads":
		l.listThreads()
	case "/open":
		l.open(arg)
	case "/delete":
		l.delete(arg)
	case "/lang":
		lang, err := chat.ParseLanguage(arg)
		if err != nil {
			l.fail(err)
			break
		}
		l.lang = lang
		l.println(ui.DimStyle.Render("Answers will be in " + lang.Name() + "."))
	case "/mic":
		if err := l.speech.StartRecording(l.ctx); err != nil {
			l.fail(err)
		}
	case "/speak":
		l.speakLast()
	case "/stop":
		l.speech.Stop()
	case "/remedies":
		l.remedies()
	default:
		l.println(ui.Notice("Unknown command " + name + ". Type /help."))
	}
	return false
}

func (l *chatLoop) send(text string) {
	l.draft = ""
	l.println(ui.Message(chat.UserMessage(text), l.width))
	l.println(ui.DimStyle.Render("… thinking"))

	thread, err := l.ask(l.ctx, l.session.Current(), l.lang, text)
	if err != nil {
		l.fail(err)
		l.draft = text
		return
	}

	l.session = l.session.Commit(thread)
	if err := l.repo.Persist(l.ctx, l.session.Threads); err != nil {
		l.println(ui.Notice("Could not save this conversation: " + err.Error()))
	}
	l.println(ui.Message(thread.Messages[len(thread.Messages)-1], l.width))
}

func (l *chatLoop) stopRecording() {
	l.println(ui.SpeechStatus(speech.MicTranscribing, speech.PlaybackIdle))
	text, err := l.speech.StopRecording(l.ctx)
	if err != nil {
		l.fail(err)
		return
	}
	l.draft = speech.AppendTranscript(l.draft, text)
}

func (l *chatLoop) listThreads() {
	if len(l.session.Threads) == 0 {
		l.println(ui.DimStyle.Render("No saved threads."))
		return
	}
	for _, t := range l.session.Threads {
		l.println(ui.ThreadLine(t, t.ID == l.session.CurrentID))
	}
}

func (l *chatLoop) open(id string) {
	next := l.session.Select(id)
	current := next.Current()
	if current == nil {
		l.fail(fmt.Errorf("no thread with id %q", id))
		return
	}
	l.session = next
	l.lang = current.Language
	l.println(ui.TitleStyle.Render(current.Title))
	l.println(ui.Thread(*current, l.width))
}

func (l *chatLoop) delete(id string) {
	if id == "" {
		id = l.session.CurrentID
	}
	if chat.FindThread(l.session.Threads, id) == nil {
		l.fail(fmt.Errorf("no thread with id %q", id))
		return
	}
	l.session = l.session.Delete(id)
	if err := l.repo.Persist(l.ctx, l.session.Threads); err != nil {
		l.println(ui.Notice("Could not save this change: " + err.Error()))
	}
	l.println(ui.DimStyle.Render("Deleted."))
}

func (l *chatLoop) lastReply() (chat.Message, bool) {
	current := l.session.Current()
	if current == nil || len(current.Messages) == 0 {
		return chat.Message{}, false
	}
	return current.Messages[len(current.Messages)-1], true
}

// speakLast reads the latest answer in the background so typing continues
// while it plays.
func (l *chatLoop) speakLast() {
	msg, ok := l.lastReply()
	if !ok {
		l.println(ui.Notice("Nothing to read yet."))
		return
	}
	go func() {
		if err := l.speak(l.ctx, msg.Text); err != nil && !errors.Is(err, context.Canceled) {
			l.fail(err)
		}
	}()
}

func (l *chatLoop) remedies() {
	current := l.session.Current()
	if current == nil {
		l.println(ui.Notice("Ask a question first."))
		return
	}
	var symptoms string
	for _, m := range current.Messages {
		if m.Role == chat.RoleUser {
			symptoms = m.Text
		}
	}

	remedies, err := l.client.Remedies(l.ctx, symptoms)
	if err != nil {
		l.fail(err)
		return
	}
	l.println(ui.Message(chat.AssistantMessage(remedies), l.width))
}
