package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/medaid-ai/medaid/internal/wav"
)

const (
	// startGrace is how long Open watches a recorder for an immediate exit.
	startGrace = 150 * time.Millisecond
	// stopGrace is how long a recorder gets to flush after SIGINT.
	stopGrace = 3 * time.Second
)

func splitCommand(cmdline string) ([]string, error) {
	args := strings.Fields(cmdline)
	if len(args) == 0 {
		return nil, fmt.Errorf("empty device command")
	}
	return args, nil
}

func lookPath(device, name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", &DeviceError{Device: device, Err: fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)}
	}
	return path, nil
}

// CommandMicrophone records by running a command that writes a WAV stream to
// stdout until interrupted, such as "arecord -f S16_LE -r 16000 -t wav -".
type CommandMicrophone struct {
	args []string
}

func NewCommandMicrophone(cmdline string) (*CommandMicrophone, error) {
	args, err := splitCommand(cmdline)
	if err != nil {
		return nil, err
	}
	return &CommandMicrophone{args: args}, nil
}

func (m *CommandMicrophone) Open(ctx context.Context) (Recording, error) {
	path, err := lookPath("microphone", m.args[0])
	if err != nil {
		return nil, err
	}

	rec := &commandRecording{done: make(chan struct{})}
	rec.cmd = exec.CommandContext(ctx, path, m.args[1:]...)
	rec.cmd.Stdout = &rec.stdout
	rec.cmd.Stderr = &rec.stderr
	if err := rec.cmd.Start(); err != nil {
		return nil, &DeviceError{Device: "microphone", Err: fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)}
	}
	go func() {
		rec.waitErr = rec.cmd.Wait()
		close(rec.done)
	}()

	// Recorders that cannot open the device fail right away.
	select {
	case <-rec.done:
		if rec.waitErr != nil {
			return nil, rec.unavailable()
		}
	case <-time.After(startGrace):
	case <-ctx.Done():
	}
	return rec, nil
}

type commandRecording struct {
	cmd     *exec.Cmd
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	done    chan struct{}
	waitErr error
	once    sync.Once
	// signalled is set when Stop interrupted a running recorder.
	signalled bool
}

func (r *commandRecording) unavailable() error {
	return &DeviceError{Device: "microphone", Err: fmt.Errorf("%w: %s", ErrDeviceUnavailable, r.stderrText())}
}

func (r *commandRecording) stderrText() string {
	if msg := strings.TrimSpace(r.stderr.String()); msg != "" {
		return msg
	}
	return r.waitErr.Error()
}

func (r *commandRecording) Stop() (Clip, error) {
	r.once.Do(func() {
		select {
		case <-r.done:
			return
		default:
		}
		r.signalled = true
		_ = r.cmd.Process.Signal(os.Interrupt)
		select {
		case <-r.done:
		case <-time.After(stopGrace):
			_ = r.cmd.Process.Kill()
			<-r.done
		}
	})

	switch {
	case r.waitErr == nil:
	case !r.signalled:
		// exited on its own with an error, before anything asked it to stop
		return Clip{}, r.unavailable()
	case !interrupted(r.waitErr):
		return Clip{}, &DeviceError{Device: "microphone", Err: fmt.Errorf("%w: %s", r.waitErr, strings.TrimSpace(r.stderr.String()))}
	}

	data := r.stdout.Bytes()
	if len(data) == 0 {
		return Clip{}, ErrEmptyRecording
	}
	if fixed, err := wav.Finalize(data); err == nil {
		data = fixed
	}
	return Clip{MIMEType: "audio/wav", Data: data}, nil
}

// interrupted reports whether a recorder sent SIGINT exited because of it.
func interrupted(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return true
	}
	// arecord and sox exit with 1 after SIGINT on some systems
	return exitErr.ExitCode() == 1 || exitErr.ExitCode() == 130
}

// CommandPlayer plays audio by writing it to a temporary file and running a
// command on it, such as "aplay -q" or "afplay".
type CommandPlayer struct {
	args []string
}

func NewCommandPlayer(cmdline string) (*CommandPlayer, error) {
	args, err := splitCommand(cmdline)
	if err != nil {
		return nil, err
	}
	return &CommandPlayer{args: args}, nil
}

func (p *CommandPlayer) Play(ctx context.Context, audio []byte) error {
	path, err := lookPath("speaker", p.args[0])
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "medaid-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temp audio file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return fmt.Errorf("failed to write temp audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp audio file: %w", err)
	}

	args := append(append([]string{}, p.args[1:]...), f.Name())
	cmd := exec.CommandContext(ctx, path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &DeviceError{Device: "speaker", Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))}
	}
	return nil
}
