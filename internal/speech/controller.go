// Package speech drives the microphone and the audio output on the client.
//
// The controller holds two state machines, one per device:
//
//	microphone: idle -> recording -> transcribing -> idle
//	playback:   idle -> loading -> playing -> idle
//
// They are mutually exclusive: a recording cannot start while playback is
// loading or playing, and playback cannot start while the microphone is busy.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medaid-ai/medaid/internal/datauri"
)

var (
	// ErrBusy is returned when the other state machine is active.
	ErrBusy = errors.New("speech controller busy")
	// ErrDeviceUnavailable means there is no device or no permission to use it.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	// ErrNotRecording is returned by StopRecording outside a recording.
	ErrNotRecording = errors.New("not recording")
	// ErrEmptyRecording is returned when the microphone captured nothing.
	ErrEmptyRecording = errors.New("recording is empty")
)

// DeviceError reports a microphone or speaker failure.
type DeviceError struct {
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

type MicState int

const (
	MicIdle MicState = iota
	MicRecording
	MicTranscribing
)

func (s MicState) String() string {
	switch s {
	case MicRecording:
		return "recording"
	case MicTranscribing:
		return "transcribing"
	default:
		return "idle"
	}
}

type PlaybackState int

const (
	PlaybackIdle PlaybackState = iota
	PlaybackLoading
	PlaybackPlaying
)

func (s PlaybackState) String() string {
	switch s {
	case PlaybackLoading:
		return "loading"
	case PlaybackPlaying:
		return "playing"
	default:
		return "idle"
	}
}

// Clip is a finished recording.
type Clip struct {
	MIMEType string
	Data     []byte
}

// Microphone opens a capture. The device is held until the returned
// Recording is stopped.
type Microphone interface {
	Open(ctx context.Context) (Recording, error)
}

// Recording is an open capture. Stop finalizes the audio and releases the
// device.
type Recording interface {
	Stop() (Clip, error)
}

// Player plays one WAV file and blocks until it ends or ctx is cancelled.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// TranscribeFunc sends a recording, encoded as a data URI, for transcription.
type TranscribeFunc func(ctx context.Context, audioURI string) (string, error)

// FetchFunc produces playable audio as a data URI.
type FetchFunc func(ctx context.Context) (string, error)

type recordingSession struct {
	id      uuid.UUID
	rec     Recording
	started time.Time
}

type Controller struct {
	mic        Microphone
	player     Player
	transcribe TranscribeFunc
	logger     *slog.Logger

	mu        sync.Mutex
	micState  MicState
	session   *recordingSession
	playState PlaybackState
	playGen   uint64
	cancel    context.CancelFunc
	idle      chan struct{}
	playErr   error
}

func NewController(mic Microphone, player Player, transcribe TranscribeFunc, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	idle := make(chan struct{})
	close(idle)
	return &Controller{
		mic:        mic,
		player:     player,
		transcribe: transcribe,
		logger:     logger.With("component", "speech"),
		idle:       idle,
	}
}

func (c *Controller) MicState() MicState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.micState
}

func (c *Controller) PlaybackState() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playState
}

// StartRecording opens the microphone. On failure the state stays idle.
func (c *Controller) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.micState != MicIdle || c.playState != PlaybackIdle {
		return ErrBusy
	}
	if c.mic == nil {
		return &DeviceError{Device: "microphone", Err: ErrDeviceUnavailable}
	}

	rec, err := c.mic.Open(ctx)
	if err != nil {
		var derr *DeviceError
		if errors.As(err, &derr) {
			return err
		}
		return &DeviceError{Device: "microphone", Err: err}
	}

	c.session = &recordingSession{id: uuid.New(), rec: rec, started: time.Now()}
	c.micState = MicRecording
	c.logger.Debug("Recording started", "session", c.session.id)
	return nil
}

// StopRecording finalizes the capture and transcribes it. The microphone
// returns to idle whether transcription succeeds or not.
func (c *Controller) StopRecording(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.micState != MicRecording {
		c.mu.Unlock()
		return "", ErrNotRecording
	}
	sess := c.session
	c.session = nil
	c.micState = MicTranscribing
	c.mu.Unlock()

	defer c.setMicIdle()

	clip, err := sess.rec.Stop()
	if err != nil {
		c.logger.Warn("Recording failed", "session", sess.id, "error", err)
		var derr *DeviceError
		if errors.As(err, &derr) || errors.Is(err, ErrEmptyRecording) {
			return "", err
		}
		return "", &DeviceError{Device: "microphone", Err: err}
	}
	if len(clip.Data) == 0 {
		return "", ErrEmptyRecording
	}

	mimeType := clip.MIMEType
	if mimeType == "" {
		mimeType = "audio/wav"
	}
	c.logger.Debug("Recording stopped", "session", sess.id, "bytes", len(clip.Data), "elapsed", time.Since(sess.started))

	text, err := c.transcribe(ctx, datauri.Format(mimeType, clip.Data))
	if err != nil {
		c.logger.Warn("Transcription failed", "session", sess.id, "error", err)
		return "", err
	}
	return text, nil
}

func (c *Controller) setMicIdle() {
	c.mu.Lock()
	c.micState = MicIdle
	c.mu.Unlock()
}

// AppendTranscript joins a transcript onto the text typed so far.
func AppendTranscript(draft, transcript string) string {
	draft = strings.TrimRight(draft, " \t")
	transcript = strings.TrimSpace(transcript)
	switch {
	case transcript == "":
		return draft
	case draft == "":
		return transcript
	default:
		return draft + " " + transcript
	}
}

// Play starts playing a WAV data URI and returns once playback has begun.
// Any current playback is stopped first.
func (c *Controller) Play(ctx context.Context, audioURI string) error {
	if c.player == nil {
		return &DeviceError{Device: "speaker", Err: ErrDeviceUnavailable}
	}
	audio, err := decodeAudio(audioURI)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.micState != MicIdle {
		return ErrBusy
	}
	c.stopLocked()
	c.startLocked(ctx, audio)
	return nil
}

// Speak fetches audio and plays it. The controller reports loading while
// fetch runs; Stop during that time cancels the fetch.
func (c *Controller) Speak(ctx context.Context, fetch FetchFunc) error {
	if c.player == nil {
		return &DeviceError{Device: "speaker", Err: ErrDeviceUnavailable}
	}
	c.mu.Lock()
	if c.micState != MicIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.stopLocked()
	loadCtx, cancel := context.WithCancel(ctx)
	c.playGen++
	gen := c.playGen
	c.cancel = cancel
	c.setPlayStateLocked(PlaybackLoading)
	c.mu.Unlock()

	audioURI, err := fetch(loadCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playGen != gen {
		// stopped or replaced while loading
		cancel()
		if err == nil {
			err = context.Canceled
		}
		return err
	}
	if err == nil {
		var audio []byte
		if audio, err = decodeAudio(audioURI); err == nil {
			cancel()
			c.cancel = nil
			c.startLocked(ctx, audio)
			return nil
		}
	}
	cancel()
	c.cancel = nil
	c.setPlayStateLocked(PlaybackIdle)
	return err
}

// Stop ends playback or an in-flight load.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Wait blocks until playback is idle or ctx is done. It returns the error of
// the last playback if the player failed.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.playErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) stopLocked() {
	if c.playState == PlaybackIdle {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.playGen++
	c.setPlayStateLocked(PlaybackIdle)
}

func (c *Controller) startLocked(ctx context.Context, audio []byte) {
	playCtx, cancel := context.WithCancel(ctx)
	c.playGen++
	gen := c.playGen
	c.cancel = cancel
	c.playErr = nil
	c.setPlayStateLocked(PlaybackPlaying)

	go func() {
		err := c.player.Play(playCtx, audio)
		stopped := playCtx.Err() != nil
		cancel()

		c.mu.Lock()
		if c.playGen == gen {
			c.cancel = nil
			if err != nil && !stopped {
				c.playErr = err
			}
			c.setPlayStateLocked(PlaybackIdle)
		}
		c.mu.Unlock()

		if err != nil && !stopped {
			c.logger.Warn("Playback failed", "error", err)
		}
	}()
}

func (c *Controller) setPlayStateLocked(s PlaybackState) {
	prev := c.playState
	c.playState = s
	switch {
	case prev == PlaybackIdle && s != PlaybackIdle:
		c.idle = make(chan struct{})
	case prev != PlaybackIdle && s == PlaybackIdle:
		close(c.idle)
	}
}

func decodeAudio(audioURI string) ([]byte, error) {
	_, audio, err := datauri.Parse(audioURI)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("failed to decode audio: empty payload")
	}
	return audio, nil
}
