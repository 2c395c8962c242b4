package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaid-ai/medaid/internal/datauri"
)

var testAudioURI = datauri.Format("audio/wav", []byte("RIFF-fake-audio"))

type fakeMic struct {
	err     error
	stopErr error
	clip    Clip
}

func (m *fakeMic) Open(context.Context) (Recording, error) {
	if m.err != nil {
		return nil, m.err
	}
	return fakeRecording{clip: m.clip, err: m.stopErr}, nil
}

type fakeRecording struct {
	clip Clip
	err  error
}

func (r fakeRecording) Stop() (Clip, error) { return r.clip, r.err }

// fakePlayer blocks each Play until release is closed or ctx is cancelled.
type fakePlayer struct {
	mu      sync.Mutex
	started chan []byte
	release chan struct{}
	err     error
	stopped int
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{started: make(chan []byte, 4), release: make(chan struct{})}
}

func (p *fakePlayer) Play(ctx context.Context, audio []byte) error {
	p.started <- audio
	select {
	case <-p.release:
		return p.err
	case <-ctx.Done():
		p.mu.Lock()
		p.stopped++
		p.mu.Unlock()
		return ctx.Err()
	}
}

func (p *fakePlayer) stoppedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

func waitStarted(t *testing.T, p *fakePlayer) []byte {
	t.Helper()
	select {
	case audio := <-p.started:
		return audio
	case <-time.After(2 * time.Second):
		t.Fatal("playback did not start")
		return nil
	}
}

func waitIdle(t *testing.T, c *Controller) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := c.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return err
}

func noTranscribe(context.Context, string) (string, error) {
	return "", errors.New("unexpected transcription")
}

func TestRecordingRejectedDuringPlayback(t *testing.T) {
	player := newFakePlayer()
	c := NewController(&fakeMic{}, player, noTranscribe, nil)

	require.NoError(t, c.Play(context.Background(), testAudioURI))
	waitStarted(t, player)
	assert.Equal(t, PlaybackPlaying, c.PlaybackState())

	assert.ErrorIs(t, c.StartRecording(context.Background()), ErrBusy)
	assert.Equal(t, MicIdle, c.MicState())

	c.Stop()
	assert.Equal(t, PlaybackIdle, c.PlaybackState())
	assert.NoError(t, waitIdle(t, c))
	require.NoError(t, c.StartRecording(context.Background()))
}

func TestPlaybackRejectedWhileRecording(t *testing.T) {
	c := NewController(&fakeMic{clip: Clip{Data: []byte("x")}}, newFakePlayer(), noTranscribe, nil)

	require.NoError(t, c.StartRecording(context.Background()))
	assert.Equal(t, MicRecording, c.MicState())

	assert.ErrorIs(t, c.Play(context.Background(), testAudioURI), ErrBusy)
	assert.ErrorIs(t, c.Speak(context.Background(), func(context.Context) (string, error) {
		t.Fatal("fetch must not run while recording")
		return "", nil
	}), ErrBusy)
	assert.ErrorIs(t, c.StartRecording(context.Background()), ErrBusy)
	assert.Equal(t, PlaybackIdle, c.PlaybackState())
}

func TestStartRecordingDeviceUnavailable(t *testing.T) {
	c := NewController(&fakeMic{err: ErrDeviceUnavailable}, newFakePlayer(), noTranscribe, nil)

	err := c.StartRecording(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
	var derr *DeviceError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, MicIdle, c.MicState())

	c = NewController(nil, newFakePlayer(), noTranscribe, nil)
	assert.ErrorIs(t, c.StartRecording(context.Background()), ErrDeviceUnavailable)
}

func TestStopRecordingTranscribes(t *testing.T) {
	var c *Controller
	var gotURI string
	var stateDuring MicState
	transcribe := func(_ context.Context, uri string) (string, error) {
		gotURI = uri
		stateDuring = c.MicState()
		return "my throat hurts", nil
	}
	c = NewController(&fakeMic{clip: Clip{MIMEType: "audio/wav", Data: []byte("pcm")}}, newFakePlayer(), transcribe, nil)

	require.NoError(t, c.StartRecording(context.Background()))
	text, err := c.StopRecording(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "my throat hurts", text)
	assert.Equal(t, datauri.Format("audio/wav", []byte("pcm")), gotURI)
	assert.Equal(t, MicTranscribing, stateDuring)
	assert.Equal(t, MicIdle, c.MicState())
}

func TestStopRecordingFailureReturnsToIdle(t *testing.T) {
	failing := func(context.Context, string) (string, error) { return "", errors.New("server down") }
	c := NewController(&fakeMic{clip: Clip{Data: []byte("pcm")}}, newFakePlayer(), failing, nil)

	require.NoError(t, c.StartRecording(context.Background()))
	_, err := c.StopRecording(context.Background())
	assert.EqualError(t, err, "server down")
	assert.Equal(t, MicIdle, c.MicState())

	_, err = c.StopRecording(context.Background())
	assert.ErrorIs(t, err, ErrNotRecording)
}

func TestStopRecordingEmptyClip(t *testing.T) {
	c := NewController(&fakeMic{}, newFakePlayer(), noTranscribe, nil)

	require.NoError(t, c.StartRecording(context.Background()))
	_, err := c.StopRecording(context.Background())
	assert.ErrorIs(t, err, ErrEmptyRecording)
	assert.Equal(t, MicIdle, c.MicState())
}

func TestStopRecordingKeepsEmptyRecordingUnwrapped(t *testing.T) {
	c := NewController(&fakeMic{stopErr: ErrEmptyRecording}, newFakePlayer(), noTranscribe, nil)

	require.NoError(t, c.StartRecording(context.Background()))
	_, err := c.StopRecording(context.Background())
	assert.Same(t, ErrEmptyRecording, err)
	var derr *DeviceError
	assert.False(t, errors.As(err, &derr))
	assert.Equal(t, MicIdle, c.MicState())
}

func TestSpeakLoadsThenPlays(t *testing.T) {
	player := newFakePlayer()
	c := NewController(&fakeMic{}, player, noTranscribe, nil)

	var stateDuring PlaybackState
	err := c.Speak(context.Background(), func(context.Context) (string, error) {
		stateDuring = c.PlaybackState()
		return testAudioURI, nil
	})
	require.NoError(t, err)
	assert.Equal(t, PlaybackLoading, stateDuring)

	assert.Equal(t, []byte("RIFF-fake-audio"), waitStarted(t, player))
	assert.Equal(t, PlaybackPlaying, c.PlaybackState())

	close(player.release)
	assert.NoError(t, waitIdle(t, c))
	assert.Equal(t, PlaybackIdle, c.PlaybackState())
}

func TestSpeakFetchFailure(t *testing.T) {
	c := NewController(&fakeMic{}, newFakePlayer(), noTranscribe, nil)

	err := c.Speak(context.Background(), func(context.Context) (string, error) {
		return "", errors.New("tts failed")
	})
	assert.EqualError(t, err, "tts failed")
	assert.Equal(t, PlaybackIdle, c.PlaybackState())

	err = c.Speak(context.Background(), func(context.Context) (string, error) {
		return "not a data uri", nil
	})
	assert.Error(t, err)
	assert.Equal(t, PlaybackIdle, c.PlaybackState())
}

func TestStopWhileLoadingCancelsFetch(t *testing.T) {
	c := NewController(&fakeMic{}, newFakePlayer(), noTranscribe, nil)

	loading := make(chan struct{})
	result := make(chan error, 1)
	go func() {
		result <- c.Speak(context.Background(), func(ctx context.Context) (string, error) {
			close(loading)
			<-ctx.Done()
			return "", ctx.Err()
		})
	}()

	<-loading
	assert.Equal(t, PlaybackLoading, c.PlaybackState())
	c.Stop()

	select {
	case err := <-result:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Speak did not return after Stop")
	}
	assert.Equal(t, PlaybackIdle, c.PlaybackState())
}

func TestPlayWhilePlayingRestarts(t *testing.T) {
	player := newFakePlayer()
	c := NewController(&fakeMic{}, player, noTranscribe, nil)

	require.NoError(t, c.Play(context.Background(), testAudioURI))
	waitStarted(t, player)

	second := datauri.Format("audio/wav", []byte("second"))
	require.NoError(t, c.Play(context.Background(), second))
	assert.Equal(t, []byte("second"), waitStarted(t, player))
	assert.Equal(t, PlaybackPlaying, c.PlaybackState())

	require.Eventually(t, func() bool { return player.stoppedCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	c.Stop()
	assert.NoError(t, waitIdle(t, c))
}

func TestWaitReportsPlayerFailure(t *testing.T) {
	player := newFakePlayer()
	player.err = &DeviceError{Device: "speaker", Err: ErrDeviceUnavailable}
	c := NewController(&fakeMic{}, player, noTranscribe, nil)

	require.NoError(t, c.Play(context.Background(), testAudioURI))
	waitStarted(t, player)
	close(player.release)

	assert.ErrorIs(t, waitIdle(t, c), ErrDeviceUnavailable)
}

func TestAppendTranscript(t *testing.T) {
	tests := []struct {
		draft, transcript, want string
	}{
		{"", "I have a fever", "I have a fever"},
		{"Since yesterday", " I have a fever ", "Since yesterday I have a fever"},
		{"Since yesterday ", "", "Since yesterday"},
		{"", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AppendTranscript(tt.draft, tt.transcript))
	}
}

func TestPlaybackWithoutSpeaker(t *testing.T) {
	c := NewController(&fakeMic{}, nil, noTranscribe, nil)

	err := c.Play(context.Background(), datauri.Format("audio/wav", []byte("RIFF")))
	assert.ErrorIs(t, err, ErrDeviceUnavailable)

	err = c.Speak(context.Background(), func(context.Context) (string, error) { return "", nil })
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.Equal(t, PlaybackIdle, c.PlaybackState())
}
