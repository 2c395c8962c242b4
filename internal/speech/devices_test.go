package speech

import (
	"context"
	"encoding/binary"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaid-ai/medaid/internal/wav"
)

func TestCommandDevicesRejectEmptyCommand(t *testing.T) {
	_, err := NewCommandMicrophone("  ")
	assert.Error(t, err)
	_, err = NewCommandPlayer("")
	assert.Error(t, err)
}

func TestCommandDevicesMissingBinary(t *testing.T) {
	mic, err := NewCommandMicrophone("medaid-no-such-recorder -q")
	require.NoError(t, err)
	_, err = mic.Open(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)

	player, err := NewCommandPlayer("medaid-no-such-player")
	require.NoError(t, err)
	err = player.Play(context.Background(), []byte("RIFF"))
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestCommandPlayer(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	player, err := NewCommandPlayer("true")
	require.NoError(t, err)
	assert.NoError(t, player.Play(context.Background(), []byte("RIFF")))
}

func TestCommandMicrophoneFinalizesStream(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	streamed, err := wav.Encode(make([]byte, 320), wav.Format{Channels: 1, SampleRate: 16000, BitDepth: 16})
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(streamed[40:], 0xFFFFFFFF)
	path := filepath.Join(t.TempDir(), "capture.wav")
	require.NoError(t, os.WriteFile(path, streamed, 0o644))

	mic, err := NewCommandMicrophone("cat " + path)
	require.NoError(t, err)
	rec, err := mic.Open(context.Background())
	require.NoError(t, err)

	select {
	case <-rec.(*commandRecording).done:
	case <-time.After(2 * time.Second):
		t.Fatal("recorder did not exit")
	}

	clip, err := rec.Stop()
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", clip.MIMEType)

	h, err := wav.ParseHeader(clip.Data)
	require.NoError(t, err)
	assert.Equal(t, uint32(320), h.Subchunk2Size)
}

// writeRecorder creates an executable shell script standing in for a recorder.
func writeRecorder(t *testing.T, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "recorder")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestCommandMicrophoneFailsToOpenDevice(t *testing.T) {
	path := writeRecorder(t, "echo 'audio open error' >&2\nexit 1")

	mic, err := NewCommandMicrophone(path)
	require.NoError(t, err)
	rec, err := mic.Open(context.Background())
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.Contains(t, err.Error(), "audio open error")

	var derr *DeviceError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "microphone", derr.Device)
}

func TestCommandMicrophoneFailsBeforeStop(t *testing.T) {
	path := writeRecorder(t, "sleep 0.4\necho 'device lost' >&2\nexit 1")

	mic, err := NewCommandMicrophone(path)
	require.NoError(t, err)
	rec, err := mic.Open(context.Background())
	require.NoError(t, err)

	select {
	case <-rec.(*commandRecording).done:
	case <-time.After(2 * time.Second):
		t.Fatal("recorder did not exit")
	}

	_, err = rec.Stop()
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.NotErrorIs(t, err, ErrEmptyRecording)
	assert.Contains(t, err.Error(), "device lost")
}

func TestControllerReportsUnopenableMicrophone(t *testing.T) {
	path := writeRecorder(t, "echo 'audio open error' >&2\nexit 1")
	mic, err := NewCommandMicrophone(path)
	require.NoError(t, err)

	c := NewController(mic, newFakePlayer(), noTranscribe, nil)
	err = c.StartRecording(context.Background())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.Equal(t, MicIdle, c.MicState())
}
