package wav

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcm(n int, fill byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return b
}

func TestEncode(t *testing.T) {
	samples := pcm(480, 7)

	data, err := Encode(samples, SpeechFormat)
	require.NoError(t, err)
	require.Len(t, data, HeaderSize+len(samples))
	require.NoError(t, Validate(data))

	h, err := ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(samples)+36), h.ChunkSize)
	assert.Equal(t, uint32(len(samples)), h.Subchunk2Size)
	assert.Equal(t, uint16(1), h.AudioFormat)
	assert.Equal(t, SpeechFormat, h.PCMFormat())
	assert.Equal(t, uint32(48000), h.ByteRate)
	assert.Equal(t, uint16(2), h.BlockAlign)
	assert.Equal(t, samples, data[HeaderSize:])
}

func TestEncodeEmptyPCM(t *testing.T) {
	data, err := Encode(nil, SpeechFormat)
	require.NoError(t, err)
	assert.Len(t, data, HeaderSize)
	assert.Equal(t, uint32(36), binary.LittleEndian.Uint32(data[4:8]))
}

func TestEncodeInvalidFormat(t *testing.T) {
	tests := []struct {
		name string
		f    Format
	}{
		{"no channels", Format{Channels: 0, SampleRate: 8000, BitDepth: 16}},
		{"no sample rate", Format{Channels: 1, SampleRate: 0, BitDepth: 16}},
		{"odd bit depth", Format{Channels: 1, SampleRate: 8000, BitDepth: 12}},
		{"zero bit depth", Format{Channels: 1, SampleRate: 8000, BitDepth: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(pcm(4, 1), tt.f)
			assert.Error(t, err)
		})
	}
}

func TestMergeSequentialEmpty(t *testing.T) {
	out, err := MergeSequential(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMergeSequentialSingleIsIdentity(t *testing.T) {
	one, err := Encode(pcm(10, 3), SpeechFormat)
	require.NoError(t, err)

	out, err := MergeSequential([][]byte{one})
	require.NoError(t, err)
	assert.Equal(t, one, out)
}

func TestMergeSequentialSumsDataSizes(t *testing.T) {
	sizes := []int{100, 2, 58}
	var bufs [][]byte
	for i, n := range sizes {
		b, err := Encode(pcm(n, byte(i+1)), SpeechFormat)
		require.NoError(t, err)
		bufs = append(bufs, b)
	}

	out, err := MergeSequential(bufs)
	require.NoError(t, err)

	h, err := ParseHeader(out)
	require.NoError(t, err)
	assert.Equal(t, uint32(160), h.Subchunk2Size)
	assert.Equal(t, uint32(196), h.ChunkSize)
	assert.Len(t, out, HeaderSize+160)

	// samples keep input order
	assert.Equal(t, byte(1), out[HeaderSize])
	assert.Equal(t, byte(2), out[HeaderSize+100])
	assert.Equal(t, byte(3), out[HeaderSize+102])
	assert.Equal(t, byte(3), out[len(out)-1])
}

func TestMergeSequentialRejectsMismatchedFormats(t *testing.T) {
	a, err := Encode(pcm(8, 1), SpeechFormat)
	require.NoError(t, err)
	b, err := Encode(pcm(8, 1), Format{Channels: 2, SampleRate: 24000, BitDepth: 16})
	require.NoError(t, err)

	_, err = MergeSequential([][]byte{a, b})
	assert.ErrorIs(t, err, ErrFormatMismatch)
}

func TestMergeSequentialRejectsShortBuffer(t *testing.T) {
	a, err := Encode(pcm(8, 1), SpeechFormat)
	require.NoError(t, err)

	_, err = MergeSequential([][]byte{a, []byte("RIFF")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate([]byte{1, 2, 3}))

	fake := make([]byte, 50)
	copy(fake[0:4], "FAKE")
	assert.Error(t, Validate(fake))
}

func TestDuration(t *testing.T) {
	// one second of mono 16-bit audio at 8 kHz
	data, err := Encode(pcm(16000, 0), Format{Channels: 1, SampleRate: 8000, BitDepth: 16})
	require.NoError(t, err)

	d, err := Duration(data)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
}

func TestFinalizeRewritesPlaceholderSizes(t *testing.T) {
	data, err := Encode(pcm(100, 3), SpeechFormat)
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(data[riffSizeOffset:], 0xFFFFFFFF)
	binary.LittleEndian.PutUint32(data[dataSizeOffset:], 0xFFFFFFFF)

	fixed, err := Finalize(data)
	require.NoError(t, err)

	h, err := ParseHeader(fixed)
	require.NoError(t, err)
	assert.Equal(t, uint32(136), h.ChunkSize)
	assert.Equal(t, uint32(100), h.Subchunk2Size)
	assert.Equal(t, uint32(0xFFFFFFFF), binary.LittleEndian.Uint32(data[dataSizeOffset:]), "input must not be modified")

	_, err = Finalize([]byte("RIFF"))
	assert.Error(t, err)
}
