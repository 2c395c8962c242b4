package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// HeaderSize is the size of the canonical PCM WAV header.
const HeaderSize = 44

const (
	riffSizeOffset = 4
	dataSizeOffset = 40
)

// ErrFormatMismatch is returned by MergeSequential when the inputs do not share
// channel count, sample rate and bit depth.
var ErrFormatMismatch = errors.New("wav buffers have different formats")

// Format describes the PCM layout of a WAV stream.
type Format struct {
	Channels   uint16 `json:"channels"`
	SampleRate uint32 `json:"sample_rate"`
	BitDepth   uint16 `json:"bit_depth"`
}

// SpeechFormat is what the speech synthesis service produces: mono 24 kHz 16-bit.
var SpeechFormat = Format{Channels: 1, SampleRate: 24000, BitDepth: 16}

func (f Format) validate() error {
	if f.Channels == 0 {
		return fmt.Errorf("channel count must be positive")
	}
	if f.SampleRate == 0 {
		return fmt.Errorf("sample rate must be positive")
	}
	if f.BitDepth == 0 || f.BitDepth%8 != 0 {
		return fmt.Errorf("bit depth must be a positive multiple of 8, got %d", f.BitDepth)
	}
	return nil
}

func (f Format) blockAlign() uint16 {
	return f.Channels * f.BitDepth / 8
}

// Header represents the header structure of a WAV file
type Header struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // len(data) + 36
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // len(data)
}

// PCMFormat returns the channel count, sample rate and bit depth of the header.
func (h Header) PCMFormat() Format {
	return Format{Channels: h.NumChannels, SampleRate: h.SampleRate, BitDepth: h.BitsPerSample}
}

func newHeader(f Format, dataSize uint32) Header {
	return Header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   f.Channels,
		SampleRate:    f.SampleRate,
		ByteRate:      f.SampleRate * uint32(f.blockAlign()),
		BlockAlign:    f.blockAlign(),
		BitsPerSample: f.BitDepth,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}
}

// Encode wraps little-endian PCM samples in a 44-byte WAV header.
func Encode(pcm []byte, f Format) ([]byte, error) {
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid wav format: %w", err)
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+len(pcm)))
	if err := binary.Write(buf, binary.LittleEndian, newHeader(f, uint32(len(pcm)))); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}
	buf.Write(pcm)
	return buf.Bytes(), nil
}

// ParseHeader decodes and validates the first 44 bytes of data.
func ParseHeader(data []byte) (Header, error) {
	var h Header
	if err := Validate(data); err != nil {
		return h, err
	}
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("failed to read WAV header: %w", err)
	}
	return h, nil
}

// Validate checks the RIFF/WAVE/fmt/data markers without touching the samples.
func Validate(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("WAV data too short: need at least %d bytes, got %d", HeaderSize, len(data))
	}
	if string(data[0:4]) != "RIFF" {
		return fmt.Errorf("invalid WAV file: missing RIFF header")
	}
	if string(data[8:12]) != "WAVE" {
		return fmt.Errorf("invalid WAV file: missing WAVE format")
	}
	if string(data[12:16]) != "fmt " {
		return fmt.Errorf("invalid WAV file: missing fmt chunk")
	}
	if string(data[36:40]) != "data" {
		return fmt.Errorf("invalid WAV file: missing data chunk")
	}
	return nil
}

// MergeSequential concatenates the sample regions of bufs in order behind the
// first buffer's header, rewriting both size fields. A single buffer is
// returned as is and no buffers yield an empty result.
func MergeSequential(bufs [][]byte) ([]byte, error) {
	switch len(bufs) {
	case 0:
		return nil, nil
	case 1:
		return bufs[0], nil
	}

	first, err := ParseHeader(bufs[0])
	if err != nil {
		return nil, fmt.Errorf("buffer 0: %w", err)
	}
	want := first.PCMFormat()

	total := 0
	for i, b := range bufs {
		h, err := ParseHeader(b)
		if err != nil {
			return nil, fmt.Errorf("buffer %d: %w", i, err)
		}
		if got := h.PCMFormat(); got != want {
			return nil, fmt.Errorf("buffer %d is %+v, want %+v: %w", i, got, want, ErrFormatMismatch)
		}
		total += len(b) - HeaderSize
	}

	out := make([]byte, HeaderSize, HeaderSize+total)
	copy(out, bufs[0][:HeaderSize])
	for _, b := range bufs {
		out = append(out, b[HeaderSize:]...)
	}
	binary.LittleEndian.PutUint32(out[riffSizeOffset:], uint32(total+36))
	binary.LittleEndian.PutUint32(out[dataSizeOffset:], uint32(total))
	return out, nil
}

// Info is WAV metadata for logs and listings.
type Info struct {
	Format
	DataSize uint32        `json:"data_size_bytes"`
	Duration time.Duration `json:"duration"`
}

// InfoOf extracts metadata from a WAV file
func InfoOf(data []byte) (*Info, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.SampleRate == 0 || h.BlockAlign == 0 {
		return nil, fmt.Errorf("invalid WAV header: sample rate %d, block align %d", h.SampleRate, h.BlockAlign)
	}
	frames := h.Subchunk2Size / uint32(h.BlockAlign)
	return &Info{
		Format:   h.PCMFormat(),
		DataSize: h.Subchunk2Size,
		Duration: time.Duration(float64(frames) / float64(h.SampleRate) * float64(time.Second)),
	}, nil
}

// Duration returns the playing time declared by the header.
func Duration(data []byte) (time.Duration, error) {
	info, err := InfoOf(data)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

// Finalize returns a copy of data with both size fields matching its actual
// length. Recorders that stream to a pipe cannot seek back and leave
// placeholder sizes in the header.
func Finalize(data []byte) ([]byte, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	out := append([]byte(nil), data...)
	n := uint32(len(out) - HeaderSize)
	binary.LittleEndian.PutUint32(out[riffSizeOffset:], n+36)
	binary.LittleEndian.PutUint32(out[dataSizeOffset:], n)
	return out, nil
}
