package datauri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	uri := Format("audio/wav", []byte("RIFF"))
	assert.Equal(t, "data:audio/wav;base64,UklGRg==", uri)

	mediaType, data, err := Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", mediaType)
	assert.Equal(t, []byte("RIFF"), data)
}

func TestParseKeepsParameters(t *testing.T) {
	mediaType, _, err := Parse("data:audio/webm;codecs=opus;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "audio/webm;codecs=opus", mediaType)
	assert.Equal(t, "audio/webm", BaseMediaType(mediaType))
	assert.Equal(t, "audio/wav", BaseMediaType(""))
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{
		"",
		"audio/wav;base64,AAAA",
		"data:audio/wav,plain",
		"data:audio/wav;base64",
		"data:audio/wav;base64,!!notbase64",
	} {
		_, _, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalid, in)
	}
}
