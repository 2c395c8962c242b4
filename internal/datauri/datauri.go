// Package datauri encodes and decodes base64 data URIs, the transport format
// for audio between the CLI and the server.
package datauri

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalid is returned for anything other than a base64 data URI.
var ErrInvalid = errors.New("invalid data URI")

// Parse splits "data:<mime>[;params];base64,<payload>" into its media type
// and decoded payload. Media type parameters are kept.
func Parse(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrInvalid
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalid
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrInvalid
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, ErrInvalid
	}
	return mimeType, data, nil
}

// Format is the inverse of Parse.
func Format(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// BaseMediaType drops parameters such as ";codecs=opus". An empty media type
// is reported as WAV.
func BaseMediaType(mediaType string) string {
	base, _, _ := strings.Cut(mediaType, ";")
	base = strings.TrimSpace(base)
	if base == "" {
		return "audio/wav"
	}
	return base
}
