// Package wav encodes raw linear PCM into minimal WAV containers and splices
// sequential WAV buffers of one voice configuration into a single stream.
package wav
