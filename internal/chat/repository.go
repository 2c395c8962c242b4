package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// ThreadsKey is the storage key holding the JSON array of all threads.
const ThreadsKey = "medaid-chat-threads"

// KV is the durable key/value storage the threads are written to.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Repository persists the whole thread collection under ThreadsKey.
type Repository struct {
	kv     KV
	logger *slog.Logger
}

func NewRepository(kv KV, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{kv: kv, logger: logger}
}

// Persist writes threads as one JSON array. An empty collection removes the key.
func (r *Repository) Persist(ctx context.Context, threads []Thread) error {
	if len(threads) == 0 {
		if err := r.kv.Delete(ctx, ThreadsKey); err != nil {
			return fmt.Errorf("failed to clear stored threads: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(threads)
	if err != nil {
		return fmt.Errorf("failed to encode threads: %w", err)
	}
	if err := r.kv.Set(ctx, ThreadsKey, string(data)); err != nil {
		return fmt.Errorf("failed to store threads: %w", err)
	}
	return nil
}

// Load reads the stored threads. Missing or unreadable state yields an empty
// slice; failures are logged, never returned.
func (r *Repository) Load(ctx context.Context) []Thread {
	value, found, err := r.kv.Get(ctx, ThreadsKey)
	if err != nil {
		r.logger.Warn("failed to read stored threads, starting without history", "error", err)
		return []Thread{}
	}
	if !found {
		return []Thread{}
	}

	var threads []Thread
	if err := json.Unmarshal([]byte(value), &threads); err != nil {
		r.logger.Warn("stored threads are malformed, starting without history", "error", err)
		return []Thread{}
	}
	if threads == nil {
		return []Thread{}
	}
	return threads
}
