package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrNotFound = errors.New("key not found")

// Backend is a byte-oriented key-value store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all entries or none of them.
	SetMany(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, key string) error
}

// StoreWriteError reports a failed serialization or backend write.
type StoreWriteError struct {
	Key string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store write %q: %v", e.Key, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}

// KV stores JSON values in a Backend under an optional key prefix.
type KV struct {
	backend Backend
	prefix  string
	timeout time.Duration
	logger  *zap.Logger
}

func NewKV(backend Backend, timeout time.Duration, logger *zap.Logger) *KV {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KV{backend: backend, timeout: timeout, logger: logger}
}

// Namespace returns a view of s whose keys all start with prefix.
func (s *KV) Namespace(prefix string) *KV {
	ns := *s
	ns.prefix = s.prefix + prefix
	ns.logger = s.logger.With(zap.String("namespace", ns.prefix))
	return &ns
}

func (s *KV) Key(key string) string {
	return s.prefix + key
}

func (s *KV) context() (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), s.timeout)
}

// Load decodes the value stored under key. Missing, unreadable or
// malformed data yields def.
func Load[T any](s *KV, key string, def T) T {
	ctx, cancel := s.context()
	defer cancel()

	data, err := s.backend.Get(ctx, s.Key(key))
	if errors.Is(err, ErrNotFound) {
		return def
	}
	if err != nil {
		s.logger.Warn("store read failed", zap.String("key", key), zap.Error(err))
		return def
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		s.logger.Warn("discarding malformed stored value", zap.String("key", key), zap.Error(err))
		return def
	}
	return value
}

func (s *KV) Save(key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return s.writeFailed(key, err)
	}

	ctx, cancel := s.context()
	defer cancel()

	if err := s.backend.Set(ctx, s.Key(key), payload); err != nil {
		return s.writeFailed(key, err)
	}
	return nil
}

// SaveAll writes every entry in a single backend transaction.
func (s *KV) SaveAll(entries map[string]any) error {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	joined := strings.Join(keys, ",")

	payloads := make(map[string][]byte, len(entries))
	for _, key := range keys {
		payload, err := json.Marshal(entries[key])
		if err != nil {
			return s.writeFailed(key, err)
		}
		payloads[s.Key(key)] = payload
	}

	ctx, cancel := s.context()
	defer cancel()

	if err := s.backend.SetMany(ctx, payloads); err != nil {
		return s.writeFailed(joined, err)
	}
	return nil
}

func (s *KV) Remove(key string) {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.backend.Delete(ctx, s.Key(key)); err != nil {
		s.logger.Error("store remove failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *KV) writeFailed(key string, err error) error {
	s.logger.Error("store write failed", zap.String("key", key), zap.Error(err))
	return &StoreWriteError{Key: key, Err: err}
}
