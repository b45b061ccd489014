// Package store persists the current import behind a single fixed key. It is
// a durability boundary only: whatever the import pipeline produced is stored
// as-is, with no validation. Concurrent writers race last-write-wins.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/patrickmb/timetable-import-api/internal/models"
)

// currentImportKey is the one logical slot the application uses.
const currentImportKey = "timetable:import:current"

// StoredImport wraps the aggregate with its provenance.
type StoredImport struct {
	Data      *models.Timetable `json:"data"`
	Source    string            `json:"source"`
	Timestamp time.Time         `json:"timestamp"`
}

// ImportStore keeps the current import in Redis.
type ImportStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewImportStore constructs an import store. A zero ttl keeps the slot until
// it is overwritten or cleared.
func NewImportStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ImportStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportStore{client: client, ttl: ttl, logger: logger}
}

// Put overwrites the current import unconditionally.
func (s *ImportStore) Put(ctx context.Context, data *models.Timetable, source string) error {
	entry := StoredImport{Data: data, Source: source, Timestamp: time.Now().UTC()}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal import: %w", err)
	}

	if err := s.client.Set(ctx, currentImportKey, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", currentImportKey, err)
	}

	s.logger.Debug("stored current import", zap.String("source", source))
	return nil
}

// Get returns the current import, or nil when the slot is empty.
func (s *ImportStore) Get(ctx context.Context) (*StoredImport, error) {
	raw, err := s.client.Get(ctx, currentImportKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", currentImportKey, err)
	}

	var entry StoredImport
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal import: %w", err)
	}

	return &entry, nil
}

// Clear empties the slot. Clearing an already-empty slot is not an error.
func (s *ImportStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, currentImportKey).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", currentImportKey, err)
	}
	return nil
}
