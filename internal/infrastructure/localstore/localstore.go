// Package localstore persists the full record set as one JSON document in the
// device key-value store.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/shared/logger"
)

// RecordsKey is the storage slot of the record snapshot.
const RecordsKey = "harborline.records"

var _ assets.LocalStore = (*Store)(nil)

// KV is the slice of the key-value store this package needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Store struct {
	kv     KV
	logger logger.Interface
}

func New(kv KV, log logger.Interface) *Store {
	return &Store{kv: kv, logger: log}
}

// Load returns the persisted snapshot, or the sample dataset when the slot is
// empty or cannot be decoded.
func (s *Store) Load(ctx context.Context) asset.RecordSet {
	raw, ok, err := s.kv.Get(ctx, RecordsKey)
	if err != nil {
		s.logger.Warnw("failed to read local records, using sample data", "error", err)
		return asset.SampleRecordSet()
	}
	if !ok {
		return asset.SampleRecordSet()
	}

	var records asset.RecordSet
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.Warnw("local records are malformed, using sample data", "error", err)
		return asset.SampleRecordSet()
	}
	if records.Facilities == nil {
		records.Facilities = []asset.StorageFacility{}
	}
	if records.Vessels == nil {
		records.Vessels = []asset.Vessel{}
	}

	return records
}

// Save replaces the snapshot with both collections of records.
func (s *Store) Save(ctx context.Context, records asset.RecordSet) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode local records: %w", err)
	}

	if err := s.kv.Set(ctx, RecordsKey, string(data)); err != nil {
		return fmt.Errorf("failed to save local records: %w", err)
	}

	s.logger.Debugw("local records saved",
		"facilities", len(records.Facilities),
		"vessels", len(records.Vessels),
	)
	return nil
}
