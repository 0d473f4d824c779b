// Package kvstore is the device-local string key-value store backing the
// record snapshot, the backend descriptor and the persisted session.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/harborline/internal/shared/logger"
)

// EntryModel is the GORM model for the kv_entries table
type EntryModel struct {
	Key       string    `gorm:"column:entry_key;type:varchar(191);primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (EntryModel) TableName() string {
	return "kv_entries"
}

// Store is a string-keyed, string-valued table.
type Store struct {
	db     *gorm.DB
	logger logger.Interface
}

// New migrates the kv table if needed and returns a store on db.
func New(db *gorm.DB, log logger.Interface) (*Store, error) {
	if err := db.AutoMigrate(&EntryModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv store: %w", err)
	}
	return &Store{db: db, logger: log}, nil
}

// Get returns the value under key. A missing key is ("", false, nil).
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var model EntryModel

	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		s.logger.Errorw("failed to read kv entry", "key", key, "error", err)
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return model.Value, true, nil
}

// Set writes value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	model := EntryModel{Key: key, Value: value}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		s.logger.Errorw("failed to write kv entry", "key", key, "error", err)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	return nil
}

// Delete removes key. Removing a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&EntryModel{}).Error
	if err != nil {
		s.logger.Errorw("failed to delete kv entry", "key", key, "error", err)
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
