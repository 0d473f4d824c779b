// Package docstore is a collection-addressed JSON document store on a SQL
// database, with access checks on every call and change notification after
// every write.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/orris-inc/harborline/internal/infrastructure/permission"
	"github.com/orris-inc/harborline/internal/infrastructure/pubsub"
	"github.com/orris-inc/harborline/internal/shared/biztime"
	apperrors "github.com/orris-inc/harborline/internal/shared/errors"
	"github.com/orris-inc/harborline/internal/shared/id"
	"github.com/orris-inc/harborline/internal/shared/logger"
	"github.com/orris-inc/harborline/internal/shared/mapper"
)

// Authorizer decides whether a principal may act on a collection path.
type Authorizer interface {
	Enforce(subject string, path string, action string) (bool, error)
}

// Notifier carries per-collection change events between clients.
type Notifier interface {
	Publish(ctx context.Context, collection, documentID string, op pubsub.DocChangeOp) error
	Subscribe(ctx context.Context, collection string, handler pubsub.DocChangeHandler, onClosed func(error)) (*pubsub.DocChangeSubscription, error)
}

type Store struct {
	db       *gorm.DB
	authz    Authorizer
	notifier Notifier
	logger   logger.Interface
}

func New(db *gorm.DB, authz Authorizer, notifier Notifier, log logger.Interface) *Store {
	return &Store{
		db:       db,
		authz:    authz,
		notifier: notifier,
		logger:   log,
	}
}

func (s *Store) authorize(principal, collection, action string) error {
	allowed, err := s.authz.Enforce(principal, collection, action)
	if err != nil {
		return fmt.Errorf("failed to check access to %s: %w", collection, err)
	}
	if !allowed {
		return apperrors.NewForbiddenError("access denied", fmt.Sprintf("%s on %s", action, collection))
	}
	return nil
}

func (s *Store) announce(ctx context.Context, collection, docID string, op pubsub.DocChangeOp) {
	// The write is durable at this point; a lost notification only delays
	// watchers until the next change.
	if err := s.notifier.Publish(ctx, collection, docID, op); err != nil {
		s.logger.Warnw("document change not announced", "collection", collection, "document_id", docID, "error", err)
	}
}

// Create stores data under a server-assigned id and returns the id.
func (s *Store) Create(ctx context.Context, principal, collection, sortKey string, data []byte) (string, error) {
	if err := s.authorize(principal, collection, permission.ActionWrite); err != nil {
		return "", err
	}

	docID, err := id.NewDocumentID()
	if err != nil {
		return "", fmt.Errorf("failed to generate document id: %w", err)
	}

	model := DocumentModel{
		Collection: collection,
		ID:         docID,
		SortKey:    sortKeyOf(sortKey),
		Data:       datatypes.JSON(data),
	}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		s.logger.Errorw("failed to create document", "collection", collection, "error", err)
		return "", fmt.Errorf("failed to create document: %w", err)
	}

	s.announce(ctx, collection, docID, pubsub.DocChangeCreate)
	return docID, nil
}

// Get returns one document or a not-found error.
func (s *Store) Get(ctx context.Context, principal, collection, docID string) (*Document, error) {
	if err := s.authorize(principal, collection, permission.ActionRead); err != nil {
		return nil, err
	}

	var model DocumentModel
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, docID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("document not found", collection+"/"+docID)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc := toDocument(&model)
	return &doc, nil
}

// Update rewrites an existing document. apply receives the stored payload
// and returns the replacement; it runs inside the write transaction.
func (s *Store) Update(ctx context.Context, principal, collection, docID, sortKey string, apply func(current []byte) ([]byte, error)) error {
	if err := s.authorize(principal, collection, permission.ActionWrite); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model DocumentModel
		if err := tx.Where("collection = ? AND id = ?", collection, docID).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFoundError("document not found", collection+"/"+docID)
			}
			return fmt.Errorf("failed to load document: %w", err)
		}

		next, err := apply([]byte(model.Data))
		if err != nil {
			return err
		}

		return tx.Model(&DocumentModel{}).
			Where("collection = ? AND id = ?", collection, docID).
			Updates(map[string]interface{}{
				"sort_key":   sortKeyOf(sortKey),
				"data":       datatypes.JSON(next),
				"updated_at": biztime.NowUTC(),
			}).Error
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.logger.Errorw("failed to update document", "collection", collection, "document_id", docID, "error", err)
		return fmt.Errorf("failed to update document: %w", err)
	}

	s.announce(ctx, collection, docID, pubsub.DocChangeUpdate)
	return nil
}

// Delete removes a document. Deleting a missing document succeeds.
func (s *Store) Delete(ctx context.Context, principal, collection, docID string) error {
	if err := s.authorize(principal, collection, permission.ActionWrite); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, docID).
		Delete(&DocumentModel{})
	if result.Error != nil {
		s.logger.Errorw("failed to delete document", "collection", collection, "document_id", docID, "error", result.Error)
		return fmt.Errorf("failed to delete document: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.announce(ctx, collection, docID, pubsub.DocChangeDelete)
	}
	return nil
}

// List returns every document in collection ordered by sort key, then id.
func (s *Store) List(ctx context.Context, principal, collection string) ([]Document, error) {
	if err := s.authorize(principal, collection, permission.ActionRead); err != nil {
		return nil, err
	}
	return s.list(ctx, collection)
}

func (s *Store) list(ctx context.Context, collection string) ([]Document, error) {
	var modelList []*DocumentModel

	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("sort_key ASC, id ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return mapper.MapSlice(modelList, toDocument), nil
}

// sortKeyOf folds case so the database order is close to display order.
func sortKeyOf(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if r := []rune(key); len(r) > 255 {
		key = string(r[:255])
	}
	return key
}
