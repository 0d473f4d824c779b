// Package configstore keeps the backend descriptor on the device, shadowed by
// a deployment-injected descriptor when one is present.
package configstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/shared/config"
	"github.com/orris-inc/harborline/internal/shared/errors"
	"github.com/orris-inc/harborline/internal/shared/logger"
)

// BackendKey is the storage slot of the backend descriptor.
const BackendKey = "harborline.backend"

var _ assets.ConfigStore = (*Store)(nil)

type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Store struct {
	kv       KV
	injected *backend.Config
	logger   logger.Interface
}

// New returns a store over kv. A set override wins over anything stored and
// makes the store read-only.
func New(kv KV, override config.BackendOverride, log logger.Interface) *Store {
	s := &Store{kv: kv, logger: log}
	if override.IsSet() {
		s.injected = &backend.Config{
			APIKey:     override.APIKey,
			AuthDomain: override.AuthDomain,
			ProjectID:  override.ProjectID,
			OrgKey:     override.OrgKey,
		}
	}
	return s
}

func (s *Store) ReadOnly() bool {
	return s.injected != nil
}

// Load returns the effective descriptor, or nil when none is stored or the
// stored value cannot be decoded.
func (s *Store) Load(ctx context.Context) *backend.Config {
	if s.injected != nil {
		cfg := *s.injected
		return &cfg
	}

	raw, ok, err := s.kv.Get(ctx, BackendKey)
	if err != nil {
		s.logger.Warnw("failed to read backend configuration", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var cfg backend.Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		s.logger.Warnw("stored backend configuration is malformed", "error", err)
		return nil
	}
	return &cfg
}

func (s *Store) Save(ctx context.Context, cfg backend.Config) error {
	if s.injected != nil {
		return errors.NewForbiddenError("backend configuration is provided by the deployment and cannot be changed")
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode backend configuration: %w", err)
	}
	if err := s.kv.Set(ctx, BackendKey, string(data)); err != nil {
		return fmt.Errorf("failed to save backend configuration: %w", err)
	}

	s.logger.Infow("backend configuration saved", "project_id", cfg.ProjectID, "org_key", cfg.OrgKey)
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if s.injected != nil {
		return errors.NewForbiddenError("backend configuration is provided by the deployment and cannot be changed")
	}
	if err := s.kv.Delete(ctx, BackendKey); err != nil {
		return fmt.Errorf("failed to clear backend configuration: %w", err)
	}
	return nil
}
