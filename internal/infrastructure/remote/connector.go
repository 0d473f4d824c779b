// Package remote assembles a connected shared backend from a descriptor:
// document database, change bus, access rules and identity provider.
package remote

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/infrastructure/auth"
	"github.com/orris-inc/harborline/internal/infrastructure/database"
	"github.com/orris-inc/harborline/internal/infrastructure/docstore"
	"github.com/orris-inc/harborline/internal/infrastructure/migration"
	"github.com/orris-inc/harborline/internal/infrastructure/permission"
	"github.com/orris-inc/harborline/internal/infrastructure/pubsub"
	"github.com/orris-inc/harborline/internal/infrastructure/remotestore"
	"github.com/orris-inc/harborline/internal/infrastructure/session"
	"github.com/orris-inc/harborline/internal/shared/config"
	"github.com/orris-inc/harborline/internal/shared/errors"
	"github.com/orris-inc/harborline/internal/shared/logger"
)

// DBOpener opens the document database named by a descriptor.
type DBOpener func(ctx context.Context, cfg backend.Config) (*gorm.DB, error)

type Options struct {
	Remote config.RemoteConfig
	Auth   config.AuthConfig
	// Sessions is the device-local slot store for the provider token.
	Sessions session.KV
	// Browser opens the provider sign-in page.
	Browser auth.Opener
	// OpenDB defaults to MySQL with the descriptor's project id as database.
	OpenDB DBOpener
	Logger logger.Interface
}

type Connector struct {
	opts   Options
	logger logger.Interface
}

var _ assets.BackendConnector = (*Connector)(nil)

func NewConnector(opts Options) *Connector {
	if opts.Logger == nil {
		opts.Logger = logger.NewDiscardLogger()
	}
	c := &Connector{opts: opts, logger: opts.Logger.With("component", "remote.connector")}
	if c.opts.OpenDB == nil {
		c.opts.OpenDB = c.openMySQL
	}
	return c
}

func (c *Connector) openMySQL(_ context.Context, cfg backend.Config) (*gorm.DB, error) {
	return database.OpenMySQL(&c.opts.Remote.Database, cfg.ProjectID, c.opts.Logger)
}

// Connect opens every remote dependency of cfg. Anything opened before a
// failing step is released again.
func (c *Connector) Connect(ctx context.Context, cfg backend.Config) (_ *assets.Backend, err error) {
	if verr := cfg.Validate(); verr != nil {
		return nil, errors.NewValidationError("invalid backend configuration", verr.Error())
	}

	var closers []func() error
	release := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return stderrors.Join(errs...)
	}
	defer func() {
		if err != nil {
			if cerr := release(); cerr != nil {
				c.logger.Warnw("failed to release partial backend", "error", cerr)
			}
		}
	}()

	db, err := c.opts.OpenDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open document database: %w", err)
	}
	closers = append(closers, func() error { return database.Close(db) })

	if err := migration.NewGooseMigrator(c.opts.Logger).Migrate(ctx, db); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.opts.Remote.Redis.GetAddr(),
		Password: c.opts.Remote.Redis.Password,
		DB:       c.opts.Remote.Redis.DB,
	})
	closers = append(closers, rdb.Close)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	enforcer, err := permission.NewEnforcer(db, c.opts.Logger)
	if err != nil {
		return nil, err
	}
	if err := permission.InitTenantPolicies(enforcer); err != nil {
		return nil, err
	}

	docs := docstore.New(db, enforcer, pubsub.NewRedisDocChangeBus(rdb, c.opts.Logger), c.opts.Logger)
	monitor := session.NewMonitor(auth.NewProvider(cfg, c.opts.Auth), c.opts.Sessions, session.Options{
		RedirectPort:    c.opts.Auth.RedirectPort,
		CallbackTimeout: c.opts.Auth.CallbackTimeout(),
		Opener:          c.opts.Browser,
	}, c.opts.Logger)

	c.logger.Infow("backend ready",
		"project_id", cfg.ProjectID,
		"namespace", cfg.Namespace(),
		"redis", c.opts.Remote.Redis.GetAddr(),
	)

	return &assets.Backend{
		Records:  remotestore.New(docs, c.opts.Logger),
		Sessions: monitor,
		Close:    release,
	}, nil
}
