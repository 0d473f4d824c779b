package docstore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/harborline/internal/infrastructure/database"
	"github.com/orris-inc/harborline/internal/infrastructure/migration"
	"github.com/orris-inc/harborline/internal/infrastructure/permission"
	"github.com/orris-inc/harborline/internal/infrastructure/pubsub"
	apperrors "github.com/orris-inc/harborline/internal/shared/errors"
	"github.com/orris-inc/harborline/internal/shared/logger"
)

const vessels = "tenants/acme/vessels"

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	log := logger.NewDiscardLogger()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "remote.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, migration.NewGooseMigrator(log).Migrate(context.Background(), db))

	enforcer, err := permission.NewEnforcer(db, log)
	require.NoError(t, err)
	require.NoError(t, permission.InitTenantPolicies(enforcer))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(db, enforcer, pubsub.NewRedisDocChangeBus(client, log), log)
}

func payload(t *testing.T, name string) []byte {
	data, err := json.Marshal(map[string]string{"name": name})
	require.NoError(t, err)
	return data
}

func names(t *testing.T, docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		var p map[string]string
		require.NoError(t, json.Unmarshal(d.Data, &p))
		out = append(out, p["name"])
	}
	return out
}

func TestStore_CRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "u1", vessels, "Zephyr", payload(t, "Zephyr"))
	require.NoError(t, err)
	assert.Len(t, id, 20)

	_, err = s.Create(ctx, "u1", vessels, "anchor", payload(t, "anchor"))
	require.NoError(t, err)

	docs, err := s.List(ctx, "u1", vessels)
	require.NoError(t, err)
	assert.Equal(t, []string{"anchor", "Zephyr"}, names(t, docs))

	err = s.Update(ctx, "u1", vessels, id, "Aurora", func(current []byte) ([]byte, error) {
		assert.JSONEq(t, `{"name":"Zephyr"}`, string(current))
		return payload(t, "Aurora"), nil
	})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "u1", vessels, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Aurora"}`, string(doc.Data))

	require.NoError(t, s.Delete(ctx, "u1", vessels, id))
	require.NoError(t, s.Delete(ctx, "u1", vessels, id))

	_, err = s.Get(ctx, "u1", vessels, id)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestStore_UpdateMissingIsNotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.Update(context.Background(), "u1", vessels, "nope", "x", func(current []byte) ([]byte, error) {
		t.Fatal("apply must not run for a missing document")
		return nil, nil
	})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestStore_CollectionsAreIsolated(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "u1", vessels, "a", payload(t, "a"))
	require.NoError(t, err)

	docs, err := s.List(ctx, "u1", "tenants/globex/vessels")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestStore_AnonymousIsForbidden(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "", vessels, "a", payload(t, "a"))
	assert.True(t, apperrors.IsForbiddenError(err))

	_, err = s.List(ctx, "", vessels)
	assert.True(t, apperrors.IsForbiddenError(err))

	_, err = s.Watch(ctx, "", vessels, func([]Document) {}, func(error) {})
	assert.True(t, apperrors.IsForbiddenError(err))
}

func TestStore_WatchDeliversSnapshots(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "u1", vessels, "first", payload(t, "first"))
	require.NoError(t, err)

	snapshots := make(chan []string, 8)
	w, err := s.Watch(ctx, "u1", vessels, func(docs []Document) {
		snapshots <- names(t, docs)
	}, func(err error) {
		t.Errorf("unexpected watch error: %v", err)
	})
	require.NoError(t, err)
	defer w.Close()

	// Initial snapshot is delivered before Watch returns.
	select {
	case got := <-snapshots:
		assert.Equal(t, []string{"first"}, got)
	default:
		t.Fatal("initial snapshot not delivered")
	}

	_, err = s.Create(ctx, "u1", vessels, "second", payload(t, "second"))
	require.NoError(t, err)

	select {
	case got := <-snapshots:
		assert.Equal(t, []string{"first", "second"}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change snapshot")
	}

	require.NoError(t, w.Close())

	_, err = s.Create(ctx, "u1", vessels, "third", payload(t, "third"))
	require.NoError(t, err)

	select {
	case got := <-snapshots:
		t.Fatalf("snapshot after close: %v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStore_WatchFailsAfterRevocation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	enforcer := s.authz.(*permission.Enforcer)

	failures := make(chan error, 1)
	w, err := s.Watch(ctx, "u1", vessels, func([]Document) {}, func(err error) {
		failures <- err
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, enforcer.RevokeTenant("u1", "acme"))
	_, err = s.Create(ctx, "u2", vessels, "after", payload(t, "after"))
	require.NoError(t, err)

	select {
	case err := <-failures:
		assert.True(t, apperrors.IsForbiddenError(err))
	case <-time.After(2 * time.Second):
		t.Fatal("revoked watcher was not failed")
	}
}
