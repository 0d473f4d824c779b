package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/infrastructure/auth"
	"github.com/orris-inc/harborline/internal/infrastructure/auth/authtest"
	"github.com/orris-inc/harborline/internal/infrastructure/database"
	"github.com/orris-inc/harborline/internal/infrastructure/kvstore"
	"github.com/orris-inc/harborline/internal/shared/config"
	"github.com/orris-inc/harborline/internal/shared/logger"
)

type fixture struct {
	fake     *authtest.Provider
	provider *auth.Provider
	kv       *kvstore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewDiscardLogger()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "local.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	kv, err := kvstore.New(db, log)
	require.NoError(t, err)

	fake := authtest.New(t, "harborline-cli", "user-7", "deck@example.com")
	provider := auth.NewProvider(backend.Config{
		APIKey:     "harborline-cli",
		AuthDomain: fake.URL(),
		ProjectID:  "harborline",
		OrgKey:     "acme",
	}, config.AuthConfig{})

	return &fixture{fake: fake, provider: provider, kv: kv}
}

func (f *fixture) monitor() *Monitor {
	return NewMonitor(f.provider, f.kv, Options{
		CallbackTimeout: 5 * time.Second,
		Opener:          authtest.FollowRedirects,
	}, logger.NewDiscardLogger())
}

type reports chan *backend.Identity

func (r reports) report(who *backend.Identity) { r <- who }

func (r reports) next(t *testing.T) *backend.Identity {
	t.Helper()
	select {
	case who := <-r:
		return who
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for identity report")
		return nil
	}
}

func TestMonitor_StartWithoutSessionReportsNobody(t *testing.T) {
	f := newFixture(t)
	m := f.monitor()
	r := make(reports, 4)

	m.Start(context.Background(), r.report)
	defer m.Stop()

	assert.Nil(t, r.next(t))
	assert.Nil(t, m.Current())
}

func TestMonitor_SignInPersistsAndRestores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.monitor()
	r1 := make(reports, 4)
	first.Start(ctx, r1.report)
	assert.Nil(t, r1.next(t))

	require.NoError(t, first.SignIn(ctx))
	who := r1.next(t)
	require.NotNil(t, who)
	assert.Equal(t, "user-7", who.ID)
	first.Stop()

	_, ok, err := f.kv.Get(ctx, SessionKey)
	require.NoError(t, err)
	assert.True(t, ok)

	// A new process restores the same identity without interaction.
	second := f.monitor()
	r2 := make(reports, 4)
	second.Start(ctx, r2.report)
	defer second.Stop()

	restored := r2.next(t)
	require.NotNil(t, restored)
	assert.Equal(t, "user-7", restored.ID)
	assert.Equal(t, "deck@example.com", restored.Email)
}

func TestMonitor_SignOutClearsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.monitor()
	r := make(reports, 4)

	m.Start(ctx, r.report)
	defer m.Stop()
	assert.Nil(t, r.next(t))

	require.NoError(t, m.SignIn(ctx))
	require.NotNil(t, r.next(t))

	require.NoError(t, m.SignOut(ctx))
	assert.Nil(t, r.next(t))

	_, ok, err := f.kv.Get(ctx, SessionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMonitor_RevokedSessionIsErased(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fake.SetTokenTTL(time.Second)

	m := f.monitor()
	r := make(reports, 4)
	m.Start(ctx, r.report)
	assert.Nil(t, r.next(t))
	require.NoError(t, m.SignIn(ctx))
	require.NotNil(t, r.next(t))
	m.Stop()

	f.fake.RevokeAll()

	restarted := f.monitor()
	r2 := make(reports, 4)
	restarted.Start(ctx, r2.report)
	defer restarted.Stop()

	assert.Nil(t, r2.next(t))
	_, ok, err := f.kv.Get(ctx, SessionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMonitor_MalformedSessionIsErased(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, SessionKey, "garbage"))

	m := f.monitor()
	r := make(reports, 4)
	m.Start(ctx, r.report)
	defer m.Stop()

	assert.Nil(t, r.next(t))
	_, ok, err := f.kv.Get(ctx, SessionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMonitor_SignInWithoutOpenerFails(t *testing.T) {
	f := newFixture(t)
	m := NewMonitor(f.provider, f.kv, Options{}, logger.NewDiscardLogger())

	assert.Error(t, m.SignIn(context.Background()))
}

func TestMonitor_StopSilencesReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.monitor()
	r := make(reports, 4)

	m.Start(ctx, r.report)
	assert.Nil(t, r.next(t))
	m.Stop()

	require.NoError(t, m.SignOut(ctx))
	select {
	case who := <-r:
		t.Fatalf("report after Stop: %v", who)
	case <-time.After(50 * time.Millisecond):
	}
}
