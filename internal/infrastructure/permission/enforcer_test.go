package permission

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orris-inc/harborline/internal/infrastructure/database"
	"github.com/orris-inc/harborline/internal/shared/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "remote.db"), logger.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestEnforcer_TenantRule(t *testing.T) {
	e, err := NewEnforcer(openDB(t), logger.NewDiscardLogger())
	require.NoError(t, err)
	require.NoError(t, InitTenantPolicies(e))

	tests := []struct {
		name    string
		subject string
		path    string
		action  string
		want    bool
	}{
		{name: "signed-in read", subject: "u1", path: "tenants/acme/vessels", action: ActionRead, want: true},
		{name: "signed-in write", subject: "u1", path: "tenants/acme/storageFacilities", action: ActionWrite, want: true},
		{name: "anonymous read", subject: "", path: "tenants/acme/vessels", action: ActionRead, want: false},
		{name: "outside tenants", subject: "u1", path: "system/config", action: ActionRead, want: false},
		{name: "unknown action", subject: "u1", path: "tenants/acme/vessels", action: "admin", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Enforce(tt.subject, tt.path, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitTenantPolicies_Idempotent(t *testing.T) {
	db := openDB(t)

	first, err := NewEnforcer(db, logger.NewDiscardLogger())
	require.NoError(t, err)
	require.NoError(t, InitTenantPolicies(first))
	require.NoError(t, InitTenantPolicies(first))

	// A second client on the same database sees the persisted rule.
	second, err := NewEnforcer(db, logger.NewDiscardLogger())
	require.NoError(t, err)
	ok, err := second.hasRule(defaultRules[0])
	require.NoError(t, err)
	assert.True(t, ok)

	rules, err := second.Rules()
	require.NoError(t, err)
	assert.Equal(t, defaultRules, rules)
	require.NoError(t, InitTenantPolicies(second))
}

func TestEnforcer_NoPolicyDeniesEverything(t *testing.T) {
	e, err := NewEnforcer(openDB(t), logger.NewDiscardLogger())
	require.NoError(t, err)

	ok, err := e.Enforce("u1", "tenants/acme/vessels", ActionRead)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnforcer_RevokeTenant(t *testing.T) {
	db := openDB(t)
	e, err := NewEnforcer(db, logger.NewDiscardLogger())
	require.NoError(t, err)
	require.NoError(t, InitTenantPolicies(e))
	peer, err := NewEnforcer(db, logger.NewDiscardLogger())
	require.NoError(t, err)

	require.NoError(t, e.RevokeTenant("u1", "acme"))

	check := func(subject, path string) bool {
		ok, err := e.Enforce(subject, path, ActionRead)
		require.NoError(t, err)
		return ok
	}
	assert.False(t, check("u1", "tenants/acme/vessels"))
	assert.True(t, check("u1", "tenants/globex/vessels"))
	assert.True(t, check("u2", "tenants/acme/vessels"))

	// Stored, so a client loading later sees the revocation too.
	other, err := NewEnforcer(db, logger.NewDiscardLogger())
	require.NoError(t, err)
	ok, err := other.Enforce("u1", "tenants/acme/storageFacilities", ActionWrite)
	require.NoError(t, err)
	assert.False(t, ok)

	// A client loaded before the change notices it once its rules age out.
	peer.loadedAt = time.Now().Add(-time.Minute)
	ok, err = peer.Enforce("u1", "tenants/acme/vessels", ActionRead)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, e.RestoreTenant("u1", "acme"))
	assert.True(t, check("u1", "tenants/acme/vessels"))
	require.NoError(t, e.RestoreTenant("u1", "acme"))
}
