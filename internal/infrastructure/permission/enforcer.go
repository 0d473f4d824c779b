// Package permission decides which principals may read or write tenant
// document paths. Rules live in the shared database so every client of a
// project enforces the same set.
package permission

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/orris-inc/harborline/internal/shared/logger"
)

// Actions checked against tenant document paths.
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

// SubjectAuthenticated matches any non-empty principal.
const SubjectAuthenticated = "authenticated"

// maxPolicyAge bounds how long rules changed by another client go unnoticed.
const maxPolicyAge = 5 * time.Second

const (
	effectAllow = "allow"
	effectDeny  = "deny"
	anyAction   = "(read)|(write)"
)

//go:embed model.conf
var modelText string

// Rule is one stored policy line.
type Rule struct {
	Subject string `json:"subject" yaml:"subject"`
	Path    string `json:"path" yaml:"path"`
	Actions string `json:"actions" yaml:"actions"`
	Effect  string `json:"effect" yaml:"effect"`
}

type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	loadedAt time.Time
	logger   logger.Interface
}

// NewEnforcer loads the tenant access model with policies stored in db.
func NewEnforcer(db *gorm.DB, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{enforcer: enforcer, loadedAt: time.Now(), logger: log}, nil
}

// Enforce reports whether subject may perform action on the document path.
// Rules older than maxPolicyAge are reloaded first.
func (e *Enforcer) Enforce(subject, path, action string) (bool, error) {
	if e.stale() {
		if err := e.LoadPolicy(); err != nil {
			e.logger.Warnw("policy refresh failed, using cached rules", "error", err)
		}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(subject, path, action)
	if err != nil {
		e.logger.Errorw("permission check failed", "error", err, "subject", subject, "path", path, "action", action)
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	return allowed, nil
}

func tenantPath(orgKey string) string {
	return "tenants/" + orgKey + "/*"
}

// RevokeTenant denies subject every action under the organization, whatever
// the allow rules say.
func (e *Enforcer) RevokeTenant(subject, orgKey string) error {
	return e.addRule(Rule{Subject: subject, Path: tenantPath(orgKey), Actions: anyAction, Effect: effectDeny})
}

// RestoreTenant lifts a RevokeTenant. Restoring a subject that was never
// revoked is a no-op.
func (e *Enforcer) RestoreTenant(subject, orgKey string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.RemovePolicy(subject, tenantPath(orgKey), anyAction, effectDeny); err != nil {
		return fmt.Errorf("failed to remove policy: %w", err)
	}
	e.logger.Infow("tenant access restored", "subject", subject, "org_key", orgKey)
	return nil
}

// Rules lists every stored policy line.
func (e *Enforcer) Rules() ([]Rule, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	policies, err := e.enforcer.GetPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	rules := make([]Rule, 0, len(policies))
	for _, p := range policies {
		if len(p) < 4 {
			continue
		}
		rules = append(rules, Rule{Subject: p[0], Path: p[1], Actions: p[2], Effect: p[3]})
	}
	return rules, nil
}

func (e *Enforcer) hasRule(r Rule) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.enforcer.HasPolicy(r.Subject, r.Path, r.Actions, r.Effect)
}

func (e *Enforcer) addRule(r Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.AddPolicy(r.Subject, r.Path, r.Actions, r.Effect); err != nil {
		return fmt.Errorf("failed to add policy: %w", err)
	}
	e.logger.Infow("policy added", "subject", r.Subject, "path", r.Path, "effect", r.Effect)
	return nil
}

// LoadPolicy replaces the in-memory rules with those stored in the database.
func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}
	e.loadedAt = time.Now()
	e.logger.Debugw("policy reloaded")
	return nil
}

func (e *Enforcer) stale() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return time.Since(e.loadedAt) > maxPolicyAge
}
