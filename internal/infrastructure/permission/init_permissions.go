package permission

import "fmt"

// defaultRules grant any signed-in principal read and write access under
// every tenant path.
var defaultRules = []Rule{
	{Subject: SubjectAuthenticated, Path: "tenants/*", Actions: anyAction, Effect: effectAllow},
}

// InitTenantPolicies installs the default tenant rule. Several clients may
// seed the same database concurrently; losing that race is not an error.
func InitTenantPolicies(e *Enforcer) error {
	for _, rule := range defaultRules {
		ok, err := e.hasRule(rule)
		if err != nil {
			return fmt.Errorf("failed to check policy %v: %w", rule, err)
		}
		if ok {
			continue
		}

		if addErr := e.addRule(rule); addErr != nil {
			// Another client may have inserted it first.
			if err := e.LoadPolicy(); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", rule, addErr)
			}
			if ok, _ := e.hasRule(rule); !ok {
				return fmt.Errorf("failed to add policy %v: %w", rule, addErr)
			}
		}
	}

	e.logger.Debugw("tenant permissions initialized")
	return nil
}
