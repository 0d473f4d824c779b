// Package backend holds the remote backend endpoint identity and the
// signed-in principal.
package backend

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// orgKeyPattern keeps a tenant key usable as a single path segment.
var orgKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,62}$`)

// Config identifies a remote backend and the tenant namespace within it.
// APIKey is the OAuth client id, AuthDomain the identity provider base URL
// and ProjectID the remote database name.
type Config struct {
	APIKey     string `json:"apiKey" mapstructure:"api_key"`
	AuthDomain string `json:"authDomain" mapstructure:"auth_domain"`
	ProjectID  string `json:"projectId" mapstructure:"project_id"`
	OrgKey     string `json:"orgKey" mapstructure:"org_key"`
}

// Validate reports the first reason the configuration cannot be used to
// enter the shared regime.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(c.ProjectID) == "" {
		return fmt.Errorf("project id is required")
	}
	if !orgKeyPattern.MatchString(c.OrgKey) {
		return fmt.Errorf("org key %q must be 1-63 letters, digits, '-' or '_'", c.OrgKey)
	}
	u, err := url.Parse(c.AuthDomain)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return fmt.Errorf("auth domain %q must be an http(s) URL", c.AuthDomain)
	}
	return nil
}

// Valid is Validate without the reason.
func (c Config) Valid() bool {
	return c.Validate() == nil
}

// SameEndpoint reports whether c and o address the same backend, ignoring
// the tenant namespace.
func (c Config) SameEndpoint(o Config) bool {
	return c.APIKey == o.APIKey && c.AuthDomain == o.AuthDomain && c.ProjectID == o.ProjectID
}

// Namespace is the tenant path prefix every remote collection lives under.
func (c Config) Namespace() Namespace {
	return Namespace(c.OrgKey)
}

// Namespace is a tenant key.
type Namespace string

// Collection returns the document collection path for a kind within the tenant.
func (n Namespace) Collection(kind string) string {
	return "tenants/" + string(n) + "/" + kind
}

func (n Namespace) String() string {
	return string(n)
}
