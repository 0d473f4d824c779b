package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		APIKey:     "client-123",
		AuthDomain: "https://id.example.com",
		ProjectID:  "harborline",
		OrgKey:     "acme",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "http allowed", mutate: func(c *Config) { c.AuthDomain = "http://127.0.0.1:9000" }},
		{name: "missing api key", mutate: func(c *Config) { c.APIKey = " " }, wantErr: true},
		{name: "missing project", mutate: func(c *Config) { c.ProjectID = "" }, wantErr: true},
		{name: "empty org", mutate: func(c *Config) { c.OrgKey = "" }, wantErr: true},
		{name: "org with slash", mutate: func(c *Config) { c.OrgKey = "acme/../x" }, wantErr: true},
		{name: "auth domain not url", mutate: func(c *Config) { c.AuthDomain = "id.example.com" }, wantErr: true},
		{name: "auth domain bad scheme", mutate: func(c *Config) { c.AuthDomain = "ftp://id.example.com" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, c.Valid())
			} else {
				assert.NoError(t, err)
				assert.True(t, c.Valid())
			}
		})
	}
}

func TestConfig_SameEndpoint(t *testing.T) {
	a := validConfig()
	b := a
	b.OrgKey = "globex"
	assert.True(t, a.SameEndpoint(b))

	b.ProjectID = "other"
	assert.False(t, a.SameEndpoint(b))
}

func TestNamespace_Collection(t *testing.T) {
	assert.Equal(t, "tenants/acme/vessels", validConfig().Namespace().Collection("vessels"))
}

func TestIdentity_Equal(t *testing.T) {
	var none *Identity
	assert.True(t, none.Equal(nil))
	assert.False(t, none.Equal(&Identity{ID: "u1"}))
	assert.True(t, (&Identity{ID: "u1", Email: "a@x"}).Equal(&Identity{ID: "u1"}))
	assert.False(t, (&Identity{ID: "u1"}).Equal(&Identity{ID: "u2"}))
}
