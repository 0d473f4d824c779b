// Package version reports the build version of the harborline binary.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version is injected at build time:
//
//	go build -ldflags "-X github.com/orris-inc/harborline/internal/shared/version.Version=1.4.0"
var Version = "dev"

// Normalize ensures version string has "v" prefix for semver compatibility.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// String returns the canonical semantic version of the build, or "dev" when
// the injected value is not a valid semver.
func String() string {
	v := Normalize(Version)
	if !semver.IsValid(v) {
		return "dev"
	}
	return semver.Canonical(v)
}
