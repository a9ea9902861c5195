// Package version holds the build version, overridden at release time with
// -ldflags "-X github.com/bnema/profile-sync/internal/version.Version=...".
package version

var Version = "dev"
