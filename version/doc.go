// Package version provides build version information for fetchkit
// binaries and the default User-Agent.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/fetchkit/version.Version=1.0.0"
package version
