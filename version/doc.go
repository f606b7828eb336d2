// Package version reports podscribe build information for /info and the
// version command.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/podscribe/version.Version=1.2.0"
//
// Missing values fall back to the VCS stamp embedded by the Go toolchain.
package version
