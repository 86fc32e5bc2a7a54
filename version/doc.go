// Package version reports the dagpipe build version.
//
// Version and Commit are set at compile time via -ldflags; anything left
// empty is filled from the module build info when available:
//
//	go build -ldflags "-X github.com/kbukum/dagpipe/version.Version=1.2.0" ./cmd/dagpipe
package version
