// Package buildinfo exposes version information for minikv binaries.
//
// Version, Commit and BuildTime are injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/minikv/internal/infra/buildinfo.Version=v0.1.0"
//
// When Commit is not injected it is read from the VCS stamp that the Go
// toolchain embeds in the binary.
package buildinfo
