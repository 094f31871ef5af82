//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are installed globally via `go install` and are not tracked in go.mod
// since they are development tools, not runtime dependencies.
package tools

// Development tools (install via `go install`):
//
// Air - Live reload for the portal while editing gomponents views
//   Install: go install github.com/air-verse/air@v1.63.0
//   Run:     air --build.cmd "go build -o ./tmp/portal ./cmd/portal" --build.bin ./tmp/portal
//   Docs: https://github.com/air-verse/air
//
// mockgen - regenerates internal/mocks and internal/mocks/auth
//   Run via: go generate ./internal/mocks/...
