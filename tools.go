// +build tools

package tools

// Dev tools pinned in go.mod. Use with go run, e.g:
//   go run github.com/cespare/reflex -r '\.go$' -s -- go run ./cmd/ledger-server
//   go run github.com/mgechev/revive ./...
import (
	_ "github.com/cespare/reflex"
	_ "github.com/mgechev/revive"
)
