// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build luau

package luacli

import (
	"context"

	"moonbind.dev/lua"
)

// installInterrupt is a no-op: this VM has no debug hooks to check
// cancellation with.
func installInterrupt(ctx context.Context, state *lua.State) func() {
	return func() {}
}
