// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !luau

package luacli

import (
	"context"

	"moonbind.dev/lua"
)

// interruptPeriod is the instruction count between cancellation checks.
const interruptPeriod = 100000

// installInterrupt arranges for scripts running on state to stop once ctx is
// cancelled. The returned function removes the hook.
func installInterrupt(ctx context.Context, state *lua.State) func() {
	if ctx.Done() == nil {
		return func() {}
	}
	state.SetHook(func(l *lua.State, event lua.HookEvent, ar *lua.ActivationRecord) error {
		return ctx.Err()
	}, lua.MaskCount, interruptPeriod)
	return func() {
		state.SetHook(nil, 0, 0)
	}
}
