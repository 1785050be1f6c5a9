// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !lua51 && !lua52 && !lua53 && !luajit

package lua

// #include "lua.h"
//
// int moonbind_resetthread(lua_State *L);
import "C"

// ResetThread returns a finished or errored coroutine thread to a pristine
// suspended-at-start state, closing any pending to-be-closed variables.
// On dialects that report cleanup failures, the error object is left on the
// thread's stack and returned.
func (l *State) ResetThread() error {
	if l.ptr == nil {
		panic("reset on uninitialized state")
	}
	ret := C.moonbind_resetthread(l.ptr)
	l.top = int(C.lua_gettop(l.ptr))
	if ret != 0 {
		return l.newError(ret)
	}
	return nil
}
