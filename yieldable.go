// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !lua51 && !lua52 && !luajit

package lua

// #include "lua.h"
import "C"

// IsYieldable reports whether the given thread can yield:
// that is, it is a started coroutine and is not inside
// a non-yieldable protected call.
func (l *State) IsYieldable() bool {
	if l.ptr == nil {
		return false
	}
	return C.lua_isyieldable(l.ptr) != 0
}
