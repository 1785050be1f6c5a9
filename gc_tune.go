// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !luau

package lua

// #include "lua.h"
//
// int moonbind_gc(lua_State *L, int what, int data);
import "C"

// GCSetPause sets the collector's pause
// (how long it waits before starting a new cycle,
// as a percentage of heap growth) and returns the previous value.
func (l *State) GCSetPause(pause int) int {
	l.init()
	return int(C.moonbind_gc(l.ptr, C.LUA_GCSETPAUSE, C.int(pause)))
}

// GCSetStepMultiplier sets the collector's step multiplier
// (its speed relative to allocation) and returns the previous value.
func (l *State) GCSetStepMultiplier(mul int) int {
	l.init()
	return int(C.moonbind_gc(l.ptr, C.LUA_GCSETSTEPMUL, C.int(mul)))
}
