// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !lua51 && !luajit

package lua

// #include "lua.h"
//
// int moonbind_gc(lua_State *L, int what, int data);
import "C"

// GCIsRunning reports whether the collector is running
// (i.e. not stopped by [State.GCStop]).
func (l *State) GCIsRunning() bool {
	l.init()
	return C.moonbind_gc(l.ptr, C.LUA_GCISRUNNING, 0) != 0
}
