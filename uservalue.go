// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !lua51 && !luajit && !luau

package lua

// #include <stddef.h>
// #include "lua.h"
//
// int moonbind_getiuservalue(lua_State *L, int idx, int n);
// int moonbind_setiuservalue(lua_State *L, int idx, int n);
import "C"

// UserValue pushes onto the stack the n-th user value associated with the
// full userdata at the given index and returns the type of the pushed value.
// If the userdata does not have that value, pushes nil and returns
// [TypeNone]. n must be between 1 and [MaxUserValues];
// values not set earlier read as nil.
func (l *State) UserValue(idx int, n int) Type {
	if n < 1 || n > MaxUserValues {
		panic("user value out of range")
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	if l.top >= l.cap {
		panic("stack overflow")
	}
	tp := Type(C.moonbind_getiuservalue(l.ptr, C.int(idx), C.int(n)))
	l.top++
	return tp
}

// SetUserValue pops a value from the stack and sets it as the new n-th user
// value associated with the full userdata at the given index.
// It reports whether the userdata has that value.
func (l *State) SetUserValue(idx int, n int) bool {
	if n < 1 || n > MaxUserValues {
		panic("user value out of range")
	}
	l.checkElems(1)
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	ok := C.moonbind_setiuservalue(l.ptr, C.int(idx), C.int(n)) != 0
	l.top--
	return ok
}
