// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build lua52

package lua

// #include "lua.h"
import "C"

// PushUnsigned pushes n onto the stack using this dialect's unsigned number
// representation. The dialect stores it as a float with exactly 32 unsigned
// bits preserved.
func (l *State) PushUnsigned(n uint32) {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	C.lua_pushunsigned(l.ptr, C.lua_Unsigned(n))
	l.top++
}

// ToUnsigned converts the value at the given index to an unsigned 32-bit
// integer, wrapping negative values the way this dialect's C API does.
// ok is false if the value was not a number or a numeric string.
func (l *State) ToUnsigned(idx int) (n uint32, ok bool) {
	if l.ptr == nil {
		return 0, false
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	var isNum C.int
	n = uint32(C.lua_tounsignedx(l.ptr, C.int(idx), &isNum))
	return n, isNum != 0
}
