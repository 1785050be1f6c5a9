// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !lua51 && !lua52 && !luajit && !luau

package lua

// #include <stdlib.h>
// #include "lua.h"
import "C"

import "unsafe"

// IsInteger reports whether the value at the given index is a number
// represented by the VM's native integer subtype.
// Unlike [State.ToInteger], no conversion is attempted.
func (l *State) IsInteger(idx int) bool {
	if l.ptr == nil {
		return false
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	return C.lua_isinteger(l.ptr, C.int(idx)) != 0
}

// StringToNumber converts s to a number following the VM's lexer rules,
// pushes that number onto the stack, and reports whether the conversion
// succeeded. Nothing is pushed on failure.
func (l *State) StringToNumber(s string) bool {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	ok := C.lua_stringtonumber(l.ptr, cs) != 0
	if ok {
		l.top++
	}
	return ok
}
