// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !luau

package lua

// #include <stddef.h>
// #include "lua.h"
//
// int moonbind_lua_writercb(lua_State *L, const void *p, size_t size, void *ud);
// int moonbind_dump(lua_State *L, lua_Writer writer, void *data, int strip);
import "C"

import (
	"fmt"
	"io"
	"runtime/cgo"
	"unsafe"
)

// Dump writes the binary chunk for the function at the top of the stack to
// w, returning the number of bytes written. The function is not popped. If
// strip is true, debug information is omitted where the dialect's dumper
// supports stripping.
//
// The resulting chunk can be handed back to [State.Load] with mode "b"
// on the same dialect and build; binary chunks are not portable across
// dialects or VM versions.
func (l *State) Dump(w io.Writer, strip bool) (int64, error) {
	l.checkElems(1)
	state := &writerState{w: cgo.NewHandle(w)}
	defer state.w.Delete()
	stripInt := C.int(0)
	if strip {
		stripInt = 1
	}
	ret := C.moonbind_dump(l.ptr, C.lua_Writer(C.moonbind_lua_writercb), unsafe.Pointer(state), stripInt)
	var err error
	switch {
	case state.err != 0:
		err = fmt.Errorf("lua: dump function: %w", state.err.Value().(error))
		state.err.Delete()
	case ret != 0:
		err = fmt.Errorf("lua: dump function: not a function")
	}
	return state.n, err
}
