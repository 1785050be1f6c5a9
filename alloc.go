// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !luajit

package lua

// #include <stdlib.h>
// #include <stdint.h>
// #include "lua.h"
//
// lua_State *moonbind_newstatealloc(uintptr_t data);
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

// SystemAlloc is an [AllocFunc] backed by the system's realloc and free.
// It is the allocator equivalent of what a plain [State] uses,
// and a convenient base for wrapping allocators
// that meter or limit the VM's memory.
func SystemAlloc(ptr unsafe.Pointer, oldSize, newSize uintptr) unsafe.Pointer {
	if newSize == 0 {
		C.free(ptr)
		return nil
	}
	return C.realloc(ptr, C.size_t(newSize))
}

// NewStateWithAllocator returns a main state whose heap is managed by alloc.
// Every allocation, resize, and free the VM performs goes through alloc,
// including the allocations for the state itself;
// the interpreter treats a nil return as out of memory.
// NewStateWithAllocator returns nil
// if alloc cannot satisfy the initial allocations.
//
// A state created this way behaves exactly like a zero [State]
// that initialized itself on first use.
func NewStateWithAllocator(alloc AllocFunc) *State {
	if alloc == nil {
		panic("nil allocator")
	}
	data := cgo.NewHandle(&stateData{
		nextID:        1,
		closures:      make(map[uint64]Function),
		nextContID:    1,
		continuations: make(map[uint64]KFunction),
		alloc:         alloc,
	})
	ptr := C.moonbind_newstatealloc(C.uintptr_t(data))
	if ptr == nil {
		data.Delete()
		return nil
	}
	return &State{
		ptr:  ptr,
		top:  0,
		cap:  minStack,
		main: true,
	}
}
