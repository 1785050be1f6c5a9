// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !luau

package lua

// #include <stdlib.h>
// #include <stddef.h>
// #include "lua.h"
//
// char *moonbind_lua_readercb(lua_State *L, void *data, size_t *size);
// int moonbind_load(lua_State *L, lua_Reader reader, void *data, const char *chunkname, const char *mode);
//
// static const char *moonbind_reader(lua_State *L, void *data, size_t *size) {
//   const char *p = moonbind_lua_readercb(L, data, size);
//   if (p == NULL) {
//     lua_error(L);
//   }
//   return p;
// }
//
// struct moonbind_readstring {
//   _GoString_ s;
//   int done;
// };
//
// static const char *moonbind_readstringcb(lua_State *L, void *data, size_t *size) {
//   struct moonbind_readstring *myData = data;
//   if (myData->done) {
//     *size = 0;
//     return NULL;
//   }
//   myData->done = 1;
//   *size = _GoStringLen(myData->s);
//   return _GoStringPtr(myData->s);
// }
//
// static int moonbind_loadstring(lua_State *L, _GoString_ s, const char *chunkname, const char *mode) {
//   struct moonbind_readstring myData = {s, 0};
//   return moonbind_load(L, moonbind_readstringcb, &myData, chunkname, mode);
// }
import "C"

import (
	"fmt"
	"io"
	"runtime/cgo"
	"unsafe"
)

// Load reads a chunk from r and pushes the compiled chunk as a function on
// the stack, without running it. chunkName names the chunk in error messages
// and debug information, following the VM's prefix conventions ("@" for
// files, "=" for literal names). mode is "b", "t", or "bt" and controls
// whether binary chunks, text chunks, or both are accepted; dialects whose
// loader predates modes accept any chunk form regardless.
//
// If the chunk cannot be read or compiled, Load returns an error and leaves
// the error object on the stack.
func (l *State) Load(r io.Reader, chunkName string, mode string) error {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}

	modeC, err := loadMode(mode)
	if err != nil {
		l.PushString(err.Error())
		return fmt.Errorf("lua: load %s: %v", formatChunkName(chunkName), err)
	}

	rr := newReader(r)
	defer rr.free()
	handle := cgo.NewHandle(rr)
	defer handle.Delete()

	chunkNameC := C.CString(chunkName)
	defer C.free(unsafe.Pointer(chunkNameC))

	ret := C.moonbind_load(l.ptr, C.lua_Reader(C.moonbind_reader), unsafe.Pointer(&handle), chunkNameC, modeC)
	l.top++
	if ret != 0 {
		return fmt.Errorf("lua: load %s: %w", formatChunkName(chunkName), l.newError(ret))
	}
	return nil
}

// LoadString is like [State.Load], but reads the chunk from a string.
func (l *State) LoadString(s string, chunkName string, mode string) error {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}

	modeC, err := loadMode(mode)
	if err != nil {
		l.PushString(err.Error())
		return fmt.Errorf("lua: load %s: %v", formatChunkName(chunkName), err)
	}

	chunkNameC := C.CString(chunkName)
	defer C.free(unsafe.Pointer(chunkNameC))

	ret := C.moonbind_loadstring(l.ptr, s, chunkNameC, modeC)
	l.top++
	if ret != 0 {
		return fmt.Errorf("lua: load %s: %w", formatChunkName(chunkName), l.newError(ret))
	}
	return nil
}

func formatChunkName(chunkName string) string {
	if len(chunkName) == 0 || (chunkName[0] != '@' && chunkName[0] != '=') {
		return "(string)"
	}
	return chunkName[1:]
}

func loadMode(mode string) (*C.char, error) {
	const modeCStrings = "bt\x00t\x00b\x00"
	switch mode {
	case "bt":
		return (*C.char)(unsafe.Pointer(unsafe.StringData(modeCStrings))), nil
	case "t":
		return (*C.char)(unsafe.Pointer(unsafe.StringData(modeCStrings[3:]))), nil
	case "b":
		return (*C.char)(unsafe.Pointer(unsafe.StringData(modeCStrings[5:]))), nil
	default:
		return nil, fmt.Errorf("unknown load mode %q", mode)
	}
}
