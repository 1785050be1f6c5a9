// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build luau

package lua

// #include <stdlib.h>
// #include <stddef.h>
// #include "lua.h"
// #include "luacode.h"
//
// static char *moonbind_compile(_GoString_ src, int opt, int dbg, size_t *outsize) {
//   lua_CompileOptions opts = {0};
//   opts.optimizationLevel = opt;
//   opts.debugLevel = dbg;
//   return luau_compile(_GoStringPtr(src), _GoStringLen(src), &opts, outsize);
// }
//
// static int moonbind_loadbytecode(lua_State *L, const char *chunkname, _GoString_ data) {
//   return luau_load(L, chunkname, _GoStringPtr(data), _GoStringLen(data), 0);
// }
import "C"

import (
	"fmt"
	"io"
	"strings"
	"unsafe"
)

// CompileOptions adjusts bytecode generation for [Compile].
// The zero value compiles with full debug information
// and baseline optimizations.
type CompileOptions struct {
	// OptimizationLevel ranges from 0 (none)
	// to 2 (aggressive, including inlining).
	OptimizationLevel int
	// DebugLevel ranges from 0 (no debug information)
	// to 2 (full local and upvalue information).
	DebugLevel int
}

var defaultCompileOptions = CompileOptions{
	OptimizationLevel: 1,
	DebugLevel:        1,
}

// Compile translates source text into this VM's bytecode without a running
// interpreter. The bytecode can be loaded with [State.Load] or
// [State.LoadString] using mode "b". Compilation never raises: syntax errors
// are reported through the returned error.
func Compile(source string, opts *CompileOptions) ([]byte, error) {
	if opts == nil {
		opts = &defaultCompileOptions
	}
	var size C.size_t
	buf := C.moonbind_compile(source, C.int(opts.OptimizationLevel), C.int(opts.DebugLevel), &size)
	if buf == nil {
		return nil, fmt.Errorf("lua: compile: out of memory")
	}
	defer C.free(unsafe.Pointer(buf))
	bytecode := C.GoBytes(unsafe.Pointer(buf), C.int(size))
	// A compile failure is encoded as a zero byte followed by the message.
	if len(bytecode) > 0 && bytecode[0] == 0 {
		msg := strings.TrimPrefix(string(bytecode[1:]), ":")
		return nil, fmt.Errorf("lua: compile: %s", msg)
	}
	return bytecode, nil
}

// Load reads a chunk from r and pushes it as a function on the stack,
// without running it. chunkName names the chunk in error messages and debug
// information, following the VM's prefix conventions ("@" for files, "=" for
// literal names). mode "b" loads precompiled bytecode; "t" and "bt" compile
// r's contents as source text first.
//
// If the chunk cannot be compiled or loaded, Load returns an error and
// leaves the error object on the stack.
func (l *State) Load(r io.Reader, chunkName string, mode string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		l.init()
		l.PushString(err.Error())
		return fmt.Errorf("lua: load %s: %v", formatChunkName(chunkName), err)
	}
	return l.LoadString(string(data), chunkName, mode)
}

// LoadString is like [State.Load], but reads the chunk from a string.
func (l *State) LoadString(s string, chunkName string, mode string) error {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}

	bytecode := s
	switch mode {
	case "b":
	case "t", "bt":
		compiled, err := Compile(s, nil)
		if err != nil {
			l.PushString(err.Error())
			return fmt.Errorf("lua: load %s: %w", formatChunkName(chunkName), l.newError(C.LUA_ERRSYNTAX))
		}
		bytecode = string(compiled)
	default:
		err := fmt.Errorf("unknown load mode %q", mode)
		l.PushString(err.Error())
		return fmt.Errorf("lua: load %s: %v", formatChunkName(chunkName), err)
	}

	chunkNameC := C.CString(chunkName)
	defer C.free(unsafe.Pointer(chunkNameC))

	ret := C.moonbind_loadbytecode(l.ptr, chunkNameC, bytecode)
	l.top++
	if ret != 0 {
		return fmt.Errorf("lua: load %s: %w", formatChunkName(chunkName), l.newError(C.LUA_ERRSYNTAX))
	}
	return nil
}

func formatChunkName(chunkName string) string {
	if len(chunkName) == 0 || (chunkName[0] != '@' && chunkName[0] != '=') {
		return "(string)"
	}
	return chunkName[1:]
}
