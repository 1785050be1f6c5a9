// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build luau

package lua

// This dialect has no lua_sethook: its debug interface is level-based and
// its hooks run through per-state callbacks that do not mix with sampling
// the call stack from host code. Only frame introspection is provided.

// #include <stddef.h>
// #include "lua.h"
import "C"

import "fmt"

// Stack returns a [*Debug] describing the function executing at the given
// level: 0 is the current running function, level+1 is the function that
// called level. what selects the fields to fill in, using the option
// characters of this dialect's lua_getinfo. Stack returns nil when called
// with a level greater than the stack depth.
func (l *State) Stack(level int, what string) *Debug {
	l.init()
	cwhat := make([]C.char, 0, len(what)+1)
	for _, c := range []byte(what) {
		if c == 'f' || c == '>' {
			// Pushing the function would desynchronize stack accounting;
			// fetch it separately if needed.
			panic("unsupported what character")
		}
		cwhat = append(cwhat, C.char(c))
	}
	cwhat = append(cwhat, 0)

	var ar C.lua_Debug
	if C.lua_getinfo(l.ptr, C.int(level), &cwhat[0], &ar) == 0 {
		return nil
	}
	db := &Debug{
		CurrentLine: int(ar.currentline),
		NumUpvalues: uint8(ar.nupvals),
		NumParams:   uint8(ar.nparams),
		IsVararg:    ar.isvararg != 0,
	}
	if ar.name != nil {
		db.Name = C.GoString(ar.name)
	}
	if ar.what != nil {
		db.What = C.GoString(ar.what)
	}
	if ar.source != nil {
		db.Source = C.GoString(ar.source)
	}
	if ar.short_src != nil {
		db.ShortSource = C.GoString(ar.short_src)
	}
	return db
}

func (l *State) where(level int) string {
	db := l.Stack(level, "sl")
	if db == nil || db.CurrentLine <= 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d: ", db.ShortSource, db.CurrentLine)
}

func (l *State) frameName(level int) (name, nameWhat string, ok bool) {
	db := l.Stack(level, "n")
	if db == nil {
		return "", "", false
	}
	// The name classification is not reported here; treat any named frame
	// as a plain function reference.
	return db.Name, "", true
}
