// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !luau

package lua

import (
	"fmt"
	"strings"
	"unsafe"
)

// lua_getstack, lua_sethook, and the lua_Hook signature are identical in
// every dialect that has hooks; only the lua_Debug fields differ, so field
// extraction goes through the per-dialect moonbind_getinfo shim.

// #include <stdlib.h>
// #include <stddef.h>
// #include "lua.h"
//
// struct moonbind_debuginfo {
//   const char *name;
//   const char *namewhat;
//   const char *what;
//   const char *source;
//   size_t srclen;
//   char short_src[128];
//   int currentline;
//   int linedefined;
//   int lastlinedefined;
//   unsigned char nups;
//   unsigned char nparams;
//   char isvararg;
//   char istailcall;
// };
//
// void moonbind_getinfo(lua_State *L, const char *what, lua_Debug *ar, struct moonbind_debuginfo *out);
// int moonbind_lua_hookcb(lua_State *L, int event, void *ar);
//
// static void moonbind_hookbridge(lua_State *L, lua_Debug *ar) {
//   if (moonbind_lua_hookcb(L, ar->event, ar) < 0) {
//     lua_error(L);
//   }
// }
//
// static void moonbind_sethook(lua_State *L, int mask, int count) {
//   if (mask == 0) {
//     lua_sethook(L, NULL, 0, 0);
//   } else {
//     lua_sethook(L, moonbind_hookbridge, mask, count);
//   }
// }
import "C"

// Hook event masks for [State.SetHook].
const (
	MaskCall  = C.LUA_MASKCALL
	MaskRet   = C.LUA_MASKRET
	MaskLine  = C.LUA_MASKLINE
	MaskCount = C.LUA_MASKCOUNT
)

// SetHook installs hook as the debug hook of this state,
// called for the events selected by mask
// (a bitwise OR of [MaskCall], [MaskRet], [MaskLine], and [MaskCount];
// count is the instruction period for [MaskCount]).
// A nil hook or a zero mask removes the hook.
func (l *State) SetHook(hook Hook, mask int, count int) {
	l.init()
	if hook == nil {
		mask = 0
	}
	l.data().hook = hook
	C.moonbind_sethook(l.ptr, C.int(mask), C.int(count))
}

// Stack returns an [*ActivationRecord] for the function executing at the
// given level: 0 is the current running function,
// level+1 is the function that called level.
// Stack returns nil when called with a level greater than the stack depth.
// The record becomes invalid as soon as control returns to the VM.
func (l *State) Stack(level int) *ActivationRecord {
	l.init()
	ar := new(C.lua_Debug)
	if C.lua_getstack(l.ptr, C.int(level), ar) == 0 {
		return nil
	}
	return &ActivationRecord{
		state: l,
		lptr:  unsafe.Pointer(l.ptr),
		ar:    unsafe.Pointer(ar),
	}
}

// Info returns information about the function on top of the stack
// (which is popped).
// what selects the fields to fill in,
// using the option characters of the C API's lua_getinfo.
func (l *State) Info(what string) *Debug {
	l.checkElems(1)

	what = strings.TrimPrefix(what, ">")
	cwhat := make([]C.char, 0, len(">\x00")+len(what))
	cwhat = append(cwhat, '>')
	for _, c := range []byte(what) {
		cwhat = append(cwhat, C.char(c))
	}
	cwhat = append(cwhat, 0)

	var tmp C.lua_Debug
	return l.getinfo(&cwhat[0], &tmp)
}

// Info returns information about the frame the record refers to.
// It returns nil if the record has been invalidated.
func (ar *ActivationRecord) Info(what string) *Debug {
	if strings.HasPrefix(what, ">") {
		panic("what must not start with '>'")
	}
	if !ar.isValid() {
		return nil
	}
	cwhat := C.CString(what)
	defer C.free(unsafe.Pointer(cwhat))
	return ar.state.getinfo(cwhat, (*C.lua_Debug)(ar.ar))
}

// where returns the "chunkname:currentline: " error-message prefix
// for the frame at the given level, or "" if there is no position there.
func (l *State) where(level int) string {
	ar := l.Stack(level)
	if ar == nil {
		return ""
	}
	db := ar.Info("Sl")
	if db == nil || db.CurrentLine <= 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d: ", db.ShortSource, db.CurrentLine)
}

// frameName reports the best available name for the function
// at the given level.
func (l *State) frameName(level int) (name, nameWhat string, ok bool) {
	ar := l.Stack(level)
	if ar == nil {
		return "", "", false
	}
	db := ar.Info("n")
	if db == nil {
		return "", "", false
	}
	return db.Name, db.NameWhat, true
}

func (l *State) getinfo(what *C.char, ar *C.lua_Debug) *Debug {
	if *what == '>' {
		l.top--
	}

	var out C.struct_moonbind_debuginfo
	C.moonbind_getinfo(l.ptr, what, ar, &out)

	db := &Debug{
		CurrentLine: -1,
	}
	pushFunction := false
	pushLines := false
	for ; *what != 0; what = (*C.char)(unsafe.Add(unsafe.Pointer(what), 1)) {
		switch *what {
		case 'f':
			pushFunction = true
		case 'l':
			db.CurrentLine = int(out.currentline)
		case 'n':
			if out.name != nil {
				db.Name = C.GoString(out.name)
			}
			if out.namewhat != nil {
				db.NameWhat = C.GoString(out.namewhat)
			}
		case 'S':
			if out.what != nil {
				db.What = C.GoString(out.what)
			}
			if out.source != nil {
				db.Source = C.GoStringN(out.source, C.int(out.srclen))
			}
			db.LineDefined = int(out.linedefined)
			db.LastLineDefined = int(out.lastlinedefined)
			db.ShortSource = C.GoString(&out.short_src[0])
		case 't':
			db.IsTailCall = out.istailcall != 0
		case 'u':
			db.NumUpvalues = uint8(out.nups)
			db.NumParams = uint8(out.nparams)
			db.IsVararg = out.isvararg != 0
		case 'L':
			pushLines = true
		}
	}
	if pushFunction {
		l.top++
	}
	if pushLines {
		l.top++
	}
	return db
}
