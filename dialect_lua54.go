// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !lua51 && !lua52 && !lua53 && !luajit && !luau

package lua

// This file binds the package to Lua 5.4, the default dialect.
// It defines the moonbind_* shims that the dialect-neutral files declare,
// plus the surface only this dialect has (warnings, GC mode selection).

// #cgo pkg-config: lua5.4
//
// #include <stdlib.h>
// #include <stddef.h>
// #include <stdint.h>
// #include <string.h>
// #include "lua.h"
// #include "lauxlib.h"
// #include "lualib.h"
//
// int moonbind_lua_gocb(lua_State *L, int *a, int *b, int *c, uint64_t *ctx);
// int moonbind_lua_contcb(lua_State *L, int status, uint64_t kctx, int *a, int *b, int *c, uint64_t *ctx);
// int moonbind_lua_funcgc(lua_State *L);
// void moonbind_lua_warncb(void *ud, char *msg, int tocont);
// void *moonbind_lua_alloccb(void *ud, void *ptr, size_t osize, size_t nsize);
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
// static int moonbind_kfunc(lua_State *L, int status, lua_KContext ctx);
//
// // moonbind_finish performs the control transfer a Go callback requested
// // by its return value, after the Go frames are gone. Result codes:
// // -1 raise the pushed payload, -2 yield, -3 protected call with
// // continuation, >= 0 plain return.
// static int moonbind_finish(lua_State *L, int n, int a, int b, int c, uint64_t ctx) {
//   if (n == -1) {
//     return lua_error(L);
//   }
//   if (n == -2) {
//     if (ctx == 0) {
//       return lua_yield(L, a);
//     }
//     return lua_yieldk(L, a, (lua_KContext)ctx, moonbind_kfunc);
//   }
//   if (n == -3) {
//     int status = lua_pcallk(L, a, b, c, (lua_KContext)ctx, moonbind_kfunc);
//     // No yield happened: run the continuation in place.
//     return moonbind_kfunc(L, status, (lua_KContext)ctx);
//   }
//   return n;
// }
//
// static int moonbind_kfunc(lua_State *L, int status, lua_KContext ctx) {
//   int a = 0, b = 0, c = 0;
//   uint64_t next = 0;
//   int n = moonbind_lua_contcb(L, status, (uint64_t)ctx, &a, &b, &c, &next);
//   return moonbind_finish(L, n, a, b, c, next);
// }
//
// static int moonbind_trampoline(lua_State *L) {
//   int a = 0, b = 0, c = 0;
//   uint64_t ctx = 0;
//   int n = moonbind_lua_gocb(L, &a, &b, &c, &ctx);
//   return moonbind_finish(L, n, a, b, c, ctx);
// }
//
// int moonbind_absindex(lua_State *L, int idx) {
//   return lua_absindex(L, idx);
// }
//
// void moonbind_rotate(lua_State *L, int idx, int n) {
//   lua_rotate(L, idx, n);
// }
//
// void moonbind_copyslot(lua_State *L, int fromidx, int toidx) {
//   lua_copy(L, fromidx, toidx);
// }
//
// void moonbind_pushcfunc(lua_State *L, lua_CFunction fn) {
//   lua_pushcfunction(L, fn);
// }
//
// int64_t moonbind_tointegerx(lua_State *L, int idx, int *isnum) {
//   return (int64_t)lua_tointegerx(L, idx, isnum);
// }
//
// double moonbind_tonumberx(lua_State *L, int idx, int *isnum) {
//   return (double)lua_tonumberx(L, idx, isnum);
// }
//
// void moonbind_pushinteger(lua_State *L, int64_t n) {
//   lua_pushinteger(L, (lua_Integer)n);
// }
//
// uint64_t moonbind_rawlen(lua_State *L, int idx) {
//   return (uint64_t)lua_rawlen(L, idx);
// }
//
// int moonbind_rawget(lua_State *L, int idx) {
//   return lua_rawget(L, idx);
// }
//
// int moonbind_rawgeti(lua_State *L, int idx, int64_t n) {
//   return lua_rawgeti(L, idx, (lua_Integer)n);
// }
//
// void moonbind_rawseti(lua_State *L, int idx, int64_t n) {
//   lua_rawseti(L, idx, (lua_Integer)n);
// }
//
// void moonbind_pushglobals(lua_State *L) {
//   lua_rawgeti(L, LUA_REGISTRYINDEX, LUA_RIDX_GLOBALS);
// }
//
// void *moonbind_newuserdata(lua_State *L, size_t size, int nuvalue) {
//   void *p = lua_newuserdatauv(L, size, nuvalue);
//   memset(p, 0, size);
//   return p;
// }
//
// size_t moonbind_userdatalen(lua_State *L, int idx) {
//   return lua_rawlen(L, idx);
// }
//
// void moonbind_pushclosure(lua_State *L, uint64_t funcID, int n) {
//   uint64_t *p = lua_newuserdatauv(L, sizeof(uint64_t), 0);
//   *p = funcID;
//   if (luaL_newmetatable(L, "moonbind.Function")) {
//     lua_pushcfunction(L, moonbind_lua_funcgc);
//     lua_setfield(L, -2, "__gc");
//   }
//   lua_setmetatable(L, -2);
//   // The ID userdata becomes upvalue 1; the caller's upvalues follow.
//   lua_insert(L, -(n + 1));
//   lua_pushcclosure(L, moonbind_trampoline, n + 1);
// }
//
// lua_State *moonbind_newstate(uintptr_t id) {
//   lua_State *L = luaL_newstate();
//   if (L == NULL) {
//     return NULL;
//   }
//   *(uintptr_t *)lua_getextraspace(L) = id;
//   return L;
// }
//
// lua_State *moonbind_newstatealloc(uintptr_t id) {
//   lua_State *L = lua_newstate((lua_Alloc)moonbind_lua_alloccb, (void *)id);
//   if (L == NULL) {
//     return NULL;
//   }
//   *(uintptr_t *)lua_getextraspace(L) = id;
//   return L;
// }
//
// uintptr_t moonbind_stateid(lua_State *L) {
//   return *(uintptr_t *)lua_getextraspace(L);
// }
//
// int moonbind_gc(lua_State *L, int what, int data) {
//   return lua_gc(L, what, data);
// }
//
// int moonbind_lencb(lua_State *L) {
//   lua_len(L, 1);
//   return 1;
// }
//
// int moonbind_resume(lua_State *L, lua_State *from, int nargs, int *nres) {
//   return lua_resume(L, from, nargs, nres);
// }
//
// int moonbind_load(lua_State *L, lua_Reader reader, void *data, const char *chunkname, const char *mode) {
//   return lua_load(L, reader, data, chunkname, mode);
// }
//
// int moonbind_dump(lua_State *L, lua_Writer writer, void *data, int strip) {
//   return lua_dump(L, writer, data, strip);
// }
//
// void moonbind_openlibs(lua_State *L) {
//   luaL_openlibs(L);
// }
//
// int moonbind_ref(lua_State *L) {
//   return luaL_ref(L, LUA_REGISTRYINDEX);
// }
//
// void moonbind_unref(lua_State *L, int ref) {
//   luaL_unref(L, LUA_REGISTRYINDEX, ref);
// }
//
// void moonbind_getinfo(lua_State *L, const char *what, lua_Debug *ar, struct moonbind_debuginfo *out) {
//   memset(out, 0, sizeof(*out));
//   if (!lua_getinfo(L, what, ar)) {
//     return;
//   }
//   out->name = ar->name;
//   out->namewhat = ar->namewhat;
//   out->what = ar->what;
//   out->source = ar->source;
//   out->srclen = ar->srclen;
//   memcpy(out->short_src, ar->short_src,
//          sizeof(ar->short_src) < sizeof(out->short_src) ? sizeof(ar->short_src) : sizeof(out->short_src));
//   out->short_src[sizeof(out->short_src) - 1] = '\0';
//   out->currentline = ar->currentline;
//   out->linedefined = ar->linedefined;
//   out->lastlinedefined = ar->lastlinedefined;
//   out->nups = ar->nups;
//   out->nparams = ar->nparams;
//   out->isvararg = (char)ar->isvararg;
//   out->istailcall = (char)ar->istailcall;
// }
//
// int moonbind_getiuservalue(lua_State *L, int idx, int n) {
//   return lua_getiuservalue(L, idx, n);
// }
//
// int moonbind_setiuservalue(lua_State *L, int idx, int n) {
//   return lua_setiuservalue(L, idx, n);
// }
//
// int moonbind_resetthread(lua_State *L) {
//   return lua_resetthread(L);
// }
//
// static void moonbind_setwarnf(lua_State *L, int on) {
//   if (on) {
//     lua_setwarnf(L, (lua_WarnFunction)moonbind_lua_warncb, (void *)moonbind_stateid(L));
//   } else {
//     lua_setwarnf(L, NULL, NULL);
//   }
// }
//
// static void moonbind_warning(lua_State *L, _GoString_ msg, int tocont) {
//   // lua_warning needs a NUL-terminated string; route through the stack.
//   lua_pushlstring(L, _GoStringPtr(msg), _GoStringLen(msg));
//   lua_warning(L, lua_tostring(L, -1), tocont);
//   lua_pop(L, 1);
// }
//
// static int moonbind_gcinc(lua_State *L, int pause, int stepmul, int stepsize) {
//   return lua_gc(L, LUA_GCINC, pause, stepmul, stepsize);
// }
//
// static int moonbind_gcgen(lua_State *L, int minormul, int majormul) {
//   return lua_gc(L, LUA_GCGEN, minormul, majormul);
// }
import "C"

// Dialect descriptor.
const (
	// DialectName identifies the VM revision this binary is built against.
	DialectName = "Lua 5.4"
	// VersionNum is the dialect's numeric version (5.1 lineage dialects
	// report 501 regardless of their own release numbering).
	VersionNum = 504

	// IntegerBits and FloatBits are the widths of the VM's two number
	// subtypes. HasNativeIntegers is false where integers are stored in
	// floats.
	IntegerBits       = C.sizeof_lua_Integer * 8
	FloatBits         = C.sizeof_lua_Number * 8
	HasNativeIntegers = true

	HasContinuations      = true
	HasDump               = true
	HasUnsigned           = false
	HasWarnings           = true
	HasGenerationalGC     = true
	HasVectors            = false
	HasUserdataDestructor = false
	HasDebugHooks         = true
	HasCustomAllocator    = true

	// MaxUserValues is how many user values a full userdata can carry.
	MaxUserValues = 65535

	// LoadModeEnforced reports whether the chunk loader rejects chunk
	// forms excluded by the load mode string.
	LoadModeEnforced = true
	// StrictIndexCheck reports whether the dialect's own C API validates
	// acceptable-index ranges (the host-side shadow makes the check
	// uniform regardless; this records the underlying VM's behavior).
	StrictIndexCheck = false
)

// Registry reference sentinels.
const (
	// NoRef is distinct from every reference returned by [Ref];
	// [Unref] of NoRef does nothing.
	NoRef = C.LUA_NOREF
	// RefNil is returned by [Ref] when the popped value is nil.
	RefNil = C.LUA_REFNIL
)

// upvalueBase is the pseudo-index from which upvalue slots descend.
const upvalueBase = C.LUA_REGISTRYINDEX

func statusKind(code cInt) ErrorKind {
	switch code {
	case C.LUA_ERRRUN:
		return ErrorRuntime
	case C.LUA_ERRSYNTAX:
		return ErrorSyntax
	case C.LUA_ERRMEM:
		return ErrorMemory
	case C.LUA_ERRERR:
		return ErrorMessageHandler
	case C.LUA_ERRFILE:
		return ErrorFile
	default:
		return ErrorUnknown
	}
}

func dialectTypeName(tp Type) (string, bool) {
	return "", false
}

// SetWarnHandler installs f to receive messages emitted through the VM's
// warning system (the warn function and [State.Warning]).
// A nil f reverts to discarding warnings.
func (l *State) SetWarnHandler(f WarnHandler) {
	l.init()
	l.data().warn = f
	on := C.int(0)
	if f != nil {
		on = 1
	}
	C.moonbind_setwarnf(l.ptr, on)
}

// Warning emits a warning with the given message.
// A message with toBeContinued true should be continued
// in another call to this function.
func (l *State) Warning(msg string, toBeContinued bool) {
	l.init()
	if !l.CheckStack(1) {
		panic("stack overflow")
	}
	tocont := C.int(0)
	if toBeContinued {
		tocont = 1
	}
	C.moonbind_warning(l.ptr, msg, tocont)
}

// GCIncremental switches the collector to incremental mode
// with the given tuning parameters (0 keeps the current value of each).
func (l *State) GCIncremental(pause, stepMul, stepSize int) {
	l.init()
	C.moonbind_gcinc(l.ptr, C.int(pause), C.int(stepMul), C.int(stepSize))
}

// GCGenerational switches the collector to generational mode
// with the given tuning parameters (0 keeps the current value of each).
func (l *State) GCGenerational(minorMul, majorMul int) {
	l.init()
	C.moonbind_gcgen(l.ptr, C.int(minorMul), C.int(majorMul))
}
