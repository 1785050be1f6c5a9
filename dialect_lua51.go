// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build lua51

package lua

// Lua 5.1. The oldest supported C API: no lua_absindex, lua_rotate, or
// lua_copy (all emulated here), raw accessors return void, the globals table
// is a pseudo-index rather than a registry slot, and there are no
// continuations, so a suspended C call can never be resumed past the yield.

// #cgo pkg-config: lua5.1
//
// #include <stdlib.h>
// #include <stddef.h>
// #include <stdint.h>
// #include <string.h>
// #include <math.h>
// #include "lua.h"
// #include "lauxlib.h"
// #include "lualib.h"
//
// int moonbind_lua_gocb(lua_State *L, int *a, int *b, int *c, uint64_t *ctx);
// int moonbind_lua_funcgc(lua_State *L);
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
// static int moonbind_finish(lua_State *L, int n, int a, int b, int c, uint64_t ctx) {
//   if (n == -1) {
//     return lua_error(L);
//   }
//   if (n == -2) {
//     return lua_yield(L, a);
//   }
//   if (n == -3) {
//     lua_pushliteral(L, "continuations are not supported");
//     return lua_error(L);
//   }
//   return n;
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
//   if (idx > 0 || idx <= LUA_REGISTRYINDEX) {
//     return idx;
//   }
//   return lua_gettop(L) + idx + 1;
// }
//
// void moonbind_rotate(lua_State *L, int idx, int n) {
//   int len = lua_gettop(L) - idx + 1;
//   int i;
//   if (len <= 1) {
//     return;
//   }
//   n %= len;
//   if (n < 0) {
//     n += len;
//   }
//   for (i = 0; i < n; i++) {
//     lua_insert(L, idx);
//   }
// }
//
// void moonbind_copyslot(lua_State *L, int fromidx, int toidx) {
//   toidx = moonbind_absindex(L, toidx);
//   lua_pushvalue(L, fromidx);
//   lua_replace(L, toidx);
// }
//
// void moonbind_pushcfunc(lua_State *L, lua_CFunction fn) {
//   lua_pushcfunction(L, fn);
// }
//
// double moonbind_tonumberx(lua_State *L, int idx, int *isnum) {
//   if (!lua_isnumber(L, idx)) {
//     if (isnum != NULL) {
//       *isnum = 0;
//     }
//     return 0;
//   }
//   if (isnum != NULL) {
//     *isnum = 1;
//   }
//   return (double)lua_tonumber(L, idx);
// }
//
// int64_t moonbind_tointegerx(lua_State *L, int idx, int *isnum) {
//   int ok = 0;
//   double d = moonbind_tonumberx(L, idx, &ok);
//   if (!ok || d != floor(d) || d < -9223372036854775808.0 || d >= 9223372036854775808.0) {
//     if (isnum != NULL) {
//       *isnum = 0;
//     }
//     return 0;
//   }
//   if (isnum != NULL) {
//     *isnum = 1;
//   }
//   return (int64_t)d;
// }
//
// void moonbind_pushinteger(lua_State *L, int64_t n) {
//   lua_pushinteger(L, (lua_Integer)n);
// }
//
// uint64_t moonbind_rawlen(lua_State *L, int idx) {
//   return (uint64_t)lua_objlen(L, idx);
// }
//
// int moonbind_rawget(lua_State *L, int idx) {
//   lua_rawget(L, idx);
//   return lua_type(L, -1);
// }
//
// int moonbind_rawgeti(lua_State *L, int idx, int64_t n) {
//   lua_rawgeti(L, idx, (int)n);
//   return lua_type(L, -1);
// }
//
// void moonbind_rawseti(lua_State *L, int idx, int64_t n) {
//   lua_rawseti(L, idx, (int)n);
// }
//
// void moonbind_pushglobals(lua_State *L) {
//   lua_pushvalue(L, LUA_GLOBALSINDEX);
// }
//
// void *moonbind_newuserdata(lua_State *L, size_t size, int nuvalue) {
//   void *p = lua_newuserdata(L, size);
//   memset(p, 0, size);
//   return p;
// }
//
// size_t moonbind_userdatalen(lua_State *L, int idx) {
//   return lua_objlen(L, idx);
// }
//
// void moonbind_pushclosure(lua_State *L, uint64_t funcID, int n) {
//   uint64_t *p = lua_newuserdata(L, sizeof(uint64_t));
//   *p = funcID;
//   if (luaL_newmetatable(L, "moonbind.Function")) {
//     lua_pushcfunction(L, moonbind_lua_funcgc);
//     lua_setfield(L, -2, "__gc");
//   }
//   lua_setmetatable(L, -2);
//   lua_insert(L, -(n + 1));
//   lua_pushcclosure(L, moonbind_trampoline, n + 1);
// }
//
// static void moonbind_setid(lua_State *L, uintptr_t id) {
//   lua_pushlightuserdata(L, (void *)id);
//   lua_setfield(L, LUA_REGISTRYINDEX, "moonbind_stateid");
// }
//
// lua_State *moonbind_newstate(uintptr_t id) {
//   lua_State *L = luaL_newstate();
//   if (L == NULL) {
//     return NULL;
//   }
//   moonbind_setid(L, id);
//   return L;
// }
//
// lua_State *moonbind_newstatealloc(uintptr_t id) {
//   lua_State *L = lua_newstate((lua_Alloc)moonbind_lua_alloccb, (void *)id);
//   if (L == NULL) {
//     return NULL;
//   }
//   moonbind_setid(L, id);
//   return L;
// }
//
// uintptr_t moonbind_stateid(lua_State *L) {
//   uintptr_t id;
//   lua_getfield(L, LUA_REGISTRYINDEX, "moonbind_stateid");
//   id = (uintptr_t)lua_touserdata(L, -1);
//   lua_pop(L, 1);
//   return id;
// }
//
// int moonbind_gc(lua_State *L, int what, int data) {
//   return lua_gc(L, what, data);
// }
//
// int moonbind_lencb(lua_State *L) {
//   if (luaL_callmeta(L, 1, "__len")) {
//     return 1;
//   }
//   lua_pushnumber(L, (lua_Number)lua_objlen(L, 1));
//   return 1;
// }
//
// int moonbind_resume(lua_State *L, lua_State *from, int nargs, int *nres) {
//   int ret = lua_resume(L, nargs);
//   *nres = lua_gettop(L);
//   return ret;
// }
//
// int moonbind_load(lua_State *L, lua_Reader reader, void *data, const char *chunkname, const char *mode) {
//   return lua_load(L, reader, data, chunkname);
// }
//
// int moonbind_dump(lua_State *L, lua_Writer writer, void *data, int strip) {
//   return lua_dump(L, writer, data);
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
//   out->srclen = ar->source != NULL ? strlen(ar->source) : 0;
//   memcpy(out->short_src, ar->short_src,
//          sizeof(ar->short_src) < sizeof(out->short_src) ? sizeof(ar->short_src) : sizeof(out->short_src));
//   out->short_src[sizeof(out->short_src) - 1] = '\0';
//   out->currentline = ar->currentline;
//   out->linedefined = ar->linedefined;
//   out->lastlinedefined = ar->lastlinedefined;
//   out->nups = (unsigned char)ar->nups;
// }
import "C"

// Dialect descriptor.
const (
	DialectName = "Lua 5.1"
	VersionNum  = 501

	IntegerBits       = C.sizeof_lua_Integer * 8
	FloatBits         = C.sizeof_lua_Number * 8
	HasNativeIntegers = false

	HasContinuations      = false
	HasDump               = true
	HasUnsigned           = false
	HasWarnings           = false
	HasGenerationalGC     = false
	HasVectors            = false
	HasUserdataDestructor = false
	HasDebugHooks         = true
	HasCustomAllocator    = true

	MaxUserValues = 0

	LoadModeEnforced = false
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

const upvalueBase = C.LUA_GLOBALSINDEX

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
