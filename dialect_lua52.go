// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build lua52

package lua

// Lua 5.2. Continuations exist but with the older ABI: contexts are plain
// ints retrieved through lua_getctx and continuation functions are ordinary
// lua_CFunctions. There is no lua_rotate, raw table accessors return void,
// and the state has no extra space, so the state id lives in a registry
// field instead.

// #cgo pkg-config: lua5.2
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
// int moonbind_lua_contcb(lua_State *L, int status, uint64_t kctx, int *a, int *b, int *c, uint64_t *ctx);
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
// static int moonbind_cont(lua_State *L, int status, uint64_t ctx);
// static int moonbind_kfunc(lua_State *L);
//
// static int moonbind_finish(lua_State *L, int n, int a, int b, int c, uint64_t ctx) {
//   if (n == -1) {
//     return lua_error(L);
//   }
//   if (n == -2) {
//     if (ctx == 0) {
//       return lua_yield(L, a);
//     }
//     return lua_yieldk(L, a, (int)ctx, moonbind_kfunc);
//   }
//   if (n == -3) {
//     int status = lua_pcallk(L, a, b, c, (int)ctx, moonbind_kfunc);
//     return moonbind_cont(L, status, ctx);
//   }
//   return n;
// }
//
// static int moonbind_cont(lua_State *L, int status, uint64_t ctx) {
//   int a = 0, b = 0, c = 0;
//   uint64_t next = 0;
//   int n = moonbind_lua_contcb(L, status, ctx, &a, &b, &c, &next);
//   return moonbind_finish(L, n, a, b, c, next);
// }
//
// static int moonbind_kfunc(lua_State *L) {
//   int ctx = 0;
//   int status = lua_getctx(L, &ctx);
//   return moonbind_cont(L, status, (uint64_t)ctx);
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
//   lua_copy(L, fromidx, toidx);
// }
//
// void moonbind_pushcfunc(lua_State *L, lua_CFunction fn) {
//   lua_pushcfunction(L, fn);
// }
//
// int64_t moonbind_tointegerx(lua_State *L, int idx, int *isnum) {
//   int ok = 0;
//   double d = lua_tonumberx(L, idx, &ok);
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
//   lua_rawgeti(L, LUA_REGISTRYINDEX, LUA_RIDX_GLOBALS);
// }
//
// void *moonbind_newuserdata(lua_State *L, size_t size, int nuvalue) {
//   void *p = lua_newuserdata(L, size);
//   memset(p, 0, size);
//   return p;
// }
//
// size_t moonbind_userdatalen(lua_State *L, int idx) {
//   return lua_rawlen(L, idx);
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
//   lua_len(L, 1);
//   return 1;
// }
//
// int moonbind_resume(lua_State *L, lua_State *from, int nargs, int *nres) {
//   int ret = lua_resume(L, from, nargs);
//   *nres = lua_gettop(L);
//   return ret;
// }
//
// int moonbind_load(lua_State *L, lua_Reader reader, void *data, const char *chunkname, const char *mode) {
//   return lua_load(L, reader, data, chunkname, mode);
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
//   out->nups = ar->nups;
//   out->nparams = ar->nparams;
//   out->isvararg = (char)ar->isvararg;
//   out->istailcall = (char)ar->istailcall;
// }
//
// int moonbind_getiuservalue(lua_State *L, int idx, int n) {
//   lua_getuservalue(L, idx);
//   return lua_type(L, -1);
// }
//
// int moonbind_setiuservalue(lua_State *L, int idx, int n) {
//   lua_setuservalue(L, idx);
//   return 1;
// }
import "C"

// Dialect descriptor.
const (
	DialectName = "Lua 5.2"
	VersionNum  = 502

	IntegerBits       = C.sizeof_lua_Integer * 8
	FloatBits         = C.sizeof_lua_Number * 8
	HasNativeIntegers = false

	HasContinuations      = true
	HasDump               = true
	HasUnsigned           = true
	HasWarnings           = false
	HasGenerationalGC     = false
	HasVectors            = false
	HasUserdataDestructor = false
	HasDebugHooks         = true
	HasCustomAllocator    = true

	MaxUserValues = 1

	LoadModeEnforced = true
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
	case C.LUA_ERRGCMM:
		return ErrorGCMetamethod
	case C.LUA_ERRFILE:
		return ErrorFile
	default:
		return ErrorUnknown
	}
}

func dialectTypeName(tp Type) (string, bool) {
	return "", false
}
