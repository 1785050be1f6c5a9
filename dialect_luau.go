// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build luau

package lua

// Luau. A 5.1-shaped C API with its own extensions: closures carry a debug
// name, userdata can be tagged and given a C destructor (no __gc), every
// number is a double, and chunks only load from bytecode produced by the
// Luau compiler (see load_luau.go). There is no lua_dump and no debug hook
// interface, and since Luau is built as C++ the link line pulls in the
// standard C++ runtime.

// #cgo LDFLAGS: -lLuau.VM -lLuau.Compiler -lLuau.Ast -lm -lstdc++
//
// #include <stdlib.h>
// #include <stddef.h>
// #include <stdint.h>
// #include <string.h>
// #include <math.h>
// #include "lua.h"
// #include "lualib.h"
//
// #define MOONBIND_FUNC_TAG 1
//
// int moonbind_lua_gocb(lua_State *L, int *a, int *b, int *c, uint64_t *ctx);
// void moonbind_lua_funcdtor(lua_State *L, void *block);
// void moonbind_lua_userdtorcb(lua_State *L, void *block);
// void *moonbind_lua_alloccb(void *ud, void *ptr, size_t osize, size_t nsize);
//
// static int moonbind_finish(lua_State *L, int n, int a, int b, int c, uint64_t ctx) {
//   if (n == -1) {
//     return lua_error(L);
//   }
//   if (n == -2) {
//     return lua_yield(L, a);
//   }
//   if (n == -3) {
//     lua_pushstring(L, "continuations are not supported");
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
//   lua_pushcfunction(L, fn, "moonbind");
// }
//
// double moonbind_tonumberx(lua_State *L, int idx, int *isnum) {
//   return lua_tonumberx(L, idx, isnum);
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
// void moonbind_pushinteger(lua_State *L, int64_t n) {
//   lua_pushnumber(L, (double)n);
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
//   void *p = lua_newuserdatatagged(L, size, 0);
//   memset(p, 0, size);
//   return p;
// }
//
// size_t moonbind_userdatalen(lua_State *L, int idx) {
//   return lua_objlen(L, idx);
// }
//
// void *moonbind_newuserdatatagged(lua_State *L, size_t size, int tag) {
//   void *p = lua_newuserdatatagged(L, size, tag);
//   memset(p, 0, size);
//   return p;
// }
//
// void moonbind_setuserdatadtor(lua_State *L, int tag, int on) {
//   lua_setuserdatadtor(L, tag, on ? moonbind_lua_userdtorcb : NULL);
// }
//
// void moonbind_pushclosure(lua_State *L, uint64_t funcID, int n) {
//   uint64_t *p = lua_newuserdatatagged(L, sizeof(uint64_t), MOONBIND_FUNC_TAG);
//   *p = funcID;
//   lua_insert(L, -(n + 1));
//   lua_pushcclosure(L, moonbind_trampoline, "moonbind", n + 1);
// }
//
// static void moonbind_setup(lua_State *L, uintptr_t id) {
//   lua_pushlightuserdata(L, (void *)id);
//   lua_setfield(L, LUA_REGISTRYINDEX, "moonbind_stateid");
//   lua_setuserdatadtor(L, MOONBIND_FUNC_TAG, moonbind_lua_funcdtor);
// }
//
// lua_State *moonbind_newstate(uintptr_t id) {
//   lua_State *L = luaL_newstate();
//   if (L == NULL) {
//     return NULL;
//   }
//   moonbind_setup(L, id);
//   return L;
// }
//
// lua_State *moonbind_newstatealloc(uintptr_t id) {
//   lua_State *L = lua_newstate((lua_Alloc)moonbind_lua_alloccb, (void *)id);
//   if (L == NULL) {
//     return NULL;
//   }
//   moonbind_setup(L, id);
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
//   lua_pushnumber(L, (double)lua_objlen(L, 1));
//   return 1;
// }
//
// int moonbind_resume(lua_State *L, lua_State *from, int nargs, int *nres) {
//   int ret = lua_resume(L, from, nargs);
//   *nres = lua_gettop(L);
//   return ret;
// }
//
// void moonbind_openlibs(lua_State *L) {
//   luaL_openlibs(L);
// }
//
// int moonbind_ref(lua_State *L) {
//   int ref = lua_ref(L, -1);
//   lua_pop(L, 1);
//   return ref;
// }
//
// void moonbind_unref(lua_State *L, int ref) {
//   lua_unref(L, ref);
// }
//
// int moonbind_resetthread(lua_State *L) {
//   lua_resetthread(L);
//   return 0;
// }
import "C"

import "unsafe"

// Dialect descriptor.
const (
	DialectName = "Luau"
	VersionNum  = 501

	IntegerBits       = C.sizeof_lua_Integer * 8
	FloatBits         = C.sizeof_lua_Number * 8
	HasNativeIntegers = false

	HasContinuations      = false
	HasDump               = false
	HasUnsigned           = false
	HasWarnings           = false
	HasGenerationalGC     = false
	HasVectors            = true
	HasUserdataDestructor = true
	HasDebugHooks         = false
	HasCustomAllocator    = true

	MaxUserValues = 0

	LoadModeEnforced = false
	StrictIndexCheck = true
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

// TypeVector is the Luau three-component float vector.
const TypeVector Type = C.LUA_TVECTOR

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
	default:
		return ErrorUnknown
	}
}

func dialectTypeName(tp Type) (string, bool) {
	switch tp {
	case TypeVector:
		return "vector", true
	case C.LUA_TBUFFER:
		return "buffer", true
	default:
		return "", false
	}
}

// PushVector pushes a three-component vector onto the stack.
func (l *State) PushVector(x, y, z float32) {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	C.lua_pushvector(l.ptr, C.float(x), C.float(y), C.float(z))
	l.top++
}

// ToVector converts the value at the given index to a vector.
// If the value is not a vector, ToVector returns a zero vector and false.
func (l *State) ToVector(idx int) (v [3]float32, ok bool) {
	if l.ptr == nil {
		return [3]float32{}, false
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	p := C.lua_tovector(l.ptr, C.int(idx))
	if p == nil {
		return [3]float32{}, false
	}
	c := (*[3]C.float)(unsafe.Pointer(p))
	return [3]float32{float32(c[0]), float32(c[1]), float32(c[2])}, true
}

// Userdata tags 0 (the untagged default of [State.NewUserdata]) and 1 are
// reserved by this package; hosts may use the rest of the VM's tag space.
const (
	minUserdataTag = 2
	maxUserdataTag = C.LUA_UTAG_LIMIT - 1
)

func checkUserdataTag(tag int) {
	if tag < minUserdataTag || tag > maxUserdataTag {
		panic("userdata tag out of range")
	}
}

// NewUserdataTagged is like [State.NewUserdata] with no user values, but
// marks the block with tag so that a destructor registered through
// [State.SetUserdataDestructor] for that tag runs when the VM collects the
// block. It panics if tag is outside [2, LUA_UTAG_LIMIT).
func (l *State) NewUserdataTagged(size, tag int) {
	checkUserdataTag(tag)
	if size < 0 {
		panic("negative userdata size")
	}
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	p := C.moonbind_newuserdatatagged(l.ptr, C.size_t(size), C.int(tag))
	l.top++
	data := l.data()
	if data.taggedBlocks == nil {
		data.taggedBlocks = make(map[uintptr]taggedBlock)
	}
	data.taggedBlocks[uintptr(p)] = taggedBlock{tag: tag, size: size}
}

// SetUserdataDestructor installs f as the destructor for blocks created by
// [State.NewUserdataTagged] with tag. The destructor runs when the VM
// collects such a block, possibly as late as [State.Close].
// A nil f removes the destructor for the tag.
func (l *State) SetUserdataDestructor(tag int, f UserdataDestructor) {
	checkUserdataTag(tag)
	l.init()
	data := l.data()
	on := C.int(0)
	if f == nil {
		delete(data.userDtors, tag)
	} else {
		if data.userDtors == nil {
			data.userDtors = make(map[int]UserdataDestructor)
		}
		data.userDtors[tag] = f
		on = 1
	}
	C.moonbind_setuserdatadtor(l.ptr, C.int(tag), on)
}

// GCSetGoal sets the garbage collector's heap size goal as a percentage of
// live data and returns the previous value.
func (l *State) GCSetGoal(goal int) int {
	l.init()
	return int(C.moonbind_gc(l.ptr, C.LUA_GCSETGOAL, C.int(goal)))
}

// GCSetStepMultiplier sets the collector's step multiplier
// and returns the previous value.
func (l *State) GCSetStepMultiplier(mul int) int {
	l.init()
	return int(C.moonbind_gc(l.ptr, C.LUA_GCSETSTEPMUL, C.int(mul)))
}

// GCSetStepSize sets the collector's step size in kilobytes
// and returns the previous value.
func (l *State) GCSetStepSize(size int) int {
	l.init()
	return int(C.moonbind_gc(l.ptr, C.LUA_GCSETSTEPSIZE, C.int(size)))
}
