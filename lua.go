// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

package lua

import (
	"fmt"
	"io"
	"runtime/cgo"
	"unsafe"
)

// The preamble below may only use declarations that exist in every supported
// dialect of the C API. Anything the dialects disagree on (signatures, macro
// versus function, missing primitives) goes through a moonbind_* shim that
// each dialect_*.go file defines.

// #include <stdlib.h>
// #include <stddef.h>
// #include <stdint.h>
// #include <string.h>
// #include "lua.h"
// #include "lualib.h"
//
// int moonbind_absindex(lua_State *L, int idx);
// void moonbind_rotate(lua_State *L, int idx, int n);
// void moonbind_copyslot(lua_State *L, int fromidx, int toidx);
// void moonbind_pushcfunc(lua_State *L, lua_CFunction fn);
// int64_t moonbind_tointegerx(lua_State *L, int idx, int *isnum);
// double moonbind_tonumberx(lua_State *L, int idx, int *isnum);
// void moonbind_pushinteger(lua_State *L, int64_t n);
// uint64_t moonbind_rawlen(lua_State *L, int idx);
// int moonbind_rawget(lua_State *L, int idx);
// int moonbind_rawgeti(lua_State *L, int idx, int64_t n);
// void moonbind_rawseti(lua_State *L, int idx, int64_t n);
// void moonbind_pushglobals(lua_State *L);
// void *moonbind_newuserdata(lua_State *L, size_t size, int nuvalue);
// size_t moonbind_userdatalen(lua_State *L, int idx);
// void moonbind_pushclosure(lua_State *L, uint64_t funcID, int n);
// lua_State *moonbind_newstate(uintptr_t id);
// uintptr_t moonbind_stateid(lua_State *L);
// int moonbind_gc(lua_State *L, int what, int data);
// int moonbind_lencb(lua_State *L);
//
// void moonbind_pushstring(lua_State *L, _GoString_ s) {
//   lua_pushlstring(L, _GoStringPtr(s), _GoStringLen(s));
// }
//
// static int moonbind_pcall(lua_State *L, int nargs, int nresults, int msgh) {
//   return lua_pcall(L, nargs, nresults, msgh);
// }
//
// static int moonbind_gettablecb(lua_State *L) {
//   lua_gettable(L, 1);
//   return 1;
// }
//
// static int moonbind_gettable(lua_State *L, int index, int msgh, int *tp) {
//   index = moonbind_absindex(L, index);
//   msgh = msgh != 0 ? moonbind_absindex(L, msgh) : 0;
//   moonbind_pushcfunc(L, moonbind_gettablecb);
//   lua_pushvalue(L, index);
//   // Move the key (now third from the top) above the table.
//   lua_pushvalue(L, -3);
//   lua_remove(L, -4);
//   int ret = moonbind_pcall(L, 2, 1, msgh);
//   if (tp != NULL) {
//     *tp = ret == 0 ? lua_type(L, -1) : LUA_TNIL;
//   }
//   return ret;
// }
//
// static int moonbind_settablecb(lua_State *L) {
//   lua_settable(L, 1);
//   return 0;
// }
//
// static int moonbind_settable(lua_State *L, int index, int msgh) {
//   index = moonbind_absindex(L, index);
//   msgh = msgh != 0 ? moonbind_absindex(L, msgh) : 0;
//   moonbind_pushcfunc(L, moonbind_settablecb);
//   lua_pushvalue(L, index);
//   // Move key and value (fourth and third from the top) above the table.
//   lua_pushvalue(L, -4);
//   lua_pushvalue(L, -4);
//   lua_remove(L, -6);
//   lua_remove(L, -5);
//   return moonbind_pcall(L, 3, 0, msgh);
// }
//
// static int moonbind_concatcb(lua_State *L) {
//   lua_concat(L, lua_gettop(L));
//   return 1;
// }
//
// static void moonbind_pushconcatfunction(lua_State *L) {
//   moonbind_pushcfunc(L, moonbind_concatcb);
// }
//
// static void moonbind_pushlenfunction(lua_State *L) {
//   moonbind_pushcfunc(L, moonbind_lencb);
// }
//
// static void moonbind_pushlightuserdata(lua_State *L, uintptr_t p) {
//   lua_pushlightuserdata(L, (void *)p);
// }
import "C"

// cInt lets files without a cgo preamble traffic in C status codes.
type cInt = C.int

// RegistryIndex is the pseudo-index of the registry,
// a predefined table that any Go or C code can use
// to store whatever Lua values it needs to store.
const RegistryIndex int = C.LUA_REGISTRYINDEX

// MultipleReturns is the option for multiple returns in [State.Call].
const MultipleReturns int = C.LUA_MULTRET

// minStack is the number of stack slots the VM guarantees to a callback.
const minStack = C.LUA_MINSTACK

// Type is an enumeration of Lua data types.
type Type C.int

// TypeNone is the value returned from [State.Type]
// for a non-valid but acceptable index.
const TypeNone Type = C.LUA_TNONE

// Value types.
const (
	TypeNil           Type = C.LUA_TNIL
	TypeBoolean       Type = C.LUA_TBOOLEAN
	TypeLightUserdata Type = C.LUA_TLIGHTUSERDATA
	TypeNumber        Type = C.LUA_TNUMBER
	TypeString        Type = C.LUA_TSTRING
	TypeTable         Type = C.LUA_TTABLE
	TypeFunction      Type = C.LUA_TFUNCTION
	TypeUserdata      Type = C.LUA_TUSERDATA
	TypeThread        Type = C.LUA_TTHREAD
)

// String returns the name of the type encoded by tp.
func (tp Type) String() string {
	switch tp {
	case TypeNone:
		return "no value"
	case TypeNil:
		return "nil"
	case TypeBoolean:
		return "boolean"
	case TypeLightUserdata, TypeUserdata:
		return "userdata"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeTable:
		return "table"
	case TypeFunction:
		return "function"
	case TypeThread:
		return "thread"
	default:
		if s, ok := dialectTypeName(tp); ok {
			return s
		}
		return fmt.Sprintf("lua.Type(%d)", C.int(tp))
	}
}

// State represents a whole Lua interpreter or a coroutine thread within one.
// The zero value is a handle to a not-yet-started interpreter:
// the underlying state is allocated on first use.
//
// A State is not safe to use from multiple goroutines simultaneously,
// and a State obtained inside a [Function] must not be retained
// past the Function's return.
type State struct {
	ptr  *C.lua_State
	top  int
	cap  int
	main bool
}

// NewState returns a fresh main state using the default allocator.
// It is equivalent to using a zero State,
// which allocates the interpreter on first use.
func NewState() *State {
	return new(State)
}

// stateData is the interpreter-wide data shared by the main state
// and every coroutine thread derived from it.
type stateData struct {
	nextID   uint64
	closures map[uint64]Function

	nextContID    uint64
	continuations map[uint64]KFunction

	hook    Hook
	warn    WarnHandler
	alloc   AllocFunc
	pending *pendingTransfer

	userDtors    map[int]UserdataDestructor
	taggedBlocks map[uintptr]taggedBlock
}

// taggedBlock records the extent of a tagged userdata block so its
// destructor receives the block's bytes.
type taggedBlock struct {
	tag  int
	size int
}

// pendingTransfer describes a control transfer that a [Function] has
// requested by returning: the C trampoline performs it after the Go frame is
// gone, so the VM's long jump never unwinds Go code.
type pendingTransfer struct {
	kind       int // transferYield or transferCall
	nResults   int
	nArgs      int
	msgHandler int
	contID     uint64
}

const (
	transferYield = iota + 1
	transferCall
)

// Trampoline result codes shared with the C side.
// Non-negative results are counts of returned values.
const (
	cbError = -1 - iota
	cbYield
	cbCall
)

// stateForCallback returns a new State for the given *lua_State.
// stateForCallback assumes that it is called
// before any other functions are called on the *lua_State.
func stateForCallback(ptr *C.lua_State) *State {
	l := &State{
		ptr: ptr,
		top: int(C.lua_gettop(ptr)),
	}
	l.cap = l.top + minStack
	return l
}

func (l *State) init() {
	if l.ptr == nil {
		data := cgo.NewHandle(&stateData{
			nextID:        1,
			closures:      make(map[uint64]Function),
			nextContID:    1,
			continuations: make(map[uint64]KFunction),
		})
		l.ptr = C.moonbind_newstate(C.uintptr_t(data))
		if l.ptr == nil {
			data.Delete()
			panic("could not allocate memory for new state")
		}
		l.top = 0
		l.cap = minStack
		l.main = true
	}
}

// Close releases all resources associated with the main state.
// Closing a coroutine thread's handle is an error:
// threads are reclaimed by the interpreter's garbage collector.
func (l *State) Close() error {
	if l.ptr != nil {
		if !l.main {
			return newClientError("cannot close non-main thread")
		}
		data := cgo.Handle(C.moonbind_stateid(l.ptr))
		C.lua_close(l.ptr)
		data.Delete()
		*l = State{}
	}
	return nil
}

// data returns the interpreter-wide data.
func (l *State) data() *stateData {
	return cgo.Handle(C.moonbind_stateid(l.ptr)).Value().(*stateData)
}

// AbsIndex converts the acceptable index idx
// into an equivalent absolute index
// (that is, one that does not depend on the stack size).
func (l *State) AbsIndex(idx int) int {
	switch {
	case isPseudo(idx):
		return idx
	case idx == 0 || idx < -l.top || idx > l.cap:
		panic("unacceptable index")
	case idx < 0:
		return l.top + idx + 1
	default:
		return idx
	}
}

func (l *State) isValidIndex(idx int) bool {
	if idx == goClosureUpvalueIndex {
		// Forbid users of the package from accessing the Go closure upvalue.
		return false
	}
	if isPseudo(idx) {
		return true
	}
	if idx < 0 {
		idx = -idx
	}
	return 1 <= idx && idx <= l.top
}

func (l *State) isAcceptableIndex(idx int) bool {
	return l.isValidIndex(idx) || l.top <= idx && idx <= l.cap
}

func (l *State) checkElems(n int) {
	if l.top < n {
		panic("not enough elements in the stack")
	}
}

func (l *State) checkMessageHandler(msgHandler int) int {
	switch {
	case msgHandler == 0:
		return 0
	case isPseudo(msgHandler):
		panic("pseudo-indexed message handler")
	case 1 <= msgHandler && msgHandler <= l.top:
		return msgHandler
	case -l.top <= msgHandler && msgHandler <= -1:
		return l.top + msgHandler + 1
	default:
		panic("invalid message handler index")
	}
}

// Top returns the index of the top element in the stack.
// Because indices start at 1,
// this result is equal to the number of elements in the stack;
// in particular, 0 means an empty stack.
func (l *State) Top() int {
	return l.top
}

// SetTop accepts any index, or 0, and sets the stack top to this index.
// If the new top is greater than the old one,
// then the new elements are filled with nil.
// If idx is 0, then all stack elements are removed.
func (l *State) SetTop(idx int) {
	// lua_settop can raise errors, which would be undefined behavior,
	// but only if a stack slot is marked as to-be-closed.
	// This package never marks slots as to-be-closed.

	switch {
	case isPseudo(idx):
		panic("pseudo-index invalid for top")
	case idx == 0:
		if l.ptr != nil {
			C.lua_settop(l.ptr, 0)
			l.top = 0
		}
		return
	case idx < 0:
		idx += l.top + 1
		if idx < 0 {
			panic("stack underflow")
		}
	case idx > l.cap:
		panic("stack overflow")
	}
	l.init()

	C.lua_settop(l.ptr, C.int(idx))
	l.top = idx
}

// Pop pops n elements from the stack.
func (l *State) Pop(n int) {
	l.SetTop(-n - 1)
}

// PushValue pushes a copy of the element at the given index onto the stack.
func (l *State) PushValue(idx int) {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	C.lua_pushvalue(l.ptr, C.int(idx))
	l.top++
}

// Rotate rotates the stack elements
// between the valid index idx and the top of the stack.
// The elements are rotated n positions in the direction of the top for
// positive n, or -n positions in the direction of the bottom for negative n.
// Rotate is the primitive that [State.Insert], [State.Remove], and
// [State.Replace] are defined in terms of,
// so the four stay consistent on every dialect.
func (l *State) Rotate(idx, n int) {
	l.init()
	if !l.isValidIndex(idx) || isPseudo(idx) {
		panic("invalid index")
	}
	idx = l.AbsIndex(idx)
	absN := n
	if n < 0 {
		absN = -n
	}
	if absN > l.top-idx+1 {
		panic("invalid rotation")
	}
	C.moonbind_rotate(l.ptr, C.int(idx), C.int(n))
}

// Remove removes the element at the given valid index,
// shifting down the elements above this index to fill the gap.
func (l *State) Remove(idx int) {
	l.Rotate(idx, -1)
	l.Pop(1)
}

// Insert moves the top element into the given valid index,
// shifting up the elements above this index to open space.
func (l *State) Insert(idx int) {
	l.Rotate(idx, 1)
}

// Copy copies the element at index fromIdx into the valid index toIdx,
// replacing the value at that position.
func (l *State) Copy(fromIdx, toIdx int) {
	l.init()
	if !l.isAcceptableIndex(fromIdx) || !l.isAcceptableIndex(toIdx) {
		panic("unacceptable index")
	}
	C.moonbind_copyslot(l.ptr, C.int(fromIdx), C.int(toIdx))
}

// Replace moves the top element into the given valid index without shifting
// any element (therefore replacing the value at that given index),
// and then pops the top element.
func (l *State) Replace(idx int) {
	l.Copy(-1, idx)
	l.Pop(1)
}

// CheckStack ensures that the stack has space for at least n extra elements,
// that is, that you can safely push up to n values into it.
// It returns false if it cannot fulfill the request.
func (l *State) CheckStack(n int) bool {
	if l.top+n <= l.cap {
		return true
	}
	l.init()
	ok := C.lua_checkstack(l.ptr, C.int(n)) != 0
	if ok {
		l.cap = max(l.cap, l.top+n)
	}
	return ok
}

// IsNumber reports if the value at the given index is a number
// or a string convertible to a number.
func (l *State) IsNumber(idx int) bool {
	if l.ptr == nil {
		return false
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	return C.lua_isnumber(l.ptr, C.int(idx)) != 0
}

// IsString reports if the value at the given index is a string
// or a number (which is always convertible to a string).
func (l *State) IsString(idx int) bool {
	if l.ptr == nil {
		return false
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	return C.lua_isstring(l.ptr, C.int(idx)) != 0
}

// IsNativeFunction reports if the value at the given index
// is a function implemented outside the VM
// (a C function or a Go [Function]).
func (l *State) IsNativeFunction(idx int) bool {
	if l.ptr == nil {
		return false
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	return C.lua_iscfunction(l.ptr, C.int(idx)) != 0
}

// IsUserdata reports if the value at the given index
// is a full or light userdata.
func (l *State) IsUserdata(idx int) bool {
	if l.ptr == nil {
		return false
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	return C.lua_isuserdata(l.ptr, C.int(idx)) != 0
}

// Type returns the type of the value in the given valid index,
// or [TypeNone] for a non-valid but acceptable index.
func (l *State) Type(idx int) Type {
	if l.ptr == nil {
		return TypeNone
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	return Type(C.lua_type(l.ptr, C.int(idx)))
}

func (l *State) IsFunction(idx int) bool { return l.Type(idx) == TypeFunction }
func (l *State) IsTable(idx int) bool    { return l.Type(idx) == TypeTable }
func (l *State) IsNil(idx int) bool      { return l.Type(idx) == TypeNil }
func (l *State) IsBoolean(idx int) bool  { return l.Type(idx) == TypeBoolean }
func (l *State) IsThread(idx int) bool   { return l.Type(idx) == TypeThread }
func (l *State) IsNone(idx int) bool     { return l.Type(idx) == TypeNone }

func (l *State) IsNoneOrNil(idx int) bool {
	tp := l.Type(idx)
	return tp == TypeNone || tp == TypeNil
}

// ToNumber converts the value at the given index to a floating point number.
// The value must be a number or a string convertible to a number;
// otherwise, ToNumber returns (0, false).
// This conversion never raises into the VM.
func (l *State) ToNumber(idx int) (n float64, ok bool) {
	if l.ptr == nil {
		return 0, false
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	var isNum C.int
	n = float64(C.moonbind_tonumberx(l.ptr, C.int(idx), &isNum))
	return n, isNum != 0
}

// ToInteger converts the value at the given index to a signed integer.
// The value must be convertible to an integer in the dialect's rules;
// otherwise, ToInteger returns (0, false).
// This conversion never raises into the VM.
func (l *State) ToInteger(idx int) (n int64, ok bool) {
	if l.ptr == nil {
		return 0, false
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	var isNum C.int
	n = int64(C.moonbind_tointegerx(l.ptr, C.int(idx), &isNum))
	return n, isNum != 0
}

// ToBoolean converts the value at the given index to a boolean.
// Any value different from false and nil tests true.
func (l *State) ToBoolean(idx int) bool {
	if l.ptr == nil {
		return false
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	return C.lua_toboolean(l.ptr, C.int(idx)) != 0
}

// ToString converts the value at the given index to a string.
// The value must be a string or a number; otherwise ToString returns
// ("", false). The conversion mutates the stack slot for numbers,
// as the underlying VM does.
func (l *State) ToString(idx int) (s string, ok bool) {
	if l.ptr == nil {
		return "", false
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	var len C.size_t
	ptr := C.lua_tolstring(l.ptr, C.int(idx), &len)
	if ptr == nil {
		return "", false
	}
	return C.GoStringN(ptr, C.int(len)), true
}

// RawLen returns the raw "length" of the value at the given index:
// for strings, the string length;
// for tables, the border of the table ignoring metamethods;
// for userdata, the size of its block of memory.
func (l *State) RawLen(idx int) uint64 {
	if l.ptr == nil {
		return 0
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	return uint64(C.moonbind_rawlen(l.ptr, C.int(idx)))
}

// CopyUserdata copies bytes from the userdata's block of bytes at idx
// into dst, starting at byte offset start.
// It returns the number of bytes copied.
func (l *State) CopyUserdata(dst []byte, idx, start int) int {
	if l.ptr == nil {
		return 0
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	return l.copyUserdata(dst, idx, start)
}

func (l *State) copyUserdata(dst []byte, idx, start int) int {
	if start < 0 {
		panic("negative userdata start")
	}
	size := int(C.moonbind_userdatalen(l.ptr, C.int(idx)))
	if start >= size {
		return 0
	}
	src := unsafe.Slice((*byte)(C.lua_touserdata(l.ptr, C.int(idx))), size)
	return copy(dst, src[start:])
}

// ToPointer converts the value at the given index to a generic pointer
// and returns its numeric value.
// Different objects give different numbers;
// the number is only useful as an identity token.
func (l *State) ToPointer(idx int) uintptr {
	if l.ptr == nil {
		return 0
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	return uintptr(C.lua_topointer(l.ptr, C.int(idx)))
}

// RawEqual reports whether the two values in the given indices
// are primitively equal (without calling the __eq metamethod).
func (l *State) RawEqual(idx1, idx2 int) bool {
	if l.ptr == nil {
		return false
	}
	if !l.isAcceptableIndex(idx1) || !l.isAcceptableIndex(idx2) {
		panic("unacceptable index")
	}
	return C.lua_rawequal(l.ptr, C.int(idx1), C.int(idx2)) != 0
}

// PushNil pushes a nil value onto the stack.
func (l *State) PushNil() {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	C.lua_pushnil(l.ptr)
	l.top++
}

// PushNumber pushes a floating point number onto the stack.
func (l *State) PushNumber(n float64) {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	C.lua_pushnumber(l.ptr, C.lua_Number(n))
	l.top++
}

// PushInteger pushes an integer onto the stack.
// Dialects whose native integer is narrower than 64 bits truncate n.
func (l *State) PushInteger(n int64) {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	C.moonbind_pushinteger(l.ptr, C.int64_t(n))
	l.top++
}

// PushString pushes a string onto the stack.
// The VM makes its own copy of the bytes.
func (l *State) PushString(s string) {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	C.moonbind_pushstring(l.ptr, s)
	l.top++
}

// PushBoolean pushes a boolean onto the stack.
func (l *State) PushBoolean(b bool) {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	i := C.int(0)
	if b {
		i = 1
	}
	C.lua_pushboolean(l.ptr, i)
	l.top++
}

// PushLightUserdata pushes a light userdata (a bare pointer value)
// onto the stack.
func (l *State) PushLightUserdata(p uintptr) {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	C.moonbind_pushlightuserdata(l.ptr, C.uintptr_t(p))
	l.top++
}

// Function is a Go function that can be called from Lua.
// It receives its arguments on the state's stack and returns the number of
// results it pushed, or a non-nil error to raise in the VM.
//
// A Function must not hold any resource that needs release when it returns
// a non-nil error or returns through [State.Yield]:
// the raise or suspension is performed by the VM after the Go frame returns.
type Function = func(*State) (int, error)

func pcall(f Function, l *State) (nResults int, err error) {
	defer func() {
		if v := recover(); v != nil {
			nResults = 0
			switch v := v.(type) {
			case error:
				err = v
			case string:
				err = newClientError(v)
			default:
				err = newClientError(formatValue(v))
			}
		}
	}()
	return f(l)
}

// PushClosure pushes a Go closure onto the stack with n upvalues.
// The n values on the top of the stack are popped and become upvalues,
// accessible inside f via [UpvalueIndex].
// The closure is kept alive until the VM's garbage collector
// determines the pushed function is unreachable.
func (l *State) PushClosure(n int, f Function) {
	if f == nil {
		panic("nil Function")
	}
	if n < 0 || n > 254 {
		panic("invalid upvalue count")
	}
	l.checkElems(n)
	l.init()
	if !l.CheckStack(3) {
		panic("stack overflow")
	}
	data := l.data()
	funcID := data.nextID
	if funcID == 0 {
		panic("ID wrap-around")
	}
	data.nextID++
	data.closures[funcID] = f

	C.moonbind_pushclosure(l.ptr, C.uint64_t(funcID), C.int(n))
	// The push-closure primitive pops n, but pushes 1.
	l.top -= n - 1
}

// Global pushes onto the stack the value of the global with the given name
// and returns its type.
// If an error is raised while indexing the globals table
// (e.g. by an __index metamethod),
// Global pushes nil and returns the error.
func (l *State) Global(name string, msgHandler int) (Type, error) {
	l.init()
	msgHandler = l.checkMessageHandler(msgHandler)
	l.pushGlobals()
	tp, err := l.Field(-1, name, msgHandler)
	l.Remove(-2) // remove the globals table
	return tp, err
}

// pushGlobals pushes the globals table onto the stack.
// Dialects reach it through the registry or a dedicated pseudo-index.
func (l *State) pushGlobals() {
	if l.top >= l.cap {
		panic("stack overflow")
	}
	C.moonbind_pushglobals(l.ptr)
	l.top++
}

// Table pushes onto the stack the value t[k],
// where t is the value at the given index
// and k is the value on the top of the stack.
// This function pops the key from the stack,
// pushing the resulting value in its place.
// The access may trigger metamethods;
// any error they raise is returned as an [*Error], with nil pushed instead.
func (l *State) Table(idx, msgHandler int) (Type, error) {
	l.checkElems(1)
	if !l.CheckStack(2) { // the protected get needs 2 additional stack slots
		panic("stack overflow")
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	msgHandler = l.checkMessageHandler(msgHandler)
	var tp C.int
	ret := C.moonbind_gettable(l.ptr, C.int(idx), C.int(msgHandler), &tp)
	if ret != 0 {
		return TypeNil, l.wrapError("table lookup", ret)
	}
	return Type(tp), nil
}

// Field pushes onto the stack the value t[k],
// where t is the value at the given index.
// See [State.Table] for the error behavior.
func (l *State) Field(idx int, k string, msgHandler int) (Type, error) {
	l.init()
	if !l.CheckStack(3) { // the protected get needs 2 additional stack slots
		panic("stack overflow")
	}
	idx = l.AbsIndex(idx)
	msgHandler = l.checkMessageHandler(msgHandler)
	l.PushString(k)
	var tp C.int
	ret := C.moonbind_gettable(l.ptr, C.int(idx), C.int(msgHandler), &tp)
	if ret != 0 {
		return TypeNil, l.wrapError("get field "+quote(k), ret)
	}
	return Type(tp), nil
}

// RawGet pushes onto the stack t[k],
// where t is the table at the given index
// and k is the value on the top of the stack,
// without triggering metamethods.
func (l *State) RawGet(idx int) Type {
	l.checkElems(1)
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	return Type(C.moonbind_rawget(l.ptr, C.int(idx)))
}

// RawIndex pushes onto the stack t[n],
// where t is the table at the given index,
// without triggering metamethods.
func (l *State) RawIndex(idx int, n int64) Type {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	tp := Type(C.moonbind_rawgeti(l.ptr, C.int(idx), C.int64_t(n)))
	l.top++
	return tp
}

// RawField pushes onto the stack t[k],
// where t is the table at the given index,
// without triggering metamethods.
func (l *State) RawField(idx int, k string) Type {
	idx = l.AbsIndex(idx)
	l.PushString(k)
	return l.RawGet(idx)
}

// CreateTable creates a new empty table and pushes it onto the stack.
// nArr and nRec are capacity hints for sequence and record entries.
func (l *State) CreateTable(nArr, nRec int) {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	C.lua_createtable(l.ptr, C.int(nArr), C.int(nRec))
	l.top++
}

// NewUserdata creates a new full userdata of the given byte size
// with nUValue associated Lua values ("user values"),
// zero-fills it, and pushes it onto the stack.
// It panics if nUValue exceeds [MaxUserValues].
//
// A finalizer for the block follows the dialect's model: where metatables
// drive finalization, give the userdata a metatable whose "__gc" field is a
// [Function] before the block becomes collectable. Dialects with tagged
// userdata destructors (see [HasUserdataDestructor]) instead create the
// block with NewUserdataTagged and register a [UserdataDestructor].
func (l *State) NewUserdata(size, nUValue int) {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	if size < 0 {
		panic("negative userdata size")
	}
	if nUValue < 0 || nUValue > MaxUserValues {
		panic("user value count out of range for dialect")
	}
	C.moonbind_newuserdata(l.ptr, C.size_t(size), C.int(nUValue))
	l.top++
}

// SetUserdata copies bytes from src into the userdata at idx,
// starting at byte offset start within the userdata's block.
func (l *State) SetUserdata(idx int, start int, src []byte) {
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	l.setUserdata(idx, start, src)
}

func (l *State) setUserdata(idx int, start int, src []byte) {
	if start < 0 {
		panic("negative start")
	}

	size := int(C.moonbind_userdatalen(l.ptr, C.int(idx)))
	if start+len(src) > size {
		panic("out of userdata bounds")
	}
	if len(src) == 0 {
		return
	}
	dst := unsafe.Slice((*byte)(C.lua_touserdata(l.ptr, C.int(idx))), size)
	copy(dst[start:], src)
}

// Metatable pushes onto the stack the metatable of the value
// at the given index and reports whether one exists.
// If the value does not have a metatable, nothing is pushed.
func (l *State) Metatable(idx int) bool {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	ok := C.lua_getmetatable(l.ptr, C.int(idx)) != 0
	if ok {
		l.top++
	}
	return ok
}

// SetGlobal pops a value from the stack
// and sets it as the new value of the global with the given name.
func (l *State) SetGlobal(name string, msgHandler int) error {
	l.checkElems(1)
	if msgHandler != 0 {
		msgHandler = l.AbsIndex(msgHandler)
	}
	l.pushGlobals()
	l.Rotate(-2, 1) // swap globals table with value
	err := l.SetField(-2, name, msgHandler)
	l.Pop(1) // remove the globals table
	return err
}

// SetTable does the equivalent of t[k] = v,
// where t is the value at the given index,
// v is the value on the top of the stack,
// and k is the value just below the top.
// Both the key and the value are popped; metamethods may run.
func (l *State) SetTable(idx, msgHandler int) error {
	l.checkElems(2)
	if !l.CheckStack(2) { // the protected set needs 2 additional stack slots
		panic("stack overflow")
	}
	if !l.isAcceptableIndex(idx) || msgHandler != 0 && !l.isAcceptableIndex(msgHandler) {
		panic("unacceptable index")
	}
	ret := C.moonbind_settable(l.ptr, C.int(idx), C.int(msgHandler))
	if ret != 0 {
		l.top--
		return l.wrapError("set table field", ret)
	}
	l.top -= 2
	return nil
}

// SetField does the equivalent of t[k] = v,
// where t is the value at the given index
// and v is the value on the top of the stack (which is popped).
func (l *State) SetField(idx int, k string, msgHandler int) error {
	l.checkElems(1)
	if !l.CheckStack(3) { // the protected set needs 2 additional stack slots
		panic("stack overflow")
	}

	idx = l.AbsIndex(idx)
	if msgHandler != 0 {
		msgHandler = l.AbsIndex(msgHandler)
	}

	l.PushString(k)
	l.Rotate(-2, 1)
	ret := C.moonbind_settable(l.ptr, C.int(idx), C.int(msgHandler))
	if ret != 0 {
		l.top--
		return l.wrapError("set field "+quote(k), ret)
	}
	l.top -= 2
	return nil
}

// RawSet does the equivalent of t[k] = v without triggering metamethods,
// where t is the table at the given index,
// v is the value on the top of the stack,
// and k is the value just below the top. Both are popped.
func (l *State) RawSet(idx int) {
	l.checkElems(2)
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	C.lua_rawset(l.ptr, C.int(idx))
	l.top -= 2
}

// RawSetIndex does the equivalent of t[n] = v without triggering
// metamethods, where t is the table at the given index
// and v is the value on the top of the stack (which is popped).
func (l *State) RawSetIndex(idx int, n int64) {
	l.checkElems(1)
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	C.moonbind_rawseti(l.ptr, C.int(idx), C.int64_t(n))
	l.top--
}

// RawSetField does the equivalent of t[k] = v without triggering
// metamethods, where t is the table at the given index
// and v is the value on the top of the stack (which is popped).
func (l *State) RawSetField(idx int, k string) {
	idx = l.AbsIndex(idx)
	l.PushString(k)
	l.Rotate(-2, 1)
	l.RawSet(idx)
}

// SetMetatable pops a table (or nil) from the stack
// and sets it as the new metatable for the value at the given index.
func (l *State) SetMetatable(objIndex int) {
	l.checkElems(1)
	if !l.isAcceptableIndex(objIndex) {
		panic("unacceptable index")
	}
	C.lua_setmetatable(l.ptr, C.int(objIndex))
	l.top--
}

// Call calls a function (or callable object) in protected mode.
//
// To do a call you must use the following protocol:
// first, the function to be called is pushed onto the stack;
// then, the arguments to the call are pushed in direct order.
// Call then pops the function and its arguments,
// calls the function,
// and pushes the function's results in direct order.
//
// If the call fails, Call returns an [*Error]
// and leaves the error object as the single value
// in place of the function and its arguments;
// if msgHandler is non-zero,
// the value at that index is first applied to the error object.
func (l *State) Call(nArgs, nResults, msgHandler int) error {
	if nArgs < 0 {
		panic("negative arguments")
	}
	toPop := 1 + nArgs
	l.checkElems(toPop)
	newTop := -1
	if nResults != MultipleReturns {
		if nResults < 0 {
			panic("negative results")
		}
		newTop = l.top - toPop + nResults
		if newTop > l.cap {
			panic("stack overflow")
		}
	}
	msgHandler = l.checkMessageHandler(msgHandler)

	ret := C.moonbind_pcall(l.ptr, C.int(nArgs), C.int(nResults), C.int(msgHandler))
	if ret != 0 {
		l.top -= toPop - 1
		return l.newError(ret)
	}
	if newTop >= 0 {
		l.top = newTop
	} else {
		l.top = int(C.lua_gettop(l.ptr))
		l.cap = max(l.cap, l.top)
	}
	return nil
}

// CallUnprotected calls a function with no error trapping:
// an error raised during the call performs a long jump past the caller.
// It must only be used when failure is provably impossible,
// or from inside a [Function] whose own caller is protected.
// The stack protocol is the same as [State.Call].
func (l *State) CallUnprotected(nArgs, nResults int) {
	if nArgs < 0 {
		panic("negative arguments")
	}
	toPop := 1 + nArgs
	l.checkElems(toPop)
	if nResults != MultipleReturns && nResults < 0 {
		panic("negative results")
	}

	C.lua_call(l.ptr, C.int(nArgs), C.int(nResults))
	l.top = int(C.lua_gettop(l.ptr))
	l.cap = max(l.cap, l.top)
}

// Next pops a key from the stack
// and pushes a key–value pair from the table at the given index,
// the "next" pair after the given key.
// If there are no more elements in the table,
// Next returns false and pushes nothing.
func (l *State) Next(idx int) bool {
	l.checkElems(1)
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	ok := C.lua_next(l.ptr, C.int(idx)) != 0
	if ok {
		l.top++
	} else {
		l.top--
	}
	return ok
}

// Concat concatenates the n values at the top of the stack,
// pops them, and leaves the result on the top.
// Concatenation may trigger metamethods;
// the operation runs in protected mode.
func (l *State) Concat(n int, msgHandler int) error {
	l.init()
	msgHandler = l.checkMessageHandler(msgHandler)

	if n == 0 {
		l.PushString("")
		return nil
	}

	l.checkElems(n)
	C.moonbind_pushconcatfunction(l.ptr)
	l.top++
	l.Insert(-(n + 1))
	if err := l.Call(n, 1, msgHandler); err != nil {
		return wrapOpError("concat", err)
	}
	return nil
}

// Len pushes the length of the value at the given index onto the stack.
// Length may trigger the __len metamethod on dialects that dispatch it;
// the operation runs in protected mode.
func (l *State) Len(idx int, msgHandler int) error {
	l.init()
	idx = l.AbsIndex(idx)
	msgHandler = l.checkMessageHandler(msgHandler)
	C.moonbind_pushlenfunction(l.ptr)
	l.top++
	l.PushValue(idx)
	if err := l.Call(1, 1, msgHandler); err != nil {
		return wrapOpError("length", err)
	}
	return nil
}

// GC performs a full garbage-collection cycle.
func (l *State) GC() {
	l.init()
	C.moonbind_gc(l.ptr, C.LUA_GCCOLLECT, 0)
}

// GCStop stops the garbage collector.
func (l *State) GCStop() {
	l.init()
	C.moonbind_gc(l.ptr, C.LUA_GCSTOP, 0)
}

// GCRestart restarts the garbage collector.
func (l *State) GCRestart() {
	l.init()
	C.moonbind_gc(l.ptr, C.LUA_GCRESTART, 0)
}

// GCCount returns the current amount of memory (in bytes) in use by the VM.
func (l *State) GCCount() int64 {
	l.init()
	kb := int64(C.moonbind_gc(l.ptr, C.LUA_GCCOUNT, 0))
	b := int64(C.moonbind_gc(l.ptr, C.LUA_GCCOUNTB, 0))
	return kb<<10 | b
}

// GCStep performs an incremental step of garbage collection,
// as if the collector had allocated stepSize kilobytes.
func (l *State) GCStep(stepSize int) {
	l.init()
	C.moonbind_gc(l.ptr, C.LUA_GCSTEP, C.int(stepSize))
}

// Upvalue pushes the n-th upvalue of the closure at funcIndex
// onto the stack and returns its name.
// It returns ok=false (and pushes nothing) if n is out of range.
func (l *State) Upvalue(funcIndex, n int) (name string, ok bool) {
	l.init()
	if !l.isAcceptableIndex(funcIndex) {
		panic("unacceptable index")
	}
	cname := C.lua_getupvalue(l.ptr, C.int(funcIndex), C.int(n))
	if cname == nil {
		return "", false
	}
	l.top++
	return C.GoString(cname), true
}

// SetUpvalue pops a value from the stack
// and sets it as the n-th upvalue of the closure at funcIndex,
// returning the upvalue's name.
// It returns ok=false (and pops nothing) if n is out of range.
func (l *State) SetUpvalue(funcIndex, n int) (name string, ok bool) {
	l.checkElems(1)
	if !l.isAcceptableIndex(funcIndex) {
		panic("unacceptable index")
	}
	cname := C.lua_setupvalue(l.ptr, C.int(funcIndex), C.int(n))
	if cname == nil {
		return "", false
	}
	l.top--
	return C.GoString(cname), true
}

func isPseudo(i int) bool {
	return i <= RegistryIndex
}

// UpvalueIndex returns the pseudo-index that represents the i-th upvalue
// of the running [Function].
// If i is outside the range [1, 254], UpvalueIndex panics.
func UpvalueIndex(i int) int {
	if i < 1 || i > 254 {
		panic("invalid upvalue index")
	}
	// Slot 1 is reserved for the Go closure ID.
	return upvalueBase - (i + 1)
}

const goClosureUpvalueIndex = upvalueBase - 1

// UserdataDestructor receives the bytes of a host-owned userdata block when
// the VM collects it. The slice is only valid during the call.
// Only dialects with tagged userdata destructors can install one
// (see [HasUserdataDestructor]).
type UserdataDestructor = func(data []byte)

// WarnHandler receives warning messages emitted through the VM's warning
// system. A warning may arrive in pieces: toBeContinued reports whether the
// message is continued by the next call.
// Only dialects with a warning system can install one (see [HasWarnings]).
type WarnHandler = func(msg string, toBeContinued bool)

// AllocFunc is a realloc-shaped allocator for the VM's heap:
//
//   - If newSize is zero, it must free ptr (if non-nil) and return nil.
//   - If ptr is nil, it must allocate newSize bytes (oldSize then encodes
//     the kind of object being allocated, per the C API).
//   - Otherwise it must resize ptr from oldSize to newSize bytes,
//     returning nil if (and only if) the resize cannot be fulfilled.
//
// The returned memory must be C memory (see [SystemAlloc]):
// the VM holds it across garbage-collection and long-jump boundaries
// that the Go runtime must not be exposed to.
// An AllocFunc may be invoked re-entrantly from inside any VM primitive
// and must not acquire locks the caller might hold.
type AllocFunc = func(ptr unsafe.Pointer, oldSize, newSize uintptr) unsafe.Pointer

const readerBufferSize = 4096

// reader owns the fixed C buffer that chunk bytes are relayed through.
// The buffer must be C memory: the VM reads from it after the
// reader callback has returned.
type reader struct {
	r   io.Reader
	buf *C.char
}

func newReader(r io.Reader) *reader {
	return &reader{
		r:   r,
		buf: (*C.char)(C.calloc(readerBufferSize, C.size_t(unsafe.Sizeof(C.char(0))))),
	}
}

func (r *reader) free() {
	if r.buf != nil {
		C.free(unsafe.Pointer(r.buf))
		r.buf = nil
	}
}

func copyUint64(l *State, idx int) uint64 {
	var buf [8]byte
	l.copyUserdata(buf[:], idx, 0)
	var x uint64
	for i, b := range buf {
		x |= uint64(b) << (i * 8)
	}
	return x
}

func setUint64(l *State, idx int, x uint64) {
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(x >> (i * 8))
	}
	l.setUserdata(idx, 0, buf[:])
}
