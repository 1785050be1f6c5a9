// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

package lua

import (
	"io"
	"runtime/cgo"
	"unsafe"
)

// This file contains the Go code exported to C.
// It is kept separate with a minimal C preamble
// to avoid unintentional redefinitions.
// See the caveat in https://pkg.go.dev/cmd/cgo for more details.
//
// Exported callbacks never raise into the VM themselves:
// they report failure through their return value
// and the C trampoline that called them performs the raise
// once the Go frames are gone.

// #include <stdlib.h>
// #include <stddef.h>
// #include <stdint.h>
// #include "lua.h"
//
// void moonbind_pushstring(lua_State *L, _GoString_ s);
// uintptr_t moonbind_stateid(lua_State *L);
import "C"

// finishCallback translates the outcome of a [Function] invocation into the
// trampoline protocol: a non-negative result count, cbError with the error
// payload pushed, or a pending yield/call transfer encoded in the out
// parameters.
func finishCallback(state *State, results int, err error, a, b, c *C.int, ctx *C.uint64_t) C.int {
	data := state.data()
	pending := data.pending
	data.pending = nil
	if err != nil {
		C.moonbind_pushstring(state.ptr, err.Error())
		return cbError
	}
	if pending != nil {
		switch pending.kind {
		case transferYield:
			*a = C.int(pending.nResults)
			*ctx = C.uint64_t(pending.contID)
			return cbYield
		case transferCall:
			*a = C.int(pending.nArgs)
			*b = C.int(pending.nResults)
			*c = C.int(pending.msgHandler)
			*ctx = C.uint64_t(pending.contID)
			return cbCall
		}
	}
	if results < 0 {
		C.moonbind_pushstring(state.ptr, "Go callback returned negative results")
		return cbError
	}
	return C.int(results)
}

//export moonbind_lua_gocb
func moonbind_lua_gocb(l *C.lua_State, a *C.int, b *C.int, c *C.int, ctx *C.uint64_t) C.int {
	state := stateForCallback(l)
	defer func() {
		// Once the callback has finished, clear the State.
		// This prevents incorrect usage,
		// especially retained handles and ActivationRecords.
		*state = State{}
	}()
	funcID := copyUint64(state, goClosureUpvalueIndex)
	f := state.data().closures[funcID]
	if f == nil {
		C.moonbind_pushstring(l, "Go closure upvalue corrupted")
		return cbError
	}

	results, err := pcall(f, state)
	return finishCallback(state, results, err, a, b, c, ctx)
}

//export moonbind_lua_contcb
func moonbind_lua_contcb(l *C.lua_State, status C.int, kctx C.uint64_t, a *C.int, b *C.int, c *C.int, ctx *C.uint64_t) C.int {
	state := stateForCallback(l)
	defer func() {
		*state = State{}
	}()
	data := state.data()
	k := data.continuations[uint64(kctx)]
	if k == nil {
		C.moonbind_pushstring(l, "Go continuation context corrupted")
		return cbError
	}
	delete(data.continuations, uint64(kctx))

	st := statusFromCode(status)
	results, err := pcall(func(state *State) (int, error) {
		return k(state, st)
	}, state)
	return finishCallback(state, results, err, a, b, c, ctx)
}

//export moonbind_lua_funcgc
func moonbind_lua_funcgc(l *C.lua_State) C.int {
	state := stateForCallback(l)
	funcID := copyUint64(state, 1)
	if funcID != 0 {
		delete(state.data().closures, funcID)
		setUint64(state, 1, 0)
	}
	return 0
}

//export moonbind_lua_funcdtor
func moonbind_lua_funcdtor(l *C.lua_State, block unsafe.Pointer) {
	// Destructor for the closure-ID userdata on dialects with
	// tag-checked userdata destructors instead of a __gc metamethod.
	buf := unsafe.Slice((*byte)(block), 8)
	var funcID uint64
	for i, b := range buf {
		funcID |= uint64(b) << (i * 8)
	}
	if funcID != 0 {
		delete(cgo.Handle(C.moonbind_stateid(l)).Value().(*stateData).closures, funcID)
		for i := range buf {
			buf[i] = 0
		}
	}
}

//export moonbind_lua_userdtorcb
func moonbind_lua_userdtorcb(l *C.lua_State, block unsafe.Pointer) {
	// Destructor for host-created tagged userdata.
	data := cgo.Handle(C.moonbind_stateid(l)).Value().(*stateData)
	rec, ok := data.taggedBlocks[uintptr(block)]
	if !ok {
		return
	}
	delete(data.taggedBlocks, uintptr(block))
	if f := data.userDtors[rec.tag]; f != nil {
		f(unsafe.Slice((*byte)(block), rec.size))
	}
}

//export moonbind_lua_readercb
func moonbind_lua_readercb(l *C.lua_State, data unsafe.Pointer, size *C.size_t) *C.char {
	r := (*cgo.Handle)(data).Value().(*reader)
	buf := unsafe.Slice((*byte)(unsafe.Pointer(r.buf)), readerBufferSize)
	n, err := r.r.Read(buf)
	*size = C.size_t(n)
	if n == 0 && err != nil && err != io.EOF {
		// The C reader wrapper intercepts a NULL return and raises.
		// Push the error payload onto the stack for it.
		C.moonbind_pushstring(l, err.Error())
		return nil
	}
	return r.buf
}

type writerState struct {
	w   cgo.Handle
	n   int64
	err cgo.Handle
}

//export moonbind_lua_writercb
func moonbind_lua_writercb(l *C.lua_State, p unsafe.Pointer, size C.size_t, ud unsafe.Pointer) C.int {
	state := (*writerState)(ud)
	b := unsafe.Slice((*byte)(p), size)
	n, err := state.w.Value().(io.Writer).Write(b)
	state.n += int64(n)
	if err != nil {
		state.err = cgo.NewHandle(err)
		return 1
	}
	return 0
}

//export moonbind_lua_hookcb
func moonbind_lua_hookcb(l *C.lua_State, event C.int, ar unsafe.Pointer) C.int {
	state := stateForCallback(l)
	defer func() {
		*state = State{}
	}()
	hook := state.data().hook
	if hook == nil {
		return 0
	}
	rec := &ActivationRecord{
		state: state,
		lptr:  unsafe.Pointer(l),
		ar:    ar,
	}
	_, err := pcall(func(state *State) (int, error) {
		return 0, hook(state, hookEventFromCode(event), rec)
	}, state)
	if err != nil {
		C.moonbind_pushstring(l, err.Error())
		return cbError
	}
	return 0
}

//export moonbind_lua_warncb
func moonbind_lua_warncb(ud unsafe.Pointer, msg *C.char, toBeContinued C.int) {
	warn := cgo.Handle(uintptr(ud)).Value().(*stateData).warn
	if warn == nil {
		return
	}
	warn(C.GoString(msg), toBeContinued != 0)
}

//export moonbind_lua_alloccb
func moonbind_lua_alloccb(ud unsafe.Pointer, ptr unsafe.Pointer, osize C.size_t, nsize C.size_t) unsafe.Pointer {
	alloc := cgo.Handle(uintptr(ud)).Value().(*stateData).alloc
	return alloc(ptr, uintptr(osize), uintptr(nsize))
}
