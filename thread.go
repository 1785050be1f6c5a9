// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

package lua

// #include <stddef.h>
// #include "lua.h"
//
// int moonbind_resume(lua_State *L, lua_State *from, int nargs, int *nresults);
import "C"

// Status describes the execution state of a coroutine thread.
type Status int

const (
	// StatusOK means the thread ran its main function to completion
	// (or has not started one).
	StatusOK Status = iota
	// StatusSuspended means the thread is suspended in a yield.
	StatusSuspended
	// StatusError means the thread stopped with an error
	// and cannot be resumed.
	StatusError
)

// String returns the coroutine library's name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "dead"
	case StatusSuspended:
		return "suspended"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

func statusFromCode(code cInt) Status {
	switch code {
	case 0:
		return StatusOK
	case C.LUA_YIELD:
		return StatusSuspended
	default:
		return StatusError
	}
}

// KFunction is a continuation invoked when a coroutine
// suspended through [State.YieldK] or [State.CallK] is resumed.
// status reports how control came back.
// Like [Function], its return value may request another transfer.
type KFunction = func(l *State, status Status) (int, error)

// ResumeResult reports the outcome of a successful [State.Resume]:
// whether the thread suspended in a yield or ran to completion,
// and how many values (yielded or returned) are on the thread's stack.
type ResumeResult struct {
	Yielded  bool
	NResults int
}

// NewThread creates a new cooperative thread ("coroutine"),
// pushes it on the stack,
// and returns a handle to it.
// The new thread shares the parent's heap and global environment
// but has an independent execution stack.
//
// Thread handles are never closed by host code:
// the thread is reclaimed by the VM's garbage collector
// once it is unreachable.
func (l *State) NewThread() *State {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	ptr := C.lua_newthread(l.ptr)
	l.top++
	return &State{
		ptr: ptr,
		top: 0,
		cap: minStack,
	}
}

// ToThread returns a handle for the thread at the given index.
func (l *State) ToThread(idx int) (*State, bool) {
	if l.ptr == nil {
		return nil, false
	}
	if !l.isAcceptableIndex(idx) {
		panic("unacceptable index")
	}
	ptr := C.lua_tothread(l.ptr, C.int(idx))
	if ptr == nil {
		return nil, false
	}
	t := &State{ptr: ptr, main: ptr == l.ptr && l.main}
	t.top = int(C.lua_gettop(ptr))
	t.cap = t.top + minStack
	return t, true
}

// PushThread pushes the thread represented by l onto its own stack,
// and reports whether it is the main thread.
func (l *State) PushThread() bool {
	l.init()
	if l.top >= l.cap {
		panic("stack overflow")
	}
	isMain := C.lua_pushthread(l.ptr) != 0
	l.top++
	return isMain
}

// XMove exchanges values between threads of the same interpreter:
// it pops n values from l's stack and pushes them onto to's stack.
func (l *State) XMove(to *State, n int) {
	l.checkElems(n)
	if to.ptr == nil {
		panic("cannot move onto uninitialized state")
	}
	if to.top+n > to.cap {
		panic("stack overflow")
	}
	C.lua_xmove(l.ptr, to.ptr, C.int(n))
	l.top -= n
	to.top += n
}

// Status returns the thread's execution status.
func (l *State) Status() Status {
	if l.ptr == nil {
		return StatusOK
	}
	return statusFromCode(C.lua_status(l.ptr))
}

// Resume starts or continues running the thread l.
//
// To start a thread, push the main function and its arguments onto the
// thread's stack, then call Resume with the argument count; to continue one
// after a yield, push only the values that the yield expression should
// produce. from is the thread performing the resume (nil for the host).
//
// On success, the result reports whether the thread yielded or completed;
// in both cases the yielded/returned values are on the thread's stack.
// On failure, the error object is the single value
// left on the thread's stack,
// and every later Resume reports the same terminal outcome.
func (l *State) Resume(from *State, nArgs int) (ResumeResult, error) {
	if l.ptr == nil {
		panic("resume on uninitialized state")
	}
	if nArgs < 0 {
		panic("negative arguments")
	}
	l.checkElems(nArgs)
	var fromPtr *C.lua_State
	if from != nil {
		fromPtr = from.ptr
	}

	var nres C.int
	ret := C.moonbind_resume(l.ptr, fromPtr, C.int(nArgs), &nres)
	switch ret {
	case 0, C.LUA_YIELD:
		l.top = int(nres)
		l.cap = max(l.cap, l.top)
		return ResumeResult{Yielded: ret == C.LUA_YIELD, NResults: int(nres)}, nil
	default:
		l.top = int(C.lua_gettop(l.ptr))
		l.cap = max(l.cap, l.top)
		return ResumeResult{}, l.newError(ret)
	}
}

// Yield suspends the calling coroutine with the top nResults values of the
// stack as the yield's results. It must be used as the return expression of
// a [Function]:
//
//	return l.Yield(1)
//
// The suspension itself happens after the Function's frame has returned,
// so no resource requiring release may be held across it.
// When the coroutine is resumed, the Function's call finishes as if it had
// returned the values passed to the resume.
func (l *State) Yield(nResults int) (int, error) {
	l.checkElems(nResults)
	d := l.data()
	if d.pending != nil {
		panic("transfer already pending")
	}
	d.pending = &pendingTransfer{
		kind:     transferYield,
		nResults: nResults,
	}
	return 0, nil
}
