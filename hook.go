// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

package lua

import "unsafe"

// HookEvent identifies the event that triggered a debug [Hook].
type HookEvent int

const (
	HookCall HookEvent = iota
	HookReturn
	HookLine
	HookCount
	// HookTailCall is reported for tail calls on dialects that track them;
	// Lua 5.1 and LuaJIT instead report the return from a tail call.
	HookTailCall
)

// String returns the event's name as the debug library spells it.
func (e HookEvent) String() string {
	switch e {
	case HookCall:
		return "call"
	case HookReturn:
		return "return"
	case HookLine:
		return "line"
	case HookCount:
		return "count"
	case HookTailCall:
		return "tail call"
	default:
		return "unknown"
	}
}

// hookEventFromCode maps the C API's event codes to HookEvent.
// The numeric codes are identical in every dialect that has hooks
// (call=0, return=1, line=2, count=3, tail=4).
func hookEventFromCode(code cInt) HookEvent {
	if code < 0 || code > cInt(HookTailCall) {
		return HookEvent(-1)
	}
	return HookEvent(code)
}

// Hook is called by the VM at the events selected by [State.SetHook].
// The [*ActivationRecord] describes the frame that triggered the event and
// is only valid until the Hook returns.
// A non-nil error is raised in the VM after the Hook's frame has returned,
// under the same resource discipline as [Function].
type Hook = func(l *State, event HookEvent, ar *ActivationRecord) error

// ActivationRecord is a reference to one frame of the VM's call stack.
// It is valid only for the duration of the hook invocation or
// [State.Stack] walk that produced it.
type ActivationRecord struct {
	state *State
	lptr  unsafe.Pointer
	ar    unsafe.Pointer
}

func (ar *ActivationRecord) isValid() bool {
	return ar != nil && ar.state != nil && unsafe.Pointer(ar.state.ptr) == ar.lptr
}

// Debug holds information about a function or an activation record,
// filled in by [State.Info] or [ActivationRecord.Info]
// according to the requested fields.
type Debug struct {
	Name            string
	NameWhat        string
	What            string
	Source          string
	ShortSource     string
	CurrentLine     int
	LineDefined     int
	LastLineDefined int
	NumUpvalues     uint8
	NumParams       uint8
	IsVararg        bool
	IsTailCall      bool
}
