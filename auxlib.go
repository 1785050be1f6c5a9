// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

package lua

// #include <stddef.h>
// #include "lua.h"
//
// void moonbind_openlibs(lua_State *L);
// int moonbind_ref(lua_State *L);
// void moonbind_unref(lua_State *L, int ref);
import "C"

import (
	"fmt"
	"os"
)

// typeNameMetafield is the metatable field
// that holds the name of a userdata type.
const typeNameMetafield = "__name"

// Metafield pushes onto the stack the field event
// from the metatable of the object at index obj
// and returns the type of the pushed value.
// If the object does not have a metatable,
// or if the metatable does not have this field,
// pushes nothing and returns [TypeNil].
func Metafield(l *State, obj int, event string) Type {
	if !l.Metatable(obj) {
		return TypeNil
	}
	tt := l.RawField(-1, event)
	if tt == TypeNil {
		l.Pop(2) // remove metatable and metafield
	} else {
		l.Remove(-2) // remove only metatable
	}
	return tt
}

// CallMeta calls a metamethod.
//
// If the object at index obj has a metatable and this metatable has a field
// event, this function calls this field passing the object as its only
// argument. In this case this function returns true and pushes onto the
// stack the value returned by the call. If an error is raised during the
// call, CallMeta returns an error without pushing any value on the stack.
// If there is no metatable or no metamethod,
// this function returns false without pushing any value on the stack.
func CallMeta(l *State, obj int, event string) (bool, error) {
	obj = l.AbsIndex(obj)
	if Metafield(l, obj, event) == TypeNil {
		// No metafield.
		return false, nil
	}
	l.PushValue(obj)
	if err := l.Call(1, 1, 0); err != nil {
		l.Pop(1)
		return true, fmt.Errorf("lua: call metafield %q: %w", event, err)
	}
	return true, nil
}

// NewMetatable gets or creates a table in the registry
// to be used as a metatable for userdata.
// If the table is created, adds the pair __name = tname,
// and returns true.
// Regardless, the function pushes onto the stack
// the final value associated with tname in the registry.
func NewMetatable(l *State, tname string) bool {
	if Metatable(l, tname) != TypeNil {
		// Name already in use.
		return false
	}
	l.Pop(1)
	l.CreateTable(0, 2)
	l.PushString(tname)
	l.RawSetField(-2, typeNameMetafield) // metatable.__name = tname
	l.PushValue(-1)
	l.RawSetField(RegistryIndex, tname)
	return true
}

// Metatable pushes onto the stack the metatable associated with the name
// tname in the registry (see [NewMetatable]), or nil if there is no
// metatable associated with that name.
// Returns the type of the pushed value.
func Metatable(l *State, tname string) Type {
	return l.RawField(RegistryIndex, tname)
}

// SetMetatable sets the metatable of the object on the top of the stack
// as the metatable associated with name tname in the registry.
// [NewMetatable] can be used to create such a metatable.
func SetMetatable(l *State, tname string) {
	Metatable(l, tname)
	l.SetMetatable(-2)
}

// TestUserdata reports whether the value at the given index
// is a full userdata with the type tname (see [NewMetatable]).
func TestUserdata(l *State, idx int, tname string) bool {
	if l.Type(idx) != TypeUserdata {
		return false
	}
	if !l.Metatable(idx) {
		return false
	}
	Metatable(l, tname)
	metatableMatch := l.RawEqual(-1, -2)
	l.Pop(2)
	return metatableMatch
}

// CheckUserdata returns an error unless the function argument arg
// is a userdata of the type tname (see [NewMetatable]).
func CheckUserdata(l *State, arg int, tname string) error {
	if !TestUserdata(l, arg, tname) {
		return NewTypeError(l, arg, tname)
	}
	return nil
}

// CheckString checks whether the function argument arg is a string
// and returns this string.
// This function uses [State.ToString] to get its result,
// so all conversions and caveats of that function apply here.
func CheckString(l *State, arg int) (string, error) {
	s, ok := l.ToString(arg)
	if !ok {
		return "", NewTypeError(l, arg, TypeString.String())
	}
	return s, nil
}

// CheckInteger checks whether the function argument arg is an integer
// (or can be converted to an integer)
// and returns this integer.
func CheckInteger(l *State, arg int) (int64, error) {
	d, ok := l.ToInteger(arg)
	if !ok {
		if l.IsNumber(arg) {
			return 0, NewArgError(l, arg, "number has no integer representation")
		}
		return 0, NewTypeError(l, arg, TypeNumber.String())
	}
	return d, nil
}

// CheckNumber checks whether the function argument arg is a number
// and returns this number.
func CheckNumber(l *State, arg int) (float64, error) {
	d, ok := l.ToNumber(arg)
	if !ok {
		return 0, NewTypeError(l, arg, TypeNumber.String())
	}
	return d, nil
}

// Where returns a string identifying the current position of the control
// at the given level in the call stack.
// Typically this string has the following format (including a trailing space):
//
//	chunkname:currentline:
//
// Level 0 is the running function,
// level 1 is the function that called the running function, etc.
//
// This function is used to build a prefix for error messages.
func Where(l *State, level int) string {
	return l.where(level)
}

// NewArgError returns a new error reporting a problem with argument arg
// of the Go function that called it,
// using a standard message that includes msg as a comment.
func NewArgError(l *State, arg int, msg string) error {
	name, nameWhat, ok := l.frameName(0)
	if !ok {
		// No stack frame.
		return fmt.Errorf("%sbad argument #%d (%s)", Where(l, 1), arg, msg)
	}
	if nameWhat == "method" {
		arg-- // do not count 'self'
		if arg == 0 {
			// Error is in the self argument itself.
			return fmt.Errorf("%scalling '%s' on bad self (%s)", Where(l, 1), name, msg)
		}
	}
	if name == "" {
		name = "?"
	}
	return fmt.Errorf("%sbad argument #%d to '%s' (%s)", Where(l, 1), arg, name, msg)
}

// NewTypeError returns a new type error for the argument arg
// of the Go function that called it, using a standard message;
// tname is a "name" for the expected type.
func NewTypeError(l *State, arg int, tname string) error {
	var typeArg string
	if Metafield(l, arg, typeNameMetafield) == TypeString {
		typeArg, _ = l.ToString(-1)
		l.Pop(1)
	} else if tp := l.Type(arg); tp == TypeLightUserdata {
		typeArg = "light userdata"
	} else {
		typeArg = tp.String()
	}
	return NewArgError(l, arg, fmt.Sprintf("%s expected, got %s", tname, typeArg))
}

// OpenLibraries opens all of the dialect's standard libraries
// into the given state.
func OpenLibraries(l *State) {
	l.init()
	C.moonbind_openlibs(l.ptr)
}

// Ref pops the value from the top of the stack and stores it in the
// registry, returning an integer key that uniquely identifies the stored
// value. The value can be retrieved with [State.RawIndex] on
// [RegistryIndex] and released with [Unref].
// Ref for a nil value returns [RefNil],
// which is safe to pass to Unref.
func Ref(l *State) int {
	l.checkElems(1)
	ref := int(C.moonbind_ref(l.ptr))
	l.top--
	return ref
}

// Unref releases the registry reference ref (see [Ref]):
// the entry is removed and the key may be reused.
// Unref of [NoRef] or a Ref of nil does nothing.
func Unref(l *State, ref int) {
	l.init()
	C.moonbind_unref(l.ptr, C.int(ref))
}

// DoString loads and runs the given source text.
// Results from the chunk are discarded.
func DoString(l *State, s string, chunkName string) error {
	if err := l.LoadString(s, chunkName, "bt"); err != nil {
		l.Pop(1)
		return err
	}
	if err := l.Call(0, 0, 0); err != nil {
		l.Pop(1)
		return err
	}
	return nil
}

// DoFile loads and runs the named file.
// Results from the chunk are discarded.
func DoFile(l *State, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return newFileError(fmt.Sprintf("cannot open %s: %v", path, err))
	}
	defer f.Close()
	if err := l.Load(f, "@"+path, "bt"); err != nil {
		l.Pop(1)
		return err
	}
	if err := l.Call(0, 0, 0); err != nil {
		l.Pop(1)
		return err
	}
	return nil
}
