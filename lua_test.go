// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

package lua

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/iotest"
)

func TestClose(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	state.PushBoolean(true)
	state.PushInteger(42)
	state.PushString("hello")
	state.PushValue(-1)
	if err := state.SetGlobal("x", 0); err != nil {
		t.Error(err)
	}
	if tp, err := state.Global("x", 0); err != nil {
		t.Error(err)
	} else if tp != TypeString {
		t.Errorf("type(_G.x) = %v; want %v", tp, TypeString)
	} else if got, _ := state.ToString(-1); got != "hello" {
		t.Errorf("_G.x = %q; want %q", got, "hello")
	}
	state.Pop(1)
	if got, want := state.Top(), 3; got != want {
		t.Errorf("before close, state.Top() = %d; want %d", got, want)
	}

	if err := state.Close(); err != nil {
		t.Error("Close:", err)
	}
	if got, want := state.Top(), 0; got != want {
		t.Errorf("after close, state.Top() = %d; want %d", got, want)
	}
	if tp, err := state.Global("x", 0); err != nil {
		t.Error(err)
	} else if tp != TypeNil {
		t.Errorf("type(_G.x) = %v; want %v", tp, TypeNil)
	}
	state.Pop(1)
}

func TestLoadString(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		state := new(State)
		defer func() {
			if err := state.Close(); err != nil {
				t.Error("Close:", err)
			}
		}()

		const source = "return 2 + 2"
		if err := state.LoadString(source, source, "t"); err != nil {
			t.Fatal(err)
		}
		if err := state.Call(0, 1, 0); err != nil {
			t.Fatal(err)
		}
		if !state.IsNumber(-1) {
			t.Fatalf("top of stack is %v; want number", state.Type(-1))
		}
		const want = int64(4)
		if got, ok := state.ToInteger(-1); got != want || !ok {
			t.Errorf("state.ToInteger(-1) = %d, %t; want %d, true", got, ok, want)
		}
	})

	t.Run("SyntaxError", func(t *testing.T) {
		state := new(State)
		defer func() {
			if err := state.Close(); err != nil {
				t.Error("Close:", err)
			}
		}()

		err := state.LoadString("return return", "=(test)", "t")
		if err == nil {
			t.Fatal("LoadString did not return an error")
		}
		e, ok := AsError(err)
		if !ok {
			t.Fatalf("LoadString error %v does not wrap *Error", err)
		}
		if got, want := e.Kind(), ErrorSyntax; got != want {
			t.Errorf("error kind = %v; want %v", got, want)
		}
		// The error object is the single value left behind.
		if got, want := state.Top(), 1; got != want {
			t.Errorf("state.Top() = %d; want %d", got, want)
		}
		state.Pop(1)
	})
}

func TestLoadReaderError(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	r := iotest.TimeoutReader(strings.NewReader("return 1 + "))
	err := state.Load(r, "=(broken pipe)", "t")
	if err == nil {
		t.Fatal("Load did not return an error")
	}
	if got, want := err.Error(), iotest.ErrTimeout.Error(); !strings.Contains(got, want) {
		t.Errorf("Load error = %q; want to contain %q", got, want)
	}
	// The error object is the single value left behind.
	if got, want := state.Top(), 1; got != want {
		t.Errorf("state.Top() = %d; want %d", got, want)
	}
	state.Pop(1)
}

func TestPushClosure(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		state := new(State)
		defer func() {
			if err := state.Close(); err != nil {
				t.Error("Close:", err)
			}
		}()

		state.PushClosure(0, func(l *State) (int, error) {
			a, ok := l.ToInteger(1)
			if !ok {
				return 0, NewArgError(l, 1, "integer expected")
			}
			b, ok := l.ToInteger(2)
			if !ok {
				return 0, NewArgError(l, 2, "integer expected")
			}
			l.PushInteger(a + b)
			return 1, nil
		})
		if err := state.SetGlobal("zigadd", 0); err != nil {
			t.Fatal(err)
		}

		if tp, err := state.Global("zigadd", 0); err != nil {
			t.Fatal(err)
		} else if tp != TypeFunction {
			t.Fatalf("type(zigadd) = %v; want %v", tp, TypeFunction)
		}
		state.PushInteger(10)
		state.PushInteger(32)
		if err := state.Call(2, 1, 0); err != nil {
			t.Fatal(err)
		}
		const want = int64(42)
		if got, ok := state.ToInteger(-1); got != want || !ok {
			t.Errorf("zigadd(10, 32) = %d, %t; want %d, true", got, ok, want)
		}
		state.Pop(1)

		// The registered function is callable from a chunk too.
		if err := state.LoadString("return zigadd(40, 2)", "=(test)", "t"); err != nil {
			t.Fatal(err)
		}
		if err := state.Call(0, 1, 0); err != nil {
			t.Fatal(err)
		}
		if got, ok := state.ToInteger(-1); got != want || !ok {
			t.Errorf("zigadd(40, 2) = %d, %t; want %d, true", got, ok, want)
		}
		state.Pop(1)
		if got, want := state.Top(), 0; got != want {
			t.Errorf("state.Top() = %d; want %d", got, want)
		}
	})

	t.Run("Upvalues", func(t *testing.T) {
		state := new(State)
		defer func() {
			if err := state.Close(); err != nil {
				t.Error("Close:", err)
			}
		}()

		state.PushInteger(100)
		state.PushString("counter")
		state.PushClosure(2, func(l *State) (int, error) {
			n, ok := l.ToInteger(UpvalueIndex(1))
			if !ok {
				return 0, errors.New("first upvalue is not an integer")
			}
			name, ok := l.ToString(UpvalueIndex(2))
			if !ok {
				return 0, errors.New("second upvalue is not a string")
			}
			l.PushString(fmt.Sprintf("%s=%d", name, n))
			return 1, nil
		})
		if got, want := state.Top(), 1; got != want {
			t.Fatalf("after PushClosure, state.Top() = %d; want %d", got, want)
		}
		if err := state.Call(0, 1, 0); err != nil {
			t.Fatal(err)
		}
		if got, want := mustToString(t, state, -1), "counter=100"; got != want {
			t.Errorf("result = %q; want %q", got, want)
		}
		state.Pop(1)
	})

	t.Run("Error", func(t *testing.T) {
		state := new(State)
		defer func() {
			if err := state.Close(); err != nil {
				t.Error("Close:", err)
			}
		}()

		state.PushClosure(0, func(l *State) (int, error) {
			return 0, errors.New("bork")
		})
		err := state.Call(0, 0, 0)
		if err == nil {
			t.Fatal("Call did not return an error")
		}
		e, ok := AsError(err)
		if !ok {
			t.Fatalf("Call error %v does not wrap *Error", err)
		}
		if got, want := e.Kind(), ErrorRuntime; got != want {
			t.Errorf("error kind = %v; want %v", got, want)
		}
		if !strings.Contains(err.Error(), "bork") {
			t.Errorf("error %q does not contain the callback's message", err)
		}
		if got, want := state.Top(), 1; got != want {
			t.Errorf("after failed call, state.Top() = %d; want %d", got, want)
		}
		state.Pop(1)
	})

	t.Run("Panic", func(t *testing.T) {
		state := new(State)
		defer func() {
			if err := state.Close(); err != nil {
				t.Error("Close:", err)
			}
		}()

		state.PushClosure(0, func(l *State) (int, error) {
			panic("unexpected door")
		})
		err := state.Call(0, 0, 0)
		if err == nil {
			t.Fatal("Call did not return an error")
		}
		if !strings.Contains(err.Error(), "unexpected door") {
			t.Errorf("error %q does not contain the panic value", err)
		}
		state.Pop(1)
	})
}

func TestCallErrorAccounting(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	// Leave some unrelated values below the call.
	state.PushInteger(1)
	state.PushInteger(2)
	base := state.Top()

	if err := state.LoadString("error('kaboom')", "=(test)", "t"); err != nil {
		t.Fatal(err)
	}
	state.PushInteger(3) // argument
	err := state.Call(1, 0, 0)
	if err == nil {
		t.Fatal("Call did not return an error")
	}
	if got, want := state.Top(), base+1; got != want {
		t.Errorf("after failed call, state.Top() = %d; want %d (error object only)", got, want)
	}
	if got, ok := state.ToString(-1); !ok || !strings.Contains(got, "kaboom") {
		t.Errorf("error object = %q, %t; want to contain %q", got, ok, "kaboom")
	}
	state.Pop(1)
	if got, want := state.Top(), base; got != want {
		t.Errorf("state.Top() = %d; want %d", got, want)
	}
}

func TestTable(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	state.CreateTable(0, 2)
	state.PushString("bar")
	if err := state.SetField(-2, "foo", 0); err != nil {
		t.Fatal(err)
	}
	state.PushInteger(7)
	state.RawSetIndex(-2, 1)

	if tp, err := state.Field(-1, "foo", 0); err != nil {
		t.Fatal(err)
	} else if tp != TypeString {
		t.Errorf("type(t.foo) = %v; want %v", tp, TypeString)
	}
	if got, want := mustToString(t, state, -1), "bar"; got != want {
		t.Errorf("t.foo = %q; want %q", got, want)
	}
	state.Pop(1)

	if tp := state.RawIndex(-1, 1); tp != TypeNumber {
		t.Errorf("type(t[1]) = %v; want %v", tp, TypeNumber)
	}
	if got, want := mustToInteger(t, state, -1), int64(7); got != want {
		t.Errorf("t[1] = %d; want %d", got, want)
	}
	state.Pop(1)

	if got, want := state.RawLen(-1), uint64(1); got != want {
		t.Errorf("state.RawLen(-1) = %d; want %d", got, want)
	}

	// Iterate and collect the pairs.
	got := make(map[string]bool)
	state.PushNil()
	for state.Next(-2) {
		state.Pop(1) // discard value
		key := ""
		switch state.Type(-1) {
		case TypeString:
			key, _ = state.ToString(-1)
		case TypeNumber:
			n, _ := state.ToInteger(-1)
			key = fmt.Sprintf("%d", n)
		}
		got[key] = true
	}
	if !got["foo"] || !got["1"] {
		t.Errorf("table keys = %v; want foo and 1", got)
	}
	state.Pop(1)
}

func TestTableErrorPath(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	// Indexing a value with no __index metamethod raises.
	state.PushBoolean(true)
	state.PushString("key")
	base := state.Top()
	_, err := state.Table(-2, 0)
	if err == nil {
		t.Fatal("Table did not return an error")
	}
	// The key is consumed and replaced by a single result slot.
	if got, want := state.Top(), base; got != want {
		t.Errorf("after failed Table, state.Top() = %d; want %d", got, want)
	}
	state.Pop(2)
}

func TestStackOps(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	state.PushInteger(1)
	state.PushInteger(2)
	state.PushInteger(3)
	state.Rotate(1, 1)
	want := []int64{3, 1, 2}
	for i, w := range want {
		if got := mustToInteger(t, state, i+1); got != w {
			t.Errorf("after Rotate, stack[%d] = %d; want %d", i+1, got, w)
		}
	}

	state.Copy(1, 3)
	if got := mustToInteger(t, state, 3); got != 3 {
		t.Errorf("after Copy, stack[3] = %d; want 3", got)
	}

	state.Remove(1)
	if got, want := state.Top(), 2; got != want {
		t.Errorf("after Remove, state.Top() = %d; want %d", got, want)
	}

	state.PushInteger(9)
	state.Insert(1)
	if got := mustToInteger(t, state, 1); got != 9 {
		t.Errorf("after Insert, stack[1] = %d; want 9", got)
	}
	state.SetTop(0)
}

func TestConcat(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	state.PushString("answer=")
	state.PushInteger(42)
	if err := state.Concat(2, 0); err != nil {
		t.Fatal(err)
	}
	if got, want := mustToString(t, state, -1), "answer=42"; got != want {
		t.Errorf("concat result = %q; want %q", got, want)
	}
	if got, want := state.Top(), 1; got != want {
		t.Errorf("state.Top() = %d; want %d", got, want)
	}
	state.Pop(1)
}

func TestLen(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	state.PushString("hello")
	if err := state.Len(-1, 0); err != nil {
		t.Fatal(err)
	}
	if got, want := mustToInteger(t, state, -1), int64(5); got != want {
		t.Errorf("#\"hello\" = %d; want %d", got, want)
	}
	state.Pop(2)
}

func TestUserdata(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	state.NewUserdata(8, 0)
	if !state.IsUserdata(-1) {
		t.Fatalf("top of stack is %v; want userdata", state.Type(-1))
	}

	state.SetUserdata(-1, 0, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	buf := make([]byte, 8)
	if n := state.CopyUserdata(buf, -1, 0); n != 8 {
		t.Errorf("CopyUserdata copied %d bytes; want 8", n)
	}
	for i, b := range buf {
		if b != byte(i+1) {
			t.Errorf("userdata[%d] = %d; want %d", i, b, i+1)
			break
		}
	}
	state.Pop(1)
}

func TestClosureReclamation(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	// Force initialization, then push and drop closures.
	state.PushNil()
	state.Pop(1)
	data := state.data()
	for i := 0; i < 10; i++ {
		state.PushClosure(0, func(l *State) (int, error) { return 0, nil })
		state.Pop(1)
	}
	if got, want := len(data.closures), 10; got != want {
		t.Fatalf("before collection, %d registered closures; want %d", got, want)
	}
	// Two full cycles: the first marks the userdata dead,
	// the second runs finalizers on every dialect.
	state.GC()
	state.GC()
	if got := len(data.closures); got >= 10 {
		t.Errorf("after collection, %d registered closures; want fewer than 10", got)
	}
}

func TestGlobalDescriptor(t *testing.T) {
	if DialectName == "" {
		t.Error("DialectName is empty")
	}
	if VersionNum < 501 || VersionNum > 504 {
		t.Errorf("VersionNum = %d; want within [501, 504]", VersionNum)
	}
	if IntegerBits != 32 && IntegerBits != 64 {
		t.Errorf("IntegerBits = %d; want 32 or 64", IntegerBits)
	}
	if FloatBits != 32 && FloatBits != 64 {
		t.Errorf("FloatBits = %d; want 32 or 64", FloatBits)
	}
	if MaxUserValues < 0 {
		t.Errorf("MaxUserValues = %d; want non-negative", MaxUserValues)
	}
}

func mustToString(t *testing.T, l *State, idx int) string {
	t.Helper()
	s, ok := l.ToString(idx)
	if !ok {
		t.Fatalf("value at %d is %v, not convertible to string", idx, l.Type(idx))
	}
	return s
}

func mustToInteger(t *testing.T, l *State, idx int) int64 {
	t.Helper()
	n, ok := l.ToInteger(idx)
	if !ok {
		t.Fatalf("value at %d is %v, not convertible to integer", idx, l.Type(idx))
	}
	return n
}
