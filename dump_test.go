// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !luau

package lua

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"moonbind.dev/lua/internal/chunkio"
)

func TestDump(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		state := new(State)
		defer func() {
			if err := state.Close(); err != nil {
				t.Error("Close:", err)
			}
		}()

		const source = "return function(x) return function(n) return n + x end end"
		if err := state.LoadString(source, "=(dump)", "t"); err != nil {
			t.Fatal(err)
		}
		buf := new(chunkio.Buffer)
		n, err := state.Dump(buf, false)
		if err != nil {
			t.Fatal("Dump:", err)
		}
		if n == 0 || buf.Size() != n {
			t.Fatalf("Dump wrote %d bytes, reported %d", buf.Size(), n)
		}
		if !buf.IsBinary() {
			t.Error("dumped chunk does not carry the bytecode signature")
		}
		// The dumped function stays on the stack.
		if got, want := state.Top(), 1; got != want {
			t.Fatalf("after Dump, state.Top() = %d; want %d", got, want)
		}
		state.Pop(1)

		if _, err := buf.Seek(0, io.SeekStart); err != nil {
			t.Fatal(err)
		}
		if err := state.Load(buf, "=(dump)", "b"); err != nil {
			t.Fatal("Load:", err)
		}
		if err := state.Call(0, 1, 0); err != nil {
			t.Fatal(err)
		}
		if !state.IsFunction(-1) {
			t.Fatalf("round-tripped chunk returned a %v; want a function", state.Type(-1))
		}
		state.PushInteger(4)
		if err := state.Call(1, 1, 0); err != nil {
			t.Fatal(err)
		}
		state.PushInteger(7)
		if err := state.Call(1, 1, 0); err != nil {
			t.Fatal(err)
		}
		const want = int64(11)
		if got, ok := state.ToInteger(-1); got != want || !ok {
			t.Errorf("round-tripped adder returned %d, %t; want %d, true", got, ok, want)
		}
		state.Pop(1)
	})

	t.Run("NotAFunction", func(t *testing.T) {
		state := new(State)
		defer func() {
			if err := state.Close(); err != nil {
				t.Error("Close:", err)
			}
		}()

		state.PushInteger(42)
		if _, err := state.Dump(new(bytes.Buffer), false); err == nil {
			t.Error("Dump of a non-function succeeded")
		}
		state.Pop(1)
	})

	t.Run("WriterError", func(t *testing.T) {
		state := new(State)
		defer func() {
			if err := state.Close(); err != nil {
				t.Error("Close:", err)
			}
		}()

		if err := state.LoadString("return 1", "=(dump)", "t"); err != nil {
			t.Fatal(err)
		}
		want := errors.New("disk full")
		_, err := state.Dump(failWriter{err: want}, false)
		if !errors.Is(err, want) {
			t.Errorf("Dump error = %v; want %v", err, want)
		}
		state.Pop(1)
	})
}

type failWriter struct {
	err error
}

func (w failWriter) Write(p []byte) (int, error) {
	return 0, w.err
}
