// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !luau

package lua

import "testing"

func TestUserdataFinalizer(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	finalized := 0
	if !NewMetatable(state, "moonbind test.Block") {
		t.Fatal("metatable name already in use")
	}
	state.PushClosure(0, func(l *State) (int, error) {
		finalized++
		return 0, nil
	})
	if err := state.SetField(-2, "__gc", 0); err != nil {
		t.Fatal(err)
	}
	state.Pop(1)

	state.NewUserdata(8, 0)
	Metatable(state, "moonbind test.Block")
	state.SetMetatable(-2)
	state.Pop(1)

	state.GC()
	state.GC()
	if finalized != 1 {
		t.Errorf("finalizer ran %d times; want 1", finalized)
	}
}
