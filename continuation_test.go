// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !lua51 && !luajit && !luau

package lua

import (
	"strings"
	"testing"
)

func TestYieldK(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	var contStatus Status
	contRan := false
	thread := state.NewThread()
	thread.PushClosure(0, func(l *State) (int, error) {
		l.PushString("first")
		return l.YieldK(1, func(l *State, status Status) (int, error) {
			contRan = true
			contStatus = status
			l.PushString("second")
			return 1, nil
		})
	})

	res, err := thread.Resume(state, 0)
	if err != nil {
		t.Fatal("first Resume:", err)
	}
	if !res.Yielded || res.NResults != 1 {
		t.Fatalf("first Resume = %+v; want one yielded value", res)
	}
	if got, ok := thread.ToString(-1); got != "first" || !ok {
		t.Errorf("yielded value = %q, %t; want %q, true", got, ok, "first")
	}
	thread.Pop(1)

	res, err = thread.Resume(state, 0)
	if err != nil {
		t.Fatal("second Resume:", err)
	}
	if res.Yielded {
		t.Fatal("second Resume yielded; want completion")
	}
	if !contRan {
		t.Fatal("continuation did not run")
	}
	if contStatus != StatusSuspended {
		t.Errorf("continuation status = %v; want %v", contStatus, StatusSuspended)
	}
	if got, ok := thread.ToString(-1); got != "second" || !ok {
		t.Errorf("final result = %q, %t; want %q, true", got, ok, "second")
	}
}

func TestCallK(t *testing.T) {
	t.Run("NoYield", func(t *testing.T) {
		state := new(State)
		defer func() {
			if err := state.Close(); err != nil {
				t.Error("Close:", err)
			}
		}()

		if err := DoString(state, "function helper() return 'hv' end", "=(test)"); err != nil {
			t.Fatal(err)
		}

		var contStatus Status
		state.PushClosure(0, func(l *State) (int, error) {
			if _, err := l.Global("helper", 0); err != nil {
				return 0, err
			}
			return l.CallK(0, 1, 0, func(l *State, status Status) (int, error) {
				contStatus = status
				return 1, nil
			})
		})
		if err := state.Call(0, 1, 0); err != nil {
			t.Fatal(err)
		}
		if contStatus != StatusOK {
			t.Errorf("continuation status = %v; want %v", contStatus, StatusOK)
		}
		if got, ok := state.ToString(-1); got != "hv" || !ok {
			t.Errorf("result = %q, %t; want %q, true", got, ok, "hv")
		}
		state.Pop(1)
	})

	t.Run("CalleeError", func(t *testing.T) {
		state := new(State)
		defer func() {
			if err := state.Close(); err != nil {
				t.Error("Close:", err)
			}
		}()

		if err := DoString(state, "function broken() error('inner failure') end", "=(test)"); err != nil {
			t.Fatal(err)
		}

		var contStatus Status
		state.PushClosure(0, func(l *State) (int, error) {
			if _, err := l.Global("broken", 0); err != nil {
				return 0, err
			}
			return l.CallK(0, 0, 0, func(l *State, status Status) (int, error) {
				contStatus = status
				// The protected call's error object is on top;
				// hand it back as this function's result.
				return 1, nil
			})
		})
		if err := state.Call(0, 1, 0); err != nil {
			t.Fatal(err)
		}
		if contStatus != StatusError {
			t.Errorf("continuation status = %v; want %v", contStatus, StatusError)
		}
		if got, ok := state.ToString(-1); !ok || !strings.Contains(got, "inner failure") {
			t.Errorf("result = %q, %t; want to contain %q", got, ok, "inner failure")
		}
		state.Pop(1)
	})

	t.Run("YieldAcrossCall", func(t *testing.T) {
		state := new(State)
		defer func() {
			if err := state.Close(); err != nil {
				t.Error("Close:", err)
			}
		}()
		OpenLibraries(state)

		if err := DoString(state, "function pause() coroutine.yield('paused') return 'resumed' end", "=(test)"); err != nil {
			t.Fatal(err)
		}

		var contStatus Status
		thread := state.NewThread()
		thread.PushClosure(0, func(l *State) (int, error) {
			if _, err := l.Global("pause", 0); err != nil {
				return 0, err
			}
			return l.CallK(0, 1, 0, func(l *State, status Status) (int, error) {
				contStatus = status
				return 1, nil
			})
		})

		res, err := thread.Resume(state, 0)
		if err != nil {
			t.Fatal("first Resume:", err)
		}
		if !res.Yielded {
			t.Fatal("first Resume completed; want yield")
		}
		if got, ok := thread.ToString(-1); got != "paused" || !ok {
			t.Errorf("yielded value = %q, %t; want %q, true", got, ok, "paused")
		}
		thread.Pop(1)

		res, err = thread.Resume(state, 0)
		if err != nil {
			t.Fatal("second Resume:", err)
		}
		if res.Yielded {
			t.Fatal("second Resume yielded; want completion")
		}
		if contStatus != StatusSuspended {
			t.Errorf("continuation status = %v; want %v", contStatus, StatusSuspended)
		}
		if got, ok := thread.ToString(-1); got != "resumed" || !ok {
			t.Errorf("final result = %q, %t; want %q, true", got, ok, "resumed")
		}
	})
}
