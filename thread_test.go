// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

package lua

import (
	"testing"
)

func TestThread(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()
	OpenLibraries(state)

	thread := state.NewThread()
	if got := thread.Status(); got != StatusOK {
		t.Errorf("new thread status = %v; want %v", got, StatusOK)
	}

	const source = `for i = 0, 4 do
	coroutine.yield(i)
end
return "done"`
	if err := state.LoadString(source, "=(thread)", "t"); err != nil {
		t.Fatal(err)
	}
	state.XMove(thread, 1)

	for i := int64(0); i <= 4; i++ {
		res, err := thread.Resume(state, 0)
		if err != nil {
			t.Fatalf("Resume #%d: %v", i, err)
		}
		if !res.Yielded {
			t.Fatalf("Resume #%d completed; want yield", i)
		}
		if res.NResults != 1 {
			t.Fatalf("Resume #%d yielded %d values; want 1", i, res.NResults)
		}
		if got, ok := thread.ToInteger(-1); got != i || !ok {
			t.Errorf("yield #%d = %d, %t; want %d, true", i, got, ok, i)
		}
		thread.Pop(1)
		if got := thread.Status(); got != StatusSuspended {
			t.Errorf("after yield #%d, thread status = %v; want %v", i, got, StatusSuspended)
		}
	}

	res, err := thread.Resume(state, 0)
	if err != nil {
		t.Fatal("final Resume:", err)
	}
	if res.Yielded {
		t.Fatal("final Resume yielded; want completion")
	}
	if got, ok := thread.ToString(-1); got != "done" || !ok {
		t.Errorf("final result = %q, %t; want %q, true", got, ok, "done")
	}
	thread.Pop(res.NResults)
	if got := thread.Status(); got != StatusOK {
		t.Errorf("completed thread status = %v; want %v", got, StatusOK)
	}

	// A terminal thread stays terminal: every further resume fails the
	// same way without corrupting the stack.
	for try := 0; try < 2; try++ {
		if _, err := thread.Resume(state, 0); err == nil {
			t.Errorf("Resume of dead thread #%d succeeded", try)
		}
		thread.SetTop(0)
	}
}

func TestThreadError(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	thread := state.NewThread()
	if err := state.LoadString("error('thread trouble')", "=(thread)", "t"); err != nil {
		t.Fatal(err)
	}
	state.XMove(thread, 1)

	_, err := thread.Resume(state, 0)
	if err == nil {
		t.Fatal("Resume did not return an error")
	}
	e, ok := AsError(err)
	if !ok {
		t.Fatalf("Resume error %v does not wrap *Error", err)
	}
	if got, want := e.Kind(), ErrorRuntime; got != want {
		t.Errorf("error kind = %v; want %v", got, want)
	}
	if got := thread.Status(); got != StatusError {
		t.Errorf("failed thread status = %v; want %v", got, StatusError)
	}
}

func TestYieldFromGo(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	thread := state.NewThread()
	thread.PushClosure(0, func(l *State) (int, error) {
		l.PushString("ping")
		return l.Yield(1)
	})

	res, err := thread.Resume(state, 0)
	if err != nil {
		t.Fatal("first Resume:", err)
	}
	if !res.Yielded || res.NResults != 1 {
		t.Fatalf("first Resume = %+v; want one yielded value", res)
	}
	if got, ok := thread.ToString(-1); got != "ping" || !ok {
		t.Errorf("yielded value = %q, %t; want %q, true", got, ok, "ping")
	}
	thread.Pop(1)

	// Resuming a plain yield finishes the Go function's call
	// as if it had returned the values passed here.
	thread.PushString("pong")
	res, err = thread.Resume(state, 1)
	if err != nil {
		t.Fatal("second Resume:", err)
	}
	if res.Yielded {
		t.Fatal("second Resume yielded; want completion")
	}
	if got, ok := thread.ToString(-1); got != "pong" || !ok {
		t.Errorf("final result = %q, %t; want %q, true", got, ok, "pong")
	}
}

func TestXMove(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	thread := state.NewThread()
	state.PushInteger(7)
	state.PushString("seven")
	state.XMove(thread, 2)
	if got, want := thread.Top(), 2; got != want {
		t.Errorf("thread.Top() = %d; want %d", got, want)
	}
	if got, ok := thread.ToString(-1); got != "seven" || !ok {
		t.Errorf("thread top = %q, %t; want %q, true", got, ok, "seven")
	}
	// Only the thread object remains on the source stack.
	if got, want := state.Top(), 1; got != want {
		t.Errorf("state.Top() = %d; want %d", got, want)
	}
	if !state.IsThread(-1) {
		t.Errorf("state top is %v; want thread", state.Type(-1))
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, "dead"},
		{StatusSuspended, "suspended"},
		{StatusError, "error"},
	}
	for _, test := range tests {
		if got := test.status.String(); got != test.want {
			t.Errorf("%d.String() = %q; want %q", int(test.status), got, test.want)
		}
	}
}
