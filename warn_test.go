// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !lua51 && !lua52 && !lua53 && !luajit && !luau

package lua

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWarnHandler(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()
	OpenLibraries(state)

	type warning struct {
		Msg  string
		Cont bool
	}
	var got []warning
	state.SetWarnHandler(func(msg string, toBeContinued bool) {
		got = append(got, warning{msg, toBeContinued})
	})

	if err := DoString(state, `warn("thing one", "thing two")`, "=(warn)"); err != nil {
		t.Fatal(err)
	}
	state.Warning("from the host", false)

	want := []warning{
		{"thing one", true},
		{"thing two", false},
		{"from the host", false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("warnings (-want +got):\n%s", diff)
	}

	// A nil handler reverts to discarding warnings.
	state.SetWarnHandler(nil)
	got = nil
	if err := DoString(state, `warn("dropped")`, "=(warn)"); err != nil {
		t.Fatal(err)
	}
	if len(got) > 0 {
		t.Errorf("warnings after reset: %v", got)
	}
}

func TestGCModes(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	if err := DoString(state, `t = {} for i = 1, 1000 do t[i] = {} end t = nil`, "=(gc)"); err != nil {
		t.Fatal(err)
	}
	state.GCGenerational(0, 0)
	state.GC()
	state.GCIncremental(0, 0, 0)
	state.GC()
	if got := state.GCCount(); got <= 0 {
		t.Errorf("GCCount() = %d; want positive", got)
	}
	if !state.GCIsRunning() {
		t.Error("collector reported as stopped")
	}
	state.GCStop()
	if state.GCIsRunning() {
		t.Error("collector reported as running after GCStop")
	}
	state.GCRestart()
	if !state.GCIsRunning() {
		t.Error("collector reported as stopped after GCRestart")
	}
}

func TestResetThread(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()
	OpenLibraries(state)

	thread := state.NewThread()
	if err := thread.LoadString(`error("poisoned")`, "=(reset)", "t"); err != nil {
		t.Fatal(err)
	}
	if _, err := thread.Resume(state, 0); err == nil {
		t.Fatal("Resume of a failing chunk succeeded")
	}
	if got, want := thread.Status(), StatusError; got != want {
		t.Fatalf("thread.Status() = %v; want %v", got, want)
	}

	if err := thread.ResetThread(); err != nil {
		t.Fatal("ResetThread:", err)
	}
	if got, want := thread.Status(), StatusOK; got != want {
		t.Errorf("after reset, thread.Status() = %v; want %v", got, want)
	}

	// The reset thread is usable again.
	if err := thread.LoadString(`return "recovered"`, "=(reset)", "t"); err != nil {
		t.Fatal(err)
	}
	res, err := thread.Resume(state, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Yielded {
		t.Error("reset thread yielded; want completion")
	}
	if res.NResults != 1 {
		t.Errorf("resume produced %d results; want 1", res.NResults)
	}
	s, _ := thread.ToString(-1)
	if !strings.Contains(s, "recovered") {
		t.Errorf("thread returned %q; want %q", s, "recovered")
	}
}
