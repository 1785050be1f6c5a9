// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !lua51 && !lua52 && !luajit && !luau

package lua

import "testing"

func TestIsInteger(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	state.PushInteger(42)
	state.PushNumber(42.5)
	state.PushString("42")
	if !state.IsInteger(1) {
		t.Error("IsInteger(1) = false for a pushed integer")
	}
	if state.IsInteger(2) {
		t.Error("IsInteger(2) = true for a fractional number")
	}
	if state.IsInteger(3) {
		t.Error("IsInteger(3) = true for a string")
	}
	state.SetTop(0)
}

func TestStringToNumber(t *testing.T) {
	state := new(State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	tests := []struct {
		s      string
		ok     bool
		isInt  bool
		number float64
	}{
		{s: "42", ok: true, isInt: true, number: 42},
		{s: " 0x10 ", ok: true, isInt: true, number: 16},
		{s: "3.25", ok: true, number: 3.25},
		{s: "not a number", ok: false},
		{s: "", ok: false},
	}
	for _, test := range tests {
		ok := state.StringToNumber(test.s)
		if ok != test.ok {
			t.Errorf("StringToNumber(%q) = %t; want %t", test.s, ok, test.ok)
		}
		if !ok {
			continue
		}
		if got := state.IsInteger(-1); got != test.isInt {
			t.Errorf("IsInteger after StringToNumber(%q) = %t; want %t", test.s, got, test.isInt)
		}
		if got, _ := state.ToNumber(-1); got != test.number {
			t.Errorf("StringToNumber(%q) pushed %g; want %g", test.s, got, test.number)
		}
		state.Pop(1)
	}
	if got, want := state.Top(), 0; got != want {
		t.Errorf("state.Top() = %d; want %d", got, want)
	}
}
