// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

package luacli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"moonbind.dev/lua"
)

func TestSetArgs(t *testing.T) {
	state := new(lua.State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	if err := setArgs(state, "script.lua", []string{"alpha", "beta"}); err != nil {
		t.Fatal(err)
	}
	if _, err := state.Global("arg", 0); err != nil {
		t.Fatal(err)
	}
	got := make(map[int64]string)
	for i := int64(0); i <= 2; i++ {
		state.RawIndex(-1, i)
		s, ok := state.ToString(-1)
		if !ok {
			t.Errorf("arg[%d] is a %v", i, state.Type(-1))
		}
		got[i] = s
		state.Pop(1)
	}
	want := map[int64]string{
		0: "script.lua",
		1: "alpha",
		2: "beta",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("arg table (-want +got):\n%s", diff)
	}
	if got, want := state.RawLen(-1), uint64(2); got != want {
		t.Errorf("#arg = %d; want %d", got, want)
	}
}

func TestCompileChunk(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := compileChunk("return 6 * 7", "=(test)", false, buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("compileChunk wrote no bytecode")
	}

	state := new(lua.State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()
	if err := state.LoadString(buf.String(), "=(test)", "b"); err != nil {
		t.Fatal(err)
	}
	if err := state.Call(0, 1, 0); err != nil {
		t.Fatal(err)
	}
	got, ok := state.ToInteger(-1)
	if !ok {
		t.Fatalf("chunk returned a %v; want an integer", state.Type(-1))
	}
	if got != 42 {
		t.Errorf("chunk returned %d; want 42", got)
	}
}

func TestCompileChunkSyntaxError(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := compileChunk("return return", "=(bad)", false, buf); err == nil {
		t.Error("compileChunk succeeded on invalid source")
	}
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "script.lua")
	script := `
assert(arg[1] == "alpha", "first argument not forwarded")
assert(arg[2] == "beta", "second argument not forwarded")
assert(#arg == 2, "wrong argument count")
`
	if err := os.WriteFile(scriptPath, []byte(script), 0o666); err != nil {
		t.Fatal(err)
	}

	opts := &runOptions{
		script:     scriptPath,
		scriptArgs: []string{"alpha", "beta"},
	}
	if err := run(t.Context(), opts); err != nil {
		t.Error(err)
	}

	opts.scriptArgs = []string{"gamma"}
	if err := run(t.Context(), opts); err == nil {
		t.Error("run succeeded with the wrong arguments")
	}
}

func TestEvalLine(t *testing.T) {
	state := new(lua.State)
	defer func() {
		if err := state.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()
	lua.OpenLibraries(state)

	if err := evalLine(state, "x = 3"); err != nil {
		t.Error("statement:", err)
	}
	if err := evalLine(state, "x + 1"); err != nil {
		t.Error("expression:", err)
	}
	if got := state.Top(); got != 0 {
		t.Errorf("stack depth after evalLine = %d; want 0", got)
	}
	if err := evalLine(state, "not valid lua"); err == nil {
		t.Error("evalLine succeeded on invalid input")
	}
}
