// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !luau

package luacli

import (
	"fmt"
	"io"

	"moonbind.dev/lua"
)

// compileChunk parses source and writes the resulting bytecode to w.
func compileChunk(source, name string, strip bool, w io.Writer) error {
	state := new(lua.State)
	defer func() {
		if err := state.Close(); err != nil {
			panic(err)
		}
	}()

	if err := state.LoadString(source, name, "t"); err != nil {
		state.Pop(1)
		return err
	}
	if _, err := state.Dump(w, strip); err != nil {
		return fmt.Errorf("dump %s: %w", name, err)
	}
	return nil
}
