// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build luau

package luacli

import (
	"io"

	"moonbind.dev/lua"
)

// compileChunk compiles source and writes the resulting bytecode to w.
// The compiler does not record chunk names in its output, so name is only
// used in this package's error messages.
func compileChunk(source, name string, strip bool, w io.Writer) error {
	opts := &lua.CompileOptions{
		OptimizationLevel: 1,
		DebugLevel:        1,
	}
	if strip {
		opts.DebugLevel = 0
	}
	bytecode, err := lua.Compile(source, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(bytecode)
	return err
}
