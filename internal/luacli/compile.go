// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

package luacli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"moonbind.dev/lua/internal/chunkio"
)

type compileOptions struct {
	inputFilename  string
	outputFilename string
	parseOnly      bool
	stripDebug     bool
}

func newCompileCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "compile [options] FILE",
		Short:                 "precompile a chunk",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ExactArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	opts := new(compileOptions)
	c.Flags().StringVarP(&opts.outputFilename, "output", "o", "mlua.out", "output to `filename` (\"-\" for standard output)")
	c.Flags().BoolVarP(&opts.parseOnly, "parse-only", "p", false, "do not write bytecode")
	c.Flags().BoolVarP(&opts.stripDebug, "strip-debug", "s", false, "strip debug information")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		opts.inputFilename = args[0]
		return compile(opts)
	}
	return c
}

func compile(opts *compileOptions) error {
	data, err := os.ReadFile(opts.inputFilename)
	if err != nil {
		return err
	}
	if chunkio.IsBinary(data) {
		return fmt.Errorf("compile %s: already precompiled", opts.inputFilename)
	}
	source := chunkio.StripShebang(string(data))

	buf := new(chunkio.Buffer)
	if err := compileChunk(source, chunkio.SourceName(opts.inputFilename), opts.stripDebug, buf); err != nil {
		return err
	}
	if opts.parseOnly {
		return nil
	}

	if opts.outputFilename == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("refusing to write bytecode to a terminal. Redirect standard output or pass --output.")
		}
		if _, err := buf.Seek(0, io.SeekStart); err != nil {
			return err
		}
		if _, err := buf.WriteTo(os.Stdout); err != nil {
			return err
		}
		return nil
	}
	return os.WriteFile(opts.outputFilename, buf.Bytes(), 0o666)
}
