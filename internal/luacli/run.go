// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

package luacli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"zombiezen.com/go/log"

	"moonbind.dev/lua"
	"moonbind.dev/lua/internal/chunkio"
)

type runOptions struct {
	script     string
	scriptArgs []string
	execute    string
}

func newRunCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "run [options] [FILE [ARG [...]]]",
		Short:                 "run a chunk (\"-\" or no file reads standard input)",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ArbitraryArgs,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	opts := new(runOptions)
	c.Flags().StringVarP(&opts.execute, "execute", "e", "", "execute `stat` before the script")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			opts.script = args[0]
			opts.scriptArgs = args[1:]
		}
		return run(cmd.Context(), opts)
	}
	return c
}

func run(ctx context.Context, opts *runOptions) error {
	state := new(lua.State)
	defer func() {
		if err := state.Close(); err != nil {
			log.Errorf(ctx, "%v", err)
		}
	}()
	lua.OpenLibraries(state)
	stopInterrupt := installInterrupt(ctx, state)
	defer stopInterrupt()

	if opts.execute != "" {
		if err := lua.DoString(state, opts.execute, "=(command line)"); err != nil {
			return err
		}
	}

	if opts.script == "" && opts.execute == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		return repl(ctx, state)
	}
	if opts.script == "" && opts.execute != "" {
		return nil
	}

	var in io.Reader
	if opts.script == "" || opts.script == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(opts.script)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	cr := chunkio.NewReader(in)
	mode, err := cr.Mode()
	if err != nil {
		return err
	}
	data, err := io.ReadAll(cr)
	if err != nil {
		return err
	}
	source := string(data)
	if mode == "t" {
		source = chunkio.StripShebang(source)
	}

	if err := setArgs(state, opts.script, opts.scriptArgs); err != nil {
		return err
	}
	if err := state.LoadString(source, chunkio.SourceName(opts.script), mode); err != nil {
		state.Pop(1)
		return err
	}
	if err := state.Call(0, 0, 0); err != nil {
		state.Pop(1)
		return err
	}
	return nil
}

// setArgs publishes the script name and arguments as the global arg table,
// with the script at index 0 like the reference standalone interpreter.
func setArgs(state *lua.State, script string, args []string) error {
	state.CreateTable(len(args), 1)
	if script == "" {
		script = "-"
	}
	state.PushString(script)
	state.RawSetIndex(-2, 0)
	for i, a := range args {
		state.PushString(a)
		state.RawSetIndex(-2, int64(i+1))
	}
	return state.SetGlobal("arg", 0)
}

func repl(ctx context.Context, state *lua.State) error {
	fmt.Fprintf(os.Stderr, "%s (mlua)\n", lua.DialectName)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(os.Stderr)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := evalLine(state, line); err != nil {
			log.Errorf(ctx, "%v", err)
		}
	}
}

// evalLine runs one interactive line, printing its results.
// An expression is preferred over a statement,
// so "1 + 1" prints 2 rather than failing to parse.
func evalLine(state *lua.State, line string) error {
	if err := state.LoadString("return "+line, "=stdin", "t"); err != nil {
		state.Pop(1)
		if err := state.LoadString(line, "=stdin", "t"); err != nil {
			state.Pop(1)
			return err
		}
	}
	if err := state.Call(0, lua.MultipleReturns, 0); err != nil {
		state.Pop(1)
		return err
	}
	if n := state.Top(); n > 0 {
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			s, ok := state.ToString(i)
			if !ok {
				s = state.Type(i).String()
			}
			parts = append(parts, s)
		}
		fmt.Println(strings.Join(parts, "\t"))
	}
	state.SetTop(0)
	return nil
}
