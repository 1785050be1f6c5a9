// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

// Package luacli provides the Cobra command set for the mlua standalone
// interpreter: running chunks, precompiling them, and an interactive
// read-eval-print loop.
package luacli

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"zombiezen.com/go/log"

	"moonbind.dev/lua"
)

// New returns the root mlua command.
func New() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:                   "mlua [options] [FILE [ARG [...]]]",
		Short:                 "standalone " + lua.DialectName + " interpreter",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ArbitraryArgs,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	showDebug := rootCommand.PersistentFlags().Bool("debug", false, "show debugging output")
	rootCommand.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		InitLogging(*showDebug)
		return nil
	}

	runOpts := new(runOptions)
	rootCommand.Flags().StringVarP(&runOpts.execute, "execute", "e", "", "execute `stat` before the script")
	rootCommand.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			runOpts.script = args[0]
			runOpts.scriptArgs = args[1:]
		}
		return run(cmd.Context(), runOpts)
	}

	rootCommand.AddCommand(
		newRunCommand(),
		newCompileCommand(),
		newVersionCommand(),
	)
	return rootCommand
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "show the interpreter's dialect",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s (%d-bit integers, %d-bit floats)\n",
				lua.DialectName, lua.IntegerBits, lua.FloatBits)
		},
	}
}

var initLogOnce sync.Once

// InitLogging sets the process-wide logger.
// It is safe to call more than once; only the first call takes effect.
func InitLogging(showDebug bool) {
	initLogOnce.Do(func() {
		minLogLevel := log.Info
		if showDebug {
			minLogLevel = log.Debug
		}
		log.SetDefault(&log.LevelFilter{
			Min:    minLogLevel,
			Output: log.New(os.Stderr, "mlua: ", log.StdFlags, nil),
		})
	})
}
