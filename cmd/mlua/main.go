// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

// mlua is a standalone Lua interpreter and bytecode compiler.
package main

import (
	"context"
	"os"
	"os/signal"

	"zombiezen.com/go/bass/sigterm"
	"zombiezen.com/go/log"

	"moonbind.dev/lua/internal/luacli"
)

func main() {
	rootCommand := luacli.New()
	ctx, cancel := signal.NotifyContext(context.Background(), sigterm.Signals()...)
	err := rootCommand.ExecuteContext(ctx)
	cancel()
	if err != nil {
		luacli.InitLogging(false)
		log.Errorf(context.Background(), "%v", err)
		os.Exit(1)
	}
}
