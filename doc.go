// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

/*
Package lua embeds the C implementation of the Lua virtual machine into Go
programs, across several incompatible revisions of its C API.

[State] is the main entrypoint for this package. Methods on [State] are
generally equivalent to C functions that start with “lua_” (the [Lua C API]);
functions in this package are generally equivalent to C functions that start
with “luaL_” (the [auxiliary library]).

# Dialects

Exactly one dialect of the C API is compiled into a binary, selected with a
build tag:

	(none)  Lua 5.4 (default)
	lua53   Lua 5.3
	lua52   Lua 5.2
	lua51   Lua 5.1
	luajit  LuaJIT 2.x (Lua 5.1 API)
	luau    Luau

The selected dialect is described by the Dialect* and Has* constants. A
primitive that a dialect does not provide is not declared under its tag, so
using it is a compile error rather than a runtime failure. The dialect
libraries themselves are linked through pkg-config (or, for Luau, the
Luau.VM and Luau.Compiler static libraries).

# Error handling

Lua reports failures from protected entry points with a status code, and
propagates failures elsewhere with a long jump (longjmp) that would be
undefined behavior if it were allowed to unwind a Go frame. Every method on
State that can fail is routed through a protected entry point and surfaces
the outcome as an [*Error]. On failure, the error object is left as the
single value on top of the affected stack region, as the C API does.

In the other direction, a [Function] signals failure by returning a non-nil
error. The raise (and the long jump it triggers) is performed by the C
trampoline only after the Go frame has returned, so a Function must release
any resource it holds before returning; releases deferred past the return
would run, but anything the VM should observe must be done first.

For the same reason, a Function suspends a coroutine by returning through
[State.Yield] (or [State.YieldK] where continuations exist), never by
calling into the VM's yield primitive directly.

[Lua C API]: https://www.lua.org/manual/5.4/manual.html#4
[auxiliary library]: https://www.lua.org/manual/5.4/manual.html#5
*/
package lua
