// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

//go:build !lua51 && !luajit && !luau

package lua

// registerContinuation stores k and returns the context value the VM will
// hand back when the continuation runs. The entry is removed when the
// continuation fires; a continuation that never fires (for example, a
// protected call that returns without yielding) is cleaned up by the caller.
func (l *State) registerContinuation(k KFunction) uint64 {
	d := l.data()
	id := d.nextContID
	d.nextContID++
	d.continuations[id] = k
	return id
}

// YieldK suspends the calling coroutine like [State.Yield], but arranges for
// k to run in place of the original [Function]'s remaining body when the
// coroutine is resumed. It must be used as the return expression of a
// Function:
//
//	return l.YieldK(1, k)
//
// The values passed to the resume are on the stack when k runs.
func (l *State) YieldK(nResults int, k KFunction) (int, error) {
	if k == nil {
		panic("nil continuation")
	}
	l.checkElems(nResults)
	d := l.data()
	if d.pending != nil {
		panic("transfer already pending")
	}
	d.pending = &pendingTransfer{
		kind:     transferYield,
		nResults: nResults,
		contID:   l.registerContinuation(k),
	}
	return 0, nil
}

// CallK behaves like [State.Call], but allows the called function to yield
// across the call: if it does, the yield propagates to the resumer and k
// later runs in place of the calling [Function]'s remaining body. Like
// YieldK, it must be used as the return expression of a Function:
//
//	return l.CallK(nArgs, nResults, msgHandler, k)
//
// The call itself happens after the Function's frame has returned. If the
// called function completes without yielding, k runs immediately with the
// call's results on the stack; if it raises an error, k runs with the status
// reporting the failure and the error object on the stack.
func (l *State) CallK(nArgs, nResults, msgHandler int, k KFunction) (int, error) {
	if k == nil {
		panic("nil continuation")
	}
	if nArgs < 0 {
		panic("negative arguments")
	}
	if nResults < 0 && nResults != MultipleReturns {
		panic("negative results")
	}
	l.checkElems(1 + nArgs)
	msgHandler = l.checkMessageHandler(msgHandler)
	d := l.data()
	if d.pending != nil {
		panic("transfer already pending")
	}
	d.pending = &pendingTransfer{
		kind:       transferCall,
		nArgs:      nArgs,
		nResults:   nResults,
		msgHandler: msgHandler,
		contID:     l.registerContinuation(k),
	}
	return 0, nil
}
