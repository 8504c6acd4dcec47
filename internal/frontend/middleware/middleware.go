// Package middleware provides small decorators around a Connection's
// per-frame dispatch function, in the same spirit as the teacher's
// internal/middleware/recovery and internal/middleware/auth gin
// middleware: each wraps a Next and returns a new Next, so they
// compose by nesting function calls instead of a framework-specific
// chain type.
package middleware

import "github.com/sysdb/sysdbd/internal/proto"

// Next handles one already-read frame and reports whether the
// connection should keep reading (false tears the connection down).
type Next func(frame *proto.Frame) bool

// Wrapper decorates a Next with additional behavior.
type Wrapper func(Next) Next

// Chain applies wrappers to base in order, so the first wrapper listed
// runs outermost (it sees the frame first and the result last).
func Chain(base Next, wrappers ...Wrapper) Next {
	for i := len(wrappers) - 1; i >= 0; i-- {
		base = wrappers[i](base)
	}
	return base
}
