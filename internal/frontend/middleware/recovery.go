package middleware

import (
	"runtime/debug"

	"github.com/sysdb/sysdbd/internal/proto"
	"github.com/sysdb/sysdbd/pkg/logger"
)

// Recovery builds a Wrapper that contains a panicking executor to the
// single frame that triggered it: the panic is logged with its stack
// and onPanic is invoked to write an ERROR reply, instead of the panic
// propagating out of Serve's read loop and killing the whole
// connection goroutine. Grounded on the teacher's
// internal/middleware/recovery.Handler, adapted from gin's
// c.Next()-then-recover shape to a single wrapped call.
func Recovery(log logger.Logger, onPanic func(recovered any) bool) Wrapper {
	return func(next Next) Next {
		return func(frame *proto.Frame) (ok bool) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in command dispatch",
						logger.Any("panic", r),
						logger.String("stack", string(debug.Stack())),
						logger.String("command", frame.Code.String()))
					ok = onPanic(r)
				}
			}()
			return next(frame)
		}
	}
}
