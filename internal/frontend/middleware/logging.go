package middleware

import (
	"time"

	"github.com/sysdb/sysdbd/internal/proto"
	"github.com/sysdb/sysdbd/pkg/logger"
)

// Logging builds a Wrapper that logs every dispatched command at
// debug level with its latency, mirroring the field-per-request style
// of the teacher's gin request logger without pulling gin into the
// socket frontend.
func Logging(log logger.Logger) Wrapper {
	return func(next Next) Next {
		return func(frame *proto.Frame) bool {
			start := time.Now()
			ok := next(frame)
			log.Debug("command dispatched",
				logger.String("command", frame.Code.String()),
				logger.Duration("elapsed", time.Since(start)))
			return ok
		}
	}
}
