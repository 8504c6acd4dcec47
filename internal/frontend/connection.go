// Package frontend implements the per-connection protocol state
// machine and the command executors that turn a parsed statement into
// a store operation and a reply frame.
package frontend

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/sysdb/sysdbd/internal/ast"
	apierrors "github.com/sysdb/sysdbd/internal/errors"
	"github.com/sysdb/sysdbd/internal/frontend/middleware"
	"github.com/sysdb/sysdbd/internal/metrics"
	"github.com/sysdb/sysdbd/internal/parser"
	"github.com/sysdb/sysdbd/internal/proto"
	"github.com/sysdb/sysdbd/internal/store"
	"github.com/sysdb/sysdbd/pkg/logger"
)

// State is a Connection's position in the handshake/ready/terminal
// state machine.
type State int

const (
	// StateHandshake accepts exactly one STARTUP frame before anything
	// else.
	StateHandshake State = iota
	// StateReady accepts query/store commands.
	StateReady
	// StateTerminal means the connection is being torn down; no more
	// frames are read or written.
	StateTerminal
)

// Connection is a per-net.Conn object carrying the handshake/ready
// state, the username presented at STARTUP, and the shared store and
// parser it dispatches commands against. Grounded on the teacher's
// internal/websocket.Handler read-pump: one goroutine per accepted
// connection, blocking reads, structured log fields on every state
// transition, and a deferred cleanup on exit.
type Connection struct {
	conn     net.Conn
	store    *store.Store
	parser   parser.Parser
	log      logger.Logger
	metrics  metrics.Collector
	state    State
	username string

	handle middleware.Next
}

// New wraps an accepted net.Conn.
func New(conn net.Conn, st *store.Store, p parser.Parser, log logger.Logger, collector metrics.Collector) *Connection {
	c := &Connection{
		conn:    conn,
		store:   st,
		parser:  p,
		log:     log.WithFields(logger.String("remoteAddr", conn.RemoteAddr().String())),
		metrics: collector,
		state:   StateHandshake,
	}
	c.handle = middleware.Chain(c.dispatch,
		middleware.Recovery(c.log, c.handlePanic),
		middleware.Logging(c.log),
	)
	return c
}

// Serve runs the connection's read/dispatch/write loop until the peer
// closes the socket or a fatal I/O error occurs. It never panics out to
// the caller: a panicking executor is recovered, logged, and reported
// as an ERROR frame for this connection only, mirroring
// internal/middleware/recovery.Handler's containment of a single
// request instead of the whole process.
func (c *Connection) Serve() {
	c.metrics.ConnectionOpened()
	defer func() {
		c.metrics.ConnectionClosed()
		_ = c.conn.Close()
		c.log.Info("connection closed", logger.String("username", c.username))
	}()

	c.log.Info("connection accepted")

	for c.state != StateTerminal {
		frame, err := proto.ReadFrame(c.conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.log.Debug("connection read error", logger.Error(err))
			}
			return
		}

		if !c.handle(frame) {
			return
		}
	}
}

// handlePanic turns a recovered panic into an ERROR reply for this
// connection only; the connection itself stays alive for the next
// frame unless the write fails.
func (c *Connection) handlePanic(recovered any) bool {
	return c.writeError(fmt.Errorf("internal error: %v", recovered))
}

// dispatch handles one frame and returns false when the connection
// must be torn down (fatal I/O error writing the reply).
func (c *Connection) dispatch(frame *proto.Frame) bool {
	start := time.Now()
	status := "ok"
	defer func() {
		c.metrics.RecordCommand(frame.Code.String(), status, time.Since(start))
	}()

	if c.state == StateHandshake {
		if frame.Code != proto.CodeStartup {
			status = "error"
			return c.writeError(fmt.Errorf("authentication required"))
		}
		return c.handleStartup(frame)
	}

	switch frame.Code {
	case proto.CodePing:
		return c.writeOK("")
	case proto.CodeQuery:
		return c.execQueryText(string(frame.Payload))
	case proto.CodeFetch:
		ok := c.execFetch(frame.Payload)
		if !ok {
			status = "error"
		}
		return true
	case proto.CodeList:
		ok := c.execList(frame.Payload)
		if !ok {
			status = "error"
		}
		return true
	case proto.CodeLookup:
		ok := c.execLookup(frame.Payload)
		if !ok {
			status = "error"
		}
		return true
	case proto.CodeStore:
		ok := c.execStoreFrame(frame.Payload)
		if !ok {
			status = "error"
		}
		return true
	case proto.CodeServerVersion:
		return c.writeOK(serverVersion)
	case proto.CodeTimeseries:
		status = "error"
		return c.writeError(apierrors.ErrNotImplemented)
	default:
		status = "error"
		return c.writeError(fmt.Errorf("unknown command code %d", frame.Code))
	}
}

// serverVersion is reported to SERVER_VERSION queries. It has no
// bearing on wire compatibility, which is pinned by the Code constants
// instead.
const serverVersion = "sysdbd 0.1"

func (c *Connection) handleStartup(frame *proto.Frame) bool {
	username, _, err := decodeStartup(frame.Payload)
	if err != nil {
		return c.writeError(err)
	}
	c.username = username
	c.state = StateReady
	c.log.Info("handshake complete", logger.String("username", username))
	return c.writeOK("")
}

func decodeStartup(payload []byte) (string, int, error) {
	for i, b := range payload {
		if b == 0 {
			return string(payload[:i]), i + 1, nil
		}
	}
	return "", 0, apierrors.WrapWithCode(fmt.Errorf("missing null terminator"), apierrors.ErrProtocol, "decoding STARTUP username")
}

// writeOK writes an OK frame with an optional text payload.
func (c *Connection) writeOK(text string) bool {
	return c.writeFrame(proto.CodeOK, []byte(text))
}

// writeError writes an ERROR frame carrying err's message.
func (c *Connection) writeError(err error) bool {
	c.log.Warn("command failed", logger.Error(err))
	return c.writeFrame(proto.CodeError, []byte(err.Error()))
}

// writeLog writes a LOG frame — used for the multi-statement
// ignored-command warning.
func (c *Connection) writeLog(msg string) bool {
	return c.writeFrame(proto.CodeLog, []byte(msg))
}

// writeData writes a DATA frame carrying a JSON payload.
func (c *Connection) writeData(payload []byte) bool {
	return c.writeFrame(proto.CodeData, payload)
}

func (c *Connection) writeFrame(code proto.Code, payload []byte) bool {
	if err := proto.WriteFrame(c.conn, &proto.Frame{Code: code, Payload: payload}); err != nil {
		c.log.Debug("connection write error", logger.Error(err))
		c.state = StateTerminal
		return false
	}
	return true
}

// filterOf is a tiny adapter so executors.go can turn an
// ast.Expr into a store.Filter without internal/store importing
// internal/ast.
func filterOf(e ast.Expr) store.Filter {
	if e == nil {
		return nil
	}
	return ast.Filter{Expr: e}
}
