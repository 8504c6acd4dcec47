// Package client is a thin Go client for the SysDB wire protocol,
// exposing the equivalent of the reference C client's
// sdb_input_exec_query as a single Query call. It owns no parser or
// store state: it only frames requests and decodes replies.
package client

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/sysdb/sysdbd/internal/proto"
)

// Reply is the decoded result of one Query call.
type Reply struct {
	// Code is the frame code the server answered with: OK, ERROR, or
	// DATA.
	Code proto.Code
	// Type is the object-type subtype a DATA frame echoes (0 for a
	// QUERY-driven result); meaningless for OK/ERROR.
	Type proto.ObjectType
	// Payload is the reply body: JSON bytes for DATA (subtype header
	// already stripped), a message for OK, or a diagnostic for ERROR.
	Payload []byte
	// Logs carries any LOG frames the server sent ahead of the
	// terminal reply (e.g. the ignored-statement warning for a
	// multi-statement query).
	Logs []string
}

// String renders the payload as text for OK/ERROR/LOG/DATA alike.
func (r *Reply) String() string {
	return string(r.Payload)
}

// Client is a single connection to a sysdbd instance. It is not safe
// for concurrent use by multiple goroutines, matching the reference
// client library's one-connection-per-thread contract.
type Client struct {
	conn net.Conn
}

// Dial connects to addr and performs the STARTUP handshake with
// username.
func Dial(addr, username string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	c := &Client{conn: conn}
	if err := c.startup(username); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) startup(username string) error {
	payload := append([]byte(username), 0)
	if err := proto.WriteFrame(c.conn, &proto.Frame{Code: proto.CodeStartup, Payload: payload}); err != nil {
		return fmt.Errorf("sending STARTUP: %w", err)
	}
	reply, err := proto.ReadFrame(c.conn)
	if err != nil {
		return fmt.Errorf("reading STARTUP reply: %w", err)
	}
	if reply.Code != proto.CodeOK {
		return fmt.Errorf("STARTUP rejected: %s", string(reply.Payload))
	}
	return nil
}

// Query sends text as a QUERY frame and returns the server's reply,
// whatever its code. A non-nil error is only returned for a
// connection-level failure; an ERROR frame from the server is
// reported through Reply.Code, not as a Go error, so callers can
// distinguish "the server rejected the query" from "the query
// couldn't be sent at all".
func (c *Client) Query(text string) (*Reply, error) {
	if err := proto.WriteFrame(c.conn, &proto.Frame{Code: proto.CodeQuery, Payload: []byte(text)}); err != nil {
		return nil, fmt.Errorf("sending QUERY: %w", err)
	}

	var logs []string
	for {
		frame, err := proto.ReadFrame(c.conn)
		if err != nil {
			return nil, fmt.Errorf("reading QUERY reply: %w", err)
		}
		if frame.Code == proto.CodeLog {
			logs = append(logs, string(frame.Payload))
			continue
		}
		if frame.Code == proto.CodeData {
			if len(frame.Payload) < 4 {
				return nil, fmt.Errorf("reading QUERY reply: DATA payload too short for subtype header")
			}
			typ := proto.ObjectType(binary.BigEndian.Uint32(frame.Payload[:4]))
			return &Reply{Code: frame.Code, Type: typ, Payload: frame.Payload[4:], Logs: logs}, nil
		}
		return &Reply{Code: frame.Code, Payload: frame.Payload, Logs: logs}, nil
	}
}

// Ping round-trips a PING frame, primarily for connection health
// checks from the CLI.
func (c *Client) Ping() error {
	if err := proto.WriteFrame(c.conn, &proto.Frame{Code: proto.CodePing}); err != nil {
		return fmt.Errorf("sending PING: %w", err)
	}
	reply, err := proto.ReadFrame(c.conn)
	if err != nil {
		return fmt.Errorf("reading PING reply: %w", err)
	}
	if reply.Code != proto.CodeOK {
		return fmt.Errorf("PING failed: %s", string(reply.Payload))
	}
	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
