package client_test

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sysdb/sysdbd/internal/frontend"
	"github.com/sysdb/sysdbd/internal/parser"
	"github.com/sysdb/sysdbd/internal/store"
	"github.com/sysdb/sysdbd/pkg/client"
	"github.com/sysdb/sysdbd/pkg/logger"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...logger.Field)               {}
func (noopLogger) Info(string, ...logger.Field)                {}
func (noopLogger) Warn(string, ...logger.Field)                {}
func (noopLogger) Error(string, ...logger.Field)               {}
func (noopLogger) Fatal(string, ...logger.Field)               {}
func (n noopLogger) WithFields(...logger.Field) logger.Logger { return n }
func (n noopLogger) WithError(error) logger.Logger             { return n }
func (noopLogger) Sync() error                                 { return nil }

type noopCollector struct{}

func (noopCollector) ConnectionOpened()                                      {}
func (noopCollector) ConnectionClosed()                                      {}
func (noopCollector) RecordCommand(command, status string, d time.Duration) {}

// startTestServer listens on an ephemeral loopback port and serves
// accepted connections with the real frontend dispatcher, returning
// the address to dial and a cleanup func.
func startTestServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	st := store.New(noopLogger{})
	p := parser.New()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go frontend.New(conn, st, p, noopLogger{}, noopCollector{}).Serve()
		}
	}()
	return ln.Addr().String()
}

func TestClientDialAndPing(t *testing.T) {
	addr := startTestServer(t)
	c, err := client.Dial(addr, "tester", time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	if err := c.Ping(); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestClientDialRejectsBadHandshake(t *testing.T) {
	// There is no server-side rejection path to exercise beyond a
	// refused connection, so this just confirms Dial surfaces a dial
	// error cleanly when nothing is listening.
	if _, err := client.Dial("127.0.0.1:1", "tester", 50*time.Millisecond); err == nil {
		t.Fatal("expected an error dialing a closed port")
	}
}

func TestClientQueryStoreAndFetch(t *testing.T) {
	addr := startTestServer(t)
	c, err := client.Dial(addr, "tester", time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	storeReply, err := c.Query(`STORE HOST 'web01' AT 1000;`)
	if err != nil {
		t.Fatalf("Query(STORE): %v", err)
	}
	if storeReply.Code.String() != "OK" {
		t.Fatalf("STORE reply code = %v, payload %q", storeReply.Code, storeReply.Payload)
	}

	fetchReply, err := c.Query(`FETCH HOST 'web01';`)
	if err != nil {
		t.Fatalf("Query(FETCH): %v", err)
	}
	if fetchReply.Code.String() != "DATA" {
		t.Fatalf("FETCH reply code = %v, payload %q", fetchReply.Code, fetchReply.Payload)
	}
	if !strings.Contains(fetchReply.String(), "web01") {
		t.Errorf("FETCH reply = %q, want it to contain web01", fetchReply.String())
	}
}

func TestClientQueryMultiStatementCollectsLogs(t *testing.T) {
	addr := startTestServer(t)
	c, err := client.Dial(addr, "tester", time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	reply, err := c.Query(`STORE HOST 'web01' AT 1; STORE HOST 'db01' AT 1;`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(reply.Logs) != 1 {
		t.Fatalf("len(Logs) = %d, want 1", len(reply.Logs))
	}
	if !strings.Contains(reply.Logs[0], "Ignoring 1 command") {
		t.Errorf("Logs[0] = %q, want an ignored-command warning", reply.Logs[0])
	}
}

func TestClientClose(t *testing.T) {
	addr := startTestServer(t)
	c, err := client.Dial(addr, "tester", time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := c.Ping(); err == nil {
		t.Error("expected Ping to fail after Close")
	}
}
