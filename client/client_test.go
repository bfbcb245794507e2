package client_test

import (
	"bufio"
	"errors"
	"net"
	"testing"

	"github.com/riftlabs/gorsp/client"
	"github.com/riftlabs/gorsp/proto"
	"github.com/riftlabs/gorsp/wire"
)

// serveOnce runs a tiny scripted RSP server against one end of a pipe: for
// each expected request body it sends back the paired reply body, using a
// real wire.Connection so acking/checksums are exercised exactly as they
// would be against a live target.
func serveOnce(t *testing.T, conn *wire.Connection, script [][2]string) <-chan error {
	t.Helper()

	done := make(chan error, 1)

	go func() {
		for _, step := range script {
			_, body, err := conn.ReadPacket()
			if err != nil {
				done <- err

				return
			}

			if string(body) != step[0] {
				done <- errUnexpected(step[0], string(body))

				return
			}

			if err := conn.FullPacket([]byte(step[1])); err != nil {
				done <- err

				return
			}
		}

		done <- nil
	}()

	return done
}

type unexpectedErr struct{ want, got string }

func (e *unexpectedErr) Error() string {
	return "server saw " + e.got + ", want " + e.want
}

func errUnexpected(want, got string) error { return &unexpectedErr{want, got} }

func newPair() (*client.Client, *wire.Connection) {
	a, b := net.Pipe()

	clientConn := wire.NewConnection(a, bufio.NewWriter(a), true)
	serverConn := wire.NewConnection(b, bufio.NewWriter(b), false)

	return client.New(clientConn, true), serverConn
}

func TestStartupNegotiatesNoAck(t *testing.T) {
	clientConn, serverWire := newNoAckPair(t)

	done := serveOnce(t, serverWire, [][2]string{
		{"QStartNoAckMode", "OK"},
	})

	if err := clientConn.Startup(); err != nil {
		t.Fatalf("Startup: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
}

func newNoAckPair(t *testing.T) (*client.Client, *wire.Connection) {
	t.Helper()

	a, b := net.Pipe()

	clientConn := wire.NewConnection(a, bufio.NewWriter(a), true)
	serverConn := wire.NewConnection(b, bufio.NewWriter(b), false)

	return client.New(clientConn, false), serverConn
}

func TestReadMemory(t *testing.T) {
	c, server := newPair()

	done := serveOnce(t, server, [][2]string{
		{"m1000,4", "deadbeef"},
	})

	data, err := c.ReadMemory(0x1000, 4)
	if err != nil {
		t.Fatalf("ReadMemory: %v", err)
	}

	if string(data) != "\xde\xad\xbe\xef" {
		t.Fatalf("data = %x, want deadbeef", data)
	}

	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestReadMemoryError(t *testing.T) {
	c, server := newPair()

	done := serveOnce(t, server, [][2]string{
		{"m0,1", "E05"},
	})

	_, err := c.ReadMemory(0, 1)

	var perr *client.ErrorPacket
	if !errors.As(err, &perr) || perr.Code != 0x05 {
		t.Fatalf("err = %v, want ErrorPacket{5}", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestSetBreakpoint(t *testing.T) {
	c, server := newPair()

	done := serveOnce(t, server, [][2]string{
		{"Z0,400000,0", "OK"},
	})

	if err := c.SetBreakpoint(client.SoftwareBreakpoint, 0x400000, 0); err != nil {
		t.Fatalf("SetBreakpoint: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestQuerySupported(t *testing.T) {
	c, server := newPair()

	done := make(chan error, 1)

	go func() {
		_, _, err := server.ReadPacket()
		if err != nil {
			done <- err

			return
		}

		done <- server.FullPacket([]byte("multiprocess+;qXfer:features:read-;vendor-version=1.4.2"))
	}()

	features, err := c.QuerySupported()
	if err != nil {
		t.Fatalf("QuerySupported: %v", err)
	}

	if f := features["multiprocess"]; f.Kind != proto.FeatureEnabled {
		t.Fatalf("multiprocess = %#v, want Enabled", f)
	}

	if f := features["vendor-version"]; f.Kind != proto.FeatureValued || f.Value != "1.4.2" {
		t.Fatalf("vendor-version = %#v, want Valued(1.4.2)", f)
	}

	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestWaitForStopFullReply(t *testing.T) {
	c, server := newPair()

	done := make(chan error, 1)

	go func() {
		_, body, err := server.ReadPacket()
		if err != nil || string(body) != "c" {
			done <- errUnexpected("c", string(body))

			return
		}

		done <- server.FullPacket([]byte("T05thread:p1.1;swbreak:"))
	}()

	if err := c.Continue(); err != nil {
		t.Fatalf("Continue: %v", err)
	}

	stop, err := c.WaitForStop()
	if err != nil {
		t.Fatalf("WaitForStop: %v", err)
	}

	if stop.Signal != 5 || len(stop.Elements) != 2 {
		t.Fatalf("stop = %#v", stop)
	}

	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
}
