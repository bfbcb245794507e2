package rsptest

import (
	"bufio"
	"net"
	"testing"

	"github.com/riftlabs/gorsp/client"
	"github.com/riftlabs/gorsp/wire"
)

func TestServerStartupAndMemory(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	clientConn := wire.NewConnection(a, bufio.NewWriter(a), true)
	serverConn := wire.NewConnection(b, bufio.NewWriter(b), false)

	srv := New(serverConn, 4)
	srv.SetMemory(0x1000, []byte{0xde, 0xad, 0xbe, 0xef})

	go srv.Serve()

	c := client.New(clientConn, true)

	if err := c.Startup(); err != nil {
		t.Fatalf("Startup: %v", err)
	}

	data, err := c.ReadMemory(0x1000, 4)
	if err != nil {
		t.Fatalf("ReadMemory: %v", err)
	}

	want := []byte{0xde, 0xad, 0xbe, 0xef}
	if len(data) != len(want) {
		t.Fatalf("ReadMemory = %x, want %x", data, want)
	}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("ReadMemory = %x, want %x", data, want)
		}
	}
}
