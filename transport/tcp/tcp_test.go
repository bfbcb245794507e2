package tcp

import (
	"context"
	"net"
	"testing"
)

func TestDialRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			close(accepted)

			return
		}
		accepted <- conn
	}()

	ch, err := Dial(context.Background(), ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer ch.Close()

	server, ok := <-accepted
	if !ok {
		t.Fatal("Accept failed")
	}
	defer server.Close()

	if _, err := ch.Write([]byte("ping")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := ch.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	buf := make([]byte, 4)
	if _, err := server.Read(buf); err != nil {
		t.Fatalf("server Read: %v", err)
	}
	if string(buf) != "ping" {
		t.Fatalf("server saw %q, want ping", buf)
	}

	if _, err := server.Write([]byte("pong")); err != nil {
		t.Fatalf("server Write: %v", err)
	}

	b, err := ch.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if b != 'p' {
		t.Fatalf("ReadByte = %q, want 'p'", b)
	}
}

func TestDialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if _, err := Dial(context.Background(), addr); err == nil {
		t.Fatal("expected Dial to fail against a closed listener")
	}
}
