package wire

import "io"

// ByteChannel is the concrete shape a transport adapter must satisfy to
// back a Connection with a single full-duplex value (a net.Conn, a QUIC
// stream, an open tty): blocking reads of N bytes, a single-byte read for
// the framing layer's byte-at-a-time scanning, blocking writes, and an
// explicit flush. transport/tcp, transport/serial and transport/quicstream
// all implement it.
type ByteChannel interface {
	io.Reader
	io.ByteReader
	io.Writer
	Flush() error
}

// NewDuplexConnection builds a Connection over a single ByteChannel used
// for both halves — the common case when the collaborator is one
// full-duplex stream rather than two independent pipes.
func NewDuplexConnection(ch ByteChannel, isClient bool) *Connection {
	return NewConnection(ch, ch, isClient)
}
