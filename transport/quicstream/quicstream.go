// Package quicstream adapts an already-open QUIC stream to
// wire.ByteChannel, for RSP carried over QUIC instead of raw TCP. Dialing
// and the TLS 1.3 handshake are the caller's responsibility, matching
// spec.md's "transport discovery is out of scope" — this package only
// wraps a stream the caller already has.
package quicstream

import (
	"bufio"

	"github.com/quic-go/quic-go"

	"github.com/riftlabs/gorsp/wire"
)

// Channel wraps a *quic.Stream.
type Channel struct {
	s *quic.Stream
	r *bufio.Reader
	w *bufio.Writer
}

var _ wire.ByteChannel = (*Channel)(nil)

// Wrap adapts an open QUIC stream. The caller owns the stream's lifetime;
// closing the Channel closes the stream's send direction.
func Wrap(s *quic.Stream) *Channel {
	return &Channel{s: s, r: bufio.NewReader(s), w: bufio.NewWriter(s)}
}

func (c *Channel) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *Channel) ReadByte() (byte, error)     { return c.r.ReadByte() }
func (c *Channel) Write(p []byte) (int, error) { return c.w.Write(p) }
func (c *Channel) Flush() error                { return c.w.Flush() }

// Close closes the send direction of the underlying stream (quic-go's
// Stream.Close); it does not cancel the read direction.
func (c *Channel) Close() error { return c.s.Close() }
