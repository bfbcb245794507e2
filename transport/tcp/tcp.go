// Package tcp adapts a plain TCP connection to wire.ByteChannel.
package tcp

import (
	"bufio"
	"context"
	"net"
	"time"

	"github.com/riftlabs/gorsp/wire"
)

// Channel wraps a net.Conn with the buffering wire.Connection expects.
type Channel struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

var _ wire.ByteChannel = (*Channel)(nil)

// Dial connects to addr over TCP and returns it wrapped as a
// wire.ByteChannel. ctx governs only the connection attempt; once
// established, use SetDeadline for per-operation timeouts, since the wire
// layer itself never imposes one.
func Dial(ctx context.Context, addr string) (*Channel, error) {
	var d net.Dialer

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Channel{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}, nil
}

func (c *Channel) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *Channel) ReadByte() (byte, error)     { return c.r.ReadByte() }
func (c *Channel) Write(p []byte) (int, error) { return c.w.Write(p) }
func (c *Channel) Flush() error                { return c.w.Flush() }

// SetDeadline plumbs a read/write deadline through to the underlying
// net.Conn, giving callers a way to bound the otherwise-unbounded blocking
// reads the wire layer performs.
func (c *Channel) SetDeadline(t time.Time) error { return c.conn.SetDeadline(t) }

// Close closes the underlying connection.
func (c *Channel) Close() error { return c.conn.Close() }
