//go:build unix

// Package serial opens a Unix tty in raw mode as a wire.ByteChannel, for
// RSP spoken over a real serial line rather than a socket.
package serial

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/riftlabs/gorsp/wire"
)

// Channel wraps an open serial device file.
type Channel struct {
	f *os.File
	r *bufio.Reader
	w *bufio.Writer
}

var _ wire.ByteChannel = (*Channel)(nil)

var baudRates = map[int]uint32{
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
	230400: unix.B230400,
	460800: unix.B460800,
	921600: unix.B921600,
}

// Open opens path as a raw-mode serial line at the given baud rate. Raw
// mode disables line discipline (no canonical input, no echo, no signal
// characters) so every byte RSP sends arrives unmodified.
func Open(path string, baud int) (*Channel, error) {
	rate, ok := baudRates[baud]
	if !ok {
		return nil, fmt.Errorf("serial: unsupported baud rate %d", baud)
	}

	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, err
	}

	fd := int(f.Fd())

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		f.Close()

		return nil, fmt.Errorf("serial: get termios: %w", err)
	}

	// cfmakeraw equivalent: no input/output processing, no echo, no
	// signal generation, 8 data bits, one byte minimum per read with no
	// inter-byte timeout.
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	t.Ispeed = rate
	t.Ospeed = rate

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		f.Close()

		return nil, fmt.Errorf("serial: set termios: %w", err)
	}

	return &Channel{f: f, r: bufio.NewReader(f), w: bufio.NewWriter(f)}, nil
}

func (c *Channel) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *Channel) ReadByte() (byte, error)     { return c.r.ReadByte() }
func (c *Channel) Write(p []byte) (int, error) { return c.w.Write(p) }
func (c *Channel) Flush() error                { return c.w.Flush() }

// Close closes the underlying device file.
func (c *Channel) Close() error { return c.f.Close() }
