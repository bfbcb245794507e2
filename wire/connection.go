// Package wire implements the RSP framing/transport layer: turning a raw
// bidirectional byte stream into a sequence of packets and notifications.
// It is the only layer that touches the wire directly, and owns every
// framing invariant — start/finish delimiters, the running checksum, the
// ack/resend handshake, RLE expansion on read, and binary escaping on
// write.
package wire

import (
	"bufio"
	"fmt"
	"io"

	"github.com/riftlabs/gorsp/hex"
	"github.com/riftlabs/gorsp/proto"
)

// ByteWriter is the write half of the external byte-stream collaborator:
// a blocking write of N bytes plus an explicit flush. transport/tcp,
// transport/serial and transport/quicstream all implement it, as does
// anything wrapped in *bufio.Writer.
type ByteWriter interface {
	io.Writer
	Flush() error
}

// reserved bytes that must be escaped by WriteBinary.
const (
	escDollar = '$'
	escHash   = '#'
	escBrace  = '}'
	escStar   = '*'
	escXOR    = 0x20
)

type packetState uint8

const (
	noPacket packetState = iota
	inNormalPacket
	inNotificationPacket
)

// Connection is the framing/transport state machine described by the RSP
// spec. It owns two borrowed byte channels — one for reading, one for
// writing — for its entire lifetime; callers must not read from or write
// to those channels directly once a Connection wraps them.
//
// A Connection is not safe for concurrent use. The library is
// single-threaded and synchronous by design: every read may block
// indefinitely, and callers wanting concurrent access must serialize calls
// externally.
type Connection struct {
	r        *bufio.Reader
	w        ByteWriter
	isClient bool

	acking     bool
	inPacket   packetState
	checksum   byte
	lastPacket []byte
	maxRetries *uint16
	strict     bool
}

// NewConnection creates a Connection over the given reader and writer.
// isClient controls RLE decoding on read (client-side only, per the wire
// protocol: servers don't send RLE to a client of themselves) and whether
// Interrupt is permitted. Acking starts enabled; max-retries starts
// unbounded.
func NewConnection(r io.Reader, w ByteWriter, isClient bool) *Connection {
	return &Connection{
		r:        bufio.NewReader(r),
		w:        w,
		isClient: isClient,
		acking:   true,
		inPacket: noPacket,
	}
}

// SetMaxRetries caps the number of resends FinishPacket will attempt
// before failing with ErrTooManyRetries. Pass nil for unbounded retries
// (the default).
func (c *Connection) SetMaxRetries(n *uint16) { c.maxRetries = n }

// SetStrict controls whether ReadPacket reports a stray pre-packet byte as
// *InvalidPacketTypeError instead of silently skipping it. Off by default,
// matching the protocol's canonical skip behavior.
func (c *Connection) SetStrict(strict bool) { c.strict = strict }

// Acking reports whether this Connection is still in ack mode.
func (c *Connection) Acking() bool { return c.acking }

// IsClient reports the is_client flag fixed at construction.
func (c *Connection) IsClient() bool { return c.isClient }

// StartPacket opens a Normal ('$') packet. It is an API-misuse panic to
// call this while a packet is already open.
func (c *Connection) StartPacket() error {
	return c.start('$', inNormalPacket)
}

// StartNotificationPacket opens a Notification ('%') packet. Notifications
// are defined symmetrically but in practice only servers emit them.
func (c *Connection) StartNotificationPacket() error {
	return c.start('%', inNotificationPacket)
}

func (c *Connection) start(lead byte, state packetState) error {
	if c.inPacket != noPacket {
		panic("wire: StartPacket called while a packet is already open")
	}

	c.checksum = 0
	c.inPacket = state

	// The leading delimiter bypasses the checksum accumulator.
	if _, err := c.w.Write([]byte{lead}); err != nil {
		c.inPacket = noPacket

		return ioError(err)
	}

	return nil
}

// Write implements io.Writer over the body of the currently open packet.
// Every byte forwarded here is added modulo 256 to the running checksum
// and, while acking is enabled, appended to the retransmit buffer. This is
// the only path body bytes may take; framing bytes ($, %, #XX) are written
// directly to the underlying channel and never touch Write.
func (c *Connection) Write(buf []byte) (int, error) {
	if c.inPacket == noPacket {
		panic("wire: Write called with no packet open")
	}

	n, err := c.w.Write(buf)
	for _, b := range buf[:n] {
		c.checksum += b
	}

	if c.acking {
		c.lastPacket = append(c.lastPacket, buf[:n]...)
	}

	if err != nil {
		return n, ioError(err)
	}

	return n, nil
}

// WriteHex writes each byte of data as two lowercase hex digits — the
// "old" 8-bit-unclean interface.
func (c *Connection) WriteHex(data []byte) error {
	if c.inPacket == noPacket {
		panic("wire: WriteHex called with no packet open")
	}

	_, err := c.Write(hex.EncodeBytes(data))

	return err
}

// WriteBinary writes buf using the 8-bit-clean binary interface: each of
// the four reserved bytes ($ # } *) is transmitted as `} <byte XOR 0x20>`.
// '*' is always escaped — even though only the receiver's RLE logic cares
// about it — so the same routine is safe whichever side calls it. Runs of
// non-reserved bytes are batched into a single underlying write rather
// than written byte by byte.
func (c *Connection) WriteBinary(buf []byte) error {
	if c.inPacket == noPacket {
		panic("wire: WriteBinary called with no packet open")
	}

	last := 0

	for i, b := range buf {
		switch b {
		case escDollar, escHash, escBrace, escStar:
			if i > last {
				if _, err := c.Write(buf[last:i]); err != nil {
					return err
				}
			}

			last = i + 1

			if _, err := c.Write([]byte{escBrace, b ^ escXOR}); err != nil {
				return err
			}
		}
	}

	if last < len(buf) {
		if _, err := c.Write(buf[last:]); err != nil {
			return err
		}
	}

	return nil
}

// WriteThreadID writes id in the multiprocess wire form `p<pid>.<tid>`.
// This library is opinionated: it always emits the multiprocess form, even
// when a bare thread-id would do.
func (c *Connection) WriteThreadID(id proto.ProcessId) error {
	if c.inPacket == noPacket {
		panic("wire: WriteThreadID called with no packet open")
	}

	if _, err := c.Write([]byte{'p'}); err != nil {
		return err
	}

	if err := c.writeIDComponent(id.Pid); err != nil {
		return err
	}

	if _, err := c.Write([]byte{'.'}); err != nil {
		return err
	}

	return c.writeIDComponent(id.Tid)
}

func (c *Connection) writeIDComponent(id proto.Id) error {
	switch {
	case id.IsAll():
		_, err := c.Write([]byte("-1"))

		return err
	case id.IsAny():
		_, err := c.Write([]byte("0"))

		return err
	default:
		n, _ := id.IsSpecific()
		// The native integer value, hex-formatted with no leading zeros
		// and no byte-swap. A prior draft of this routine ran the value
		// through a big-endian byte swap before formatting it as hex;
		// that produces the wrong wire value on little-endian hosts and
		// must not be replicated.
		_, err := c.Write(hex.AppendUint(nil, uint64(n)))

		return err
	}
}

// FinishPacket closes the currently open packet: it writes the trailing
// `#XX` checksum (bypassing the accumulator, like the leading delimiter),
// flushes, and — while acking is enabled — runs the ack/resend loop until
// a '+' is received or the retry cap is exceeded.
func (c *Connection) FinishPacket() error {
	if c.inPacket == noPacket {
		panic("wire: FinishPacket called with no packet open")
	}

	kind := c.inPacket
	c.inPacket = noPacket

	trailer := hex.AppendByte([]byte{'#'}, c.checksum)

	if _, err := c.w.Write(trailer); err != nil {
		return ioError(err)
	}

	if err := c.w.Flush(); err != nil {
		return ioError(err)
	}

	if !c.acking {
		return nil
	}

	if err := c.ackLoop(kind); err != nil {
		return err
	}

	c.lastPacket = nil

	return nil
}

func (c *Connection) ackLoop(kind packetState) error {
	var retries uint16

	lead := byte('$')
	if kind == inNotificationPacket {
		lead = '%'
	}

	for {
		b, err := c.r.ReadByte()
		if err != nil {
			return ioError(err)
		}

		if b == '+' {
			return nil
		}

		// '-' is a negative ack; anything else is treated the same way,
		// conservatively.
		if c.maxRetries != nil && retries >= *c.maxRetries {
			return ErrTooManyRetries
		}

		retries++

		if _, err := c.w.Write([]byte{lead}); err != nil {
			return ioError(err)
		}

		if _, err := c.w.Write(c.lastPacket); err != nil {
			return ioError(err)
		}

		trailer := hex.AppendByte([]byte{'#'}, c.checksum)

		if _, err := c.w.Write(trailer); err != nil {
			return ioError(err)
		}

		if err := c.w.Flush(); err != nil {
			return ioError(err)
		}
	}
}

// FullPacket is a convenience that opens a Normal packet, writes contents
// verbatim (no escaping — callers needing WriteBinary/WriteHex semantics
// should call StartPacket themselves), and closes it.
func (c *Connection) FullPacket(contents []byte) error {
	if err := c.StartPacket(); err != nil {
		return err
	}

	if _, err := c.Write(contents); err != nil {
		return err
	}

	return c.FinishPacket()
}

// DisableAcking turns off acking for the remainder of this Connection's
// lifetime. It must only be called after the peer has agreed via a
// successful QStartNoAckMode handshake; there is no way back to acking
// mode. It also releases the retransmit buffer.
func (c *Connection) DisableAcking() {
	c.acking = false
	c.lastPacket = nil
}

// Interrupt sends the single out-of-band byte 0x03. It is only valid on
// the client side with no packet currently open, does not touch the
// checksum or retry state, and flushes immediately.
func (c *Connection) Interrupt() error {
	if c.inPacket != noPacket {
		panic("wire: Interrupt called while a packet is open")
	}

	if !c.isClient {
		panic("wire: Interrupt called on a non-client Connection")
	}

	if _, err := c.w.Write([]byte{0x03}); err != nil {
		return ioError(err)
	}

	return ioError(c.w.Flush())
}

// ReadPacket reads one framed packet: it skips bytes until a '$' or '%'
// start delimiter, accumulates the body (unescaping `}`-prefixed bytes and
// expanding RLE runs when IsClient()), reads the checksum trailer, and —
// while acking — verifies the checksum and sends the appropriate ack.
//
// A checksum mismatch on a Normal packet writes '-' and returns
// ErrInvalidChecksum; it does not retry internally — the caller's
// read-with-retry loop is expected to call ReadPacket again, since the
// peer will resend.
func (c *Connection) ReadPacket() (proto.PacketType, []byte, error) {
	var kind proto.PacketType

	for {
		b, err := c.r.ReadByte()
		if err != nil {
			return 0, nil, ioError(err)
		}

		if b == '$' {
			kind = proto.Normal

			break
		}

		if b == '%' {
			kind = proto.Notification

			break
		}

		if c.strict {
			return 0, nil, &InvalidPacketTypeError{Byte: b}
		}
		// Bytes arriving outside a packet are discarded.
	}

	body := make([]byte, 0, 64)

	var checksum byte

	var prev byte

	havePrev := false

	for {
		b, err := c.r.ReadByte()
		if err != nil {
			return 0, nil, ioError(err)
		}

		if b == '#' {
			break
		}

		if b == escBrace {
			escaped, err := c.r.ReadByte()
			if err != nil {
				return 0, nil, ioError(err)
			}

			checksum += escBrace
			checksum += escaped

			actual := escaped ^ escXOR
			body = append(body, actual)
			prev = actual
			havePrev = true

			continue
		}

		if b == escStar && c.isClient {
			repeatByte, err := c.r.ReadByte()
			if err != nil {
				return 0, nil, ioError(err)
			}

			checksum += escStar
			checksum += repeatByte

			if havePrev {
				// repeatByte-29 is the TOTAL number of times the
				// preceding byte occurs, including the one copy already
				// appended to body by the ordinary path below — so only
				// count-1 further copies are appended here.
				total := int(repeatByte) - 29
				for i := 1; i < total; i++ {
					body = append(body, prev)
				}
			}
			// Successive '*' without an intervening ordinary byte is
			// malformed; treat the run as having no prior context.
			havePrev = false

			continue
		}

		body = append(body, b)
		checksum += b
		prev = b
		havePrev = true
	}

	c1, err := c.r.ReadByte()
	if err != nil {
		return 0, nil, ioError(err)
	}

	c2, err := c.r.ReadByte()
	if err != nil {
		return 0, nil, ioError(err)
	}

	if !c.acking {
		return kind, body, nil
	}

	transmitted, ok := hex.DecodePair(c1, c2)
	if !ok {
		// Synthesize a value that cannot match so the mismatch branch is
		// taken below.
		transmitted = ^checksum
	}

	if transmitted == checksum {
		if kind == proto.Normal {
			if _, err := c.w.Write([]byte{'+'}); err != nil {
				return 0, nil, ioError(err)
			}

			if err := c.w.Flush(); err != nil {
				return 0, nil, ioError(err)
			}
		}

		return kind, body, nil
	}

	if kind == proto.Normal {
		if _, err := c.w.Write([]byte{'-'}); err != nil {
			return 0, nil, ioError(err)
		}

		if err := c.w.Flush(); err != nil {
			return 0, nil, ioError(err)
		}
	}

	return 0, nil, ErrInvalidChecksum
}

// Fprintf is a convenience wrapper matching the original library's habit
// of writing packet bodies with format strings (e.g. "m%x,%x" for a memory
// read). It writes through Connection.Write, so the formatted bytes
// participate in the checksum like any other body write.
func Fprintf(c *Connection, format string, args ...interface{}) error {
	_, err := fmt.Fprintf(c, format, args...)

	return err
}
