package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/riftlabs/gorsp/proto"
	"github.com/riftlabs/gorsp/wire"
)

// NotificationHandler is invoked with the body of each '%'-framed
// notification seen while waiting for a reply. A non-nil return aborts
// the command that was waiting for a reply.
type NotificationHandler func(body []byte) error

// Client is the RSP command façade: one method per command, delegating to
// a wire.Connection for framing and to the proto package for parsing.
type Client struct {
	conn    *wire.Connection
	state   *State
	onNotif NotificationHandler
}

// New wraps conn in a Client with the default feature set. requireAcks
// controls whether Startup will attempt to negotiate no-ack mode.
func New(conn *wire.Connection, requireAcks bool) *Client {
	return &Client{conn: conn, state: NewState(requireAcks)}
}

// State exposes the client's negotiation state for inspection (current
// thread, non-stop flag, last-seen feature set).
func (c *Client) State() *State { return c.state }

// SetNotificationHandler installs the callback invoked for each
// notification packet seen while reading a reply.
func (c *Client) SetNotificationHandler(h NotificationHandler) { c.onNotif = h }

// readReply implements the client-side read loop from spec.md §4.2: it
// discards checksum-invalid reads (the peer will resend), dispatches
// notifications to the installed handler without returning from the
// call, and returns the body of the first Normal packet seen.
func (c *Client) readReply() ([]byte, error) {
	for {
		kind, body, err := c.conn.ReadPacket()
		if err != nil {
			if errors.Is(err, wire.ErrInvalidChecksum) {
				continue
			}

			return nil, err
		}

		if kind == proto.Notification {
			if c.onNotif != nil {
				if err := c.onNotif(body); err != nil {
					return nil, err
				}
			}

			continue
		}

		return body, nil
	}
}

// command opens a packet, writes format%args as its body, closes it, and
// returns the reply body. It is the single place a dispatch method
// touches framing directly for text-only commands.
func (c *Client) command(format string, args ...interface{}) ([]byte, error) {
	if err := c.conn.StartPacket(); err != nil {
		return nil, err
	}

	if err := wire.Fprintf(c.conn, format, args...); err != nil {
		return nil, err
	}

	if err := c.conn.FinishPacket(); err != nil {
		return nil, err
	}

	return c.readReply()
}

// commandWithThreadID is like command but appends a thread-id via
// Connection.WriteThreadID (which always emits the multiprocess wire
// form), for commands like "Hg" that take a thread-id argument.
func (c *Client) commandWithThreadID(prefix string, id proto.ProcessId) ([]byte, error) {
	if err := c.conn.StartPacket(); err != nil {
		return nil, err
	}

	if _, err := c.conn.Write([]byte(prefix)); err != nil {
		return nil, err
	}

	if err := c.conn.WriteThreadID(id); err != nil {
		return nil, err
	}

	if err := c.conn.FinishPacket(); err != nil {
		return nil, err
	}

	return c.readReply()
}

func simpleCommand(c *Client, format string, args ...interface{}) error {
	body, err := c.command(format, args...)
	if err != nil {
		return err
	}

	reply, ok := proto.ParseSimpleReply(body)
	if !ok {
		return ErrUnrecognized
	}

	return simpleReplyToError(reply)
}

// Startup negotiates no-ack mode when the client was constructed with
// requireAcks=false: it sends QStartNoAckMode under the old ack rules and,
// only once the OK reply is parsed, disables acking on the underlying
// Connection. If requireAcks is true, Startup is a no-op.
func (c *Client) Startup() error {
	if c.state.RequireAcks {
		return nil
	}

	body, err := c.command("QStartNoAckMode")
	if err != nil {
		return err
	}

	reply, ok := proto.ParseSimpleReply(body)
	if !ok {
		return ErrUnrecognized
	}

	if err := simpleReplyToError(reply); err != nil {
		return err
	}

	c.conn.DisableAcking()

	return nil
}

// QuerySupported sends qSupported with this client's advertised feature
// set and returns the peer's parsed response. The result is also cached
// on State().Supported for featurever.Negotiate to consult.
func (c *Client) QuerySupported() (map[string]proto.SupportedFeature, error) {
	tokens := make([]string, len(c.state.Features))
	for i, f := range c.state.Features {
		tokens[i] = f.encode()
	}

	body, err := c.command("qSupported:%s", strings.Join(tokens, ";"))
	if err != nil {
		return nil, err
	}

	features, ok := proto.ParseSupportedFeatures(body)
	if !ok {
		return nil, ErrUnrecognized
	}

	c.state.Supported = features

	return features, nil
}

// SetNonStop issues QNonStop:1 or QNonStop:0 and, on success, updates
// State().NonStop.
func (c *Client) SetNonStop(enable bool) error {
	v := 0
	if enable {
		v = 1
	}

	body, err := c.command("QNonStop:%d", v)
	if err != nil {
		return err
	}

	reply, ok := proto.ParseSimpleReply(body)
	if !ok {
		return ErrUnrecognized
	}

	if err := simpleReplyToError(reply); err != nil {
		return err
	}

	c.state.NonStop = enable

	return nil
}

// maybeSetThread issues "Hg<id>" only when id differs from the cached
// current thread, per spec.md §4.4.
func (c *Client) maybeSetThread(id proto.ProcessId) error {
	if id == c.state.CurrentThread {
		return nil
	}

	body, err := c.commandWithThreadID("Hg", id)
	if err != nil {
		return err
	}

	reply, ok := proto.ParseSimpleReply(body)
	if !ok {
		return ErrUnrecognized
	}

	if err := simpleReplyToError(reply); err != nil {
		return err
	}

	c.state.CurrentThread = id

	return nil
}

// BreakpointKind is the single digit following Z/z identifying the kind
// of breakpoint or watchpoint.
type BreakpointKind uint8

const (
	SoftwareBreakpoint BreakpointKind = 0
	HardwareBreakpoint BreakpointKind = 1
	WriteWatchpoint    BreakpointKind = 2
	ReadWatchpoint     BreakpointKind = 3
	AccessWatchpoint   BreakpointKind = 4
)

func (c *Client) breakpointOp(op byte, kind BreakpointKind, addr, size uint64) error {
	return simpleCommand(c, "%c%d,%x,%x", op, kind, addr, size)
}

// SetBreakpoint issues "Z<kind>,<addr>,<size>". size is 0 for breakpoint
// kinds that don't use it.
func (c *Client) SetBreakpoint(kind BreakpointKind, addr, size uint64) error {
	return c.breakpointOp('Z', kind, addr, size)
}

// ClearBreakpoint issues "z<kind>,<addr>,<size>".
func (c *Client) ClearBreakpoint(kind BreakpointKind, addr, size uint64) error {
	return c.breakpointOp('z', kind, addr, size)
}

func sortedSignalHex(signals []byte) string {
	sorted := append([]byte(nil), signals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, s := range sorted {
		parts[i] = fmt.Sprintf("%x", s)
	}

	return strings.Join(parts, ";")
}

// SetPassSignals issues "QPassSignals:<hex>;<hex>;..." with the given
// signal numbers sorted ascending.
func (c *Client) SetPassSignals(signals []byte) error {
	return simpleCommand(c, "QPassSignals:%s", sortedSignalHex(signals))
}

// SetProgramSignals issues "QProgramSignals:<hex>;<hex>;..." with the
// given signal numbers sorted ascending.
func (c *Client) SetProgramSignals(signals []byte) error {
	return simpleCommand(c, "QProgramSignals:%s", sortedSignalHex(signals))
}

// CatchSyscalls issues "QCatchSyscalls:0" (stop catching) when numbers is
// nil, or "QCatchSyscalls:1;<hex>;..." to catch exactly the listed
// syscall numbers.
func (c *Client) CatchSyscalls(numbers []uint64) error {
	if numbers == nil {
		return simpleCommand(c, "QCatchSyscalls:0")
	}

	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = fmt.Sprintf("%x", n)
	}

	return simpleCommand(c, "QCatchSyscalls:1;%s", strings.Join(parts, ";"))
}

// ResolvedSymbol is an address/name pair this client offers in answer to
// a prior qSymbol request from the peer.
type ResolvedSymbol struct {
	Addr uint64
	Name []byte
}

// QSymbol drives one step of the qSymbol handshake: pass nil to start the
// handshake ("qSymbol::"), or a ResolvedSymbol to answer a previous
// request ("qSymbol:<addr>:<name>"). The return value is the name of the
// next symbol the peer wants resolved, or (nil, false) if the peer is
// satisfied.
func (c *Client) QSymbol(offer *ResolvedSymbol) (requested []byte, wantsMore bool, err error) {
	var body []byte

	if offer == nil {
		body, err = c.command("qSymbol::")
	} else {
		body, err = c.command("qSymbol:%x:%s", offer.Addr, offer.Name)
	}

	if err != nil {
		return nil, false, err
	}

	name, present, ok := proto.ParseQSymbol(body)
	if !ok {
		return nil, false, ErrUnrecognized
	}

	return name, present, nil
}

// ReadMemory issues "m<addr>,<len>" and returns the raw bytes read.
func (c *Client) ReadMemory(addr, length uint64) ([]byte, error) {
	body, err := c.command("m%x,%x", addr, length)
	if err != nil {
		return nil, err
	}

	reply, ok := proto.ParseMemory(body)
	if !ok {
		return nil, ErrUnrecognized
	}

	switch reply.Kind {
	case proto.MemoryData:
		return reply.Data, nil
	case proto.MemoryError:
		return nil, &ErrorPacket{Code: reply.Code}
	default:
		return nil, ErrUnsupported
	}
}

// WriteMemory issues "M<addr>,<len>:<hex-data>".
func (c *Client) WriteMemory(addr uint64, data []byte) error {
	if err := c.conn.StartPacket(); err != nil {
		return err
	}

	if err := wire.Fprintf(c.conn, "M%x,%x:", addr, len(data)); err != nil {
		return err
	}

	if err := c.conn.WriteHex(data); err != nil {
		return err
	}

	if err := c.conn.FinishPacket(); err != nil {
		return err
	}

	body, err := c.readReply()
	if err != nil {
		return err
	}

	reply, ok := proto.ParseSimpleReply(body)
	if !ok {
		return ErrUnrecognized
	}

	return simpleReplyToError(reply)
}

// ReadRegisters issues "g" for the given thread (setting it current
// first, if needed) and returns the raw register-file bytes.
func (c *Client) ReadRegisters(thread proto.ProcessId) ([]byte, error) {
	if err := c.maybeSetThread(thread); err != nil {
		return nil, err
	}

	body, err := c.command("g")
	if err != nil {
		return nil, err
	}

	data, ok := proto.ParseHexData(body)
	if !ok {
		return nil, ErrUnrecognized
	}

	return data, nil
}

// WriteRegisters issues "G<hex-data>" for the given thread.
func (c *Client) WriteRegisters(thread proto.ProcessId, data []byte) error {
	if err := c.maybeSetThread(thread); err != nil {
		return err
	}

	if err := c.conn.StartPacket(); err != nil {
		return err
	}

	if _, err := c.conn.Write([]byte{'G'}); err != nil {
		return err
	}

	if err := c.conn.WriteHex(data); err != nil {
		return err
	}

	if err := c.conn.FinishPacket(); err != nil {
		return err
	}

	body, err := c.readReply()
	if err != nil {
		return err
	}

	reply, ok := proto.ParseSimpleReply(body)
	if !ok {
		return ErrUnrecognized
	}

	return simpleReplyToError(reply)
}

// Interrupt sends the out-of-band 0x03 byte. Valid only when no packet is
// currently open.
func (c *Client) Interrupt() error {
	return c.conn.Interrupt()
}

// Continue issues "c" without waiting for the eventual stop reply; call
// WaitForStop to block for it.
func (c *Client) Continue() error {
	if err := c.conn.StartPacket(); err != nil {
		return err
	}

	if _, err := c.conn.Write([]byte{'c'}); err != nil {
		return err
	}

	return c.conn.FinishPacket()
}

// Step issues "s" (single-step) the same way Continue issues "c".
func (c *Client) Step() error {
	if err := c.conn.StartPacket(); err != nil {
		return err
	}

	if _, err := c.conn.Write([]byte{'s'}); err != nil {
		return err
	}

	return c.conn.FinishPacket()
}

// StopReply is the parsed result of whichever stop-reply form the peer
// sent after a Continue or Step.
type StopReply struct {
	Signal     byte
	Elements   []proto.StopElement
	ExitCode   *byte
	ExitSignal *uint64
	ExitPid    *proto.ProcessId
	Output     []byte
}

// WaitForStop blocks for the next Normal reply (dispatching any
// notifications seen along the way) and parses it as one of the stop-reply
// forms S, T, W, X, or O.
func (c *Client) WaitForStop() (StopReply, error) {
	body, err := c.readReply()
	if err != nil {
		return StopReply{}, err
	}

	if len(body) == 0 {
		return StopReply{}, ErrUnrecognized
	}

	switch body[0] {
	case 'S':
		sig, ok := proto.ParseStopSignal(body)
		if !ok {
			return StopReply{}, ErrUnrecognized
		}

		return StopReply{Signal: sig}, nil

	case 'T':
		sig, elems, ok := proto.ParseStopSignalFull(body)
		if !ok {
			return StopReply{}, ErrUnrecognized
		}

		return StopReply{Signal: sig, Elements: elems}, nil

	case 'W':
		code, pid, ok := proto.ParseStopExit(body)
		if !ok {
			return StopReply{}, ErrUnrecognized
		}

		return StopReply{ExitCode: &code, ExitPid: pid}, nil

	case 'X':
		sig, pid, ok := proto.ParseStopExitSignal(body)
		if !ok {
			return StopReply{}, ErrUnrecognized
		}

		return StopReply{ExitSignal: &sig, ExitPid: pid}, nil

	case 'O':
		out, ok := proto.ParseInferiorOutput(body)
		if !ok {
			return StopReply{}, ErrUnrecognized
		}

		return StopReply{Output: out}, nil

	default:
		return StopReply{}, ErrUnrecognized
	}
}
