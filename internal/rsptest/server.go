// Package rsptest is a minimal in-process RSP server used to drive
// client and transport tests end to end over a real wire.Connection,
// rather than hand-feeding literal packet strings. It is adapted from the
// teacher's gdbserver.Server dispatch loop, rewritten against this
// module's own wire/proto types so it negotiates ack mode and escaping
// the same way a real gdbserver/LLDB-server would.
//
// It is test-only: nothing outside _test.go files may import it.
package rsptest

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/riftlabs/gorsp/hex"
	"github.com/riftlabs/gorsp/proto"
	"github.com/riftlabs/gorsp/wire"
)

// Server is a fake RSP target: it owns the server side of a wire.Connection
// and answers a fixed, useful subset of commands out of an in-memory
// register file and address space.
type Server struct {
	conn *wire.Connection

	mu          sync.Mutex
	registers   []byte
	memory      map[uint64][]byte
	breakpoints map[string]bool
	nonStop     bool
	features    map[string]string
}

// New builds a Server over conn (a server-role wire.Connection — conn must
// have been constructed with isClient=false). regSize is the size in
// bytes of the fake register file "g"/"G" operate on.
func New(conn *wire.Connection, regSize int) *Server {
	return &Server{
		conn:        conn,
		registers:   make([]byte, regSize),
		memory:      make(map[uint64][]byte),
		breakpoints: make(map[string]bool),
		features:    make(map[string]string),
	}
}

// SetMemory seeds a byte range starting at addr, for ReadMemory tests.
func (s *Server) SetMemory(addr uint64, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory[addr] = append([]byte(nil), data...)
}

// Serve handles requests until the connection reports an error (typically
// the peer closing the pipe). It returns nil on clean EOF-like shutdown
// from the caller's perspective; tests normally run it in a goroutine and
// ignore the return once their scripted exchange has completed.
func (s *Server) Serve() error {
	for {
		kind, body, err := s.conn.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		if kind != proto.Normal {
			continue
		}

		reply, ok := s.dispatch(body)
		if !ok {
			reply = ""
		}

		if err := s.conn.FullPacket([]byte(reply)); err != nil {
			return err
		}
	}
}

func (s *Server) dispatch(body []byte) (string, bool) {
	cmd := string(body)

	switch {
	case cmd == "QStartNoAckMode":
		s.conn.DisableAcking()

		return "OK", true

	case strings.HasPrefix(cmd, "qSupported:"):
		return s.handleSupported(cmd[len("qSupported:"):]), true

	case strings.HasPrefix(cmd, "QNonStop:"):
		s.mu.Lock()
		s.nonStop = cmd[len("QNonStop:"):] == "1"
		s.mu.Unlock()

		return "OK", true

	case strings.HasPrefix(cmd, "Hg"):
		// Thread selection is accepted unconditionally; this harness has
		// only one thread of execution to offer.
		return "OK", true

	case cmd == "g":
		s.mu.Lock()
		defer s.mu.Unlock()

		return string(hex.EncodeBytes(s.registers)), true

	case strings.HasPrefix(cmd, "G"):
		data, ok := proto.ParseHexData([]byte(cmd[1:]))
		if !ok {
			return "", false
		}

		s.mu.Lock()
		s.registers = data
		s.mu.Unlock()

		return "OK", true

	case strings.HasPrefix(cmd, "m"):
		return s.handleReadMemory(cmd[1:])

	case strings.HasPrefix(cmd, "M"):
		return s.handleWriteMemory(cmd[1:])

	case strings.HasPrefix(cmd, "Z"), strings.HasPrefix(cmd, "z"):
		s.mu.Lock()
		defer s.mu.Unlock()

		if strings.HasPrefix(cmd, "Z") {
			s.breakpoints[cmd[1:]] = true
		} else {
			delete(s.breakpoints, cmd[1:])
		}

		return "OK", true

	case strings.HasPrefix(cmd, "QPassSignals:"), strings.HasPrefix(cmd, "QProgramSignals:"):
		return "OK", true

	case strings.HasPrefix(cmd, "QCatchSyscalls:"):
		return "OK", true

	case strings.HasPrefix(cmd, "qSymbol:"):
		return "OK", true

	case cmd == "c", strings.HasPrefix(cmd, "c"):
		return "S05", true

	case cmd == "s":
		return "S05", true

	default:
		return "", false
	}
}

func (s *Server) handleSupported(offered string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string

	for _, tok := range strings.Split(offered, ";") {
		if tok == "" {
			continue
		}

		name := tok[:len(tok)-1]
		names = append(names, name+"+")
	}

	names = append(names, "PacketSize=4000")

	return strings.Join(names, ";")
}

func (s *Server) handleReadMemory(rest string) (string, bool) {
	parts := strings.SplitN(rest, ",", 2)
	if len(parts) != 2 {
		return "", false
	}

	addr, ok := hex.Decode([]byte(parts[0]))
	if !ok {
		return "", false
	}

	length, ok := hex.Decode([]byte(parts[1]))
	if !ok {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.memory[addr]
	if !ok {
		return "E01", true
	}

	if uint64(len(data)) > length {
		data = data[:length]
	}

	return string(hex.EncodeBytes(data)), true
}

func (s *Server) handleWriteMemory(rest string) (string, bool) {
	head, hexData, ok := strings.Cut(rest, ":")
	if !ok {
		return "", false
	}

	parts := strings.SplitN(head, ",", 2)
	if len(parts) != 2 {
		return "", false
	}

	addr, ok := hex.Decode([]byte(parts[0]))
	if !ok {
		return "", false
	}

	data, ok := proto.ParseHexData([]byte(hexData))
	if !ok {
		return "", false
	}

	s.mu.Lock()
	s.memory[addr] = data
	s.mu.Unlock()

	return "OK", true
}

