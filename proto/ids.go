// Package proto implements the RSP reply grammar: parsing packet bodies
// (once the framing layer has stripped delimiters and checksum) into typed
// values, plus the small set of value types — Id, ProcessId, PacketType,
// StopElement — that those parses produce and that the framing and
// client layers also need to serialize.
package proto

import "fmt"

// Id distinguishes the three meanings a process or thread identifier can
// have on the wire.
type Id struct {
	kind    idKind
	specific uint32
}

type idKind uint8

const (
	idSpecific idKind = iota
	idAll
	idAny
)

// Specific returns an Id naming a concrete process or thread. n must be a
// positive 32-bit value; 0 and the all-bits-set "-1" encoding are reserved
// for Any and All respectively and are rejected here.
func Specific(n uint32) Id {
	if n == 0 || n == 0xffffffff {
		panic(fmt.Sprintf("proto: Specific(%d): 0 and -1 are reserved for Any/All", n))
	}

	return Id{kind: idSpecific, specific: n}
}

// All is the wildcard "all processes/threads" id, serialized as -1.
func All() Id { return Id{kind: idAll} }

// Any is the wildcard "any process/thread" id, serialized as 0.
func Any() Id { return Id{kind: idAny} }

// IsSpecific reports whether id names a concrete process/thread, returning
// its value.
func (id Id) IsSpecific() (uint32, bool) {
	if id.kind == idSpecific {
		return id.specific, true
	}

	return 0, false
}

// IsAll reports whether id is the wildcard "all" form.
func (id Id) IsAll() bool { return id.kind == idAll }

// IsAny reports whether id is the wildcard "any" form.
func (id Id) IsAny() bool { return id.kind == idAny }

func (id Id) String() string {
	switch id.kind {
	case idSpecific:
		return fmt.Sprintf("%d", id.specific)
	case idAll:
		return "all"
	default:
		return "any"
	}
}

// ProcessId is an RSP thread-id: a (pid, tid) pair. Equality is structural
// (it is a plain comparable value type).
type ProcessId struct {
	Pid Id
	Tid Id
}

// NewProcessId builds a ProcessId from raw positive integers. pid must be
// greater than zero. An omitted tid (nil) defaults to Any.
func NewProcessId(pid uint32, tid *uint32) ProcessId {
	if pid == 0 {
		panic("proto: NewProcessId: pid must be greater than zero")
	}

	p := ProcessId{Pid: Specific(pid), Tid: Any()}
	if tid != nil {
		if *tid == 0 {
			panic("proto: NewProcessId: tid must be greater than zero")
		}

		p.Tid = Specific(*tid)
	}

	return p
}

// PacketType distinguishes a Normal ('$') packet from a Notification ('%').
type PacketType uint8

const (
	// Normal packets are acknowledged (while acking is enabled) and carry
	// ordinary request/reply traffic.
	Normal PacketType = iota
	// Notification packets are never acknowledged and may interleave with
	// a pending reply.
	Notification
)

func (t PacketType) String() string {
	if t == Notification {
		return "notification"
	}

	return "normal"
}
