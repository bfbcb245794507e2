package proto

import (
	"bytes"

	"github.com/riftlabs/gorsp/hex"
)

// ParseHexNumber decodes one or more byte-pairs of hex digits, folded
// big-endian into a uint64 (acc = acc*256 + byte). Unlike hex.Decode, it
// operates on whole bytes rather than nibbles, for RSP fields that are
// always an even count of hex digits; an odd length fails.
func ParseHexNumber(b []byte) (uint64, bool) {
	if len(b) == 0 || len(b)%2 != 0 {
		return 0, false
	}

	var acc uint64

	for i := 0; i < len(b); i += 2 {
		v, ok := hex.DecodePair(b[i], b[i+1])
		if !ok {
			return 0, false
		}

		acc = acc*256 + uint64(v)
	}

	return acc, true
}

// ParseError matches "Exx" where xx is a two-digit hex error code.
func ParseError(b []byte) (byte, bool) {
	if len(b) != 3 || b[0] != 'E' {
		return 0, false
	}

	return hex.DecodePair(b[1], b[2])
}

// ParseOK reports whether b is the literal reply "OK".
func ParseOK(b []byte) bool { return bytes.Equal(b, []byte("OK")) }

// ParseHexData decodes b as a whole-packet sequence of hex-digit pairs
// into the raw bytes they represent. It fails on an empty or odd-length
// input.
func ParseHexData(b []byte) ([]byte, bool) {
	if len(b) == 0 || len(b)%2 != 0 {
		return nil, false
	}

	out := make([]byte, 0, len(b)/2)

	for i := 0; i < len(b); i += 2 {
		v, ok := hex.DecodePair(b[i], b[i+1])
		if !ok {
			return nil, false
		}

		out = append(out, v)
	}

	return out, true
}

// SimpleReplyKind distinguishes the three forms a short acknowledgment
// reply can take.
type SimpleReplyKind uint8

const (
	SimpleOK SimpleReplyKind = iota
	SimpleError
	SimpleUnsupported
)

// SimpleReply is the parse of a short command reply: "OK", "Exx", or
// empty (meaning the command is unsupported by the peer).
type SimpleReply struct {
	Kind SimpleReplyKind
	Code byte
}

// ParseSimpleReply parses the three-way OK/error/unsupported reply shared
// by most RSP commands that don't return data of their own.
func ParseSimpleReply(b []byte) (SimpleReply, bool) {
	if ParseOK(b) {
		return SimpleReply{Kind: SimpleOK}, true
	}

	if code, ok := ParseError(b); ok {
		return SimpleReply{Kind: SimpleError, Code: code}, true
	}

	if len(b) == 0 {
		return SimpleReply{Kind: SimpleUnsupported}, true
	}

	return SimpleReply{}, false
}

// ParseThreadIdElement parses one component of a thread-id: the literal
// "0" (Any), the literal "-1" (All), or a hex number (Specific).
func ParseThreadIdElement(b []byte) (Id, bool) {
	switch string(b) {
	case "0":
		return Any(), true
	case "-1":
		return All(), true
	}

	n, ok := hex.Decode(b)
	if !ok || n == 0 || n > 0xffffffff {
		return Id{}, false
	}

	return Specific(uint32(n)), true
}

// ParseThreadId parses either a bare thread-id element (whose pid becomes
// the element and whose tid defaults to Any) or the multiprocess form
// "p<pid-elt>.<tid-elt>".
func ParseThreadId(b []byte) (ProcessId, bool) {
	if len(b) > 0 && b[0] == 'p' {
		rest := b[1:]

		dot := bytes.IndexByte(rest, '.')
		if dot < 0 {
			return ProcessId{}, false
		}

		pid, ok := ParseThreadIdElement(rest[:dot])
		if !ok {
			return ProcessId{}, false
		}

		tid, ok := ParseThreadIdElement(rest[dot+1:])
		if !ok {
			return ProcessId{}, false
		}

		return ProcessId{Pid: pid, Tid: tid}, true
	}

	elt, ok := ParseThreadIdElement(b)
	if !ok {
		return ProcessId{}, false
	}

	return ProcessId{Pid: elt, Tid: Any()}, true
}

// ParseStopSignal matches "Sxx", the terse stop-reply form.
func ParseStopSignal(b []byte) (byte, bool) {
	if len(b) != 3 || b[0] != 'S' {
		return 0, false
	}

	return hex.DecodePair(b[1], b[2])
}

// ParseStopSignalFull matches the "T" stop-reply: a two-digit hex signal
// directly followed by zero or more "key:value" clauses separated by ';'
// (there is no ';' between the signal and the first clause). Each clause
// is parsed into a StopElement; a key the parser doesn't recognize becomes
// an UnknownValue rather than failing the whole parse.
func ParseStopSignalFull(b []byte) (signal byte, elements []StopElement, ok bool) {
	if len(b) < 3 || b[0] != 'T' {
		return 0, nil, false
	}

	sig, valid := hex.DecodePair(b[1], b[2])
	if !valid {
		return 0, nil, false
	}

	rest := b[3:]
	if len(rest) == 0 {
		return sig, nil, true
	}

	var elems []StopElement

	for _, part := range bytes.Split(rest, []byte{';'}) {
		if len(part) == 0 {
			continue
		}

		el, ok := parseStopElement(part)
		if !ok {
			return 0, nil, false
		}

		elems = append(elems, el)
	}

	return sig, elems, true
}

func parseStopElement(part []byte) (StopElement, bool) {
	idx := bytes.IndexByte(part, ':')
	if idx < 0 {
		return nil, false
	}

	key := part[:idx]
	val := part[idx+1:]

	if len(key) == 2 {
		if regno, ok := hex.DecodePair(key[0], key[1]); ok {
			data, ok := ParseHexData(val)
			if !ok {
				return nil, false
			}

			return RegisterValue{Regno: regno, Data: data}, true
		}
	}

	switch string(key) {
	case "thread":
		id, ok := ParseThreadId(val)
		if !ok {
			return nil, false
		}

		return ThreadValue{ProcessId: id}, true

	case "core":
		n, ok := hex.Decode(val)
		if !ok {
			return nil, false
		}

		return CoreValue{Core: n}, true

	case "watch":
		n, ok := hex.Decode(val)
		if !ok {
			return nil, false
		}

		return WatchValue{Addr: n}, true

	case "awatch":
		n, ok := hex.Decode(val)
		if !ok {
			return nil, false
		}

		return AWatchValue{Addr: n}, true

	case "rwatch":
		n, ok := hex.Decode(val)
		if !ok {
			return nil, false
		}

		return RWatchValue{Addr: n}, true

	case "syscall_entry":
		n, ok := hex.Decode(val)
		if !ok {
			return nil, false
		}

		return SyscallEntryValue{Number: n}, true

	case "syscall_return":
		n, ok := hex.Decode(val)
		if !ok {
			return nil, false
		}

		return SyscallReturnValue{Number: n}, true

	case "library":
		return LibraryChangeValue{}, true

	case "replaylog":
		switch string(val) {
		case "begin":
			return ReplayLogValue{Begin: true}, true
		case "end":
			return ReplayLogValue{Begin: false}, true
		default:
			return nil, false
		}

	case "swbreak":
		return SoftwareBreakValue{}, true

	case "hwbreak":
		return HardwareBreakValue{}, true

	case "fork":
		id, ok := ParseThreadId(val)
		if !ok {
			return nil, false
		}

		return ForkValue{ProcessId: id}, true

	case "vfork":
		id, ok := ParseThreadId(val)
		if !ok {
			return nil, false
		}

		return VForkValue{ProcessId: id}, true

	case "vforkdone":
		return VForkDoneValue{}, true

	case "exec":
		data, ok := ParseHexData(val)
		if !ok {
			return nil, false
		}

		return ExecValue{Path: string(data)}, true

	case "create":
		return CreateValue{}, true

	default:
		return UnknownValue{Key: string(key), Data: append([]byte(nil), val...)}, true
	}
}

// ParseStopExit matches the "W" exit-status reply, with an optional
// trailing ";process:<hex-pid>" in multiprocess mode.
func ParseStopExit(b []byte) (code byte, pid *ProcessId, ok bool) {
	if len(b) < 3 || b[0] != 'W' {
		return 0, nil, false
	}

	c, valid := hex.DecodePair(b[1], b[2])
	if !valid {
		return 0, nil, false
	}

	rest := b[3:]
	if len(rest) == 0 {
		return c, nil, true
	}

	const prefix = ";process:"
	if !bytes.HasPrefix(rest, []byte(prefix)) {
		return 0, nil, false
	}

	n, ok2 := hex.Decode(rest[len(prefix):])
	if !ok2 || n == 0 || n > 0xffffffff {
		return 0, nil, false
	}

	p := ProcessId{Pid: Specific(uint32(n)), Tid: Any()}

	return c, &p, true
}

// ParseStopExitSignal matches the "X" terminated-by-signal reply. The
// signal-number field is arbitrary-length hex, not fixed at two digits
// despite some documentation claiming otherwise — this parser follows the
// wire behavior, not the doc.
func ParseStopExitSignal(b []byte) (code uint64, pid *ProcessId, ok bool) {
	if len(b) < 2 || b[0] != 'X' {
		return 0, nil, false
	}

	rest := b[1:]

	const prefix = ";process:"

	hexPart := rest

	var procPart []byte

	hasProc := false

	if idx := bytes.Index(rest, []byte(prefix)); idx >= 0 {
		hexPart = rest[:idx]
		procPart = rest[idx+len(prefix):]
		hasProc = true
	}

	n, ok2 := hex.Decode(hexPart)
	if !ok2 {
		return 0, nil, false
	}

	if !hasProc {
		return n, nil, true
	}

	pn, ok3 := hex.Decode(procPart)
	if !ok3 || pn == 0 || pn > 0xffffffff {
		return 0, nil, false
	}

	p := ProcessId{Pid: Specific(uint32(pn)), Tid: Any()}

	return n, &p, true
}

// ParseStopThreadExit matches the "w" per-thread-exit reply:
// "w<hex-code>;<hex-tid>".
func ParseStopThreadExit(b []byte) (code uint64, tid uint64, ok bool) {
	if len(b) < 2 || b[0] != 'w' {
		return 0, 0, false
	}

	rest := b[1:]

	semi := bytes.IndexByte(rest, ';')
	if semi < 0 {
		return 0, 0, false
	}

	c, ok1 := hex.Decode(rest[:semi])
	t, ok2 := hex.Decode(rest[semi+1:])

	if !ok1 || !ok2 {
		return 0, 0, false
	}

	return c, t, true
}

// ParseInferiorOutput matches "O<hex-data>", the inferior's stdout/stderr
// forwarded as a stop-adjacent reply.
func ParseInferiorOutput(b []byte) ([]byte, bool) {
	if len(b) < 1 || b[0] != 'O' {
		return nil, false
	}

	return ParseHexData(b[1:])
}

// ParseQcReply matches "QC<thread-id>", the current-thread query reply.
func ParseQcReply(b []byte) (ProcessId, bool) {
	const prefix = "QC"
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return ProcessId{}, false
	}

	return ParseThreadId(b[len(prefix):])
}

// ParseThreadIdList parses a comma-separated list of thread-ids.
func ParseThreadIdList(b []byte) ([]ProcessId, bool) {
	if len(b) == 0 {
		return nil, false
	}

	parts := bytes.Split(b, []byte{','})
	ids := make([]ProcessId, 0, len(parts))

	for _, p := range parts {
		id, ok := ParseThreadId(p)
		if !ok {
			return nil, false
		}

		ids = append(ids, id)
	}

	return ids, true
}

// ThreadInfoReply is the parse of one page of a qfThreadInfo/qsThreadInfo
// reply: either the end-of-list marker or a page of thread-ids.
type ThreadInfoReply struct {
	Done bool
	Ids  []ProcessId
}

// ParseThreadInfoReply matches "l" (end of list) or a thread-id list
// (another page).
func ParseThreadInfoReply(b []byte) (ThreadInfoReply, bool) {
	if string(b) == "l" {
		return ThreadInfoReply{Done: true}, true
	}

	ids, ok := ParseThreadIdList(b)
	if !ok {
		return ThreadInfoReply{}, false
	}

	return ThreadInfoReply{Ids: ids}, true
}

// ParseQSymbol matches the qSymbol handshake reply: "OK" (no further
// symbol lookup needed) or "qSymbol:<hex-name>" (the peer wants the
// address of the named symbol).
func ParseQSymbol(b []byte) (name []byte, present bool, ok bool) {
	if ParseOK(b) {
		return nil, false, true
	}

	const prefix = "qSymbol:"
	if bytes.HasPrefix(b, []byte(prefix)) {
		data, valid := ParseHexData(b[len(prefix):])
		if !valid {
			return nil, false, false
		}

		return data, true, true
	}

	return nil, false, false
}

// MemoryReplyKind distinguishes the three forms a memory-read reply can
// take.
type MemoryReplyKind uint8

const (
	MemoryData MemoryReplyKind = iota
	MemoryError
	MemoryUnsupported
)

// MemoryReply is the parse of an "m" command's reply.
type MemoryReply struct {
	Kind MemoryReplyKind
	Code byte
	Data []byte
}

// ParseMemory parses a memory-read reply: an error packet, hex-encoded
// data, or an empty body meaning the command is unsupported.
func ParseMemory(b []byte) (MemoryReply, bool) {
	if len(b) == 0 {
		return MemoryReply{Kind: MemoryUnsupported}, true
	}

	if code, ok := ParseError(b); ok {
		return MemoryReply{Kind: MemoryError, Code: code}, true
	}

	data, ok := ParseHexData(b)
	if !ok {
		return MemoryReply{}, false
	}

	return MemoryReply{Kind: MemoryData, Data: data}, true
}
