package proto

import "testing"

func TestParseStopSignalFull(t *testing.T) {
	sig, elems, ok := ParseStopSignalFull([]byte("T05thread:p1.1;core:0;swbreak:"))
	if !ok {
		t.Fatal("parse failed")
	}

	if sig != 5 {
		t.Fatalf("signal = %d, want 5", sig)
	}

	if len(elems) != 3 {
		t.Fatalf("got %d elements, want 3: %#v", len(elems), elems)
	}

	thread, ok := elems[0].(ThreadValue)
	if !ok {
		t.Fatalf("elems[0] = %#v, want ThreadValue", elems[0])
	}

	pid, _ := thread.ProcessId.Pid.IsSpecific()
	tid, _ := thread.ProcessId.Tid.IsSpecific()

	if pid != 1 || tid != 1 {
		t.Fatalf("thread = (%d,%d), want (1,1)", pid, tid)
	}

	core, ok := elems[1].(CoreValue)
	if !ok || core.Core != 0 {
		t.Fatalf("elems[1] = %#v, want CoreValue{0}", elems[1])
	}

	if _, ok := elems[2].(SoftwareBreakValue); !ok {
		t.Fatalf("elems[2] = %#v, want SoftwareBreakValue", elems[2])
	}
}

func TestParseStopSignalFullNoElements(t *testing.T) {
	sig, elems, ok := ParseStopSignalFull([]byte("T00"))
	if !ok || sig != 0 || elems != nil {
		t.Fatalf("got (%d, %v, %v), want (0, nil, true)", sig, elems, ok)
	}
}

func TestParseStopSignalFullUnknownKey(t *testing.T) {
	_, elems, ok := ParseStopSignalFull([]byte("T05foobar:abcd;"))
	if !ok {
		t.Fatal("parse failed")
	}

	u, ok := elems[0].(UnknownValue)
	if !ok || u.Key != "foobar" || string(u.Data) != "abcd" {
		t.Fatalf("elems[0] = %#v, want UnknownValue{foobar, abcd}", elems[0])
	}
}

func TestParseSimpleReply(t *testing.T) {
	if r, ok := ParseSimpleReply([]byte("OK")); !ok || r.Kind != SimpleOK {
		t.Fatalf("OK: got %#v, %v", r, ok)
	}

	r, ok := ParseSimpleReply([]byte("E01"))
	if !ok || r.Kind != SimpleError || r.Code != 0x01 {
		t.Fatalf("E01: got %#v, %v", r, ok)
	}

	if r, ok := ParseSimpleReply(nil); !ok || r.Kind != SimpleUnsupported {
		t.Fatalf("empty: got %#v, %v", r, ok)
	}

	if _, ok := ParseSimpleReply([]byte("garbage")); ok {
		t.Fatal("expected garbage reply to fail parse")
	}
}

func TestParseErrorReply(t *testing.T) {
	code, ok := ParseError([]byte("E01"))
	if !ok || code != 0x01 {
		t.Fatalf("got (%d, %v), want (1, true)", code, ok)
	}
}

func TestParseThreadId(t *testing.T) {
	id, ok := ParseThreadId([]byte("p1f.2a"))
	if !ok {
		t.Fatal("parse failed")
	}

	pid, _ := id.Pid.IsSpecific()
	tid, _ := id.Tid.IsSpecific()

	if pid != 0x1f || tid != 0x2a {
		t.Fatalf("got (%x,%x), want (1f,2a)", pid, tid)
	}

	id, ok = ParseThreadId([]byte("-1"))
	if !ok || !id.Pid.IsAll() || !id.Tid.IsAny() {
		t.Fatalf("bare -1: got %#v, %v", id, ok)
	}

	id, ok = ParseThreadId([]byte("p-1.0"))
	if !ok || !id.Pid.IsAll() || !id.Tid.IsAny() {
		t.Fatalf("p-1.0: got %#v, %v", id, ok)
	}
}

func TestParseHexNumber(t *testing.T) {
	n, ok := ParseHexNumber([]byte("00ff"))
	if !ok || n != 255 {
		t.Fatalf("got (%d, %v), want (255, true)", n, ok)
	}

	if _, ok := ParseHexNumber([]byte("f")); ok {
		t.Fatal("odd-length input should fail")
	}
}

func TestParseStopExitWithProcess(t *testing.T) {
	code, pid, ok := ParseStopExit([]byte("W00;process:2a"))
	if !ok || code != 0 || pid == nil {
		t.Fatalf("got (%d, %v, %v)", code, pid, ok)
	}

	n, _ := pid.Pid.IsSpecific()
	if n != 0x2a {
		t.Fatalf("pid = %x, want 2a", n)
	}
}

func TestParseMemory(t *testing.T) {
	r, ok := ParseMemory([]byte("a1b2"))
	if !ok || r.Kind != MemoryData || string(r.Data) != "\xa1\xb2" {
		t.Fatalf("got %#v, %v", r, ok)
	}

	r, ok = ParseMemory([]byte("E01"))
	if !ok || r.Kind != MemoryError || r.Code != 1 {
		t.Fatalf("got %#v, %v", r, ok)
	}

	r, ok = ParseMemory(nil)
	if !ok || r.Kind != MemoryUnsupported {
		t.Fatalf("got %#v, %v", r, ok)
	}
}

func TestParseThreadInfoReply(t *testing.T) {
	r, ok := ParseThreadInfoReply([]byte("l"))
	if !ok || !r.Done {
		t.Fatalf("got %#v, %v", r, ok)
	}

	r, ok = ParseThreadInfoReply([]byte("1,2"))
	if !ok || r.Done || len(r.Ids) != 2 {
		t.Fatalf("got %#v, %v", r, ok)
	}
}

func TestParseQSymbol(t *testing.T) {
	name, present, ok := ParseQSymbol([]byte("OK"))
	if !ok || present || name != nil {
		t.Fatalf("got (%v,%v,%v)", name, present, ok)
	}

	name, present, ok = ParseQSymbol([]byte("qSymbol:6162"))
	if !ok || !present || string(name) != "ab" {
		t.Fatalf("got (%q,%v,%v)", name, present, ok)
	}
}
