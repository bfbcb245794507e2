package proto

// StopElement is one key:value clause of a T stop-reply. Each concrete
// type below is one case of the tagged union described by the grammar;
// UnknownValue is the catch-all for keys the parser doesn't recognize, so
// that a client built against an older feature set still degrades
// gracefully instead of failing the whole parse.
type StopElement interface {
	stopElement()
}

// RegisterValue is the "NN:hex" form: register number NN holds Data.
type RegisterValue struct {
	Regno byte
	Data  []byte
}

// ThreadValue is "thread:<id>".
type ThreadValue struct {
	ProcessId ProcessId
}

// CoreValue is "core:<hex>".
type CoreValue struct {
	Core uint64
}

// WatchValue is "watch:<hex>" — a write watchpoint hit at Addr.
type WatchValue struct {
	Addr uint64
}

// AWatchValue is "awatch:<hex>" — an access watchpoint hit at Addr.
type AWatchValue struct {
	Addr uint64
}

// RWatchValue is "rwatch:<hex>" — a read watchpoint hit at Addr.
type RWatchValue struct {
	Addr uint64
}

// SyscallEntryValue is "syscall_entry:<hex>".
type SyscallEntryValue struct {
	Number uint64
}

// SyscallReturnValue is "syscall_return:<hex>".
type SyscallReturnValue struct {
	Number uint64
}

// LibraryChangeValue is "library:" — the shared library list changed; the
// client is expected to re-fetch it separately.
type LibraryChangeValue struct{}

// ReplayLogValue is "replaylog:begin|end".
type ReplayLogValue struct {
	Begin bool
}

// SoftwareBreakValue is "swbreak:".
type SoftwareBreakValue struct{}

// HardwareBreakValue is "hwbreak:".
type HardwareBreakValue struct{}

// ForkValue is "fork:<id>" — the child created by a fork.
type ForkValue struct {
	ProcessId ProcessId
}

// VForkValue is "vfork:<id>".
type VForkValue struct {
	ProcessId ProcessId
}

// VForkDoneValue is "vforkdone:".
type VForkDoneValue struct{}

// ExecValue is "exec:<hex-path>".
type ExecValue struct {
	Path string
}

// CreateValue is "create:" — a new thread was created.
type CreateValue struct{}

// UnknownValue preserves an unrecognized key:value clause verbatim.
type UnknownValue struct {
	Key  string
	Data []byte
}

func (RegisterValue) stopElement()      {}
func (ThreadValue) stopElement()        {}
func (CoreValue) stopElement()          {}
func (WatchValue) stopElement()         {}
func (AWatchValue) stopElement()        {}
func (RWatchValue) stopElement()        {}
func (SyscallEntryValue) stopElement()  {}
func (SyscallReturnValue) stopElement() {}
func (LibraryChangeValue) stopElement() {}
func (ReplayLogValue) stopElement()     {}
func (SoftwareBreakValue) stopElement() {}
func (HardwareBreakValue) stopElement() {}
func (ForkValue) stopElement()          {}
func (VForkValue) stopElement()         {}
func (VForkDoneValue) stopElement()     {}
func (ExecValue) stopElement()          {}
func (CreateValue) stopElement()        {}
func (UnknownValue) stopElement()       {}
