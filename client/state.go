// Package client implements the RSP client dispatch layer: one method per
// command, composing the wire framing writes, a grammar parse of the
// reply, and a small stateful negotiation (ack mode, non-stop mode, the
// current thread, and the feature set advertised to the peer).
package client

import "github.com/riftlabs/gorsp/proto"

// FeatureRequestKind selects which of the four qSupported request forms a
// FeatureRequest encodes.
type FeatureRequestKind uint8

const (
	FeatureRequestEnable FeatureRequestKind = iota
	FeatureRequestDisable
	FeatureRequestQuery
	FeatureRequestValue
)

// FeatureRequest is one token this client will offer in its qSupported
// request.
type FeatureRequest struct {
	Name  string
	Kind  FeatureRequestKind
	Value string
}

func (f FeatureRequest) encode() string {
	switch f.Kind {
	case FeatureRequestEnable:
		return f.Name + "+"
	case FeatureRequestDisable:
		return f.Name + "-"
	case FeatureRequestQuery:
		return f.Name + "?"
	default:
		return f.Name + "=" + f.Value
	}
}

// defaultFeatures is the feature set gorsp advertises by default; callers
// may replace State.Features before calling QuerySupported.
func defaultFeatures() []FeatureRequest {
	return []FeatureRequest{
		{Name: "multiprocess", Kind: FeatureRequestEnable},
		{Name: "swbreak", Kind: FeatureRequestEnable},
		{Name: "hwbreak", Kind: FeatureRequestEnable},
		{Name: "QStartNoAckMode", Kind: FeatureRequestEnable},
		{Name: "QNonStop", Kind: FeatureRequestEnable},
		{Name: "qXfer:features:read", Kind: FeatureRequestEnable},
	}
}

// State is the negotiation state layered on top of a wire.Connection:
// non-stop mode, whether acking is still required, the thread the next
// thread-scoped command applies to, the features this client offers, and
// the features the peer last reported supporting.
type State struct {
	NonStop       bool
	RequireAcks   bool
	CurrentThread proto.ProcessId
	Features      []FeatureRequest
	Supported     map[string]proto.SupportedFeature
}

// NewState builds the initial state: non-stop off, the current thread set
// to "any process, any thread" (matched by no real reply until Hg is
// issued), and the default feature set.
func NewState(requireAcks bool) *State {
	return &State{
		RequireAcks:   requireAcks,
		CurrentThread: proto.ProcessId{Pid: proto.Any(), Tid: proto.Any()},
		Features:      defaultFeatures(),
	}
}
