package client

import "github.com/riftlabs/gorsp/internal/featurever"

// RequireFeature gates an optional piece of client behavior on a
// version-shaped feature the peer advertised in its last QuerySupported
// reply (e.g. refusing qXfer memory-map requests against a server below a
// minimum advertised version). Call QuerySupported first; RequireFeature
// treats a never-queried feature set as "nothing satisfies the
// constraint" rather than querying implicitly, so callers control when
// the round trip happens.
func (c *Client) RequireFeature(name, constraint string) (bool, error) {
	return featurever.Negotiate(c.state.Supported, name, constraint)
}
