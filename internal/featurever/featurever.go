// Package featurever resolves version-shaped qSupported feature values
// against semver constraints, the same way a package resolver gates a
// dependency pick on a *semver.Constraints. RSP vendor extensions
// sometimes advertise themselves as
// "vendor-foo-version=1.4.2" rather than a bare "+"/"-"/"?" suffix; this
// package is what lets client code gate optional behavior on that value
// without hand-rolling dotted-version comparison.
package featurever

import (
	"github.com/Masterminds/semver/v3"

	"github.com/riftlabs/gorsp/proto"
)

// Negotiate reports whether the named feature is present, version-shaped,
// and satisfies constraint. A missing feature or a value that isn't a
// valid semver is reported as (false, nil) rather than an error — most
// callers treat "feature absent" and "feature too old" identically, as a
// reason to skip the optional behavior, not as a fault.
func Negotiate(features map[string]proto.SupportedFeature, name, constraint string) (bool, error) {
	f, ok := features[name]
	if !ok || f.Kind != proto.FeatureValued {
		return false, nil
	}

	v, err := semver.NewVersion(f.Value)
	if err != nil {
		return false, nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, err
	}

	return c.Check(v), nil
}
