package featurever

import (
	"testing"

	"github.com/riftlabs/gorsp/proto"
)

func TestNegotiateSatisfied(t *testing.T) {
	features := map[string]proto.SupportedFeature{
		"vendor-foo-version": {Name: "vendor-foo-version", Kind: proto.FeatureValued, Value: "1.4.2"},
	}

	ok, err := Negotiate(features, "vendor-foo-version", ">=1.0.0")
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if !ok {
		t.Error("expected constraint to be satisfied")
	}
}

func TestNegotiateTooOld(t *testing.T) {
	features := map[string]proto.SupportedFeature{
		"vendor-foo-version": {Name: "vendor-foo-version", Kind: proto.FeatureValued, Value: "0.9.0"},
	}

	ok, err := Negotiate(features, "vendor-foo-version", ">=1.0.0")
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if ok {
		t.Error("expected constraint to fail for an older version")
	}
}

func TestNegotiateAbsent(t *testing.T) {
	ok, err := Negotiate(map[string]proto.SupportedFeature{}, "vendor-foo-version", ">=1.0.0")
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if ok {
		t.Error("expected missing feature to report false")
	}
}

func TestNegotiateNotVersionShaped(t *testing.T) {
	features := map[string]proto.SupportedFeature{
		"qXfer:features:read": {Name: "qXfer:features:read", Kind: proto.FeatureEnabled},
	}

	ok, err := Negotiate(features, "qXfer:features:read", ">=1.0.0")
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if ok {
		t.Error("expected a non-valued feature to report false")
	}
}

func TestNegotiateBadConstraint(t *testing.T) {
	features := map[string]proto.SupportedFeature{
		"vendor-foo-version": {Name: "vendor-foo-version", Kind: proto.FeatureValued, Value: "1.4.2"},
	}

	if _, err := Negotiate(features, "vendor-foo-version", "not-a-constraint!!"); err == nil {
		t.Error("expected an error for a malformed constraint")
	}
}
