// Package conformance cross-checks jct against an independent JSON
// reader/writer: the Cyberphone RFC 8785 (JCS) canonicalizer.
//
// jct's canonical form is not JCS (it pretty-prints, sorts keys by
// byte rather than UTF-16 code unit, and never decodes \u escapes), so
// these tests verify agreement where the two definitions coincide and
// pin the known divergences where they do not.
package conformance_test

import (
	"testing"

	cyberphone "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"github.com/google/go-cmp/cmp"

	"github.com/lattice-substrate/jct/jctparse"
	"github.com/lattice-substrate/jct/jctser"
	"github.com/lattice-substrate/jct/jctval"
)

func mustParse(t *testing.T, data []byte) *jctval.Value {
	t.Helper()
	v, _, err := jctparse.Parse(data)
	if err != nil {
		t.Fatalf("jct parse rejected %q: %v", data, err)
	}
	return v
}

// Inputs on which jct's compact form and JCS agree byte for byte:
// ASCII identifier keys (byte order and UTF-16 order coincide in
// ASCII), integral numbers, and strings without escapes. Every input is
// an object or array, since the JCS canonicalizer rejects a top-level
// scalar.
func TestCompactAgreesWithJCSOnCommonSubset(t *testing.T) {
	inputs := []string{
		`{}`,
		`[]`,
		`[null]`,
		`[true]`,
		`{"a":1,"b":true,"c":"x"}`,
		`{"b":2,"a":1}`,
		`{"outer":{"z":[1,2,3],"a":null},"list":[{"k":"v"}]}`,
		`[0,1,-1,42,9007199254740991]`,
		`{"nested":{"deep":{"deeper":false}}}`,
	}
	for _, in := range inputs {
		jcsOut, err := cyberphone.Transform([]byte(in))
		if err != nil {
			t.Fatalf("cyberphone rejected %q: %v", in, err)
		}
		ours, err := jctser.Compact(mustParse(t, []byte(in)))
		if err != nil {
			t.Fatalf("jct serialize %q: %v", in, err)
		}
		if diff := cmp.Diff(string(jcsOut), string(ours)); diff != "" {
			t.Errorf("divergence on %q (-jcs +jct):\n%s", in, diff)
		}
	}
}

// jct must accept everything the JCS canonicalizer emits, and parsing
// the canonical bytes must reproduce the structure of the input
// (vectors avoid \u escapes, which the two parsers treat differently).
func TestJCSOutputIsParseableAndStructurallyStable(t *testing.T) {
	inputs := []string{
		`{ "b" : 1 , "a" : { "y" : [ true , null ] } }`,
		`[1.5, 0.25, 100, "text with spaces"]`,
		`{"unicode":"héllo wörld","emoji":"😀"}`,
		`{"a":"tab\there","b":"line\nbreak"}`,
	}
	for _, in := range inputs {
		jcsOut, err := cyberphone.Transform([]byte(in))
		if err != nil {
			t.Fatalf("cyberphone rejected %q: %v", in, err)
		}
		fromInput := mustParse(t, []byte(in))
		fromCanonical := mustParse(t, jcsOut)
		if !jctval.Equal(fromInput, fromCanonical) {
			t.Errorf("structure changed through JCS for %q (canonical %q)", in, jcsOut)
		}
	}
}

// Key ordering diverges outside the basic multilingual plane: JCS sorts
// by UTF-16 code unit, so a supplementary-plane key (surrogates
// 0xD800..) sorts before U+FB00, while jct's byte order puts the
// 3-byte UTF-8 sequence of U+FB00 first.
func TestKeyOrderDivergenceBeyondBMP(t *testing.T) {
	in := "{\"\U0001F600\":1,\"ﬀ\":2}"

	jcsOut, err := cyberphone.Transform([]byte(in))
	if err != nil {
		t.Fatalf("cyberphone rejected input: %v", err)
	}
	ours, err := jctser.Compact(mustParse(t, []byte(in)))
	if err != nil {
		t.Fatal(err)
	}

	wantJCS := "{\"\U0001F600\":1,\"ﬀ\":2}"
	wantOurs := "{\"ﬀ\":2,\"\U0001F600\":1}"
	if string(jcsOut) != wantJCS {
		t.Errorf("jcs order = %q, want %q", jcsOut, wantJCS)
	}
	if string(ours) != wantOurs {
		t.Errorf("jct order = %q, want %q", ours, wantOurs)
	}
}

// Number formatting diverges from ES6 Number::toString on small
// magnitudes: JCS prints 1e-6 positionally, jct uses Go's shortest
// round-trip %g form.
func TestNumberFormDivergence(t *testing.T) {
	in := `{"n":0.000001}`

	jcsOut, err := cyberphone.Transform([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	ours, err := jctser.Compact(mustParse(t, []byte(in)))
	if err != nil {
		t.Fatal(err)
	}

	if string(jcsOut) != `{"n":0.000001}` {
		t.Errorf("jcs = %q", jcsOut)
	}
	if string(ours) != `{"n":1e-06}` {
		t.Errorf("jct = %q", ours)
	}

	// Both parse back to the same double.
	a := mustParse(t, jcsOut).Member("n")
	b := mustParse(t, ours).Member("n")
	if a.Num != b.Num {
		t.Errorf("value drift: %v vs %v", a.Num, b.Num)
	}
}
