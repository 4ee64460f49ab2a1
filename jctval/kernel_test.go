package jctval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-substrate/jct/jctparse"
	"github.com/lattice-substrate/jct/jctval"
)

func mustParse(t *testing.T, in string) *jctval.Value {
	t.Helper()
	v, _, err := jctparse.Parse([]byte(in))
	require.NoError(t, err, "parse %q", in)
	return v
}

func TestEqualIgnoresObjectMemberOrder(t *testing.T) {
	t.Parallel()

	a := mustParse(t, `{"x":1,"y":[true,null],"z":{"k":"v"}}`)
	b := mustParse(t, `{"z":{"k":"v"},"x":1,"y":[true,null]}`)

	assert.True(t, jctval.Equal(a, b))
	assert.True(t, jctval.Equal(b, a))
}

func TestEqualArrayOrderMatters(t *testing.T) {
	t.Parallel()

	a := mustParse(t, `[1,2]`)
	b := mustParse(t, `[2,1]`)
	assert.False(t, jctval.Equal(a, b))
}

func TestEqualDistinguishesKinds(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		a, b string
		want bool
	}{
		"number vs string":       {`1`, `"1"`, false},
		"null vs false":          {`null`, `false`, false},
		"empty object vs array":  {`{}`, `[]`, false},
		"same nested":            {`{"a":{"b":[1.5]}}`, `{"a":{"b":[1.5]}}`, true},
		"missing member":         {`{"a":1,"b":2}`, `{"a":1}`, false},
		"null member vs missing": {`{"a":null}`, `{}`, false},
		"number bitwise":         {`1.0`, `1`, true},
		"string bytes":           {`"a\nb"`, `"a\nb"`, true},
	}
	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, jctval.Equal(mustParse(t, tc.a), mustParse(t, tc.b)))
		})
	}
}

func TestCloneIsDisjoint(t *testing.T) {
	t.Parallel()

	orig := mustParse(t, `{"a":{"b":[1,2]},"s":"text"}`)
	dup := jctval.Clone(orig)
	require.True(t, jctval.Equal(orig, dup))

	// Mutate the clone every way the model allows.
	dup.SetMember("new", jctval.Number(9))
	dup.Member("a").Member("b").Elems[0] = jctval.Text("mutated")
	dup.Member("a").SetMember("c", jctval.Null())

	want := mustParse(t, `{"a":{"b":[1,2]},"s":"text"}`)
	assert.True(t, jctval.Equal(orig, want), "original changed after clone mutation")
}

func TestMergeIntoScenario(t *testing.T) {
	t.Parallel()

	dest := mustParse(t, `{"a":{"x":1},"b":2}`)
	src := mustParse(t, `{"a":{"y":9},"c":3}`)

	got := jctval.MergeInto(dest, src)
	want := mustParse(t, `{"a":{"x":1,"y":9},"b":2,"c":3}`)
	assert.True(t, jctval.Equal(got, want))

	// src is untouched.
	assert.True(t, jctval.Equal(src, mustParse(t, `{"a":{"y":9},"c":3}`)))
}

func TestMergeIntoNonObjectReplaces(t *testing.T) {
	t.Parallel()

	dest := mustParse(t, `{"a":1}`)
	src := mustParse(t, `[1,2]`)
	got := jctval.MergeInto(dest, src)
	assert.True(t, jctval.Equal(got, src))

	// Scalar replaces an object member.
	dest = mustParse(t, `{"a":{"x":1}}`)
	src = mustParse(t, `{"a":7}`)
	jctval.MergeInto(dest, src)
	assert.True(t, jctval.Equal(dest, mustParse(t, `{"a":7}`)))
}

func TestMergeAssociativeOnDisjointKeys(t *testing.T) {
	t.Parallel()

	a := `{"a":{"deep":true}}`
	b := `{"b":[1,2]}`
	c := `{"c":"x"}`

	left := jctval.MergeInto(jctval.MergeInto(mustParse(t, a), mustParse(t, b)), mustParse(t, c))

	bc := jctval.MergeInto(mustParse(t, b), mustParse(t, c))
	right := jctval.MergeInto(mustParse(t, a), bc)

	assert.True(t, jctval.Equal(left, right))
}

func TestDiffScenario(t *testing.T) {
	t.Parallel()

	modified := mustParse(t, `{"a":1,"b":{"c":2,"d":3}}`)
	original := mustParse(t, `{"a":1,"b":{"c":2,"d":4}}`)

	got := jctval.Diff(modified, original)
	assert.True(t, jctval.Equal(got, mustParse(t, `{"b":{"d":3}}`)))
}

func TestDiffCases(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		modified, original, want string
	}{
		"identical":         {`{"a":1}`, `{"a":1}`, `{}`},
		"added key":         {`{"a":1,"b":2}`, `{"a":1}`, `{"b":2}`},
		"changed scalar":    {`{"a":2}`, `{"a":1}`, `{"a":2}`},
		"kind change":       {`{"a":{"x":1}}`, `{"a":[1]}`, `{"a":{"x":1}}`},
		"scalars equal":     {`5`, `5`, `{}`},
		"scalars differ":    {`5`, `6`, `5`},
		"array replaced":    {`{"a":[1,2]}`, `{"a":[1,3]}`, `{"a":[1,2]}`},
		"removed key is not reported": {`{"a":1}`, `{"a":1,"b":2}`, `{}`},
	}
	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := jctval.Diff(mustParse(t, tc.modified), mustParse(t, tc.original))
			assert.True(t, jctval.Equal(got, mustParse(t, tc.want)),
				"diff(%s, %s)", tc.modified, tc.original)
		})
	}
}

func TestDiffNilOriginalClonesModified(t *testing.T) {
	t.Parallel()

	modified := mustParse(t, `{"a":[1,{"b":2}]}`)
	got := jctval.Diff(modified, nil)
	assert.True(t, jctval.Equal(got, modified))

	// The result is a clone, not a reference.
	got.SetMember("extra", jctval.Null())
	assert.True(t, jctval.Equal(modified, mustParse(t, `{"a":[1,{"b":2}]}`)))
}

func TestDiffThenMergeReconstructsModified(t *testing.T) {
	t.Parallel()

	tcs := []struct{ modified, original string }{
		{`{"a":1,"b":{"c":2,"d":3}}`, `{"a":1,"b":{"c":2,"d":4}}`},
		{`{"a":{"b":{"c":1}},"x":[1,2]}`, `{"a":{"b":{"c":9}},"x":[1,2]}`},
		{`{"n":null,"s":"v"}`, `{"n":1}`},
		{`{"same":true}`, `{"same":true}`},
	}
	for _, tc := range tcs {
		modified := mustParse(t, tc.modified)
		original := mustParse(t, tc.original)

		patch := jctval.Diff(modified, original)
		rebuilt := jctval.MergeInto(jctval.Clone(original), patch)

		assert.True(t, jctval.Equal(rebuilt, modified),
			"merge(clone(%s), diff) != %s", tc.original, tc.modified)
	}
}
