// Package jctpath evaluates Goessner-style JSONPath expressions over a
// jctval tree.
//
// Supported steps: dot names, wildcards, recursive descent, bracket
// subscripts with name/index unions, slices, and filter predicates with
// comparisons and boolean logic. Expressions are parsed once to an AST
// and the AST is evaluated per node.
//
// Evaluation maintains a working set of (node, path) pairs seeded with
// (root, "$"). Results are deep clones: freeing or mutating a result
// never affects the source tree.
package jctpath

import (
	"strconv"

	"github.com/lattice-substrate/jct/jcterr"
	"github.com/lattice-substrate/jct/jctval"
)

// Mode selects what a result set carries.
type Mode int

const (
	// ModeValues emits deep-cloned values.
	ModeValues Mode = iota
	// ModePaths emits normalized path strings.
	ModePaths
	// ModePairs emits both.
	ModePairs
)

// ParseMode maps the CLI spelling of a mode to its value.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "values":
		return ModeValues, true
	case "paths":
		return ModePaths, true
	case "pairs":
		return ModePairs, true
	default:
		return ModeValues, false
	}
}

// Options controls evaluation behavior.
type Options struct {
	Mode   Mode
	Limit  int  // <= 0 means no limit
	Strict bool // syntax errors and unsupported constructs fail instead of yielding empty results
}

// Pair is one result: a normalized path and (except in paths mode) a
// deep clone of the matched value.
type Pair struct {
	Path  string
	Value *jctval.Value
}

// Results is the ordered outcome of an evaluation.
type Results struct {
	Mode  Mode
	Pairs []Pair
}

// noderef is a working-set entry: a borrowed tree node and its path.
type noderef struct {
	v    *jctval.Value
	path string
}

// Evaluate parses and evaluates expr against doc.
//
// In strict mode any expression syntax error, unsupported construct, or
// negative subscript returns a nil result and a PATH_SYNTAX error. In
// lenient mode syntax errors yield an empty result set and negative
// subscripts skip the node they apply to.
func Evaluate(doc *jctval.Value, expr string, opts Options) (*Results, error) {
	if doc == nil {
		return nil, jcterr.Newf(jcterr.InternalError, "jctpath: nil document")
	}

	steps, err := parseExpression(expr)
	if err == nil {
		err = rejectUnsupported(steps)
	}
	if err != nil {
		if opts.Strict {
			return nil, err
		}
		return &Results{Mode: opts.Mode}, nil
	}

	set := []noderef{{v: doc, path: "$"}}
	for _, st := range steps {
		cand := set
		if st.recursive {
			cand = nil
			for _, n := range set {
				cand = appendSelfAndDescendants(cand, n)
			}
		}
		set, err = applySelector(cand, st.sel, opts.Strict)
		if err != nil {
			if opts.Strict {
				return nil, err
			}
			return &Results{Mode: opts.Mode}, nil
		}
	}

	if opts.Limit > 0 && len(set) > opts.Limit {
		set = set[:opts.Limit]
	}

	res := &Results{Mode: opts.Mode, Pairs: make([]Pair, len(set))}
	for i, n := range set {
		res.Pairs[i].Path = n.path
		if opts.Mode != ModePaths {
			res.Pairs[i].Value = jctval.Clone(n.v)
		}
	}
	return res, nil
}

// rejectUnsupported surfaces recognized-but-unimplemented filter
// constructs; the caller decides per the strictness policy.
func rejectUnsupported(steps []step) error {
	for _, st := range steps {
		if f, ok := st.sel.(selFilter); ok && hasUnsupported(f.expr) {
			return jcterr.Newf(jcterr.PathSyntax,
				"recursive descent from '@' is not supported in filters")
		}
	}
	return nil
}

// appendSelfAndDescendants collects n itself followed by all of its
// proper descendants in pre-order, with their paths.
func appendSelfAndDescendants(out []noderef, n noderef) []noderef {
	out = append(out, n)
	switch n.v.Kind {
	case jctval.KindObject:
		for i := range n.v.Members {
			m := n.v.Members[i]
			out = appendSelfAndDescendants(out, noderef{v: m.Value, path: appendProp(n.path, m.Key)})
		}
	case jctval.KindArray:
		for i, e := range n.v.Elems {
			out = appendSelfAndDescendants(out, noderef{v: e, path: appendIndex(n.path, i)})
		}
	}
	return out
}

// applySelector transforms a candidate set through one selector.
func applySelector(cand []noderef, sel selector, strict bool) ([]noderef, error) {
	var next []noderef
	switch s := sel.(type) {
	case selNames:
		for _, n := range cand {
			if n.v.Kind != jctval.KindObject {
				continue
			}
			for _, name := range s.names {
				if c := n.v.Member(name); c != nil {
					next = append(next, noderef{v: c, path: appendProp(n.path, name)})
				}
			}
		}

	case selWildcard:
		for _, n := range cand {
			next = appendChildren(next, n)
		}

	case selIndices:
		for _, n := range cand {
			if n.v.Kind != jctval.KindArray {
				continue
			}
			keep, err := checkIndices(s.idxs, strict)
			if err != nil {
				return nil, err
			}
			if !keep {
				continue
			}
			for _, idx := range s.idxs {
				if c := n.v.Elem(idx); c != nil {
					next = append(next, noderef{v: c, path: appendIndex(n.path, idx)})
				}
			}
		}

	case selSlice:
		for _, n := range cand {
			if n.v.Kind != jctval.KindArray {
				continue
			}
			if s.start < 0 || (s.hasEnd && s.end < 0) {
				if strict {
					return nil, jcterr.Newf(jcterr.PathSyntax,
						"negative slice indices are not supported")
				}
				continue
			}
			length := n.v.Len()
			end := length
			if s.hasEnd && s.end < end {
				end = s.end
			}
			for idx := s.start; idx < end; idx += s.stride {
				if c := n.v.Elem(idx); c != nil {
					next = append(next, noderef{v: c, path: appendIndex(n.path, idx)})
				}
			}
		}

	case selFilter:
		for _, n := range cand {
			if n.v.Kind == jctval.KindArray {
				for i, e := range n.v.Elems {
					if evalFilter(s.expr, e) {
						next = append(next, noderef{v: e, path: appendIndex(n.path, i)})
					}
				}
				continue
			}
			if evalFilter(s.expr, n.v) {
				next = append(next, n)
			}
		}

	default:
		return nil, jcterr.Newf(jcterr.InternalError, "jctpath: unknown selector")
	}
	return next, nil
}

// checkIndices applies the negative-index policy for one node: strict
// raises, lenient skips the node.
func checkIndices(idxs []int, strict bool) (bool, error) {
	for _, idx := range idxs {
		if idx < 0 {
			if strict {
				return false, jcterr.Newf(jcterr.PathSyntax,
					"negative indices are not supported")
			}
			return false, nil
		}
	}
	return true, nil
}

// appendChildren emits every child of a container node with its path.
func appendChildren(out []noderef, n noderef) []noderef {
	switch n.v.Kind {
	case jctval.KindObject:
		for i := range n.v.Members {
			m := n.v.Members[i]
			out = append(out, noderef{v: m.Value, path: appendProp(n.path, m.Key)})
		}
	case jctval.KindArray:
		for i, e := range n.v.Elems {
			out = append(out, noderef{v: e, path: appendIndex(n.path, i)})
		}
	}
	return out
}

// appendProp extends a path by an object member: dot form when the key
// is identifier-shaped, bracket-quoted otherwise.
func appendProp(base, name string) string {
	if isIdentifierShaped(name) {
		return base + "." + name
	}
	return base + "['" + name + "']"
}

func appendIndex(base string, idx int) string {
	return base + "[" + strconv.Itoa(idx) + "]"
}

func isIdentifierShaped(name string) bool {
	if name == "" || !isIdentStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentPart(name[i]) {
			return false
		}
	}
	return true
}

// Assemble builds the output tree for a result set. In values mode with
// unwrapSingle set and exactly one result, the single value is returned
// directly instead of wrapped in an array.
func (r *Results) Assemble(unwrapSingle bool) *jctval.Value {
	if r.Mode == ModeValues && unwrapSingle && len(r.Pairs) == 1 {
		return r.Pairs[0].Value
	}
	arr := jctval.Array()
	for i := range r.Pairs {
		switch r.Mode {
		case ModeValues:
			arr.Append(r.Pairs[i].Value)
		case ModePaths:
			arr.Append(jctval.Text(r.Pairs[i].Path))
		case ModePairs:
			obj := jctval.Object()
			obj.SetMember("path", jctval.Text(r.Pairs[i].Path))
			obj.SetMember("value", r.Pairs[i].Value)
			arr.Append(obj)
		}
	}
	return arr
}
