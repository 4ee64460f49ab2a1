// Package jctdot implements nested get and set over a jctval tree using
// dot-joined paths.
//
// A path is a non-empty string split on ASCII '.'. Each segment names an
// object member or, when the current node is an array, a base-10
// non-negative element index.
package jctdot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lattice-substrate/jct/jcterr"
	"github.com/lattice-substrate/jct/jctnum"
	"github.com/lattice-substrate/jct/jctval"
)

// GetNested walks path from root and returns the value it names, or nil
// when any segment misses, a scalar is traversed, or an array segment is
// not a valid in-range index. The result is borrowed from the tree.
func GetNested(root *jctval.Value, path string) *jctval.Value {
	if root == nil || path == "" {
		return nil
	}
	current := root
	for _, seg := range strings.Split(path, ".") {
		switch {
		case current == nil:
			return nil
		case current.Kind == jctval.KindObject:
			current = current.Member(seg)
		case current.Kind == jctval.KindArray:
			idx, err := arrayIndex(seg)
			if err != nil || idx >= current.Len() {
				return nil
			}
			current = current.Elem(idx)
		default:
			return nil
		}
	}
	return current
}

// SetNested walks all but the last segment of path, creating missing
// object members as empty objects and extending arrays with empty
// objects up to a named index, then sets the final slot to the value
// inferred from literal. Array slots on the final segment are extended
// with nulls as needed.
func SetNested(root *jctval.Value, path, literal string) error {
	if root == nil || path == "" {
		return jcterr.Newf(jcterr.StructureMismatch, "empty path")
	}
	segs := strings.Split(path, ".")

	current := root
	for _, seg := range segs[:len(segs)-1] {
		next, err := descend(current, seg, path)
		if err != nil {
			return err
		}
		current = next
	}

	last := segs[len(segs)-1]
	value := jctnum.InferLiteral(literal)
	switch current.Kind {
	case jctval.KindObject:
		current.SetMember(last, value)
		return nil
	case jctval.KindArray:
		idx, err := arrayIndex(last)
		if err != nil {
			return jcterr.Newf(jcterr.StructureMismatch,
				"invalid array index %q in path %q", last, path)
		}
		for current.Len() <= idx {
			current.Append(jctval.Null())
		}
		current.Elems[idx] = value
		return nil
	default:
		return jcterr.Newf(jcterr.StructureMismatch,
			"cannot set %q on a %s in path %q", last, current.Kind, path)
	}
}

// descend resolves one intermediate segment, creating empty objects
// where the path does not yet exist.
func descend(current *jctval.Value, seg, path string) (*jctval.Value, error) {
	switch current.Kind {
	case jctval.KindObject:
		next := current.Member(seg)
		if next == nil {
			next = jctval.Object()
			current.SetMember(seg, next)
		}
		return next, nil
	case jctval.KindArray:
		idx, err := arrayIndex(seg)
		if err != nil {
			return nil, jcterr.Newf(jcterr.StructureMismatch,
				"invalid array index %q in path %q", seg, path)
		}
		for current.Len() <= idx {
			current.Append(jctval.Object())
		}
		return current.Elem(idx), nil
	default:
		return nil, jcterr.Newf(jcterr.StructureMismatch,
			"cannot traverse %q through a %s in path %q", seg, current.Kind, path)
	}
}

// arrayIndex parses a base-10 non-negative index segment.
func arrayIndex(seg string) (int, error) {
	idx, err := strconv.Atoi(seg)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("invalid index %q", seg)
	}
	return idx, nil
}
