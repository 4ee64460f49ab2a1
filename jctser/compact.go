package jctser

import (
	"fmt"
	"sort"

	"github.com/lattice-substrate/jct/jcterr"
	"github.com/lattice-substrate/jct/jctnum"
	"github.com/lattice-substrate/jct/jctval"
)

// Compact returns the canonical form of v with no insignificant
// whitespace. Key ordering, escaping, and number form are identical to
// Serialize.
func Compact(v *jctval.Value) ([]byte, error) {
	if v == nil {
		return nil, jcterr.New(jcterr.InternalError, -1, "jctser: nil value")
	}
	return appendCompact(nil, v, 0)
}

// CompactDocument returns the compact form followed by a trailing
// newline.
func CompactDocument(v *jctval.Value) ([]byte, error) {
	buf, err := Compact(v)
	if err != nil {
		return nil, err
	}
	return append(buf, '\n'), nil
}

func appendCompact(buf []byte, v *jctval.Value, depth int) ([]byte, error) {
	if depth > MaxDepth {
		return nil, jcterr.New(jcterr.BoundExceeded, -1,
			fmt.Sprintf("jctser: nesting depth exceeds maximum %d", MaxDepth))
	}
	switch v.Kind {
	case jctval.KindNull:
		return append(buf, "null"...), nil
	case jctval.KindBool:
		if v.Bool {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil
	case jctval.KindNumber:
		s, err := jctnum.FormatNumber(v.Num)
		if err != nil {
			return nil, jcterr.Wrap(jcterr.InternalError, -1, "jctser: number serialization", err)
		}
		return append(buf, s...), nil
	case jctval.KindString:
		return appendString(buf, v.Str), nil
	case jctval.KindArray:
		buf = append(buf, '[')
		for i, e := range v.Elems {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			buf, err = appendCompact(buf, e, depth+1)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case jctval.KindObject:
		order := make([]int, len(v.Members))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return v.Members[order[a]].Key < v.Members[order[b]].Key
		})
		buf = append(buf, '{')
		for i, idx := range order {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendString(buf, v.Members[idx].Key)
			buf = append(buf, ':')
			var err error
			buf, err = appendCompact(buf, v.Members[idx].Value, depth+1)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	default:
		return nil, jcterr.New(jcterr.InternalError, -1,
			fmt.Sprintf("jctser: unknown value kind %d", v.Kind))
	}
}
