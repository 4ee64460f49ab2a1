// Package jctser produces the canonical pretty form of a jctval tree.
//
// The canonical form uses two-space indentation, object keys in
// lexicographic byte order regardless of insertion order, integral
// numbers without a decimal point, and escapes for the JSON control
// set. Serializing the same tree twice yields identical bytes.
package jctser

import (
	"fmt"
	"sort"

	"github.com/lattice-substrate/jct/jcterr"
	"github.com/lattice-substrate/jct/jctnum"
	"github.com/lattice-substrate/jct/jctval"
)

// MaxDepth is the nesting depth beyond which serialization refuses.
const MaxDepth = 1000

// Serialize returns the canonical pretty form of v, without a trailing
// newline.
func Serialize(v *jctval.Value) ([]byte, error) {
	if v == nil {
		return nil, jcterr.New(jcterr.InternalError, -1, "jctser: nil value")
	}
	return appendValue(nil, v, 0)
}

// Document returns the canonical pretty form of v followed by the
// trailing newline that terminates an on-disk document.
func Document(v *jctval.Value) ([]byte, error) {
	buf, err := Serialize(v)
	if err != nil {
		return nil, err
	}
	return append(buf, '\n'), nil
}

func appendValue(buf []byte, v *jctval.Value, depth int) ([]byte, error) {
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
		return appendArray(buf, v, depth)
	case jctval.KindObject:
		return appendObject(buf, v, depth)
	default:
		return nil, jcterr.New(jcterr.InternalError, -1,
			fmt.Sprintf("jctser: unknown value kind %d", v.Kind))
	}
}

// appendString quotes s, escaping the quote, the backslash, the named
// control set, and any other byte below 0x20 as \u00xx.
func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch b {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if b < 0x20 {
				buf = append(buf, '\\', 'u', '0', '0', hexDigit(b>>4), hexDigit(b&0x0F))
			} else {
				buf = append(buf, b)
			}
		}
	}
	return append(buf, '"')
}

func hexDigit(b byte) byte {
	if b < 10 {
		return '0' + b
	}
	return 'a' + (b - 10)
}

func appendArray(buf []byte, v *jctval.Value, depth int) ([]byte, error) {
	if len(v.Elems) == 0 {
		return append(buf, '[', ']'), nil
	}
	buf = append(buf, '[')
	for i, e := range v.Elems {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendNewlineIndent(buf, depth+1)
		var err error
		buf, err = appendValue(buf, e, depth+1)
		if err != nil {
			return nil, err
		}
	}
	buf = appendNewlineIndent(buf, depth)
	return append(buf, ']'), nil
}

// appendObject emits members in lexicographic byte order of their keys,
// independent of insertion order.
func appendObject(buf []byte, v *jctval.Value, depth int) ([]byte, error) {
	if len(v.Members) == 0 {
		return append(buf, '{', '}'), nil
	}
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
		buf = appendNewlineIndent(buf, depth+1)
		buf = appendString(buf, v.Members[idx].Key)
		buf = append(buf, ':', ' ')
		var err error
		buf, err = appendValue(buf, v.Members[idx].Value, depth+1)
		if err != nil {
			return nil, err
		}
	}
	buf = appendNewlineIndent(buf, depth)
	return append(buf, '}'), nil
}

func appendNewlineIndent(buf []byte, depth int) []byte {
	buf = append(buf, '\n')
	for i := 0; i < depth*2; i++ {
		buf = append(buf, ' ')
	}
	return buf
}
