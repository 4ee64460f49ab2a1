package jctpath

import (
	"fmt"
	"strconv"

	"github.com/lattice-substrate/jct/jcterr"
)

// step is one evaluation step of a parsed expression. A recursive step
// applies its selector to each working-set node itself plus all of its
// proper descendants.
type step struct {
	recursive bool
	sel       selector
}

// selector picks children (or filtered nodes) out of a candidate set.
type selector interface{ selectorKind() string }

type selNames struct{ names []string }

type selWildcard struct{}

type selIndices struct{ idxs []int }

type selSlice struct {
	start, end, stride int
	hasStart, hasEnd   bool
}

type selFilter struct{ expr filterExpr }

func (selNames) selectorKind() string    { return "names" }
func (selWildcard) selectorKind() string { return "wildcard" }
func (selIndices) selectorKind() string  { return "indices" }
func (selSlice) selectorKind() string    { return "slice" }
func (selFilter) selectorKind() string   { return "filter" }

// scanner is a cursor over the expression string.
type scanner struct {
	s   string
	pos int
}

func (sc *scanner) atEnd() bool {
	return sc.pos >= len(sc.s)
}

func (sc *scanner) peek() byte {
	if sc.atEnd() {
		return 0
	}
	return sc.s[sc.pos]
}

func (sc *scanner) skipWS() {
	for !sc.atEnd() {
		switch sc.s[sc.pos] {
		case ' ', '\t', '\n', '\r':
			sc.pos++
		default:
			return
		}
	}
}

func (sc *scanner) match(lit string) bool {
	if sc.pos+len(lit) > len(sc.s) {
		return false
	}
	if sc.s[sc.pos:sc.pos+len(lit)] != lit {
		return false
	}
	sc.pos += len(lit)
	return true
}

func (sc *scanner) errorf(format string, args ...any) *jcterr.Error {
	return jcterr.New(jcterr.PathSyntax, sc.pos, fmt.Sprintf(format, args...))
}

// parseExpression parses a full JSONPath expression into steps.
func parseExpression(expr string) ([]step, error) {
	sc := &scanner{s: expr}
	sc.skipWS()
	if !sc.match("$") {
		return nil, sc.errorf("expected '$' at start of expression")
	}

	var steps []step
	for {
		sc.skipWS()
		if sc.atEnd() {
			return steps, nil
		}
		switch {
		case sc.match(".."):
			sel, err := parseDescentSelector(sc)
			if err != nil {
				return nil, err
			}
			steps = append(steps, step{recursive: true, sel: sel})
		case sc.match("."):
			if sc.match("*") {
				steps = append(steps, step{sel: selWildcard{}})
				continue
			}
			name, ok := parseIdentifier(sc)
			if !ok {
				return nil, sc.errorf("expected property name after '.'")
			}
			steps = append(steps, step{sel: selNames{names: []string{name}}})
		case sc.match("["):
			sel, err := parseBracketSelector(sc)
			if err != nil {
				return nil, err
			}
			steps = append(steps, step{sel: sel})
		default:
			return nil, sc.errorf("unexpected character %q in expression", string(sc.peek()))
		}
	}
}

// parseDescentSelector parses the selector following '..': a name, a
// wildcard, or a bracket subscript.
func parseDescentSelector(sc *scanner) (selector, error) {
	if sc.match("*") {
		return selWildcard{}, nil
	}
	if sc.match("[") {
		return parseBracketSelector(sc)
	}
	name, ok := parseIdentifier(sc)
	if !ok {
		return nil, sc.errorf("expected name, '*', or '[' after '..'")
	}
	return selNames{names: []string{name}}, nil
}

// parseBracketSelector parses the subscript after '[' up to and
// including the closing ']'.
func parseBracketSelector(sc *scanner) (selector, error) {
	sc.skipWS()

	if sc.match("*") {
		sc.skipWS()
		if !sc.match("]") {
			return nil, sc.errorf("expected ']' after '*'")
		}
		return selWildcard{}, nil
	}

	if sc.match("?") {
		if !sc.match("(") {
			return nil, sc.errorf("expected '(' after '?'")
		}
		expr, err := parseFilterExpr(sc)
		if err != nil {
			return nil, err
		}
		sc.skipWS()
		if !sc.match(")") {
			return nil, sc.errorf("expected ')' to close filter expression")
		}
		sc.skipWS()
		if !sc.match("]") {
			return nil, sc.errorf("expected ']' after filter")
		}
		return selFilter{expr: expr}, nil
	}

	if sc.peek() == '\'' || sc.peek() == '"' {
		return parseNameUnion(sc)
	}

	return parseIndexSubscript(sc)
}

// parseNameUnion parses ['a'] or ['a','b',...] with either quote style.
func parseNameUnion(sc *scanner) (selector, error) {
	var names []string
	for {
		name, ok := parseQuoted(sc)
		if !ok {
			return nil, sc.errorf("expected quoted name in subscript")
		}
		names = append(names, name)
		sc.skipWS()
		if sc.match(",") {
			sc.skipWS()
			continue
		}
		break
	}
	if !sc.match("]") {
		return nil, sc.errorf("expected ']' after name union")
	}
	return selNames{names: names}, nil
}

// parseIndexSubscript parses [i], [i1,i2,...], or [start:end:step].
// Negative integers are representable here; strict mode rejects them at
// evaluation time.
func parseIndexSubscript(sc *scanner) (selector, error) {
	// A slice may omit its start: [:2].
	if sc.peek() == ':' {
		return parseSlice(sc, 0, false)
	}

	first, ok := parseInt(sc)
	if !ok {
		return nil, sc.errorf("expected index, slice, name, '*', or filter in subscript")
	}
	sc.skipWS()

	if sc.peek() == ':' {
		return parseSlice(sc, first, true)
	}

	idxs := []int{first}
	for sc.match(",") {
		sc.skipWS()
		n, ok := parseInt(sc)
		if !ok {
			return nil, sc.errorf("expected index after ',' in union")
		}
		idxs = append(idxs, n)
		sc.skipWS()
	}
	if !sc.match("]") {
		return nil, sc.errorf("expected ']' after index subscript")
	}
	return selIndices{idxs: idxs}, nil
}

// parseSlice parses the remainder of a slice subscript after its
// (possibly omitted) start.
func parseSlice(sc *scanner, start int, hasStart bool) (selector, error) {
	sl := selSlice{start: start, hasStart: hasStart, stride: 1}
	sc.match(":")
	sc.skipWS()

	if sc.peek() != ':' && sc.peek() != ']' {
		end, ok := parseInt(sc)
		if !ok {
			return nil, sc.errorf("expected slice end")
		}
		sl.end = end
		sl.hasEnd = true
		sc.skipWS()
	}
	if sc.match(":") {
		sc.skipWS()
		if sc.peek() != ']' {
			stride, ok := parseInt(sc)
			if !ok {
				return nil, sc.errorf("expected slice step")
			}
			if stride >= 1 {
				sl.stride = stride
			}
			sc.skipWS()
		}
	}
	if !sc.match("]") {
		return nil, sc.errorf("expected ']' after slice")
	}
	return sl, nil
}

// parseIdentifier scans an identifier-shaped name:
// [A-Za-z_][A-Za-z0-9_]*.
func parseIdentifier(sc *scanner) (string, bool) {
	start := sc.pos
	c := sc.peek()
	if !isIdentStart(c) {
		return "", false
	}
	sc.pos++
	for !sc.atEnd() && isIdentPart(sc.s[sc.pos]) {
		sc.pos++
	}
	return sc.s[start:sc.pos], true
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// parseQuoted scans a single- or double-quoted string. A backslash
// passes the following character through verbatim.
func parseQuoted(sc *scanner) (string, bool) {
	quote := sc.peek()
	if quote != '\'' && quote != '"' {
		return "", false
	}
	sc.pos++
	var out []byte
	for !sc.atEnd() {
		c := sc.s[sc.pos]
		sc.pos++
		if c == quote {
			return string(out), true
		}
		if c == '\\' && !sc.atEnd() {
			c = sc.s[sc.pos]
			sc.pos++
		}
		out = append(out, c)
	}
	return "", false
}

// parseInt scans a decimal integer with optional leading '-'.
func parseInt(sc *scanner) (int, bool) {
	start := sc.pos
	if sc.peek() == '-' {
		sc.pos++
	}
	digits := sc.pos
	for !sc.atEnd() && sc.s[sc.pos] >= '0' && sc.s[sc.pos] <= '9' {
		sc.pos++
	}
	if sc.pos == digits {
		sc.pos = start
		return 0, false
	}
	n, err := strconv.Atoi(sc.s[start:sc.pos])
	if err != nil {
		sc.pos = start
		return 0, false
	}
	return n, true
}
