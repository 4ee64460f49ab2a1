package jctpath

import (
	"strconv"

	"github.com/lattice-substrate/jct/jctval"
)

// filterExpr is a parsed filter predicate. Precedence, tightest first:
// '!', comparisons, '&&', '||'.
type filterExpr interface{ filterKind() string }

type orExpr struct{ terms []filterExpr }

type andExpr struct{ terms []filterExpr }

type notExpr struct{ x filterExpr }

// cmpExpr is a comparison, or a bare operand when op is empty.
type cmpExpr struct {
	lhs, rhs operand
	op       string
}

func (orExpr) filterKind() string  { return "or" }
func (andExpr) filterKind() string { return "and" }
func (notExpr) filterKind() string { return "not" }
func (cmpExpr) filterKind() string { return "cmp" }

// operand is a comparison side: a literal or an @-rooted traversal.
type operand struct {
	lit *jctval.Value // nil for an @ traversal
	at  []atStep
	// descent marks an @.. traversal, which is recognized but not
	// evaluated: strict mode rejects the expression, lenient mode
	// yields an empty result set for the whole expression.
	descent bool
}

// atStep is one single-valued traversal step after '@'.
type atStep struct {
	name    string
	index   int
	isIndex bool
}

// parseFilterExpr parses a filter predicate up to (but not including)
// its closing ')'.
func parseFilterExpr(sc *scanner) (filterExpr, error) {
	return parseOr(sc)
}

func parseOr(sc *scanner) (filterExpr, error) {
	first, err := parseAnd(sc)
	if err != nil {
		return nil, err
	}
	terms := []filterExpr{first}
	for {
		sc.skipWS()
		if !sc.match("||") {
			break
		}
		next, err := parseAnd(sc)
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return orExpr{terms: terms}, nil
}

func parseAnd(sc *scanner) (filterExpr, error) {
	first, err := parseUnary(sc)
	if err != nil {
		return nil, err
	}
	terms := []filterExpr{first}
	for {
		sc.skipWS()
		if !sc.match("&&") {
			break
		}
		next, err := parseUnary(sc)
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return andExpr{terms: terms}, nil
}

func parseUnary(sc *scanner) (filterExpr, error) {
	sc.skipWS()
	if sc.match("!") {
		x, err := parseUnary(sc)
		if err != nil {
			return nil, err
		}
		return notExpr{x: x}, nil
	}
	return parseComparison(sc)
}

func parseComparison(sc *scanner) (filterExpr, error) {
	lhs, err := parseOperand(sc)
	if err != nil {
		return nil, err
	}
	sc.skipWS()

	var op string
	switch {
	case sc.match("=="):
		op = "=="
	case sc.match("!="):
		op = "!="
	case sc.match(">="):
		op = ">="
	case sc.match("<="):
		op = "<="
	case sc.match(">"):
		op = ">"
	case sc.match("<"):
		op = "<"
	default:
		return cmpExpr{lhs: lhs}, nil
	}

	rhs, err := parseOperand(sc)
	if err != nil {
		return nil, err
	}
	return cmpExpr{lhs: lhs, rhs: rhs, op: op}, nil
}

func parseOperand(sc *scanner) (operand, error) {
	sc.skipWS()
	if sc.match("@") {
		return parseAtChain(sc)
	}
	return parseLiteralOperand(sc)
}

// parseAtChain parses the .name / ['name'] / [int] chain after '@'.
func parseAtChain(sc *scanner) (operand, error) {
	var op operand
	for {
		if sc.match(".") {
			if sc.match(".") {
				op.descent = true
				// Consume the trailing name so the scan stays aligned.
				parseIdentifier(sc)
				continue
			}
			name, ok := parseIdentifier(sc)
			if !ok {
				return op, sc.errorf("expected name after '.' in filter traversal")
			}
			op.at = append(op.at, atStep{name: name})
			continue
		}
		if sc.match("[") {
			sc.skipWS()
			if sc.peek() == '\'' || sc.peek() == '"' {
				name, ok := parseQuoted(sc)
				if !ok {
					return op, sc.errorf("unterminated quoted name in filter traversal")
				}
				sc.skipWS()
				if !sc.match("]") {
					return op, sc.errorf("expected ']' in filter traversal")
				}
				op.at = append(op.at, atStep{name: name})
				continue
			}
			idx, ok := parseInt(sc)
			if !ok {
				return op, sc.errorf("expected index in filter traversal")
			}
			sc.skipWS()
			if !sc.match("]") {
				return op, sc.errorf("expected ']' in filter traversal")
			}
			op.at = append(op.at, atStep{index: idx, isIndex: true})
			continue
		}
		return op, nil
	}
}

// parseLiteralOperand parses true, false, null, a quoted string, or a
// decimal number with optional sign and fractional part.
func parseLiteralOperand(sc *scanner) (operand, error) {
	if sc.match("true") {
		return operand{lit: jctval.Boolean(true)}, nil
	}
	if sc.match("false") {
		return operand{lit: jctval.Boolean(false)}, nil
	}
	if sc.match("null") {
		return operand{lit: jctval.Null()}, nil
	}
	if sc.peek() == '\'' || sc.peek() == '"' {
		s, ok := parseQuoted(sc)
		if !ok {
			return operand{}, sc.errorf("unterminated string literal in filter")
		}
		return operand{lit: jctval.Text(s)}, nil
	}
	return parseNumberLiteral(sc)
}

func parseNumberLiteral(sc *scanner) (operand, error) {
	start := sc.pos
	if sc.peek() == '-' || sc.peek() == '+' {
		sc.pos++
	}
	digits := sc.pos
	for !sc.atEnd() && sc.s[sc.pos] >= '0' && sc.s[sc.pos] <= '9' {
		sc.pos++
	}
	if sc.pos == digits {
		sc.pos = start
		return operand{}, sc.errorf("expected literal or '@' in filter")
	}
	if sc.peek() == '.' {
		sc.pos++
		for !sc.atEnd() && sc.s[sc.pos] >= '0' && sc.s[sc.pos] <= '9' {
			sc.pos++
		}
	}
	d, err := strconv.ParseFloat(sc.s[start:sc.pos], 64)
	if err != nil {
		sc.pos = start
		return operand{}, sc.errorf("invalid number literal in filter")
	}
	return operand{lit: jctval.Number(d)}, nil
}

// hasUnsupported reports whether the expression contains a construct
// that is recognized but not evaluated (@.. traversal).
func hasUnsupported(e filterExpr) bool {
	switch x := e.(type) {
	case orExpr:
		for _, t := range x.terms {
			if hasUnsupported(t) {
				return true
			}
		}
	case andExpr:
		for _, t := range x.terms {
			if hasUnsupported(t) {
				return true
			}
		}
	case notExpr:
		return hasUnsupported(x.x)
	case cmpExpr:
		return x.lhs.descent || x.rhs.descent
	}
	return false
}

// evalFilter evaluates the predicate against one candidate node.
func evalFilter(e filterExpr, ctx *jctval.Value) bool {
	switch x := e.(type) {
	case orExpr:
		for _, t := range x.terms {
			if evalFilter(t, ctx) {
				return true
			}
		}
		return false
	case andExpr:
		for _, t := range x.terms {
			if !evalFilter(t, ctx) {
				return false
			}
		}
		return true
	case notExpr:
		return !evalFilter(x.x, ctx)
	case cmpExpr:
		return evalComparison(x, ctx)
	default:
		return false
	}
}

func evalComparison(c cmpExpr, ctx *jctval.Value) bool {
	if c.lhs.descent || c.rhs.descent {
		return false
	}
	lhs := resolveOperand(c.lhs, ctx)
	if c.op == "" {
		return truthy(lhs)
	}
	rhs := resolveOperand(c.rhs, ctx)
	return compareValues(lhs, rhs, c.op)
}

// resolveOperand produces the concrete value of an operand for one
// candidate. A traversal that misses yields null.
func resolveOperand(op operand, ctx *jctval.Value) *jctval.Value {
	if op.lit != nil {
		return op.lit
	}
	cur := ctx
	for _, st := range op.at {
		if cur == nil {
			break
		}
		if st.isIndex {
			cur = cur.Elem(st.index)
		} else {
			cur = cur.Member(st.name)
		}
	}
	if cur == nil {
		return jctval.Null()
	}
	return cur
}

// truthy reports whether a bare operand selects its element: anything
// but null and false.
func truthy(v *jctval.Value) bool {
	if v == nil || v.Kind == jctval.KindNull {
		return false
	}
	if v.Kind == jctval.KindBool {
		return v.Bool
	}
	return true
}

// compareValues applies a comparison operator. Numbers compare
// numerically, strings by bytes, booleans by value; null supports only
// == and !=. Any type mismatch is false.
func compareValues(a, b *jctval.Value, op string) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind == jctval.KindNumber && b.Kind == jctval.KindNumber {
		return applyOrder(orderFloat(a.Num, b.Num), op)
	}
	if a.Kind == jctval.KindString && b.Kind == jctval.KindString {
		return applyOrder(orderString(a.Str, b.Str), op)
	}
	if a.Kind == jctval.KindBool && b.Kind == jctval.KindBool {
		return applyOrder(orderBool(a.Bool, b.Bool), op)
	}
	if a.Kind == jctval.KindNull || b.Kind == jctval.KindNull {
		switch op {
		case "==":
			return a.Kind == b.Kind
		case "!=":
			return a.Kind != b.Kind
		}
	}
	return false
}

func orderFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func orderString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func orderBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case b:
		return -1
	default:
		return 1
	}
}

func applyOrder(c int, op string) bool {
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	default:
		return false
	}
}
