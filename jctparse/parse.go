// Package jctparse turns JSON bytes into a jctval tree.
//
// The parser is recursive descent over a byte cursor. It accepts the
// lenient jct input domain: duplicate object keys replace the earlier
// member, an unknown escape \X decodes to the literal byte X (so \u is
// passed through as a literal u, undecoded), and content trailing a
// complete value is returned to the caller instead of rejected.
package jctparse

import (
	"fmt"
	"strconv"

	"github.com/lattice-substrate/jct/jcterr"
	"github.com/lattice-substrate/jct/jctval"
)

// Limits for denial-of-service protection.
const (
	// DefaultMaxDepth is the maximum nesting depth for objects and arrays.
	DefaultMaxDepth = 1000

	// DefaultMaxInputSize is the maximum input size in bytes (100 MiB).
	DefaultMaxInputSize = 100 * 1024 * 1024
)

// Options controls parser behavior.
type Options struct {
	MaxDepth     int // 0 means DefaultMaxDepth
	MaxInputSize int // 0 means DefaultMaxInputSize
}

func (o *Options) maxDepth() int {
	if o != nil && o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}

func (o *Options) maxInputSize() int {
	if o != nil && o.MaxInputSize > 0 {
		return o.MaxInputSize
	}
	return DefaultMaxInputSize
}

// parser holds the cursor state.
type parser struct {
	data     []byte
	pos      int
	depth    int
	maxDepth int
}

// Parse parses one JSON value from data. It returns the value and any
// bytes remaining after the value and trailing whitespace; a non-empty
// remainder is tolerated (the caller decides whether to warn).
func Parse(data []byte) (*jctval.Value, []byte, error) {
	return ParseWithOptions(data, nil)
}

// ParseWithOptions is like Parse but accepts configuration options.
func ParseWithOptions(data []byte, opts *Options) (*jctval.Value, []byte, error) {
	maxInput := opts.maxInputSize()
	if len(data) > maxInput {
		return nil, nil, jcterr.New(jcterr.BoundExceeded, 0,
			fmt.Sprintf("input size %d exceeds maximum %d", len(data), maxInput))
	}

	p := &parser{data: data, maxDepth: opts.maxDepth()}
	p.skipWhitespace()
	v, err := p.parseValue()
	if err != nil {
		return nil, nil, err
	}
	p.skipWhitespace()
	return v, p.data[p.pos:], nil
}

func (p *parser) errorf(format string, args ...any) *jcterr.Error {
	return jcterr.New(jcterr.ParseError, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.data) {
		return 0, false
	}
	return p.data[p.pos], true
}

func (p *parser) expect(b byte) error {
	if p.pos >= len(p.data) {
		return p.errorf("unexpected end of input, expected %q", string(b))
	}
	if p.data[p.pos] != b {
		return p.errorf("expected %q, got %q", string(b), string(p.data[p.pos]))
	}
	p.pos++
	return nil
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) pushDepth() error {
	p.depth++
	if p.depth > p.maxDepth {
		return p.errorf("nesting depth %d exceeds maximum %d", p.depth, p.maxDepth)
	}
	return nil
}

func (p *parser) popDepth() {
	p.depth--
}

func (p *parser) parseValue() (*jctval.Value, error) {
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of input")
	}
	switch c {
	case '{':
		return p.parseObject()
	case '[':
		return p.parseArray()
	case '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return jctval.Text(s), nil
	case 't', 'f', 'n':
		return p.parseKeyword()
	default:
		return p.parseNumber()
	}
}

func (p *parser) parseObject() (*jctval.Value, error) {
	if err := p.pushDepth(); err != nil {
		return nil, err
	}
	defer p.popDepth()

	if err := p.expect('{'); err != nil {
		return nil, err
	}
	v := jctval.Object()

	p.skipWhitespace()
	if c, ok := p.peek(); ok && c == '}' {
		p.pos++
		return v, nil
	}

	for {
		p.skipWhitespace()
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipWhitespace()
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		p.skipWhitespace()
		child, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		v.SetMember(key, child)

		p.skipWhitespace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unexpected end of input in object")
		}
		if c == '}' {
			p.pos++
			return v, nil
		}
		if c == ',' {
			p.pos++
			continue
		}
		return nil, p.errorf("expected ',' or '}' in object, got %q", string(c))
	}
}

func (p *parser) parseArray() (*jctval.Value, error) {
	if err := p.pushDepth(); err != nil {
		return nil, err
	}
	defer p.popDepth()

	if err := p.expect('['); err != nil {
		return nil, err
	}
	v := jctval.Array()

	p.skipWhitespace()
	if c, ok := p.peek(); ok && c == ']' {
		p.pos++
		return v, nil
	}

	for {
		p.skipWhitespace()
		elem, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		v.Append(elem)

		p.skipWhitespace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unexpected end of input in array")
		}
		if c == ']' {
			p.pos++
			return v, nil
		}
		if c == ',' {
			p.pos++
			continue
		}
		return nil, p.errorf("expected ',' or ']' in array, got %q", string(c))
	}
}

// parseString decodes a quoted string in two passes: the first scan
// locates the closing quote and computes the unescaped length (every
// escape sequence collapses to one output byte), the second fills an
// exactly-sized buffer.
func (p *parser) parseString() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}

	start := p.pos
	outLen := 0
	for {
		if p.pos >= len(p.data) {
			return "", p.errorf("unterminated string")
		}
		b := p.data[p.pos]
		if b == '"' {
			break
		}
		if b == '\\' {
			if p.pos+1 >= len(p.data) {
				return "", p.errorf("unterminated escape sequence")
			}
			p.pos += 2
		} else {
			p.pos++
		}
		outLen++
	}
	end := p.pos
	p.pos++ // closing quote

	buf := make([]byte, outLen)
	j := 0
	for i := start; i < end; i++ {
		b := p.data[i]
		if b == '\\' {
			i++
			buf[j] = unescapeByte(p.data[i])
		} else {
			buf[j] = b
		}
		j++
	}
	return string(buf), nil
}

// unescapeByte maps the byte after a backslash to its decoded form.
// Unknown escapes (including \u, which is never decoded) yield the
// escaped byte itself.
func unescapeByte(b byte) byte {
	switch b {
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	default:
		return b
	}
}

func (p *parser) parseKeyword() (*jctval.Value, error) {
	switch {
	case p.hasPrefix("true"):
		p.pos += 4
		return jctval.Boolean(true), nil
	case p.hasPrefix("false"):
		p.pos += 5
		return jctval.Boolean(false), nil
	case p.hasPrefix("null"):
		p.pos += 4
		return jctval.Null(), nil
	default:
		return nil, p.errorf("invalid literal")
	}
}

func (p *parser) hasPrefix(lit string) bool {
	return p.pos+len(lit) <= len(p.data) && string(p.data[p.pos:p.pos+len(lit)]) == lit
}

// parseNumber consumes an optional sign, digits, at most one decimal
// point, and at most one exponent, then converts the slice with the
// standard float parser.
func (p *parser) parseNumber() (*jctval.Value, error) {
	start := p.pos

	if c, ok := p.peek(); ok && (c == '-' || c == '+') {
		p.pos++
	}
	p.consumeDigits()
	if c, ok := p.peek(); ok && c == '.' {
		p.pos++
		p.consumeDigits()
	}
	if c, ok := p.peek(); ok && (c == 'e' || c == 'E') {
		p.pos++
		if c, ok := p.peek(); ok && (c == '-' || c == '+') {
			p.pos++
		}
		p.consumeDigits()
	}

	raw := string(p.data[start:p.pos])
	if raw == "" {
		return nil, p.errorf("unexpected character %q", string(p.data[start]))
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, jcterr.Wrap(jcterr.ParseError, start,
			fmt.Sprintf("invalid number %q", raw), err)
	}
	return jctval.Number(d), nil
}

func (p *parser) consumeDigits() {
	for p.pos < len(p.data) && p.data[p.pos] >= '0' && p.data[p.pos] <= '9' {
		p.pos++
	}
}
