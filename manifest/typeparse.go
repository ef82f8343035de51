package manifest

import (
	"fmt"

	"github.com/skeinflow/skein/ir"
)

// ParseType parses the compact channel type grammar:
//
//	type    := primary ('[' count ']')*
//	primary := 'u' width | 's' width | '(' type (',' type)* ')'
//
// Examples: u8, s32, bits of any width like u13, (u8, s16), u32[4],
// (u8, u8)[2]. Array suffixes apply left to right, innermost first.
func ParseType(s string) (ir.Type, error) {
	p := &typeParser{src: s}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing input %q", p.src[p.pos:])
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("manifest: type %q: %s", p.src, fmt.Sprintf(format, args...))
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) parseType() (ir.Type, error) {
	t, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if p.peek() != '[' {
			return t, nil
		}
		p.pos++
		count, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		if count <= 0 {
			return nil, p.errorf("array count must be positive, got %d", count)
		}
		p.skipSpace()
		if p.peek() != ']' {
			return nil, p.errorf("missing ']'")
		}
		p.pos++
		t = ir.Array(t, count)
	}
}

func (p *typeParser) parsePrimary() (ir.Type, error) {
	p.skipSpace()
	switch c := p.peek(); c {
	case 'u', 's':
		p.pos++
		width, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		if width <= 0 {
			return nil, p.errorf("bit width must be positive, got %d", width)
		}
		if c == 's' {
			return ir.SignedBits(width), nil
		}
		return ir.Bits(width), nil
	case '(':
		p.pos++
		var fields []ir.Type
		for {
			f, err := p.parseType()
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
			p.skipSpace()
			switch p.peek() {
			case ',':
				p.pos++
			case ')':
				p.pos++
				return ir.Tuple(fields...), nil
			default:
				return nil, p.errorf("expected ',' or ')'")
			}
		}
	case 0:
		return nil, p.errorf("unexpected end of input")
	default:
		return nil, p.errorf("unexpected %q", string(c))
	}
}

func (p *typeParser) parseInt() (int, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errorf("expected a number at offset %d", start)
	}
	n := 0
	for _, c := range p.src[start:p.pos] {
		n = n*10 + int(c-'0')
		if n > 1<<24 {
			return 0, p.errorf("number too large: %s", p.src[start:p.pos])
		}
	}
	return n, nil
}
