package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AnthonyMichaelTDM/mecomp/internal/merrors"
)

func newErr(pos int, format string, args ...interface{}) error {
	return &merrors.InvalidQueryError{Location: pos, Msg: fmt.Sprintf(format, args...)}
}

// parser is a recursive-descent parser over the grammar documented in
// grammar.go, producing the Leaf/Compound AST of spec.md §4.4. A parse
// failure is location-annotated (spec.md §4.4 "parsing fails with a
// location-annotated error").
type parser struct {
	lex *lexer
	cur token
}

// Parse parses src (a dynamic playlist's canonical storage form) into a
// Clause.
func Parse(src string) (Clause, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	clause, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, newErr(p.cur.pos, "unexpected trailing input %q", p.cur.text)
	}
	return clause, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) parseOr() (Clause, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []Clause{left}
	for p.cur.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return Compound{Kind: KindOr, Children: children}, nil
}

func (p *parser) parseAnd() (Clause, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	children := []Clause{left}
	for p.cur.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return Compound{Kind: KindAnd, Children: children}, nil
}

func (p *parser) parsePrimary() (Clause, error) {
	if p.cur.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, newErr(p.cur.pos, "expected ')'")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseLeaf()
}

func (p *parser) parseLeaf() (Clause, error) {
	left, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokOperator {
		return nil, newErr(p.cur.pos, "expected a comparison operator")
	}
	op := Operator(p.cur.text)
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return Leaf{Left: left, Op: op, Right: right}, nil
}

func (p *parser) parseValue() (Value, error) {
	switch p.cur.kind {
	case tokString:
		v := StringValue(p.cur.text)
		return v, p.advance()
	case tokInt:
		n, err := strconv.ParseInt(p.cur.text, 10, 64)
		if err != nil {
			return Value{}, newErr(p.cur.pos, "invalid integer literal %q", p.cur.text)
		}
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		return IntValue(n), nil
	case tokLBracket:
		return p.parseSet()
	case tokIdent:
		f, err := parseField(p.cur.text, p.cur.pos)
		if err != nil {
			return Value{}, err
		}
		return FieldValue(f), p.advance()
	default:
		return Value{}, newErr(p.cur.pos, "expected a value")
	}
}

func (p *parser) parseSet() (Value, error) {
	if err := p.advance(); err != nil { // consume '['
		return Value{}, err
	}
	var elems []Value
	if p.cur.kind != tokRBracket {
		for {
			v, err := p.parseValue()
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, v)
			if p.cur.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return Value{}, err
			}
		}
	}
	if p.cur.kind != tokRBracket {
		return Value{}, newErr(p.cur.pos, "expected ']'")
	}
	return SetValue(elems...), p.advance()
}

var knownFields = map[string]Field{
	string(FieldTitle):       FieldTitle,
	string(FieldArtist):      FieldArtist,
	string(FieldAlbumArtist): FieldAlbumArtist,
	string(FieldAlbum):       FieldAlbum,
	string(FieldGenre):       FieldGenre,
	string(FieldReleaseYear): FieldReleaseYear,
}

func parseField(text string, pos int) (Field, error) {
	f, ok := knownFields[strings.ToLower(text)]
	if !ok {
		return "", newErr(pos, "unknown field %q", text)
	}
	return f, nil
}
