// Package query implements the dynamic-playlist query language of spec.md
// §4.4: a small recursive-descent parser producing a Leaf/Compound AST, a
// Compile step turning that AST into a predicate over store.Song, and a
// canonical String form so storage round-trips (parse(compile(q)) ≡ q,
// spec.md invariant 5).
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names a Song-derived attribute a Leaf clause can compare against.
type Field string

const (
	FieldTitle       Field = "title"
	FieldArtist      Field = "artist"
	FieldAlbumArtist Field = "album_artist"
	FieldAlbum       Field = "album"
	FieldGenre       Field = "genre"
	FieldReleaseYear Field = "release_year"
)

// setValuedFields require flattening before CONTAINS/LIKE comparisons
// (spec.md §4.4 "Compilation").
var setValuedFields = map[Field]bool{
	FieldArtist:      true,
	FieldAlbumArtist: true,
	FieldGenre:       true,
}

// Operator is one of the comparison operators spec.md §4.4 enumerates.
type Operator string

const (
	OpEq         Operator = "="
	OpNeq        Operator = "!="
	OpLt         Operator = "<"
	OpLte        Operator = "<="
	OpGt         Operator = ">"
	OpGte        Operator = ">="
	OpContains   Operator = "CONTAINS"
	OpAnyInside  Operator = "ANYINSIDE"
	OpAllInside  Operator = "ALLINSIDE"
	OpNoneInside Operator = "NONEINSIDE"
	OpLike       Operator = "LIKE"
	OpAnyLike    Operator = "ANYLIKE"
	OpAllLike    Operator = "ALLLIKE"
)

// ValueKind discriminates the four shapes a Value can take.
type ValueKind int

const (
	ValueField ValueKind = iota
	ValueString
	ValueInt
	ValueSet
)

// Value is one of: a field reference, a string literal, an integer literal,
// or a set literal of values (spec.md §4.4).
type Value struct {
	Kind  ValueKind
	Field Field
	Str   string
	Int   int64
	Set   []Value
}

func FieldValue(f Field) Value   { return Value{Kind: ValueField, Field: f} }
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }
func IntValue(i int64) Value     { return Value{Kind: ValueInt, Int: i} }
func SetValue(vs ...Value) Value { return Value{Kind: ValueSet, Set: vs} }

// String renders v in its canonical storage form.
func (v Value) String() string {
	switch v.Kind {
	case ValueField:
		return string(v.Field)
	case ValueString:
		return strconv.Quote(v.Str)
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueSet:
		parts := make([]string, len(v.Set))
		for i, el := range v.Set {
			parts[i] = el.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

// CompoundKind is AND or OR (spec.md §4.4).
type CompoundKind string

const (
	KindAnd CompoundKind = "AND"
	KindOr  CompoundKind = "OR"
)

// Clause is either a Leaf or a Compound node of the query AST.
type Clause interface {
	isClause()
	String() string
}

// Leaf is a single comparison: left op right.
type Leaf struct {
	Left  Value
	Op    Operator
	Right Value
}

func (Leaf) isClause() {}

func (l Leaf) String() string {
	return fmt.Sprintf("%s %s %s", l.Left.String(), l.Op, l.Right.String())
}

// Compound is a boolean combination of one or more child clauses.
type Compound struct {
	Kind     CompoundKind
	Children []Clause
}

func (Compound) isClause() {}

func (c Compound) String() string {
	parts := make([]string, len(c.Children))
	for i, ch := range c.Children {
		parts[i] = ch.String()
	}
	sep := fmt.Sprintf(" %s ", c.Kind)
	return "(" + strings.Join(parts, sep) + ")"
}
