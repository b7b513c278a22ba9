package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

// Predicate is a compiled selection predicate over the Song table (spec.md
// §4.4 "Compilation").
type Predicate func(store.Song) bool

// Compile turns clause into a Predicate. Set-valued fields (artist,
// album_artist, genre) are flattened before CONTAINS/LIKE-family comparisons,
// per spec.md §4.4.
func Compile(clause Clause) (Predicate, error) {
	switch c := clause.(type) {
	case Leaf:
		return compileLeaf(c)
	case Compound:
		preds := make([]Predicate, len(c.Children))
		for i, child := range c.Children {
			p, err := Compile(child)
			if err != nil {
				return nil, err
			}
			preds[i] = p
		}
		switch c.Kind {
		case KindAnd:
			return func(s store.Song) bool {
				for _, p := range preds {
					if !p(s) {
						return false
					}
				}
				return true
			}, nil
		case KindOr:
			return func(s store.Song) bool {
				for _, p := range preds {
					if p(s) {
						return true
					}
				}
				return false
			}, nil
		default:
			return nil, fmt.Errorf("unknown compound kind %q", c.Kind)
		}
	default:
		return nil, fmt.Errorf("unknown clause type %T", clause)
	}
}

func compileLeaf(l Leaf) (Predicate, error) {
	if l.Left.Kind != ValueField {
		return nil, fmt.Errorf("left side of a comparison must be a field reference, got %v", l.Left)
	}
	field := l.Left.Field
	right := l.Right

	if setValuedFields[field] {
		return compileSetFieldLeaf(field, l.Op, right)
	}
	return compileScalarFieldLeaf(field, l.Op, right)
}

func compileSetFieldLeaf(field Field, op Operator, right Value) (Predicate, error) {
	switch op {
	case OpContains:
		want := strings.ToLower(right.Str)
		return func(s store.Song) bool {
			for _, v := range fieldStrings(s, field) {
				if strings.ToLower(v) == want {
					return true
				}
			}
			return false
		}, nil
	case OpAnyLike:
		want := strings.ToLower(right.Str)
		return func(s store.Song) bool {
			for _, v := range fieldStrings(s, field) {
				if strings.Contains(strings.ToLower(v), want) {
					return true
				}
			}
			return false
		}, nil
	case OpAllLike:
		want := strings.ToLower(right.Str)
		return func(s store.Song) bool {
			vals := fieldStrings(s, field)
			if len(vals) == 0 {
				return false
			}
			for _, v := range vals {
				if !strings.Contains(strings.ToLower(v), want) {
					return false
				}
			}
			return true
		}, nil
	case OpAnyInside, OpAllInside, OpNoneInside:
		set := stringSet(right)
		return func(s store.Song) bool {
			vals := fieldStrings(s, field)
			return evalInside(op, vals, set)
		}, nil
	case OpEq, OpNeq:
		set := stringSet(right)
		eq := func(s store.Song) bool {
			vals := fieldStrings(s, field)
			return stringSliceSetEqual(vals, set)
		}
		if op == OpNeq {
			return func(s store.Song) bool { return !eq(s) }, nil
		}
		return eq, nil
	default:
		return nil, fmt.Errorf("operator %q is not valid on set-valued field %q", op, field)
	}
}

func compileScalarFieldLeaf(field Field, op Operator, right Value) (Predicate, error) {
	switch op {
	case OpContains, OpLike, OpAnyLike, OpAllLike:
		want := strings.ToLower(right.Str)
		return func(s store.Song) bool {
			return strings.Contains(strings.ToLower(fieldString(s, field)), want)
		}, nil
	case OpAnyInside, OpAllInside, OpNoneInside:
		set := stringSet(right)
		return func(s store.Song) bool {
			return evalInside(op, []string{fieldString(s, field)}, set)
		}, nil
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return compileComparison(field, op, right)
	default:
		return nil, fmt.Errorf("unknown operator %q", op)
	}
}

func compileComparison(field Field, op Operator, right Value) (Predicate, error) {
	if field == FieldReleaseYear {
		var want int64
		switch right.Kind {
		case ValueInt:
			want = right.Int
		case ValueString:
			n, err := strconv.ParseInt(right.Str, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("release_year comparison requires an integer, got %q", right.Str)
			}
			want = n
		default:
			return nil, fmt.Errorf("release_year comparison requires an integer")
		}
		return func(s store.Song) bool {
			if s.ReleaseYear == nil {
				return op == OpNeq
			}
			got := int64(*s.ReleaseYear)
			return compareOrdered(op, got, want)
		}, nil
	}

	want := right.Str
	return func(s store.Song) bool {
		got := fieldString(s, field)
		switch op {
		case OpEq:
			return got == want
		case OpNeq:
			return got != want
		case OpLt:
			return got < want
		case OpLte:
			return got <= want
		case OpGt:
			return got > want
		case OpGte:
			return got >= want
		default:
			return false
		}
	}, nil
}

func compareOrdered(op Operator, got, want int64) bool {
	switch op {
	case OpEq:
		return got == want
	case OpNeq:
		return got != want
	case OpLt:
		return got < want
	case OpLte:
		return got <= want
	case OpGt:
		return got > want
	case OpGte:
		return got >= want
	default:
		return false
	}
}

// evalInside evaluates the ANYINSIDE/ALLINSIDE/NONEINSIDE family: whether
// any/all/none of vals are members of set.
func evalInside(op Operator, vals []string, set map[string]bool) bool {
	switch op {
	case OpAnyInside:
		for _, v := range vals {
			if set[strings.ToLower(v)] {
				return true
			}
		}
		return false
	case OpAllInside:
		if len(vals) == 0 {
			return false
		}
		for _, v := range vals {
			if !set[strings.ToLower(v)] {
				return false
			}
		}
		return true
	case OpNoneInside:
		for _, v := range vals {
			if set[strings.ToLower(v)] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func stringSet(v Value) map[string]bool {
	out := map[string]bool{}
	switch v.Kind {
	case ValueSet:
		for _, el := range v.Set {
			out[strings.ToLower(valueToString(el))] = true
		}
	default:
		out[strings.ToLower(valueToString(v))] = true
	}
	return out
}

func valueToString(v Value) string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	default:
		return v.String()
	}
}

func stringSliceSetEqual(vals []string, set map[string]bool) bool {
	if len(vals) != len(set) {
		return false
	}
	for _, v := range vals {
		if !set[strings.ToLower(v)] {
			return false
		}
	}
	return true
}

// fieldStrings flattens a set-valued field into its member strings.
func fieldStrings(s store.Song, field Field) []string {
	switch field {
	case FieldArtist:
		return s.Artist
	case FieldAlbumArtist:
		return s.AlbumArtist
	case FieldGenre:
		return s.Genre
	default:
		return nil
	}
}

// fieldString returns a scalar field's string representation.
func fieldString(s store.Song, field Field) string {
	switch field {
	case FieldTitle:
		return s.Title
	case FieldAlbum:
		return s.Album
	case FieldReleaseYear:
		if s.ReleaseYear == nil {
			return ""
		}
		return strconv.FormatInt(int64(*s.ReleaseYear), 10)
	default:
		return ""
	}
}
