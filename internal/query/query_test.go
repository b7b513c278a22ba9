package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnthonyMichaelTDM/mecomp/internal/merrors"
	"github.com/AnthonyMichaelTDM/mecomp/internal/store"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		`title = "Desolation Row"`,
		`genre ANYINSIDE ["rock", "blues"]`,
		`(artist CONTAINS "Dylan") AND (release_year >= 1965)`,
		`album_artist ALLLIKE "band" OR title LIKE "song"`,
	}

	for _, src := range cases {
		clause, err := Parse(src)
		require.NoError(t, err, src)

		reparsed, err := Parse(clause.String())
		require.NoError(t, err, clause.String())

		assert.Equal(t, clause.String(), reparsed.String(), "parse(compile(q)) should equal q semantically")
	}
}

func TestParseLocationAnnotatedError(t *testing.T) {
	_, err := Parse(`title ===`)
	require.Error(t, err)

	// the second '=' (offset 7) is where a value was expected.
	var qerr *merrors.InvalidQueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, 7, qerr.Location)
}

func TestCompileScalarComparison(t *testing.T) {
	year := int32(1965)
	song := store.Song{Title: "Like a Rolling Stone", Artist: []string{"Bob Dylan"}, Genre: []string{"rock", "folk"}, ReleaseYear: &year}

	clause, err := Parse(`title = "Like a Rolling Stone"`)
	require.NoError(t, err)
	pred, err := Compile(clause)
	require.NoError(t, err)
	assert.True(t, pred(song))

	clause, err = Parse(`release_year > 1970`)
	require.NoError(t, err)
	pred, err = Compile(clause)
	require.NoError(t, err)
	assert.False(t, pred(song))
}

func TestCompileSetValuedField(t *testing.T) {
	song := store.Song{Genre: []string{"rock", "folk"}}

	clause, err := Parse(`genre ANYINSIDE ["rock", "blues"]`)
	require.NoError(t, err)
	pred, err := Compile(clause)
	require.NoError(t, err)
	assert.True(t, pred(song))

	clause, err = Parse(`genre ALLINSIDE ["rock", "blues"]`)
	require.NoError(t, err)
	pred, err = Compile(clause)
	require.NoError(t, err)
	assert.False(t, pred(song))

	clause, err = Parse(`genre NONEINSIDE ["metal", "jazz"]`)
	require.NoError(t, err)
	pred, err = Compile(clause)
	require.NoError(t, err)
	assert.True(t, pred(song))
}

func TestCompileAndOr(t *testing.T) {
	song := store.Song{Title: "Hurricane", Artist: []string{"Bob Dylan"}}

	clause, err := Parse(`(title = "Hurricane") AND (artist CONTAINS "Bob Dylan")`)
	require.NoError(t, err)
	pred, err := Compile(clause)
	require.NoError(t, err)
	assert.True(t, pred(song))

	clause, err = Parse(`(title = "Nope") OR (artist CONTAINS "Bob Dylan")`)
	require.NoError(t, err)
	pred, err = Compile(clause)
	require.NoError(t, err)
	assert.True(t, pred(song))
}
