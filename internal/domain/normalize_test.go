package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRegion(t *testing.T) {
	t.Run("maps abbreviation to lowercase full name", func(t *testing.T) {
		region, err := NormalizeRegion("CA", "06001")
		require.NoError(t, err)
		assert.Equal(t, "california", region)
	})

	t.Run("trims and upcases input", func(t *testing.T) {
		region, err := NormalizeRegion(" tx ", "48201")
		require.NoError(t, err)
		assert.Equal(t, "texas", region)
	})

	t.Run("covers territories", func(t *testing.T) {
		region, err := NormalizeRegion("PR", "72001")
		require.NoError(t, err)
		assert.Equal(t, "puerto rico", region)
	})

	t.Run("unknown abbreviation", func(t *testing.T) {
		_, err := NormalizeRegion("ZZ", "99999")
		var unknownErr *UnknownStateError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, "ZZ", unknownErr.Abbrev)
		assert.Equal(t, "99999", unknownErr.FIPS)
	})
}

func TestNormalizeSubregion(t *testing.T) {
	tests := []struct {
		name string
		area string
		want string
	}{
		{"strips County suffix", "Los Angeles County", "los angeles"},
		{"single word", "Alameda County", "alameda"},
		{"no suffix is a no-op", "District of Columbia", "district of columbia"},
		{"parish", "Acadia Parish", "acadia"},
		{"borough", "North Slope Borough", "north slope"},
		{"census area", "Yukon-Koyukuk Census Area", "yukon-koyukuk"},
		{"independent city keeps the word", "Richmond city", "richmond city"},
		{"St. Louis city", "St. Louis city", "st louis city"},
		{"Carson City keeps its name", "Carson City", "carson city"},
		{"periods folded", "St. Louis County", "st louis"},
		{"apostrophes folded", "O'Brien County", "obrien"},
		{"possessive", "Prince George's County", "prince georges"},
		{"diacritics folded", "Doña Ana County", "dona ana"},
		{"alias table", "DeKalb County", "de kalb"},
		{"alias after folding", "DuPage County", "du page"},
		{"only trailing suffix stripped", "County Line County", "county line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSubregion(tt.area))
		})
	}
}

// Several states have independent cities that share a name with a separate
// county. Normalization must keep the pair's keys distinct or the later joins
// merge two county-equivalents into one.
func TestNormalizeSubregionIndependentCitiesStayDistinct(t *testing.T) {
	pairs := [][2]string{
		{"Baltimore County", "Baltimore city"},
		{"St. Louis County", "St. Louis city"},
		{"Richmond County", "Richmond city"},
		{"Fairfax County", "Fairfax city"},
		{"Franklin County", "Franklin city"},
		{"Roanoke County", "Roanoke city"},
		{"Bedford County", "Bedford city"},
	}
	for _, pair := range pairs {
		county := NormalizeSubregion(pair[0])
		city := NormalizeSubregion(pair[1])
		assert.NotEqual(t, county, city, "%q and %q must map to different keys", pair[0], pair[1])
	}
}

func TestNormalizeFIPS(t *testing.T) {
	assert.Equal(t, "06001", NormalizeFIPS("6001"))
	assert.Equal(t, "06001", NormalizeFIPS(" 06001 "))
	assert.Equal(t, "48201", NormalizeFIPS("48201"))
	assert.Equal(t, "", NormalizeFIPS(""))
}

func TestIsStateTotal(t *testing.T) {
	assert.True(t, IsStateTotal("06000"))
	assert.True(t, IsStateTotal("00000"))
	assert.False(t, IsStateTotal("06001"))
	assert.False(t, IsStateTotal("6000"))
}
