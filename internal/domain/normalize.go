package domain

import "strings"

// areaSuffixes are the county-equivalent designators the population dataset
// appends to Area_Name. The polygon table omits them, so one trailing suffix
// is stripped during normalization. Longest-first so "Census Area" is not
// half-stripped by a shorter suffix.
var areaSuffixes = []string{
	" census area",
	" municipality",
	" borough",
	" parish",
	" county",
}

// subregionAliases maps normalized census spellings to the polygon table's
// spelling for counties the two sources disagree on. Case folding and
// punctuation removal handle most mismatches ("O'Brien" -> "obrien",
// "St. Louis" -> "st louis"); these are the survivors, mostly compound names
// the map table splits or joins differently.
var subregionAliases = map[string]string{
	"dekalb":   "de kalb",
	"dupage":   "du page",
	"laporte":  "la porte",
	"lamoure":  "la moure",
	"dona ana": "dona ana", // census spells it with the eñe; folded below
}

// punctFolder removes the punctuation and diacritics that differ between the
// census and polygon naming conventions.
var punctFolder = strings.NewReplacer(
	".", "",
	"'", "",
	"ñ", "n",
)

// NormalizeRegion maps a state abbreviation to the polygon table's region key:
// the lowercase full state name. Returns *UnknownStateError for abbreviations
// outside the fixed table; fips is only used for the error message.
func NormalizeRegion(abbrev, fips string) (string, error) {
	name, ok := stateNames[strings.ToUpper(strings.TrimSpace(abbrev))]
	if !ok {
		return "", &UnknownStateError{Abbrev: abbrev, FIPS: fips}
	}
	return name, nil
}

// NormalizeSubregion maps a population Area_Name to the polygon table's
// subregion key: lowercased, one trailing county-equivalent suffix stripped,
// punctuation folded, then passed through the alias table.
// "Los Angeles County" -> "los angeles"; a name with no suffix is unchanged
// beyond case and punctuation.
//
// "city" is not a stripped suffix. Independent cities are
// county-equivalents in their own right and the polygon table keys them with
// the word kept ("baltimore city", "richmond city"), which is what keeps them
// distinct from the same-named counties ("baltimore"). Carson City NV falls
// out the same way.
func NormalizeSubregion(areaName string) string {
	name := strings.ToLower(strings.TrimSpace(areaName))
	for _, suffix := range areaSuffixes {
		if trimmed, ok := strings.CutSuffix(name, suffix); ok {
			name = trimmed
			break
		}
	}
	name = strings.TrimSpace(punctFolder.Replace(name))
	if alias, ok := subregionAliases[name]; ok {
		return alias
	}
	return name
}
