package domain

import "fmt"

// LoadError reports a missing, malformed, or incomplete input file. Row is
// 1-based including the header, 0 when the error is not tied to a row.
type LoadError struct {
	File string
	Row  int
	Msg  string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("load %s: row %d: %s", e.File, e.Row, e.Msg)
	}
	return fmt.Sprintf("load %s: %s", e.File, e.Msg)
}

func (e *LoadError) Unwrap() error { return e.Err }

// UnknownStateError reports a state abbreviation missing from the fixed
// abbreviation table, which would produce an unjoinable region key.
type UnknownStateError struct {
	Abbrev string
	FIPS   string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("unknown state abbreviation %q (county FIPS %s)", e.Abbrev, e.FIPS)
}
