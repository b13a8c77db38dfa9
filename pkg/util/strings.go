package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// thousandsRe matches numbers grouped with comma thousands separators.
var thousandsRe = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// missingMarkers are cell values providers use for "no observation".
var missingMarkers = map[string]struct{}{
	"":     {},
	".":    {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
}

// ParseNumber parses a numeric cell. ok is false for missing markers
// (FRED writes ".", OWID leaves cells empty); err is set for anything else
// that is not a number. Commas are accepted only as thousands separators,
// so a decimal comma such as "1,5" is an error.
func ParseNumber(s string) (v float64, ok bool, err error) {
	s = strings.TrimSpace(s)
	if _, missing := missingMarkers[strings.ToLower(s)]; missing {
		return 0, false, nil
	}
	if strings.Contains(s, ",") {
		if !thousandsRe.MatchString(s) {
			return 0, false, fmt.Errorf("ambiguous number %q", s)
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
