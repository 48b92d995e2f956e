package matching

import "strings"

type DegreeLevel string

const (
	DegreePhD       DegreeLevel = "phd"
	DegreeMasters   DegreeLevel = "masters"
	DegreeBachelors DegreeLevel = "bachelors"
	DegreeAssociate DegreeLevel = "associate"
	DegreeOther     DegreeLevel = "other"
)

// Rules are checked in priority order. Long markers match anywhere in the
// text; abbreviations only match a whole token, so "mathematics" is not a
// master's degree.
var degreeRules = []struct {
	level   DegreeLevel
	markers []string
	abbrevs []string
}{
	{DegreePhD, []string{"phd", "ph.d", "doctor"}, nil},
	{DegreeMasters, []string{"master", "mba"}, []string{"ms", "m.s", "msc", "m.sc", "ma", "m.a", "meng", "m.eng"}},
	{DegreeBachelors, []string{"bachelor"}, []string{"bs", "b.s", "bsc", "b.sc", "ba", "b.a", "beng", "b.eng", "btech", "b.tech"}},
	{DegreeAssociate, []string{"associate"}, []string{"a.s", "a.a", "aas", "a.a.s"}},
}

// NormalizeDegree maps free-text degree names onto the fixed hierarchy.
func NormalizeDegree(text string) DegreeLevel {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return DegreeOther
	}
	tokens := Tokens(lower)
	for _, rule := range degreeRules {
		for _, m := range rule.markers {
			if strings.Contains(lower, m) {
				return rule.level
			}
		}
		for _, a := range rule.abbrevs {
			if _, ok := tokens[a]; ok {
				return rule.level
			}
		}
	}
	return DegreeOther
}
