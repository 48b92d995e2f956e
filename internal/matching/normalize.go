package matching

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// StringSet holds trimmed, lowercased strings. The zero value is not usable; use NewStringSet.
type StringSet map[string]struct{}

func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	s.Add(items...)
	return s
}

// Normalize trims and lowercases a value before it enters a set.
func Normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func (s StringSet) Add(items ...string) {
	for _, item := range items {
		if n := Normalize(item); n != "" {
			s[n] = struct{}{}
		}
	}
}

func (s StringSet) Has(item string) bool {
	_, ok := s[Normalize(item)]
	return ok
}

func (s StringSet) Len() int {
	return len(s)
}

func (s StringSet) Intersect(other StringSet) StringSet {
	out := make(StringSet)
	for k := range s {
		if _, ok := other[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// Difference returns the members of s that are not in other.
func (s StringSet) Difference(other StringSet) StringSet {
	out := make(StringSet)
	for k := range s {
		if _, ok := other[k]; !ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func (s StringSet) Union(other StringSet) StringSet {
	out := make(StringSet, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Sorted returns the members in ascending order. It never returns nil.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var (
	wordPattern    = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	keywordPattern = regexp.MustCompile(`^[a-z]{3,}$`)
	yearsPattern   = regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)`)
	tokenSplitter  = regexp.MustCompile(`[^a-z0-9.]+`)
)

var stopWords = NewStringSet("the", "and", "for", "with", "this", "that", "from", "were", "been")

// Keywords lowercases each text and collects the words of three or more
// letters that are not stop words. Words are split on Unicode letters and
// digits, and a word with any character outside a-z is dropped whole.
func Keywords(texts ...string) StringSet {
	out := make(StringSet)
	for _, text := range texts {
		for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
			if !keywordPattern.MatchString(word) {
				continue
			}
			if _, stop := stopWords[word]; !stop {
				out[word] = struct{}{}
			}
		}
	}
	return out
}

// ParseYears returns the first integer followed by "year(s)" or "yr(s)",
// or 0 when the text names no figure.
func ParseYears(text string) int {
	m := yearsPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Tokens splits lowercased text into whole tokens, keeping inner dots
// so abbreviations like "b.s." survive as "b.s".
func Tokens(text string) StringSet {
	out := make(StringSet)
	for _, tok := range tokenSplitter.Split(strings.ToLower(text), -1) {
		tok = strings.Trim(tok, ".")
		if tok != "" {
			out[tok] = struct{}{}
		}
	}
	return out
}

// VocabularyIn returns each vocabulary term that occurs as a substring of text.
func VocabularyIn(text string, vocabulary []string) StringSet {
	text = strings.ToLower(text)
	out := make(StringSet)
	for _, term := range vocabulary {
		if strings.Contains(text, term) {
			out[term] = struct{}{}
		}
	}
	return out
}

func joinLower(parts ...string) string {
	return strings.ToLower(strings.Join(parts, " "))
}
