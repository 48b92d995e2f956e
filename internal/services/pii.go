package services

import "regexp"

type piiPattern struct {
	re          *regexp.Regexp
	replacement string
}

// Order matters: URLs and profiles go before phone numbers so digits inside
// links are not mistaken for phones.
var piiPatterns = []piiPattern{
	{regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), "[EMAIL]"},
	{regexp.MustCompile(`(?i)(?:linkedin\.com/in/|github\.com/)[A-Za-z0-9_-]+/?`), "[PROFILE]"},
	{regexp.MustCompile(`(?i)\bhttps?://\S+|\bwww\.\S+`), "[URL]"},
	{regexp.MustCompile(`(?:\+?1[-.\s]?)?(?:\([0-9]{3}\)|[0-9]{3})[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`), "[PHONE]"},
	{regexp.MustCompile(`(?i)\b\d{1,5}\s+(?:[a-z0-9]+\s){0,3}(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|way)\b\.?`), "[ADDRESS]"},
	{regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`), "[ZIP]"},
}

// MaskPII replaces contact details in free text before it is sent to a model.
func MaskPII(text string) string {
	for _, p := range piiPatterns {
		text = p.re.ReplaceAllString(text, p.replacement)
	}
	return text
}
