package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonDigitRe    = regexp.MustCompile(`\D`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	countryPrefix = "260"
)

// NormalizePhone reduces a phone number to its bare local-subscriber
// digits: every non-digit stripped, then the country-code prefix and a
// single leading zero removed. Normalizing an already-normalized number
// returns it unchanged.
func NormalizePhone(raw string) string {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if strings.HasPrefix(digits, countryPrefix) && len(digits) > 9 {
		digits = strings.TrimPrefix(digits, countryPrefix)
	}
	if strings.HasPrefix(digits, "0") && len(digits) > 1 {
		digits = digits[1:]
	}
	return digits
}

// NormalizeName lower-cases, trims, strips diacritics and collapses
// whitespace so that similarity comparisons see a stable form.
func NormalizeName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return s
	}
	s = stripDiacritics(s)
	return whitespaceRe.ReplaceAllString(s, " ")
}

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func NormalizeNationalID(raw string) string {
	return strings.TrimSpace(raw)
}

// stripDiacritics removes combining marks after NFD decomposition, so
// "José" compares equal to "Jose".
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
