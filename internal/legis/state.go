package legis

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// StateCode strips every character that is not an ASCII letter from a
// directory name. Accented letters are decomposed first so "Ç" keeps its "C".
//
//	StateCode("AK")        // "AK"
//	StateCode("US-2")      // "US"
//	StateCode("2021-2022") // ""
func StateCode(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
