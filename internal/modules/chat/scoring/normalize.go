package scoring

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lowercases s, strips Vietnamese diacritics and collapses whitespace so
// "Hóa học", "hoá học" and "hoa hoc" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	out = strings.NewReplacer("đ", "d", "Đ", "d").Replace(out)
	return strings.Join(strings.Fields(out), " ")
}

// subjectKey folds s and splits it into words on anything other than letters,
// digits and '&', so "Toán:" and "GDKT&PL" keep their usable part.
func subjectKey(s string) string {
	out := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' {
			return r
		}
		return ' '
	}, fold(s))
	return strings.Join(strings.Fields(out), " ")
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type foldedAlias struct {
	subject string
	alias   string
}

var foldedAliases = buildFoldedAliases()

func buildFoldedAliases() []foldedAlias {
	var out []foldedAlias
	for subject, aliases := range subjectAliases {
		for _, a := range aliases {
			out = append(out, foldedAlias{subject: subject, alias: subjectKey(a)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].alias == out[j].alias {
			return out[i].subject < out[j].subject
		}
		return out[i].alias < out[j].alias
	})
	return out
}

// CanonicalSubject maps a free-form subject label to its canonical key.
// An exact alias wins; otherwise the longest alias found as a whole-word
// substring of the label is used, so "Địa lý" resolves to địa rather than lý.
func CanonicalSubject(label string) (string, bool) {
	key := subjectKey(label)
	if key == "" {
		return "", false
	}
	for _, fa := range foldedAliases {
		if fa.alias == key {
			return fa.subject, true
		}
	}
	padded := " " + key + " "
	best, bestLen := "", 0
	for _, fa := range foldedAliases {
		if len(fa.alias) <= bestLen {
			continue
		}
		if strings.Contains(padded, " "+fa.alias+" ") {
			best, bestLen = fa.subject, len(fa.alias)
		}
	}
	return best, best != ""
}
