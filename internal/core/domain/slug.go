package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// =============================================================================
// Name Normalization
// =============================================================================

// NormalizeName converts a display name to the URL slug used for its artwork.
//
// The stages run in a fixed order because later stages rely on earlier ones
// having removed noise:
//
//  1. StripDecorations: drop "%" and a trailing " Forme" / " Cloak"
//  2. StripSizeQualifier: "GourgeistSmall Size" -> "Gourgeist"
//  3. InsertWordBoundaries: split CamelCase and letter/digit runs
//  4. FoldMegaEvolution: "Venusaur Mega Venusaur" -> "Venusaur-Mega"
//  5. DedupWords: lower-case, drop repeated words, hyphen-join (skipped when 4 matched)
//  6. SubstituteLiterals: punctuation removal, gender symbols, accented vowels
//  7. NormalizeHyphens: lower-case, collapse and trim hyphens
//
// This is a pure function with no side effects. It never fails; names with no
// usable characters produce an empty slug.
//
// Example:
//
//	NormalizeName("CharizardMega Charizard X") // returns "charizard-mega-x"
//	NormalizeName("Nidoran♀")                  // returns "nidoran-f"
//	NormalizeName("GiratinaAltered Forme")     // returns "giratina-altered"
func NormalizeName(name string) string {
	s := StripDecorations(name)
	s = StripSizeQualifier(s)
	s = InsertWordBoundaries(s)
	if folded, ok := FoldMegaEvolution(s); ok {
		s = folded
	} else {
		s = DedupWords(s)
	}
	s = SubstituteLiterals(s)
	return NormalizeHyphens(s)
}

// formSuffixes are stripped case-insensitively from the end of a name.
var formSuffixes = []string{" forme", " cloak"}

// StripDecorations removes "%" characters and a trailing " forme" or
// " cloak" suffix (case-insensitive).
//
// Example:
//
//	StripDecorations("Zygarde50% Forme") // returns "Zygarde50"
func StripDecorations(name string) string {
	s := strings.ReplaceAll(name, "%", "")
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	for _, suffix := range formSuffixes {
		if hasSuffixFold(s, suffix) {
			return s[:len(s)-len(suffix)]
		}
	}
	return s
}

const sizeSuffix = " size"

// StripSizeQualifier removes a trailing "<Capitalized word> Size" so that
// size variants collapse to the base name. The "Size" token is matched
// case-insensitively. The name is returned unchanged when nothing would be
// left in front of the qualifier.
//
// Example:
//
//	StripSizeQualifier("GourgeistSmall Size")     // returns "Gourgeist"
//	StripSizeQualifier("Pumpkaboo Average Size")  // returns "Pumpkaboo"
func StripSizeQualifier(name string) string {
	if !hasSuffixFold(name, sizeSuffix) {
		return name
	}
	head := name[:len(name)-len(sizeSuffix)]
	start := trailingCapitalizedWord(head)
	if start <= 0 {
		return name
	}
	return strings.TrimRightFunc(head[:start], unicode.IsSpace)
}

// trailingCapitalizedWord returns the byte offset where the final
// capitalized word of s begins, or -1 if s does not end in one.
func trailingCapitalizedWord(s string) int {
	i := len(s)
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
		if unicode.IsUpper(r) {
			return i
		}
		if !unicode.IsLower(r) {
			return -1
		}
	}
	return -1
}

// InsertWordBoundaries inserts a space between a lowercase letter followed by
// an uppercase letter, and between a letter followed by a digit.
//
// Example:
//
//	InsertWordBoundaries("VenusaurMega Venusaur") // returns "Venusaur Mega Venusaur"
//	InsertWordBoundaries("Porygon2")              // returns "Porygon 2"
func InsertWordBoundaries(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	var prev rune
	for _, r := range name {
		if (unicode.IsLower(prev) && unicode.IsUpper(r)) || (unicode.IsLetter(prev) && isDigit(r)) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

const megaWord = "Mega"

// FoldMegaEvolution detects names of the shape "<X> Mega <X> [<suffix>]",
// where X repeats word for word (case-insensitive), and rewrites them to
// "<X>-Mega[-<suffix>]" with every word hyphen-joined. The boolean result
// reports whether the pattern matched; unmatched names are returned as is.
//
// Example:
//
//	FoldMegaEvolution("Charizard Mega Charizard X") // returns "Charizard-Mega-X", true
//	FoldMegaEvolution("Mega Venusaur")              // returns "Mega Venusaur", false
func FoldMegaEvolution(name string) (string, bool) {
	words := strings.Fields(name)
	for i := 1; i < len(words); i++ {
		if !strings.EqualFold(words[i], megaWord) {
			continue
		}
		base, rest := words[:i], words[i+1:]
		if len(rest) < len(base) || !wordsEqualFold(base, rest[:len(base)]) {
			continue
		}
		parts := make([]string, 0, len(base)+1+len(rest)-len(base))
		parts = append(parts, base...)
		parts = append(parts, megaWord)
		parts = append(parts, rest[len(base):]...)
		return strings.Join(parts, "-"), true
	}
	return name, false
}

// DedupWords splits on runs of whitespace and hyphens, lower-cases every
// word, drops repeats (first occurrence wins) and joins with single hyphens.
//
// Example:
//
//	DedupWords("Hoopa Hoopa Confined") // returns "hoopa-confined"
func DedupWords(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
	seen := make(map[string]struct{}, len(words))
	unique := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(w)
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		unique = append(unique, w)
	}
	return strings.Join(unique, "-")
}

// literalReplacer holds the fixed substitution table: dropped punctuation,
// gender symbols and the transliterated accented vowels.
var literalReplacer = strings.NewReplacer(
	".", "",
	"'", "",
	"’", "",
	`"`, "",
	"♀", "-f",
	"♂", "-m",
	"é", "e", "É", "e",
	"á", "a", "Á", "a",
	"í", "i", "Í", "i",
	"ó", "o", "Ó", "o",
	"ú", "u", "Ú", "u",
)

// SubstituteLiterals applies the fixed character substitution table.
//
// Example:
//
//	SubstituteLiterals("nidoran♀") // returns "nidoran-f"
//	SubstituteLiterals("flabébé")  // returns "flabebe"
func SubstituteLiterals(name string) string {
	return literalReplacer.Replace(name)
}

// NormalizeHyphens lower-cases the slug, turns whitespace into hyphens,
// drops any remaining ASCII character that is not a letter, digit or hyphen,
// collapses hyphen runs and trims hyphens from both ends. Non-ASCII
// characters outside the substitution table pass through.
//
// Example:
//
//	NormalizeHyphens("--Mr--Mime-") // returns "mr-mime"
func NormalizeHyphens(slug string) string {
	slug = strings.ToLower(slug)
	var b strings.Builder
	b.Grow(len(slug))
	lastHyphen := false
	for _, r := range slug {
		switch {
		case r == '-' || unicode.IsSpace(r):
			if !lastHyphen {
				b.WriteByte('-')
			}
			lastHyphen = true
		case r < utf8.RuneSelf && !isSlugByte(byte(r)):
			// dropped
		default:
			b.WriteRune(r)
			lastHyphen = false
		}
	}
	return strings.Trim(b.String(), "-")
}

// =============================================================================
// Helpers
// =============================================================================

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

func wordsEqualFold(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSlugByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
