package namesweep

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sanitizer derives the canonical ASCII form of a single path component.
type Sanitizer interface {
	Normalize(name string) string
	StripSpecials(name string) string
	Canonicalize(name string) string
}

// UnicodeSanitizer maps raw names to their canonical ASCII form.
type UnicodeSanitizer struct {
	replacer *strings.Replacer
	foldCase bool
}

// A transform chain keeps per-call buffers, so each call gets its own.
func newASCIIStripper() transform.Transformer {
	return transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r >= utf8.RuneSelf })),
	)
}

func NewUnicodeSanitizer(config *Config) *UnicodeSanitizer {
	table := make(map[string]string, len(config.Substitutions))
	for from, to := range config.Substitutions {
		table[norm.NFC.String(from)] = to
	}

	// Longest keys first so multi-rune substitutions win over their prefixes.
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, table[k])
	}

	return &UnicodeSanitizer{
		replacer: strings.NewReplacer(pairs...),
		foldCase: config.FoldCase,
	}
}

func (s *UnicodeSanitizer) Normalize(name string) string {
	return norm.NFC.String(name)
}

// StripSpecials returns name reduced to 7-bit ASCII with the order of the
// surviving characters preserved.
func (s *UnicodeSanitizer) StripSpecials(name string) string {
	name = s.replacer.Replace(s.Normalize(name))
	if s.foldCase {
		name = strings.ToLower(name)
	}

	result, _, err := transform.String(newASCIIStripper(), name)
	if err != nil {
		return asciiBytes(name)
	}
	return result
}

func (s *UnicodeSanitizer) Canonicalize(name string) string {
	return s.Normalize(s.StripSpecials(name))
}

func asciiBytes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] < utf8.RuneSelf {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
