package match

import (
	"strings"
	"unicode"
)

// Result is the three-way outcome of a wildcard match
type Result int

const (
	// NoMatch means the pattern is well formed but does not match
	NoMatch Result = iota
	// Match means the pattern matches the whole text
	Match
	// GrammarError means the pattern is malformed
	GrammarError
)

// String returns the result name
func (r Result) String() string {
	switch r {
	case NoMatch:
		return "no-match"
	case Match:
		return "match"
	case GrammarError:
		return "grammar-error"
	default:
		return "unknown"
	}
}

// SubstringMatch reports whether needle occurs anywhere in haystack, ignoring case
func SubstringMatch(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// WildcardMatch reports whether pattern matches text.
// Malformed patterns never match; use Wildcard to tell the two apart.
func WildcardMatch(pattern, text string) bool {
	return Wildcard(pattern, text) == Match
}

// Wildcard matches text against pattern and returns the three-way result.
//
// Grammar:
//
//	?        exactly one character
//	*        any run of characters, at most one per pattern
//	[a-c0x]  one character from the set; a-c is an inclusive range
//	/ or \   either separator
//	other    itself, compared case-insensitively
//
// A star jumps to the last occurrence of the token that follows it, so
// "*a.txt" will not find an earlier "a" if a later one exists. A star may not
// touch a '?' on either side, since the jump needs a concrete token to land on.
// Runs of '?' are fine ("??" is exactly two characters).
func Wildcard(pattern, text string) Result {
	toks, ok := compile(pattern)
	if !ok {
		return GrammarError
	}
	return run(toks, []rune(text))
}

type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokSeparator
	tokAny
	tokStar
	tokClass
)

type charRange struct {
	lo, hi rune
}

type token struct {
	kind   tokenKind
	char   rune
	chars  []rune
	ranges []charRange
}

// matches reports whether a single text character satisfies the token
func (t token) matches(c rune) bool {
	switch t.kind {
	case tokLiteral:
		return fold(c) == fold(t.char)
	case tokSeparator:
		return isSeparator(c)
	case tokAny:
		return true
	case tokClass:
		lc := fold(c)
		for _, r := range t.ranges {
			if lc >= fold(r.lo) && lc <= fold(r.hi) {
				return true
			}
		}
		for _, ch := range t.chars {
			if lc == fold(ch) {
				return true
			}
		}
	}
	return false
}

func compile(pattern string) ([]token, bool) {
	p := []rune(pattern)
	toks := make([]token, 0, len(p))
	stars := 0

	for r := 0; r < len(p); {
		switch c := p[r]; c {
		case '[':
			r++
			var t token
			t.kind = tokClass
			for r < len(p) && p[r] != ']' {
				if r+1 < len(p) && p[r+1] == '-' {
					if r+2 >= len(p) {
						return nil, false
					}
					t.ranges = append(t.ranges, charRange{lo: p[r], hi: p[r+2]})
					r += 3
					continue
				}
				t.chars = append(t.chars, p[r])
				r++
			}
			if r >= len(p) {
				return nil, false
			}
			r++
			toks = append(toks, t)
		case '?':
			if n := len(toks); n > 0 && toks[n-1].kind == tokStar {
				return nil, false
			}
			toks = append(toks, token{kind: tokAny})
			r++
		case '*':
			stars++
			if stars > 1 {
				return nil, false
			}
			if n := len(toks); n > 0 && toks[n-1].kind == tokAny {
				return nil, false
			}
			toks = append(toks, token{kind: tokStar})
			r++
		case '/', '\\':
			toks = append(toks, token{kind: tokSeparator})
			r++
		default:
			toks = append(toks, token{kind: tokLiteral, char: c})
			r++
		}
	}
	return toks, true
}

func run(toks []token, text []rune) Result {
	s := 0
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.kind != tokStar {
			if s >= len(text) || !t.matches(text[s]) {
				return NoMatch
			}
			s++
			continue
		}

		if i == len(toks)-1 {
			return Match
		}
		next := toks[i+1]
		if s < len(text) && !next.matches(text[s]) {
			s++
		}
		if last := lastIndex(text, s, next); last >= 0 {
			s = last
		}
		if s >= len(text) || !next.matches(text[s]) {
			return NoMatch
		}
		s++
		i++
	}
	if s != len(text) {
		return NoMatch
	}
	return Match
}

// lastIndex returns the last position at or after from whose character satisfies t
func lastIndex(text []rune, from int, t token) int {
	for i := len(text) - 1; i >= from; i-- {
		if t.matches(text[i]) {
			return i
		}
	}
	return -1
}

func fold(c rune) rune {
	return unicode.ToLower(c)
}

func isSeparator(c rune) bool {
	return c == '/' || c == '\\'
}
