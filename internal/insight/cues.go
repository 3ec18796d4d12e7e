package insight

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// cueIndexes returns the byte offsets where cue occurs in text. ASCII cues
// must stand as whole words (a trailing plural "s" is allowed); Korean cues
// match inside words because particles attach to the stem.
func cueIndexes(text, cue string) []int {
	var idx []int
	word := isASCII(cue)
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], cue)
		if i < 0 {
			break
		}
		i += from
		end := i + len(cue)
		if !word || (wordBoundaryBefore(text, i) && wordBoundaryAfter(text, end)) {
			idx = append(idx, i)
		}
		from = end
	}
	return idx
}

func containsCue(text, cue string) bool {
	return len(cueIndexes(text, cue)) > 0
}

func containsAnyCue(text string, cues []string) bool {
	for _, cue := range cues {
		if containsCue(text, cue) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func wordBoundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func wordBoundaryAfter(text string, end int) bool {
	rest := text[end:]
	if strings.HasPrefix(rest, "s") {
		rest = rest[1:]
	}
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !isWordRune(r)
}
