// Package moderation masks censored words in message bodies before they
// are routed. Matching runs over a normalized view of the text (lowercase,
// punctuation and spacing stripped, common character substitutions undone)
// so that spaced-out or disguised spellings are still caught, while the
// masking is applied to the original runes to preserve the message layout.
package moderation

import (
	"log/slog"
	"unicode"

	"github.com/abadojack/whatlanggo"
	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher *goahocorasick.Machine
	mask    rune
	log     *slog.Logger
}

// NewModerator builds the Aho-Corasick automaton from the dictionary. The
// words are normalized the same way incoming text is, so a dictionary
// entry always matches its own spelling.
func NewModerator(words []string, mask rune, log *slog.Logger) (*Moderator, error) {
	patterns := make([][]rune, len(words))
	for i, word := range words {
		normalized, _ := normalize(word)
		patterns[i] = normalized
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: machine, mask: mask, log: log}, nil
}

// Censor replaces every censored span with the mask character. The boolean
// reports whether anything was masked.
func (m *Moderator) Censor(original string) (string, bool) {
	normalized, origIdx := normalize(original)
	if len(normalized) == 0 {
		return original, false
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return original, false
	}

	runes := []rune(original)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		// Mask from the first to the last original rune of the match,
		// including any noise characters in between.
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			runes[i] = m.mask
		}
	}

	info := whatlanggo.Detect(original)
	m.log.Debug("Censored message",
		"patterns", len(spans),
		"lang", info.Lang.Iso6391())

	return string(runes), true
}

// normalize lowercases the text, undoes a handful of common character
// substitutions, and drops punctuation, spacing, and symbols. The second
// return value maps each normalized rune back to its index in the
// original, which Censor needs to mask the right span.
func normalize(input string) ([]rune, []int) {
	runes := []rune(input)
	normalized := make([]rune, 0, len(runes))
	origIdx := make([]int, 0, len(runes))

	for i, r := range runes {
		r = desubstitute(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		normalized = append(normalized, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return normalized, origIdx
}

// desubstitute maps the usual digit-for-letter tricks back to letters.
func desubstitute(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
