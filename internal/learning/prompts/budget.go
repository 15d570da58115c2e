package prompts

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultCharBudget     = 60000
	DefaultChunkChars     = 20000
	DefaultMapConcurrency = 3
)

// Budget bounds how much document text goes into one prompt.
type Budget struct {
	CharBudget     int
	ChunkChars     int
	MapConcurrency int
}

func (b Budget) withDefaults() Budget {
	if b.CharBudget <= 0 {
		b.CharBudget = DefaultCharBudget
	}
	if b.ChunkChars <= 0 {
		b.ChunkChars = DefaultChunkChars
	}
	if b.ChunkChars > b.CharBudget {
		b.ChunkChars = b.CharBudget
	}
	if b.MapConcurrency <= 0 {
		b.MapConcurrency = DefaultMapConcurrency
	}
	return b
}

func (b Budget) Normalized() Budget { return b.withDefaults() }

// Fits reports whether text can be sent whole.
func (b Budget) Fits(text string) bool {
	b = b.withDefaults()
	return utf8.RuneCountInString(text) <= b.CharBudget
}

// Chunk splits text into pieces of at most ChunkChars runes, preferring
// sentence ends and then whitespace as cut points.
func (b Budget) Chunk(text string) []string {
	b = b.withDefaults()
	runes := []rune(strings.TrimSpace(text))
	var out []string
	for len(runes) > 0 {
		if len(runes) <= b.ChunkChars {
			out = append(out, string(runes))
			break
		}
		cut := cutPoint(runes[:b.ChunkChars])
		piece := strings.TrimSpace(string(runes[:cut]))
		if piece != "" {
			out = append(out, piece)
		}
		runes = []rune(strings.TrimLeftFunc(string(runes[cut:]), unicode.IsSpace))
	}
	return out
}

// cutPoint returns the index after the last sentence end in window, or after
// the last whitespace, or len(window). Cuts in the first half are ignored.
func cutPoint(window []rune) int {
	half := len(window) / 2
	for i := len(window) - 1; i >= half; i-- {
		switch window[i] {
		case '.', '!', '?', '\n':
			return i + 1
		}
	}
	for i := len(window) - 1; i >= half; i-- {
		if unicode.IsSpace(window[i]) {
			return i + 1
		}
	}
	return len(window)
}

// Truncate cuts text to at most max runes.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	return string([]rune(text)[:max])
}
