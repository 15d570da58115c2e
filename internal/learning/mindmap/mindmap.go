// Package mindmap builds concept maps from document text with term statistics.
// It makes no model calls and the same input always yields the same map.
package mindmap

import (
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
)

const (
	MaxConcepts = 12
	Branches    = 5

	LevelSpacing = 160.0
	NodeSpacing  = 220.0

	RootID = "root"

	// a bigram replaces its unigrams once it covers this share of their occurrences
	bigramCoverage  = 0.6
	minBigramCount  = 2
	minTokenLetters = 3
)

type concept struct {
	key       string
	tokens    []string
	tf        int
	sentences map[int]struct{}
	first     int
	score     float64
}

// Build returns the statistical mind map of text. title, usually the file
// name, labels the root; the top concept is used when it is empty.
func Build(text, title string) learning.MindMap {
	empty := learning.MindMap{
		Nodes:  []learning.MindMapNode{},
		Edges:  []learning.MindMapEdge{},
		Method: learning.MindMapMethodStatistical,
	}

	sentences := splitSentences(text)
	concepts := extractConcepts(sentences)
	if len(concepts) == 0 {
		return empty
	}
	if len(concepts) > MaxConcepts {
		concepts = concepts[:MaxConcepts]
	}

	chosen := concepts
	rootLabel := TitleFromFileName(title)
	if rootLabel == "" {
		rootLabel = titleCase(concepts[0].key)
		concepts = concepts[1:]
	}

	maxScore := 0.0
	for _, c := range concepts {
		maxScore = math.Max(maxScore, c.score)
	}

	nodes := []learning.MindMapNode{{ID: RootID, Label: rootLabel, Level: 0, Weight: 1}}
	edges := []learning.MindMapEdge{}
	parent := map[string]string{}
	ids := make([]string, len(concepts))
	for i, c := range concepts {
		ids[i] = "n" + strconv.Itoa(i+1)
		nodes = append(nodes, learning.MindMapNode{
			ID:     ids[i],
			Label:  titleCase(c.key),
			Weight: round2(weight(c.score, maxScore)),
		})
	}

	nBranches := Branches
	if nBranches > len(concepts) {
		nBranches = len(concepts)
	}
	fallback := 0
	for i := range concepts {
		if i < nBranches {
			parent[ids[i]] = RootID
			continue
		}
		best, bestCount := -1, 0
		for b := 0; b < nBranches; b++ {
			if n := coOccurrence(concepts[i], concepts[b]); n > bestCount {
				best, bestCount = b, n
			}
		}
		if best < 0 {
			parent[ids[i]] = RootID
			fallback++
			continue
		}
		parent[ids[i]] = ids[best]
	}
	for _, id := range ids {
		edges = append(edges, learning.MindMapEdge{
			ID:     "e-" + parent[id] + "-" + id,
			Source: parent[id],
			Target: id,
		})
	}

	layout(nodes, parent)

	confidence := 0.0
	if len(concepts) > 0 {
		linked := float64(len(concepts)-fallback) / float64(len(concepts))
		confidence = clamp01(round2(linked * coverage(sentences, chosen)))
	}
	return learning.MindMap{
		Nodes:      nodes,
		Edges:      edges,
		Confidence: confidence,
		Method:     learning.MindMapMethodStatistical,
	}
}

// TitleFromFileName drops the directory and extension and title-cases the rest.
func TitleFromFileName(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.TrimSpace(name)))
	if name == "." || name == "/" {
		return ""
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, name)
	return titleCase(name)
}

type sentence struct {
	tokens []string
	// runs of adjacent kept tokens; bigrams never span a dropped word
	runs [][]string
}

func splitSentences(text string) []sentence {
	var out []sentence
	start := 0
	flush := func(end int) {
		if s := buildSentence(text[start:end]); len(s.tokens) > 0 {
			out = append(out, s)
		}
	}
	for i, r := range text {
		switch r {
		case '.', '!', '?', '\n', ';':
			flush(i)
			start = i + 1
		}
	}
	flush(len(text))
	return out
}

func buildSentence(raw string) sentence {
	var s sentence
	var run []string
	words := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	for _, w := range words {
		w = strings.Trim(w, "'")
		if keep(w) {
			s.tokens = append(s.tokens, w)
			run = append(run, w)
			continue
		}
		if len(run) > 0 {
			s.runs = append(s.runs, run)
			run = nil
		}
	}
	if len(run) > 0 {
		s.runs = append(s.runs, run)
	}
	return s
}

func keep(w string) bool {
	if _, stop := stopwords[w]; stop {
		return false
	}
	letters := 0
	for _, r := range w {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= minTokenLetters
}

// extractConcepts scores unigrams and bigrams by tf * log(1 + sentence spread)
// and returns them best first.
func extractConcepts(sentences []sentence) []*concept {
	all := map[string]*concept{}
	order := 0
	add := func(key string, tokens []string, si int) {
		c, ok := all[key]
		if !ok {
			c = &concept{key: key, tokens: tokens, sentences: map[int]struct{}{}, first: order}
			all[key] = c
		}
		order++
		c.tf++
		c.sentences[si] = struct{}{}
	}
	for si, s := range sentences {
		for _, run := range s.runs {
			for i, tok := range run {
				add(tok, []string{tok}, si)
				if i+1 < len(run) && run[i+1] != tok {
					add(tok+" "+run[i+1], []string{tok, run[i+1]}, si)
				}
			}
		}
	}

	suppressed := map[string]struct{}{}
	for _, c := range all {
		if len(c.tokens) != 2 {
			continue
		}
		if c.tf < minBigramCount {
			suppressed[c.key] = struct{}{}
			continue
		}
		for _, tok := range c.tokens {
			if u := all[tok]; u != nil && float64(c.tf) >= bigramCoverage*float64(u.tf) {
				suppressed[tok] = struct{}{}
			}
		}
	}

	out := make([]*concept, 0, len(all))
	for key, c := range all {
		if _, drop := suppressed[key]; drop {
			continue
		}
		c.score = float64(c.tf) * math.Log(1+float64(len(c.sentences)))
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		if out[i].first != out[j].first {
			return out[i].first < out[j].first
		}
		return out[i].key < out[j].key
	})
	return out
}

func coOccurrence(a, b *concept) int {
	small, large := a.sentences, b.sentences
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for si := range small {
		if _, ok := large[si]; ok {
			n++
		}
	}
	return n
}

// coverage is the share of sentences that mention at least one chosen concept.
func coverage(sentences []sentence, concepts []*concept) float64 {
	if len(sentences) == 0 {
		return 0
	}
	hit := map[int]struct{}{}
	for _, c := range concepts {
		for si := range c.sentences {
			hit[si] = struct{}{}
		}
	}
	return float64(len(hit)) / float64(len(sentences))
}

// layout places nodes by BFS depth from the root, each level centered on x=0.
func layout(nodes []learning.MindMapNode, parent map[string]string) {
	children := map[string][]string{}
	for i := 1; i < len(nodes); i++ {
		p := parent[nodes[i].ID]
		children[p] = append(children[p], nodes[i].ID)
	}
	level := map[string]int{RootID: 0}
	var levels [][]string
	queue := []string{RootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		l := level[id]
		if l == len(levels) {
			levels = append(levels, nil)
		}
		levels[l] = append(levels[l], id)
		for _, c := range children[id] {
			level[c] = l + 1
			queue = append(queue, c)
		}
	}
	pos := map[string]learning.Position{}
	for l, ids := range levels {
		n := len(ids)
		for i, id := range ids {
			pos[id] = learning.Position{
				X: (float64(i) - float64(n-1)/2) * NodeSpacing,
				Y: float64(l) * LevelSpacing,
			}
		}
	}
	for i := range nodes {
		nodes[i].Level = level[nodes[i].ID]
		nodes[i].Position = pos[nodes[i].ID]
	}
}

func weight(score, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return score / max
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
