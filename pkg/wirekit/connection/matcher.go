package connection

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/randalmurphal/wirekit/pkg/wirekit/component"
	"github.com/randalmurphal/wirekit/pkg/wirekit/observability"
)

// Scorer decides whether a source/target port pair is a semantic match for
// auto-wiring. The graph-mutation code never embeds matching heuristics;
// swapping or tuning the heuristic means swapping the Scorer.
type Scorer interface {
	Match(src, dst component.Port) bool
}

// defaultKeywordPairs are the fixed (source, target) name rules. A pair
// matches when the source name contains the first keyword and the target
// name contains the second, case-insensitively.
var defaultKeywordPairs = [][2]string{
	{"output", "input"},
	{"result", "value"},
	{"click", "trigger"},
	{"data", "data"},
	{"value", "value"},
	{"number", "display"},
	{"digit", "display"},
	{"operator", "operation"},
	{"result", "display"},
	{"equals", "calculate"},
}

// defaultStopWords are dropped when tokenizing port descriptions, together
// with any token of two characters or fewer.
var defaultStopWords = []string{
	"the", "and", "for", "with", "this", "that", "from", "into",
	"when", "will", "your", "are", "has", "was", "can", "any",
}

// KeywordScorer is the default heuristic: a fixed keyword-pair rule on port
// names, or a non-empty overlap between the tokenized, stop-word-filtered
// keyword sets of the two port descriptions. It is greedy and non-exclusive
// when driven by AutoConnect.
type KeywordScorer struct {
	Pairs     [][2]string
	StopWords map[string]struct{}
}

// DefaultScorer returns a KeywordScorer with the built-in rules.
func DefaultScorer() *KeywordScorer {
	return NewKeywordScorer(defaultKeywordPairs, defaultStopWords)
}

// DefaultKeywordPairs returns a copy of the built-in keyword-pair rules,
// for callers that extend them rather than replace them.
func DefaultKeywordPairs() [][2]string {
	return append([][2]string(nil), defaultKeywordPairs...)
}

// DefaultStopWords returns a copy of the built-in stop-word list.
func DefaultStopWords() []string {
	return append([]string(nil), defaultStopWords...)
}

// NewKeywordScorer builds a scorer from explicit keyword pairs and stop
// words, typically loaded from configuration.
func NewKeywordScorer(pairs [][2]string, stopWords []string) *KeywordScorer {
	stops := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &KeywordScorer{
		Pairs:     append([][2]string(nil), pairs...),
		StopWords: stops,
	}
}

// Match implements Scorer.
func (s *KeywordScorer) Match(src, dst component.Port) bool {
	srcName := strings.ToLower(portName(src))
	dstName := strings.ToLower(portName(dst))
	for _, pair := range s.Pairs {
		if strings.Contains(srcName, pair[0]) && strings.Contains(dstName, pair[1]) {
			return true
		}
	}

	srcWords := s.keywords(src.Description)
	if len(srcWords) == 0 {
		return false
	}
	for w := range s.keywords(dst.Description) {
		if _, ok := srcWords[w]; ok {
			return true
		}
	}
	return false
}

// keywords tokenizes a description into its significant lowercase words.
func (s *KeywordScorer) keywords(description string) map[string]struct{} {
	if description == "" {
		return nil
	}
	words := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{})
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		if _, stop := s.StopWords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// portName prefers the display name, falling back to the port ID.
func portName(p component.Port) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// AutoConnect runs the heuristic matcher over every ordered pair of the
// given component IDs (source != target). For each pair it enumerates the
// source's sending ports against the target's receiving ports and creates
// an edge for every pair that is both matrix-compatible and accepted by
// the scorer.
//
// The matcher is greedy and non-exclusive: it does not deduplicate per
// target port and imposes no ranking beyond the iteration order of the
// input list, so callers should treat that order as significant.
func (m *Manager) AutoConnect(ctx context.Context, componentIDs []string) []*Connection {
	start := time.Now()

	var created []*Connection
	candidates := 0
	for _, srcID := range componentIDs {
		srcPorts, ok := m.ports.Ports(srcID)
		if !ok {
			continue
		}
		for _, dstID := range componentIDs {
			if srcID == dstID {
				continue
			}
			dstPorts, ok := m.ports.Ports(dstID)
			if !ok {
				continue
			}
			for _, sp := range srcPorts {
				if !sp.Direction.CanSend() {
					continue
				}
				for _, dp := range dstPorts {
					if !dp.Direction.CanReceive() {
						continue
					}
					candidates++
					if !Compatible(sp.DataType, dp.DataType) {
						continue
					}
					if !m.scorer.Match(sp, dp) {
						continue
					}
					created = append(created, m.Connect(srcID, sp.ID, dstID, dp.ID, nil))
				}
			}
		}
	}

	elapsed := time.Since(start)
	observability.LogAutoWire(m.logger, len(componentIDs), candidates, len(created),
		float64(elapsed.Milliseconds()))
	m.metrics.RecordAutoWire(ctx, candidates, len(created), elapsed)
	return created
}
