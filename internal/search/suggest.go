package search

import (
	"math"
	"sort"
	"strings"
)

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	Text      string
	Score     float64
	Frequency int
}

const (
	DefaultMaxSuggestions = 10
	DefaultMaxPrefixLen   = 20
	maxRecentSuggestions  = 100
)

// SuggestionEngine builds a prefix -> ranked-suggestions index for
// autocomplete, scoring by frequency, exact-prefix match, name length, and
// recent usage.
type SuggestionEngine struct {
	prefixMap    map[string][]Suggestion
	frequencyMap map[string]int
	maxSuggest   int
	maxPrefixLen int
	recent       []string
}

// NewSuggestionEngine returns an engine storing at most maxSuggestions
// candidates per prefix, indexing prefixes up to maxPrefixLen characters.
func NewSuggestionEngine(maxSuggestions, maxPrefixLen int) *SuggestionEngine {
	return &SuggestionEngine{
		prefixMap:    make(map[string][]Suggestion),
		frequencyMap: make(map[string]int),
		maxSuggest:   maxSuggestions,
		maxPrefixLen: maxPrefixLen,
	}
}

// NewDefaultSuggestionEngine returns an engine with DefaultMaxSuggestions
// and DefaultMaxPrefixLen.
func NewDefaultSuggestionEngine() *SuggestionEngine {
	return NewSuggestionEngine(DefaultMaxSuggestions, DefaultMaxPrefixLen)
}

// AddSuggestion indexes text under every prefix of its lowercased form (up
// to maxPrefixLen characters), adding frequency to any existing count.
func (se *SuggestionEngine) AddSuggestion(text string, frequency int) {
	if text == "" {
		return
	}
	textLower := strings.ToLower(text)
	se.frequencyMap[textLower] += frequency

	runes := []rune(textLower)
	prefixLen := len(runes)
	if prefixLen > se.maxPrefixLen {
		prefixLen = se.maxPrefixLen
	}

	type scored struct {
		prefix string
		score  float64
	}
	scores := make([]scored, 0, prefixLen)
	for i := 1; i <= prefixLen; i++ {
		prefix := string(runes[:i])
		scores = append(scores, scored{prefix, se.calculateScore(textLower, prefix)})
	}

	for _, sc := range scores {
		suggestions := se.prefixMap[sc.prefix]

		updated := false
		for i := range suggestions {
			if suggestions[i].Text == text {
				suggestions[i].Frequency += frequency
				suggestions[i].Score = sc.score
				updated = true
				break
			}
		}
		if !updated {
			suggestions = append(suggestions, Suggestion{Text: text, Score: sc.score, Frequency: frequency})
		}

		sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].Score > suggestions[j].Score })
		if len(suggestions) > se.maxSuggest {
			suggestions = suggestions[:se.maxSuggest]
		}
		se.prefixMap[sc.prefix] = suggestions
	}
}

// SuggestionInput is one (text, frequency) pair for a bulk AddSuggestions
// call.
type SuggestionInput struct {
	Text      string
	Frequency int
}

// AddSuggestions indexes every (text, frequency) pair.
func (se *SuggestionEngine) AddSuggestions(entries []SuggestionInput) {
	for _, e := range entries {
		se.AddSuggestion(e.Text, e.Frequency)
	}
}

// GetSuggestions returns the ranked suggestions for prefix: an exact
// prefix-map hit if present, otherwise the longest indexed key that is a
// prefix of, or has prefix, the query.
func (se *SuggestionEngine) GetSuggestions(prefix string) []Suggestion {
	prefixLower := strings.ToLower(prefix)

	if suggestions, ok := se.prefixMap[prefixLower]; ok {
		out := make([]Suggestion, len(suggestions))
		copy(out, suggestions)
		return out
	}

	var best []Suggestion
	bestLen := -1
	for key, suggestions := range se.prefixMap {
		if strings.HasPrefix(key, prefixLower) || strings.HasPrefix(prefixLower, key) {
			if len(key) > bestLen {
				bestLen = len(key)
				best = suggestions
			}
		}
	}
	out := make([]Suggestion, len(best))
	copy(out, best)
	return out
}

// GetPrefixSuggestions returns up to limit suggestion texts for prefix.
func (se *SuggestionEngine) GetPrefixSuggestions(prefix string, limit int) []string {
	suggestions := se.GetSuggestions(prefix)
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	texts := make([]string, len(suggestions))
	for i, s := range suggestions {
		texts[i] = s.Text
	}
	return texts
}

// RecordUsage marks text as recently used, boosting its future score, and
// bumps its frequency.
func (se *SuggestionEngine) RecordUsage(text string) {
	textLower := strings.ToLower(text)

	filtered := se.recent[:0]
	for _, r := range se.recent {
		if r != textLower {
			filtered = append(filtered, r)
		}
	}
	se.recent = append([]string{textLower}, filtered...)
	if len(se.recent) > maxRecentSuggestions {
		se.recent = se.recent[:maxRecentSuggestions]
	}

	se.frequencyMap[textLower]++
}

// Clear discards every suggestion, frequency count, and recency entry.
func (se *SuggestionEngine) Clear() {
	se.prefixMap = make(map[string][]Suggestion)
	se.frequencyMap = make(map[string]int)
	se.recent = nil
}

func (se *SuggestionEngine) calculateScore(text, prefix string) float64 {
	textLower := strings.ToLower(text)

	freq := float64(se.frequencyMap[textLower])
	freqScore := math.Log(freq + 1.0)

	exactPrefixBonus := 0.0
	if strings.HasPrefix(textLower, prefix) {
		exactPrefixBonus = 2.0
	}

	lengthPenalty := math.Log(float64(len(text))) / 10.0

	recencyBoost := 1.0
	for _, r := range se.recent {
		if r == textLower {
			recencyBoost = 1.5
			break
		}
	}

	return (freqScore + exactPrefixBonus - lengthPenalty) * recencyBoost
}

// Len returns the number of distinct terms with a frequency count: every
// text passed to AddSuggestion or RecordUsage since the last Clear.
func (se *SuggestionEngine) Len() int {
	return len(se.frequencyMap)
}

// IsEmpty reports whether no terms have been indexed.
func (se *SuggestionEngine) IsEmpty() bool {
	return len(se.frequencyMap) == 0
}
