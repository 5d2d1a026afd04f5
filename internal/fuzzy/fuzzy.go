// Package fuzzy implements a multi-strategy symbol search engine:
// trigram/prefix/word indices built at ingest time, and a fixed-weight
// scoring table across exact/prefix/camel-case/substring/abbreviation/
// subsequence/edit-distance strategies.
//
// Edit-distance scoring is backed by go-edlib's Levenshtein distance; the other stages are plain string matching over a
// symbol-name index built once at ingest time, with fixed scoring
// weights rather than tunable thresholds.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/mizchi/lsif-indexer/internal/graph"
)

// MatchType classifies how a candidate matched the query.
type MatchType int

const (
	MatchExact MatchType = iota
	MatchPrefix
	MatchSubstring
	MatchCamelCase
	MatchFuzzy
	MatchTypo
)

func (m MatchType) String() string {
	switch m {
	case MatchExact:
		return "Exact"
	case MatchPrefix:
		return "Prefix"
	case MatchSubstring:
		return "Substring"
	case MatchCamelCase:
		return "CamelCase"
	case MatchFuzzy:
		return "Fuzzy"
	case MatchTypo:
		return "Typo"
	default:
		return "Unknown"
	}
}

// Match is one search result.
type Match struct {
	Symbol    graph.Symbol
	Score     float64
	MatchType MatchType
	Indices   []int // not filled in by Search; always nil
}

// Fixed scoring weights, one per match strategy.
const (
	scoreExact           = 100.0
	scorePrefix          = 80.0
	scoreCamelCaseSubset = 70.0
	scoreSubstring       = 70.0
	scoreAbbreviation    = 60.0
	scoreSubsequence     = 50.0
	scoreEditDistanceMin = 56.0
	editDistanceMaxRatio = 0.30
)

// Index holds the per-ingest search structures for one snapshot.
type Index struct {
	symbols map[string]graph.Symbol // id -> symbol

	exact  map[string][]string // lowercased name -> ids
	prefix map[string][]string // 1-5 char lowercased prefix -> ids
	words  map[string][]string // lowercased camel-case word -> ids
	trigrams map[string]map[string]bool // trigram -> id set
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		symbols:  make(map[string]graph.Symbol),
		exact:    make(map[string][]string),
		prefix:   make(map[string][]string),
		words:    make(map[string][]string),
		trigrams: make(map[string]map[string]bool),
	}
}

// Build constructs a fresh Index over every given symbol.
func Build(symbols []graph.Symbol) *Index {
	idx := NewIndex()
	for _, s := range symbols {
		idx.Add(s)
	}
	return idx
}

// Add inserts or re-indexes a symbol.
func (idx *Index) Add(s graph.Symbol) {
	idx.symbols[s.ID] = s
	lower := strings.ToLower(s.Name)

	idx.exact[lower] = appendUnique(idx.exact[lower], s.ID)

	for n := 1; n <= 5 && n <= len(lower); n++ {
		p := lower[:n]
		idx.prefix[p] = appendUnique(idx.prefix[p], s.ID)
	}

	for _, word := range splitCamelCase(s.Name) {
		w := strings.ToLower(word)
		idx.words[w] = appendUnique(idx.words[w], s.ID)
	}

	for _, tri := range trigrams(lower) {
		set, ok := idx.trigrams[tri]
		if !ok {
			set = make(map[string]bool)
			idx.trigrams[tri] = set
		}
		set[s.ID] = true
	}
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// Search runs the staged scoring pipeline and returns up to limit
// matches, sorted by score descending then by shorter name.
// limit == 0 returns an empty (non-nil-panicking) result.
func (idx *Index) Search(query string, limit int) []Match {
	if limit == 0 {
		return nil
	}
	if query == "" {
		return nil
	}

	lowerQuery := strings.ToLower(query)
	best := make(map[string]Match)

	record := func(id string, score float64, mt MatchType) {
		if existing, ok := best[id]; ok && existing.Score >= score {
			return
		}
		best[id] = Match{Symbol: idx.symbols[id], Score: score, MatchType: mt}
	}

	for _, id := range idx.exact[lowerQuery] {
		record(id, scoreExact, MatchExact)
	}

	// Prefix bucket: the widest indexed prefix (up to 5 chars) narrows
	// the prefix-match candidates to symbols that share it, instead of
	// scanning every symbol.
	prefixLen := len(lowerQuery)
	if prefixLen > 5 {
		prefixLen = 5
	}
	for _, id := range idx.prefix[lowerQuery[:prefixLen]] {
		s := idx.symbols[id]
		lowerName := strings.ToLower(s.Name)
		if lowerName == lowerQuery {
			continue
		}
		if strings.HasPrefix(lowerName, lowerQuery) {
			record(id, scorePrefix, MatchPrefix)
		}
	}

	// Word-subset and abbreviation candidates: any symbol sharing at
	// least one camel-case word with the query.
	wordCandidates := make(map[string]bool)
	for _, qw := range strings.Fields(query) {
		for _, id := range idx.words[strings.ToLower(qw)] {
			wordCandidates[id] = true
		}
	}
	for id := range wordCandidates {
		s := idx.symbols[id]
		if matchesCamelCaseWordSubset(s.Name, query) {
			record(id, scoreCamelCaseSubset, MatchCamelCase)
		}
	}
	for id, s := range idx.symbols {
		if isAbbreviation(s.Name, query) {
			record(id, scoreAbbreviation, MatchCamelCase)
		}
	}

	// Trigram candidates narrow the substring stage to symbols sharing at
	// least one 3-gram with the query, rather than scanning the whole
	// index; a contiguous substring match always shares its trigrams.
	triCandidates := make(map[string]bool)
	for _, tri := range trigrams(lowerQuery) {
		for id := range idx.trigrams[tri] {
			triCandidates[id] = true
		}
	}
	if len(lowerQuery) < 3 {
		for id := range idx.symbols {
			triCandidates[id] = true
		}
	}

	for id := range triCandidates {
		if _, already := best[id]; already {
			continue
		}
		s := idx.symbols[id]
		if strings.Contains(strings.ToLower(s.Name), lowerQuery) {
			record(id, scoreSubstring, MatchSubstring)
		}
	}

	// Subsequence and edit-distance matches need no shared contiguous
	// run, so trigram candidates can't bound them; scan every remaining
	// symbol.
	for id, s := range idx.symbols {
		if _, already := best[id]; already {
			continue
		}
		lowerName := strings.ToLower(s.Name)
		if isSubsequence(lowerQuery, lowerName) {
			record(id, scoreSubsequence, MatchFuzzy)
			continue
		}
		if score, ok := editDistanceScore(lowerQuery, lowerName); ok {
			record(id, score, MatchTypo)
		}
	}

	matches := make([]Match, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return len(matches[i].Symbol.Name) < len(matches[j].Symbol.Name)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// splitCamelCase breaks "getUserByID" into ["get", "User", "By", "ID"] and
// "parse_config_file" into ["parse", "config", "file"].
func splitCamelCase(name string) []string {
	var words []string
	var current strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if r == '_' || r == '-' {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
			continue
		}
		if i > 0 && current.Len() > 0 && isWordBoundary(runes, i) {
			words = append(words, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

func isWordBoundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	if isLower(prev) && isUpper(cur) {
		return true
	}
	if i+1 < len(runes) && isUpper(prev) && isUpper(cur) && isLower(runes[i+1]) {
		return true
	}
	return false
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }

// matchesCamelCaseWordSubset reports whether every whitespace-separated
// word in query appears, case-insensitively, among name's camel-case
// words.
func matchesCamelCaseWordSubset(name, query string) bool {
	queryWords := strings.Fields(query)
	if len(queryWords) == 0 {
		return false
	}
	nameWords := splitCamelCase(name)
	lowerNameWords := make(map[string]bool, len(nameWords))
	for _, w := range nameWords {
		lowerNameWords[strings.ToLower(w)] = true
	}
	for _, qw := range queryWords {
		if !lowerNameWords[strings.ToLower(qw)] {
			return false
		}
	}
	return true
}

// isAbbreviation reports whether query equals the concatenated initials
// of name's camel-case words (e.g. "gubn" for "getUserByName").
func isAbbreviation(name, query string) bool {
	words := splitCamelCase(name)
	if len(words) == 0 || len(query) != len(words) {
		return false
	}
	var initials strings.Builder
	for _, w := range words {
		initials.WriteRune([]rune(strings.ToLower(w))[0])
	}
	return initials.String() == strings.ToLower(query)
}

// isSubsequence reports whether every character of query appears in name
// in order (not necessarily contiguous).
func isSubsequence(query, name string) bool {
	if query == "" {
		return false
	}
	qi := 0
	for i := 0; i < len(name) && qi < len(query); i++ {
		if name[i] == query[qi] {
			qi++
		}
	}
	return qi == len(query)
}

// editDistanceScore is the edit-distance stage: eligible only when the
// Levenshtein distance is at most 30% of the longer string's length,
// scored as (1 - d/L) * 0.8 * 100, floored at 56.
func editDistanceScore(a, b string) (float64, bool) {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0, false
	}

	normalized, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0, false
	}
	// go-edlib's Levenshtein similarity is already normalized to [0,1]
	// as 1 - distance/maxLen; recover the distance ratio.
	distanceRatio := 1 - float64(normalized)
	if distanceRatio > editDistanceMaxRatio {
		return 0, false
	}

	score := (1 - distanceRatio) * 0.8 * 100
	if score < scoreEditDistanceMin {
		score = scoreEditDistanceMin
	}
	return score, true
}

func trigrams(s string) []string {
	if len(s) < 3 {
		return []string{s}
	}
	out := make([]string, 0, len(s)-2)
	for i := 0; i+3 <= len(s); i++ {
		out = append(out, s[i:i+3])
	}
	return out
}
