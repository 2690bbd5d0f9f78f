package topic

import "strings"

// OutOfScopeReply is returned verbatim for questions the gate rejects.
const OutOfScopeReply = "I'm sorry, that's outside my scope of expertise. I'm focused on helping with interview and resume topics. Would you like to try rephrasing your question?"

// DefaultKeywords restricts the assistant to interview and resume subjects.
var DefaultKeywords = []string{
	"interview", "interview tips", "resume", "resume advice", "job search", "hire",
	"career", "job", "work", "employment", "professional", "skills",
}

// Gate decides whether a question is on topic by substring matching against a
// fixed keyword set. Matching is not word-bounded: "workshop" matches "work".
type Gate struct {
	keywords []string
}

// NewGate builds a gate over the supplied keywords. Keywords are lowercased,
// blanks are dropped and duplicates keep their first position. With no usable
// keywords the gate falls back to DefaultKeywords.
func NewGate(keywords ...string) *Gate {
	seen := make(map[string]struct{}, len(keywords))
	normalized := make([]string, 0, len(keywords))
	for _, word := range keywords {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		normalized = append(normalized, word)
	}

	if len(normalized) == 0 {
		return NewGate(DefaultKeywords...)
	}
	return &Gate{keywords: normalized}
}

// Allows reports whether the lowercased input contains any keyword.
func (g *Gate) Allows(input string) bool {
	_, ok := g.Match(input)
	return ok
}

// Match returns the first keyword, in configured order, found in input.
func (g *Gate) Match(input string) (string, bool) {
	normalized := strings.ToLower(input)
	if normalized == "" {
		return "", false
	}
	for _, word := range g.keywords {
		if strings.Contains(normalized, word) {
			return word, true
		}
	}
	return "", false
}

// Keywords returns the normalized keyword set.
func (g *Gate) Keywords() []string {
	return append([]string(nil), g.keywords...)
}
