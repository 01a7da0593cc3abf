package transcriber

import "strings"

// stabilityRing tracks the last M partial decodes as token slices, used to
// split the newest partial into a stable prefix (words that agree across
// every entry currently in the ring) and a volatile suffix (spec §4.5).
type stabilityRing struct {
	m       int
	entries [][]string
}

func newStabilityRing(m int) *stabilityRing {
	if m < 1 {
		m = 1
	}
	return &stabilityRing{m: m}
}

// push records tokens as the newest partial decode, dropping the oldest
// entry once the ring exceeds m entries.
func (r *stabilityRing) push(tokens []string) {
	r.entries = append(r.entries, tokens)
	if excess := len(r.entries) - r.m; excess > 0 {
		r.entries = r.entries[excess:]
	}
}

// split returns the stable prefix and volatile suffix of the newest entry
// in the ring, given the tokens just pushed via push. The stable prefix is
// the longest prefix shared by every entry currently held; a shorter entry
// that simply hasn't decoded that far yet bounds the prefix the same as a
// genuine mismatch would, so a word is only promoted to stable once M
// consecutive partials were long enough to contain it and agreed.
func (r *stabilityRing) split() (stable, volatile []string) {
	if len(r.entries) == 0 {
		return nil, nil
	}
	newest := r.entries[len(r.entries)-1]

	stableLen := len(newest)
	for _, entry := range r.entries {
		stableLen = commonPrefixLen(stableLen, newest, entry)
	}
	return newest[:stableLen], newest[stableLen:]
}

func commonPrefixLen(limit int, a, b []string) int {
	n := limit
	if len(a) < n {
		n = len(a)
	}
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// reset clears all tracked partials, e.g. on commit or abandonment.
func (r *stabilityRing) reset() {
	r.entries = nil
}

func splitWords(text string) []string {
	return strings.Fields(text)
}

func joinWords(words []string) string {
	return strings.Join(words, " ")
}
