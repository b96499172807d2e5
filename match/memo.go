package match

import "factory/palette"

// memoLimit bounds the number of cached colors per Memo.
const memoLimit = 1 << 16

// Memo caches the answers of a Matcher. Photos repeat colors a lot, so most
// pixels hit the cache. A Memo is not safe for concurrent use: give each
// worker its own.
type Memo struct {
	m     *Matcher
	cache map[palette.Color]int
}

func (m *Matcher) Memo() *Memo {
	return &Memo{
		m:     m,
		cache: make(map[palette.Color]int),
	}
}

func (mm *Memo) Index(c palette.Color) int {
	if i, ok := mm.cache[c]; ok {
		return i
	}

	i := mm.m.Index(c)
	if len(mm.cache) >= memoLimit {
		clear(mm.cache)
	}
	mm.cache[c] = i
	return i
}

func (mm *Memo) Nearest(c palette.Color) palette.Color {
	return mm.m.colors[mm.Index(c)]
}
