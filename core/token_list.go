package core

// TokenList dynamic token list of a position
//
// Removal swaps the entry with the last element before truncating, the
// reverse index keeps it O(1). Iteration order is stable between mutations
// but carries no meaning.
type TokenList struct {
	items []string
	index map[string]int
}

// NewTokenList empty list
func NewTokenList(tokens ...string) *TokenList {
	l := &TokenList{index: make(map[string]int)}
	for _, t := range tokens {
		l.Add(t)
	}

	return l
}

// Add appends token if it is not listed yet
func (l *TokenList) Add(token string) bool {
	if _, ok := l.index[token]; ok {
		return false
	}

	l.index[token] = len(l.items)
	l.items = append(l.items, token)
	return true
}

// Remove swap-and-pop removal
func (l *TokenList) Remove(token string) bool {
	idx, ok := l.index[token]
	if !ok {
		return false
	}

	last := len(l.items) - 1
	if idx != last {
		moved := l.items[last]
		l.items[idx] = moved
		l.index[moved] = idx
	}

	l.items = l.items[:last]
	delete(l.index, token)
	return true
}

// Has reports whether token is listed
func (l *TokenList) Has(token string) bool {
	_, ok := l.index[token]
	return ok
}

// Len number of listed tokens
func (l *TokenList) Len() int {
	return len(l.items)
}

// Items copy of the listed tokens
func (l *TokenList) Items() []string {
	return append([]string(nil), l.items...)
}

// Clone deep copy
func (l *TokenList) Clone() *TokenList {
	return NewTokenList(l.items...)
}
