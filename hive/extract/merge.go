package extract

// merger de-duplicates candidates by key, keeping insertion order of first
// appearance. When prefer is set, a later candidate replaces the stored one
// if prefer(stored, candidate) is true.
type merger[T any] struct {
	key    func(T) string
	prefer func(old, cand T) bool

	index map[string]int
	items []T
}

func newMerger[T any](key func(T) string, prefer func(old, cand T) bool) *merger[T] {
	return &merger[T]{key: key, prefer: prefer, index: make(map[string]int)}
}

// add offers a candidate. Candidates with an empty key are dropped.
func (m *merger[T]) add(item T) {
	k := m.key(item)
	if k == "" {
		return
	}
	if i, ok := m.index[k]; ok {
		if m.prefer != nil && m.prefer(m.items[i], item) {
			m.items[i] = item
		}
		return
	}
	m.index[k] = len(m.items)
	m.items = append(m.items, item)
}

func (m *merger[T]) addAll(items []T) {
	for _, it := range items {
		m.add(it)
	}
}

func (m *merger[T]) result() []T {
	return m.items
}

func truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
