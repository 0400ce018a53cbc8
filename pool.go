package deck

import (
	"container/heap"
	"slices"
	"time"
)

// entry pairs an item with its ID. The exported fields are the persisted form.
type entry[T any] struct {
	ID   ID `json:"id"`
	Task T  `json:"task"`
}

// pool is a min-heap of not-yet-due entries keyed by due time.
// The key is recomputed through due on every comparison and never cached,
// so a change to shared state or retention only needs a rebuild.
type pool[T any] struct {
	entries []entry[T]
	index   map[ID]int
	due     func(T) time.Time
}

func newPool[T any](due func(T) time.Time) *pool[T] {
	return &pool[T]{
		index: make(map[ID]int),
		due:   due,
	}
}

// heap.Interface

func (p *pool[T]) Len() int { return len(p.entries) }

func (p *pool[T]) Less(i, j int) bool {
	return p.due(p.entries[i].Task).Before(p.due(p.entries[j].Task))
}

func (p *pool[T]) Swap(i, j int) {
	p.entries[i], p.entries[j] = p.entries[j], p.entries[i]
	p.index[p.entries[i].ID] = i
	p.index[p.entries[j].ID] = j
}

func (p *pool[T]) Push(x any) {
	e := x.(entry[T])
	p.index[e.ID] = len(p.entries)
	p.entries = append(p.entries, e)
}

func (p *pool[T]) Pop() any {
	n := len(p.entries) - 1
	e := p.entries[n]
	p.entries[n] = entry[T]{}
	p.entries = p.entries[:n]
	delete(p.index, e.ID)
	return e
}

func (p *pool[T]) push(e entry[T]) {
	heap.Push(p, e)
}

// peek returns the entry with the earliest due time.
func (p *pool[T]) peek() (entry[T], bool) {
	if len(p.entries) == 0 {
		return entry[T]{}, false
	}
	return p.entries[0], true
}

func (p *pool[T]) popMin() entry[T] {
	return heap.Pop(p).(entry[T])
}

func (p *pool[T]) contains(id ID) bool {
	_, ok := p.index[id]
	return ok
}

func (p *pool[T]) remove(id ID) (entry[T], bool) {
	i, ok := p.index[id]
	if !ok {
		return entry[T]{}, false
	}
	return heap.Remove(p, i).(entry[T]), true
}

// extract removes every entry matching pred and rebuilds the heap under the
// current key.
func (p *pool[T]) extract(pred func(entry[T]) bool) []entry[T] {
	var out []entry[T]
	kept := p.entries[:0]
	for _, e := range p.entries {
		if pred(e) {
			out = append(out, e)
			continue
		}
		kept = append(kept, e)
	}
	clear(p.entries[len(kept):])
	p.entries = kept
	p.rekey()
	return out
}

// rekey restores heap order after the key function's inputs changed.
func (p *pool[T]) rekey() {
	p.reindex()
	heap.Init(p)
}

func (p *pool[T]) reindex() {
	clear(p.index)
	for i, e := range p.entries {
		p.index[e.ID] = i
	}
}

// sorted returns a copy of the entries in due order.
func (p *pool[T]) sorted() []entry[T] {
	out := slices.Clone(p.entries)
	slices.SortStableFunc(out, func(a, b entry[T]) int {
		return p.due(a.Task).Compare(p.due(b.Task))
	})
	return out
}
