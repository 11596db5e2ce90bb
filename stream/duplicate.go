package stream

import "container/list"

// duplicateCapacity is the fixed size of the recent-identifier cache,
// per spec.md §3.
const duplicateCapacity = 10

// duplicateFilter is a bounded, insertion-ordered set of recently seen
// article identifiers. Insertion is O(1); once at capacity, the oldest
// (by insertion order) identifier is evicted to make room for the new
// one. It is not a general deduper — it exists only to guard against the
// server resending the tail of the previous session on reconnect
// (spec.md §4.7).
type duplicateFilter struct {
	order *list.List
	index map[string]*list.Element
}

func newDuplicateFilter() *duplicateFilter {
	return &duplicateFilter{
		order: list.New(),
		index: make(map[string]*list.Element, duplicateCapacity),
	}
}

// seenOrInsert reports whether id was already present. If it was not,
// it is inserted, evicting the oldest entry first if the filter is at
// capacity.
func (d *duplicateFilter) seenOrInsert(id string) bool {
	if _, ok := d.index[id]; ok {
		return true
	}

	if d.order.Len() >= duplicateCapacity {
		oldest := d.order.Front()
		if oldest != nil {
			d.order.Remove(oldest)
			delete(d.index, oldest.Value.(string))
		}
	}

	elem := d.order.PushBack(id)
	d.index[id] = elem
	return false
}

// len reports the current size, never more than duplicateCapacity.
func (d *duplicateFilter) len() int {
	return d.order.Len()
}
