package timers

import "container/heap"

// entryHeap implements container/heap.Interface for Entry,
// sorted by (FireAt, ID).
type entryHeap []Entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].before(h[j]) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(Entry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = Entry{}
	*h = old[:n-1]
	return x
}

func heapPush(h *entryHeap, e Entry) {
	heap.Push(h, e)
}

// heapPop removes and returns the earliest entry.
// Panics if the heap is empty.
func heapPop(h *entryHeap) Entry {
	return heap.Pop(h).(Entry)
}

// heapRemoveByID removes the entry with the given id.
func heapRemoveByID(h *entryHeap, id int64) bool {
	for i, e := range *h {
		if e.ID == id {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}
