// Package gc provides the allocation bookkeeping and string interning used
// by lang/machine's tracing mark-sweep collector (spec.md §4.5, §4.6). It is
// deliberately generic and knows nothing about Lox's object kinds: the
// mark/blacken logic that understands Closure→Upvalue, Class→Methods, and
// so on lives in lang/machine, which embeds Header into every heap object
// and drives Heap.Sweep with its own object-specific trace. Keeping that
// split is also what avoids an import cycle between lang/gc and
// lang/machine.
package gc

// Collectable is implemented by every heap-allocated object tracked by a
// Heap. Embedding Header satisfies it for free.
type Collectable interface {
	gcHeader() *Header
}

// Header is embedded in every heap-allocated object. It threads the object
// into the heap's intrusive allocation list, carries its mark bit, and
// remembers the byte size it was Registered with so Sweep can account for
// freed bytes.
type Header struct {
	marked bool
	size   int
	next   Collectable
}

func (h *Header) gcHeader() *Header { return h }

// IsMarked reports whether the object has been reached by the current
// mark phase.
func (h *Header) IsMarked() bool { return h.marked }

// Mark sets the object's mark bit. It returns true if the object was
// already marked, so callers can avoid re-pushing it onto a gray worklist.
func (h *Header) Mark() bool {
	was := h.marked
	h.marked = true
	return was
}

func (h *Header) unmark() { h.marked = false }

// Heap tracks every live Collectable via an intrusive singly-linked list
// (Header.next) and the byte-accounting needed to decide when to collect
// (spec.md §4.6 "trigger: allocated bytes crossing a threshold that grows
// by a configurable factor after each collection", plus a stress-test mode
// that collects on every allocation to surface missing roots).
type Heap struct {
	head           Collectable
	BytesAllocated int
	NextGC         int
	GrowthFactor   float64
	StressTest     bool
}

// NewHeap returns a Heap with the given initial collection threshold and
// growth factor.
func NewHeap(initialThreshold int, growthFactor float64) *Heap {
	return &Heap{NextGC: initialThreshold, GrowthFactor: growthFactor}
}

// Register links obj into the heap's object list and accounts for size
// bytes of allocation. Callers must Register every heap object exactly
// once, right after allocating it, before any value derived from it can
// become reachable (spec.md §4.6 "Interactions").
func (h *Heap) Register(obj Collectable, size int) {
	hdr := obj.gcHeader()
	hdr.next = h.head
	hdr.size = size
	h.head = obj
	h.BytesAllocated += size
}

// ShouldCollect reports whether the next allocation should be preceded by a
// collection: either stress mode is on, or accounted bytes have crossed
// NextGC.
func (h *Heap) ShouldCollect() bool {
	return h.StressTest || h.BytesAllocated >= h.NextGC
}

// Sweep walks the object list, clearing mark bits on survivors and
// unlinking+reporting unmarked objects via free. It returns the number of
// objects freed and deducts their registered size from BytesAllocated, so
// the heap's byte accounting reflects only what's still live. free must not
// mutate the heap's list itself.
func (h *Heap) Sweep(free func(Collectable)) int {
	var prev Collectable
	freed := 0
	obj := h.head
	for obj != nil {
		hdr := obj.gcHeader()
		next := hdr.next
		if hdr.marked {
			hdr.unmark()
			prev = obj
		} else {
			if prev == nil {
				h.head = next
			} else {
				prev.gcHeader().next = next
			}
			h.BytesAllocated -= hdr.size
			free(obj)
			freed++
		}
		obj = next
	}
	return freed
}

// AfterCollect resets the allocation threshold relative to what's still
// live, following clox's "next = live * growth-factor" rule.
func (h *Heap) AfterCollect(bytesLive int) {
	h.BytesAllocated = bytesLive
	next := int(float64(bytesLive) * h.GrowthFactor)
	if next < 1024 {
		next = 1024
	}
	h.NextGC = next
}
