package machine

import "github.com/loxlang/golox/lang/gc"

// collectable reports whether v is heap-allocated (as opposed to Nil, Bool
// or Number, which are stored by value and never swept).
func collectable(v Value) (gc.Collectable, bool) {
	switch v := v.(type) {
	case *ObjString:
		return v, true
	case *ObjFunction:
		return v, true
	case *ObjUpvalue:
		return v, true
	case *ObjClosure:
		return v, true
	case *ObjNative:
		return v, true
	case *ObjClass:
		return v, true
	case *ObjInstance:
		return v, true
	case *ObjBoundMethod:
		return v, true
	default:
		return nil, false
	}
}

type marker struct {
	gray []gc.Collectable
}

func (m *marker) markValue(v Value) {
	if v == nil {
		return
	}
	obj, ok := collectable(v)
	if !ok {
		return
	}
	m.markObject(obj)
}

func (m *marker) markObject(obj gc.Collectable) {
	type markable interface{ Mark() bool }
	if mk, ok := obj.(markable); ok {
		if mk.Mark() {
			return // already marked, don't re-queue
		}
	}
	m.gray = append(m.gray, obj)
}

// blacken marks every value an already-marked object references, per the
// reference graph spec.md §4.6 names: Closure→Function+upvalues,
// Upvalue→closed value, Class→name+methods, Instance→class+fields,
// BoundMethod→receiver+closure. ObjFunction's chunk constants are not
// walked here because they are plain Go values owned by lang/compiler, not
// entries in this heap (see lang/compiler/chunk.go's Constants doc).
func (m *marker) blacken(obj gc.Collectable) {
	switch o := obj.(type) {
	case *ObjString, *ObjFunction, *ObjNative:
		// no outgoing references into the heap
	case *ObjUpvalue:
		if o.Location == &o.Closed {
			m.markValue(o.Closed)
		}
	case *ObjClosure:
		m.markObject(o.Fn)
		for _, uv := range o.Upvalues {
			m.markObject(uv)
		}
	case *ObjClass:
		m.markObject(o.Name)
		if o.Superclass != nil {
			m.markObject(o.Superclass)
		}
		for name, method := range o.Methods {
			m.markObject(name)
			m.markObject(method)
		}
	case *ObjInstance:
		m.markObject(o.Class)
		for name, v := range o.Fields {
			m.markObject(name)
			m.markValue(v)
		}
	case *ObjBoundMethod:
		m.markValue(o.Receiver)
		m.markObject(o.Method)
	}
}

// markRoots enumerates every GC root: the live portion of the value stack,
// every active call frame's closure, the open-upvalue list, and the
// globals table (spec.md §4.4 "State", §4.6 "roots").
func (th *Thread) markRoots(m *marker) {
	for i := 0; i < th.stackTop; i++ {
		m.markValue(th.stack[i])
	}
	for i := range th.frames {
		m.markObject(th.frames[i].closure)
	}
	for uv := th.openUpvalues; uv != nil; uv = uv.Next {
		m.markObject(uv)
	}
	th.globals.Iter(func(k *ObjString, v Value) (stop bool) {
		m.markObject(k)
		m.markValue(v)
		return false
	})
}

// collect runs one full mark-sweep cycle (spec.md §4.6 "Algorithm").
func (th *Thread) collect() {
	m := &marker{}
	th.markRoots(m)
	for len(m.gray) > 0 {
		obj := m.gray[len(m.gray)-1]
		m.gray = m.gray[:len(m.gray)-1]
		m.blacken(obj)
	}

	th.heap.Sweep(func(obj gc.Collectable) {
		if s, ok := obj.(*ObjString); ok {
			th.strings.Remove(s.Value)
		}
	})
	th.heap.AfterCollect(th.heap.BytesAllocated)
}

// maybeCollect triggers a collection if the heap's threshold (or
// stress-test mode) calls for one. Every allocation site in this package
// calls it first, after any value the allocation depends on is already
// reachable from a root (spec.md §4.6 "Interactions").
func (th *Thread) maybeCollect() {
	if th.heap.ShouldCollect() {
		th.collect()
	}
}
