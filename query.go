package loom

import (
	"iter"

	"github.com/loomware/loom/slot"
)

// Query pairs a Fetch with a Filter and caches the archetypes it matches,
// per spec.md §4.7. The cache is invalidated whenever the world's
// structural generation counter advances past the value observed when it
// was last built.
type Query[Item any] struct {
	fetch      Fetch[Item]
	filter     Filter
	archetypes []*archetype
	cachedGen  uint64
	cached     bool
	lastTick   uint32
}

// NewQuery builds a Query over fetch with no filter beyond what fetch
// itself requires.
func NewQuery[Item any](fetch Fetch[Item]) *Query[Item] {
	return &Query[Item]{fetch: fetch, filter: All}
}

// Filter narrows the query to archetypes and slots also satisfying f.
func (q *Query[Item]) Filter(f Filter) *Query[Item] {
	q.filter = f
	q.cached = false
	return q
}

func (q *Query[Item]) refresh(w *World) {
	gen := w.Generation()
	if q.cached && gen == q.cachedGen {
		return
	}
	q.archetypes = w.archetypesMatching(func(sig Signature) bool {
		return q.fetch.Matches(w, sig) && q.filter.Matches(w, sig)
	})
	q.cachedGen = gen
	q.cached = true
}

// Iter drives the query over world, yielding one Item per matching slot in
// archetype-cache order, ascending slot within each archetype. If the
// fetch is mutable, the world's tick is advanced once for the whole run
// and every yielded slice is recorded as Modified.
func (q *Query[Item]) Iter(w *World) iter.Seq[Item] {
	return func(yield func(Item) bool) {
		q.refresh(w)
		oldTick := q.lastTick
		newTick := w.currentTick()
		if q.fetch.Mutable() {
			newTick = w.AdvanceTick()
		}
		for _, arch := range q.archetypes {
			if !q.iterArchetype(w, arch, oldTick, newTick, yield) {
				q.lastTick = newTick
				return
			}
		}
		q.lastTick = newTick
	}
}

func (q *Query[Item]) iterArchetype(w *World, arch *archetype, oldTick, newTick uint32, yield func(Item) bool) bool {
	pf, ok := q.fetch.Prepare(w, arch, oldTick)
	if !ok {
		return true
	}
	defer pf.Release()
	pFilt, ok := q.filter.Prepare(w, arch, oldTick)
	if !ok {
		return true
	}
	defer pFilt.Release()

	mutable := q.fetch.Mutable()
	cur := slot.New(0, arch.Len())
	for !cur.IsEmpty() {
		seg := driveIntersect(pf.FilterSlots, pFilt.FilterSlots, cur)
		if seg.IsEmpty() {
			break
		}
		for i := seg.Start; i < seg.End; i++ {
			if !yield(pf.Fetch(i)) {
				if mutable {
					pf.SetVisited(slot.New(seg.Start, i+1), newTick)
				}
				return false
			}
		}
		if mutable {
			pf.SetVisited(seg, newTick)
		}
		cur = slot.New(seg.End, cur.End)
	}
	return true
}

// Get fetches the single item for entity id, recording Modified for its
// one slot when the fetch is mutable.
func (q *Query[Item]) Get(w *World, id EntityID) (Item, error) {
	var zero Item
	loc, ok := w.index.get(id)
	if !ok {
		return zero, NoSuchEntityError{ID: id}
	}
	arch := w.byID[loc.archetype]
	if !q.fetch.Matches(w, arch.signature) || !q.filter.Matches(w, arch.signature) {
		return zero, UnmatchedFetchError{ID: id, Describe: q.fetch.Describe()}
	}
	pf, ok := q.fetch.Prepare(w, arch, q.lastTick)
	if !ok {
		return zero, UnmatchedFetchError{ID: id, Describe: q.fetch.Describe()}
	}
	defer pf.Release()
	newTick := w.currentTick()
	if q.fetch.Mutable() {
		newTick = w.AdvanceTick()
	}
	item := pf.Fetch(loc.slot)
	if q.fetch.Mutable() {
		pf.SetVisited(slot.New(loc.slot, loc.slot+1), newTick)
		q.lastTick = newTick
	}
	return item, nil
}

// Pair is the item type of a two-component Query2.
type Pair[A, B any] struct {
	A A
	B B
}

// Triple is the item type of a three-component Query3.
type Triple[A, B, C any] struct {
	A A
	B B
	C C
}

// Query1 is a one-component query, provided for symmetry with Query2/3.
func Query1[A any](fa Fetch[A]) *Query[A] { return NewQuery[A](fa) }

type tupleFetch2[A, B any] struct {
	fa Fetch[A]
	fb Fetch[B]
}

func (t tupleFetch2[A, B]) Matches(w *World, sig Signature) bool {
	return t.fa.Matches(w, sig) && t.fb.Matches(w, sig)
}
func (t tupleFetch2[A, B]) Mutable() bool { return t.fa.Mutable() || t.fb.Mutable() }
func (t tupleFetch2[A, B]) Describe() string {
	return "(" + t.fa.Describe() + ", " + t.fb.Describe() + ")"
}
func (t tupleFetch2[A, B]) Access(w *World, arch *archetype) []Access {
	return append(t.fa.Access(w, arch), t.fb.Access(w, arch)...)
}
func (t tupleFetch2[A, B]) Prepare(w *World, arch *archetype, oldTick uint32) (PreparedFetch[Pair[A, B]], bool) {
	pa, ok := t.fa.Prepare(w, arch, oldTick)
	if !ok {
		return nil, false
	}
	pb, ok := t.fb.Prepare(w, arch, oldTick)
	if !ok {
		pa.Release()
		return nil, false
	}
	return &preparedTuple2[A, B]{pa: pa, pb: pb}, true
}

type preparedTuple2[A, B any] struct {
	pa PreparedFetch[A]
	pb PreparedFetch[B]
}

func (p *preparedTuple2[A, B]) FilterSlots(s slot.Slice) slot.Slice {
	return driveIntersect(p.pa.FilterSlots, p.pb.FilterSlots, s)
}
func (p *preparedTuple2[A, B]) Fetch(i int) Pair[A, B] {
	return Pair[A, B]{A: p.pa.Fetch(i), B: p.pb.Fetch(i)}
}
func (p *preparedTuple2[A, B]) SetVisited(s slot.Slice, tick uint32) {
	p.pa.SetVisited(s, tick)
	p.pb.SetVisited(s, tick)
}
func (p *preparedTuple2[A, B]) Release() { p.pb.Release(); p.pa.Release() }

// Query2 combines two fetches into one query yielding Pair[A,B], grounded
// on the arity-capped generic helper pattern (Add2...Add5, Query1...Query3
// here) rather than a variadic-generic tuple, since Go caps type-parameter
// lists at a fixed arity per declaration.
func Query2[A, B any](fa Fetch[A], fb Fetch[B]) *Query[Pair[A, B]] {
	return NewQuery[Pair[A, B]](tupleFetch2[A, B]{fa: fa, fb: fb})
}

type tupleFetch3[A, B, C any] struct {
	fa Fetch[A]
	fb Fetch[B]
	fc Fetch[C]
}

func (t tupleFetch3[A, B, C]) Matches(w *World, sig Signature) bool {
	return t.fa.Matches(w, sig) && t.fb.Matches(w, sig) && t.fc.Matches(w, sig)
}
func (t tupleFetch3[A, B, C]) Mutable() bool {
	return t.fa.Mutable() || t.fb.Mutable() || t.fc.Mutable()
}
func (t tupleFetch3[A, B, C]) Describe() string {
	return "(" + t.fa.Describe() + ", " + t.fb.Describe() + ", " + t.fc.Describe() + ")"
}
func (t tupleFetch3[A, B, C]) Access(w *World, arch *archetype) []Access {
	out := t.fa.Access(w, arch)
	out = append(out, t.fb.Access(w, arch)...)
	return append(out, t.fc.Access(w, arch)...)
}
func (t tupleFetch3[A, B, C]) Prepare(w *World, arch *archetype, oldTick uint32) (PreparedFetch[Triple[A, B, C]], bool) {
	pa, ok := t.fa.Prepare(w, arch, oldTick)
	if !ok {
		return nil, false
	}
	pb, ok := t.fb.Prepare(w, arch, oldTick)
	if !ok {
		pa.Release()
		return nil, false
	}
	pc, ok := t.fc.Prepare(w, arch, oldTick)
	if !ok {
		pb.Release()
		pa.Release()
		return nil, false
	}
	return &preparedTuple3[A, B, C]{pa: pa, pb: pb, pc: pc}, true
}

type preparedTuple3[A, B, C any] struct {
	pa PreparedFetch[A]
	pb PreparedFetch[B]
	pc PreparedFetch[C]
}

func (p *preparedTuple3[A, B, C]) FilterSlots(s slot.Slice) slot.Slice {
	ab := func(w slot.Slice) slot.Slice { return driveIntersect(p.pa.FilterSlots, p.pb.FilterSlots, w) }
	return driveIntersect(ab, p.pc.FilterSlots, s)
}
func (p *preparedTuple3[A, B, C]) Fetch(i int) Triple[A, B, C] {
	return Triple[A, B, C]{A: p.pa.Fetch(i), B: p.pb.Fetch(i), C: p.pc.Fetch(i)}
}
func (p *preparedTuple3[A, B, C]) SetVisited(s slot.Slice, tick uint32) {
	p.pa.SetVisited(s, tick)
	p.pb.SetVisited(s, tick)
	p.pc.SetVisited(s, tick)
}
func (p *preparedTuple3[A, B, C]) Release() { p.pc.Release(); p.pb.Release(); p.pa.Release() }

// Query3 combines three fetches into one query yielding Triple[A,B,C].
func Query3[A, B, C any](fa Fetch[A], fb Fetch[B], fc Fetch[C]) *Query[Triple[A, B, C]] {
	return NewQuery[Triple[A, B, C]](tupleFetch3[A, B, C]{fa: fa, fb: fb, fc: fc})
}
