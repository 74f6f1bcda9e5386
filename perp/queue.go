package perp

import (
	"time"

	"code.perpnote.io/perpnote/bond"
)

// Queue is the redemption queue: an ordered set of tranche instances,
// insertion order is acceptance order. The head is the next tranche that
// must be redeemed while the queue is non-empty.
//
// A tranche instance moves pending -> queued on first acceptance, and
// queued -> terminal either by being fully redeemed at the head or by aging
// out of the tolerable maturity window. Aging out is detected lazily:
// callers run Advance before relying on Peek within one operation.
type Queue struct {
	items  []*bond.Tranche
	member map[string]struct{}
	// seen is never cleaned: it backs the at-most-once-ever guarantee
	seen map[string]struct{}
}

func NewQueue() *Queue {
	return &Queue{
		member: map[string]struct{}{},
		seen:   map[string]struct{}{},
	}
}

func (q *Queue) Len() int {
	return len(q.items)
}

// Peek returns the current head without mutating anything, nil when empty.
func (q *Queue) Peek() *bond.Tranche {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// Advance pops every head whose owning bond's time-to-maturity has fallen
// below the minimum bound and returns them. Eviction carries no economic
// effect, it only removes the redeem-this-first constraint. Idempotent
// within one timestamp.
func (q *Queue) Advance(now time.Time, minMaturity time.Duration) []*bond.Tranche {
	var evicted []*bond.Tranche
	for len(q.items) > 0 {
		head := q.items[0]
		if head.Bond().TimeToMaturity(now) >= minMaturity {
			break
		}
		q.items = q.items[1:]
		delete(q.member, head.ID())
		evicted = append(evicted, head)
	}
	return evicted
}

// Push appends the tranche if its owning bond sits inside the tolerable
// maturity window. Returns false when the tranche was rejected or already
// queued. A tranche instance appears in the queue at most once, ever.
func (q *Queue) Push(t *bond.Tranche, now time.Time, minMaturity, maxMaturity time.Duration) bool {
	if _, ok := q.seen[t.ID()]; ok {
		return false
	}
	ttm := t.Bond().TimeToMaturity(now)
	if ttm < minMaturity || ttm > maxMaturity {
		return false
	}
	q.items = append(q.items, t)
	q.member[t.ID()] = struct{}{}
	q.seen[t.ID()] = struct{}{}
	return true
}

// PopHead removes and returns the head, nil when empty. Used when the head
// tranche's reserve balance reaches zero through in-order redemption.
func (q *Queue) PopHead() *bond.Tranche {
	if len(q.items) == 0 {
		return nil
	}
	head := q.items[0]
	q.items = q.items[1:]
	delete(q.member, head.ID())
	return head
}

// Contains reports queue membership by tranche token identity.
func (q *Queue) Contains(trancheID string) bool {
	_, ok := q.member[trancheID]
	return ok
}

// IDs returns queue contents in redemption order, head first.
func (q *Queue) IDs() []string {
	out := make([]string, 0, len(q.items))
	for _, t := range q.items {
		out = append(out, t.ID())
	}
	return out
}

// Items returns the queued tranches in redemption order.
func (q *Queue) Items() []*bond.Tranche {
	out := make([]*bond.Tranche, len(q.items))
	copy(out, q.items)
	return out
}
