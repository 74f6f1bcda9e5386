package perp

import (
	"testing"
	"time"

	"code.perpnote.io/perpnote/bond"
	"code.perpnote.io/perpnote/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	qnow        = time.Unix(1700000000, 0)
	minMaturity = 24 * time.Hour
	maxMaturity = 28 * 24 * time.Hour
)

func queueTranche(t *testing.T, id string, maturity time.Time) *bond.Tranche {
	t.Helper()
	collateral := types.NewToken("usdc", "USDC", 6)
	b, err := bond.New(id, collateral, []uint32{700, 300}, maturity)
	require.NoError(t, err)
	return b.TrancheAt(0)
}

func TestQueue(t *testing.T) {
	t.Run("Push respects the maturity window", testQueuePushWindow)
	t.Run("A tranche is queued at most once ever", testQueueAtMostOnce)
	t.Run("Peek never mutates", testQueuePeek)
	t.Run("Advance evicts aged out heads only", testQueueAdvance)
	t.Run("PopHead removes in redemption order", testQueuePopHead)
}

func testQueuePushWindow(t *testing.T) {
	q := NewQueue()

	tooSoon := queueTranche(t, "b-soon", qnow.Add(12*time.Hour))
	tooLate := queueTranche(t, "b-late", qnow.Add(60*24*time.Hour))
	ok := queueTranche(t, "b-ok", qnow.Add(7*24*time.Hour))

	assert.False(t, q.Push(tooSoon, qnow, minMaturity, maxMaturity))
	assert.False(t, q.Push(tooLate, qnow, minMaturity, maxMaturity))
	assert.True(t, q.Push(ok, qnow, minMaturity, maxMaturity))
	assert.Equal(t, 1, q.Len())
}

func testQueueAtMostOnce(t *testing.T) {
	q := NewQueue()
	tr := queueTranche(t, "b1", qnow.Add(7*24*time.Hour))

	assert.True(t, q.Push(tr, qnow, minMaturity, maxMaturity))
	assert.False(t, q.Push(tr, qnow, minMaturity, maxMaturity))

	require.NotNil(t, q.PopHead())
	// terminal state, a popped tranche never re-enters
	assert.False(t, q.Push(tr, qnow, minMaturity, maxMaturity))
	assert.Equal(t, 0, q.Len())
}

func testQueuePeek(t *testing.T) {
	q := NewQueue()
	assert.Nil(t, q.Peek())

	tr := queueTranche(t, "b1", qnow.Add(7*24*time.Hour))
	require.True(t, q.Push(tr, qnow, minMaturity, maxMaturity))
	assert.Same(t, tr, q.Peek())
	assert.Same(t, tr, q.Peek())
	assert.Equal(t, 1, q.Len())
}

func testQueueAdvance(t *testing.T) {
	q := NewQueue()
	first := queueTranche(t, "b1", qnow.Add(2*24*time.Hour))
	second := queueTranche(t, "b2", qnow.Add(10*24*time.Hour))
	require.True(t, q.Push(first, qnow, minMaturity, maxMaturity))
	require.True(t, q.Push(second, qnow, minMaturity, maxMaturity))

	// nothing aged out yet, Advance is a no-op
	assert.Empty(t, q.Advance(qnow, minMaturity))
	assert.Equal(t, 2, q.Len())

	// move past the first bond's tolerance, the head gets evicted
	later := qnow.Add(36 * time.Hour)
	evicted := q.Advance(later, minMaturity)
	require.Len(t, evicted, 1)
	assert.Same(t, first, evicted[0])
	assert.Same(t, second, q.Peek())

	// idempotent within one timestamp
	assert.Empty(t, q.Advance(later, minMaturity))
}

func testQueuePopHead(t *testing.T) {
	q := NewQueue()
	assert.Nil(t, q.PopHead())

	first := queueTranche(t, "b1", qnow.Add(5*24*time.Hour))
	second := queueTranche(t, "b2", qnow.Add(6*24*time.Hour))
	require.True(t, q.Push(first, qnow, minMaturity, maxMaturity))
	require.True(t, q.Push(second, qnow, minMaturity, maxMaturity))

	assert.Equal(t, []string{first.ID(), second.ID()}, q.IDs())
	assert.Same(t, first, q.PopHead())
	assert.Same(t, second, q.PopHead())
	assert.Nil(t, q.PopHead())
	assert.False(t, q.Contains(first.ID()))
}
