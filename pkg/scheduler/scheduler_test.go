package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timekit-io/timekit/pkg/clock"
	"github.com/timekit-io/timekit/pkg/timespan"
)

func TestDueOrdering(t *testing.T) {
	fake := clock.NewFake()
	q := NewQueue(fake)

	q.ScheduleAfter(timespan.Seconds(3), "third")
	q.ScheduleAfter(timespan.Seconds(1), "first")
	q.ScheduleAfter(timespan.Seconds(2), "second")

	require.Equal(t, 3, q.Len())
	assert.Empty(t, q.Due(), "nothing is due before the clock moves")

	fake.Advance(timespan.Seconds(2))
	due := q.Due()
	require.Len(t, due, 2)
	assert.Equal(t, "first", due[0].Payload)
	assert.Equal(t, "second", due[1].Payload)

	fake.Advance(timespan.Seconds(1))
	due = q.Due()
	require.Len(t, due, 1)
	assert.Equal(t, "third", due[0].Payload)
	assert.Zero(t, q.Len())
}

func TestFIFOWithinEqualDeadlines(t *testing.T) {
	fake := clock.NewFake()
	q := NewQueue(fake)

	deadline := fake.Now().Add(timespan.Second)
	q.ScheduleAt(deadline, "a")
	q.ScheduleAt(deadline, "b")
	q.ScheduleAt(deadline, "c")

	fake.Advance(timespan.Seconds(5))
	due := q.Due()
	require.Len(t, due, 3)
	assert.Equal(t, []interface{}{"a", "b", "c"},
		[]interface{}{due[0].Payload, due[1].Payload, due[2].Payload})
}

func TestCancel(t *testing.T) {
	fake := clock.NewFake()
	q := NewQueue(fake)

	id := q.ScheduleAfter(timespan.Second, "x")
	q.ScheduleAfter(timespan.Second, "y")

	assert.True(t, q.Cancel(id))
	assert.False(t, q.Cancel(id), "second cancel must report missing")

	fake.Advance(timespan.Seconds(2))
	due := q.Due()
	require.Len(t, due, 1)
	assert.Equal(t, "y", due[0].Payload)
}

func TestNext(t *testing.T) {
	fake := clock.NewFake()
	q := NewQueue(fake)

	_, ok := q.Next()
	assert.False(t, ok, "empty queue has no next deadline")

	q.ScheduleAfter(timespan.Seconds(5), "x")
	d, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, timespan.Seconds(5), d)

	fake.Advance(timespan.Seconds(7))
	d, ok = q.Next()
	require.True(t, ok)
	assert.Equal(t, timespan.Seconds(-2), d, "overdue entries report negative waits")
}

func TestImmediatelyDue(t *testing.T) {
	fake := clock.NewFake()
	q := NewQueue(fake)

	q.ScheduleAfter(timespan.Seconds(-1), "past")
	q.ScheduleAfter(timespan.Zero, "now")

	due := q.Due()
	require.Len(t, due, 2)
	assert.Equal(t, "past", due[0].Payload)
	assert.Equal(t, "now", due[1].Payload)
}
