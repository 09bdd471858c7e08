package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFired(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for task to fire")
		return ""
	}
}

func assertSilent(t *testing.T, ch <-chan string, d time.Duration) {
	t.Helper()
	select {
	case id := <-ch:
		t.Fatalf("unexpected fire of task %s", id)
	case <-time.After(d):
	}
}

func TestScheduleFires(t *testing.T) {
	s := New("test")
	fired := make(chan string, 1)

	s.Schedule("a", time.Now().Add(10*time.Millisecond), func() { fired <- "a" })
	require.True(t, s.Contains("a"))

	assert.Equal(t, "a", waitFired(t, fired))
	assert.False(t, s.Contains("a"), "fired task should be discarded")
	assert.Equal(t, 0, s.Len())
}

func TestSchedulePastTimeFiresImmediately(t *testing.T) {
	s := New("test")
	fired := make(chan string, 1)

	s.Schedule("overdue", time.Now().Add(-time.Hour), func() { fired <- "overdue" })
	assert.Equal(t, "overdue", waitFired(t, fired))
}

func TestScheduleSameIDReplaces(t *testing.T) {
	s := New("test")
	fired := make(chan string, 2)

	s.Schedule("x", time.Now().Add(time.Hour), func() { fired <- "old" })
	s.Schedule("x", time.Now().Add(10*time.Millisecond), func() { fired <- "new" })

	assert.Equal(t, "new", waitFired(t, fired))
	assertSilent(t, fired, 50*time.Millisecond)
	assert.Equal(t, 0, s.Len(), "replaced task must not linger")
}

func TestCancelPendingTask(t *testing.T) {
	s := New("test")
	fired := make(chan string, 1)

	s.Schedule("c", time.Now().Add(20*time.Millisecond), func() { fired <- "c" })
	s.Cancel("c")

	assert.False(t, s.Contains("c"))
	assertSilent(t, fired, 80*time.Millisecond)
}

func TestCancelUnknownIDIsNoop(t *testing.T) {
	s := New("test")
	assert.NotPanics(t, func() { s.Cancel("never-scheduled") })
}

func TestCancelAfterFireIsNoop(t *testing.T) {
	s := New("test")
	fired := make(chan string, 1)

	s.Schedule("f", time.Now().Add(5*time.Millisecond), func() { fired <- "f" })
	waitFired(t, fired)

	assert.NotPanics(t, func() { s.Cancel("f") })
	assert.False(t, s.Contains("f"))
}

func TestPanickingTaskDoesNotBreakOthers(t *testing.T) {
	s := New("test")
	fired := make(chan string, 1)

	s.Schedule("bad", time.Now().Add(5*time.Millisecond), func() { panic("boom") })
	s.Schedule("good", time.Now().Add(30*time.Millisecond), func() { fired <- "good" })

	assert.Equal(t, "good", waitFired(t, fired))
}

func TestFireAtReportsScheduledTime(t *testing.T) {
	s := New("test")
	at := time.Now().Add(time.Hour)

	s.Schedule("later", at, func() {})
	got, ok := s.FireAt("later")
	require.True(t, ok)
	assert.Equal(t, at, got)

	_, ok = s.FireAt("missing")
	assert.False(t, ok)
}

func TestStopCancelsEverything(t *testing.T) {
	s := New("test")
	var count atomic.Int32

	for _, id := range []string{"1", "2", "3"} {
		s.Schedule(id, time.Now().Add(30*time.Millisecond), func() { count.Add(1) })
	}
	s.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())
	assert.Equal(t, 0, s.Len())
}
