package clear_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/danhigham/mailstr/internal/clear"
)

// fakeDeleter records deletions and optionally fails specific ids.
type fakeDeleter struct {
	mu      sync.Mutex
	deleted []int
	failIDs map[int]bool
}

func (f *fakeDeleter) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	if f.failIDs[messageID] {
		return errors.New("message too old")
	}
	return nil
}

func (f *fakeDeleter) attempts() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.deleted...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestScheduler_Fires(t *testing.T) {
	d := &fakeDeleter{}
	s := clear.NewScheduler(d, zap.NewNop())

	s.Schedule(10, []int{1, 2, 3}, 10*time.Millisecond)

	waitFor(t, func() bool { return len(d.attempts()) == 3 })
	got := d.attempts()
	if got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("deleted = %v, want [1 2 3]", got)
	}
}

func TestScheduler_JobHandleCancel(t *testing.T) {
	d := &fakeDeleter{}
	s := clear.NewScheduler(d, zap.NewNop())

	job := s.Schedule(10, []int{1}, 50*time.Millisecond)
	job.Cancel()
	job.Cancel() // second cancel is a no-op

	time.Sleep(120 * time.Millisecond)
	if n := len(d.attempts()); n != 0 {
		t.Errorf("deletions after cancel = %d, want 0", n)
	}
}

func TestScheduler_JobsForSameChatCoexist(t *testing.T) {
	d := &fakeDeleter{}
	s := clear.NewScheduler(d, zap.NewNop())

	s.Schedule(10, []int{1}, 30*time.Millisecond)
	s.Schedule(10, []int{2}, 10*time.Millisecond)

	waitFor(t, func() bool { return len(d.attempts()) == 2 })
	got := d.attempts()
	seen := map[int]bool{got[0]: true, got[1]: true}
	if !seen[1] || !seen[2] {
		t.Errorf("deleted = %v, want both message sets to fire", got)
	}
}

func TestScheduler_CancelOneJobLeavesOthers(t *testing.T) {
	d := &fakeDeleter{}
	s := clear.NewScheduler(d, zap.NewNop())

	first := s.Schedule(10, []int{1}, 200*time.Millisecond)
	s.Schedule(10, []int{2}, 10*time.Millisecond)
	first.Cancel()

	waitFor(t, func() bool { return len(d.attempts()) == 1 })
	time.Sleep(50 * time.Millisecond)
	got := d.attempts()
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("deleted = %v, want only [2]", got)
	}
}

func TestScheduler_FailureDoesNotStopSiblings(t *testing.T) {
	d := &fakeDeleter{failIDs: map[int]bool{2: true}}
	s := clear.NewScheduler(d, zap.NewNop())

	s.DeleteNow(context.Background(), 10, []int{1, 2, 3})

	got := d.attempts()
	if len(got) != 3 {
		t.Errorf("attempted = %v, want all three ids despite failure on 2", got)
	}
}

func TestScheduler_IndependentChats(t *testing.T) {
	d := &fakeDeleter{}
	s := clear.NewScheduler(d, zap.NewNop())

	s.Schedule(10, []int{1}, 10*time.Millisecond)
	s.Schedule(20, []int{2}, 10*time.Millisecond)

	waitFor(t, func() bool { return len(d.attempts()) == 2 })
}
