package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memTimerStore is an in-memory TimerStore for tests. failWrites makes every
// write fail so fail-closed behavior can be exercised.
type memTimerStore struct {
	active     map[int]*ActiveTimer
	completed  map[int][]CompletedTimerEntry
	failWrites bool
}

func newMemTimerStore() *memTimerStore {
	return &memTimerStore{
		active:    make(map[int]*ActiveTimer),
		completed: make(map[int][]CompletedTimerEntry),
	}
}

var errWriteFailed = errors.New("store write failed")

func (m *memTimerStore) GetActive(_ context.Context, reviewerID int) (*ActiveTimer, error) {
	if t, ok := m.active[reviewerID]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, nil
}

func (m *memTimerStore) SetActive(_ context.Context, reviewerID int, t *ActiveTimer) error {
	if m.failWrites {
		return errWriteFailed
	}
	copied := *t
	m.active[reviewerID] = &copied
	return nil
}

func (m *memTimerStore) ClearActive(_ context.Context, reviewerID int) error {
	if m.failWrites {
		return errWriteFailed
	}
	delete(m.active, reviewerID)
	return nil
}

func (m *memTimerStore) GetCompleted(_ context.Context, reviewerID int) ([]CompletedTimerEntry, error) {
	return append([]CompletedTimerEntry(nil), m.completed[reviewerID]...), nil
}

func (m *memTimerStore) SetCompleted(_ context.Context, reviewerID int, entries []CompletedTimerEntry) error {
	if m.failWrites {
		return errWriteFailed
	}
	m.completed[reviewerID] = append([]CompletedTimerEntry(nil), entries...)
	return nil
}

// memTimerNotifier is an in-memory TimerNotifier: it records every published
// event and fans it out to live subscribers.
type memTimerNotifier struct {
	mu     sync.Mutex
	events map[int][]TimerEvent
	subs   map[int][]chan TimerEvent
}

func newMemTimerNotifier() *memTimerNotifier {
	return &memTimerNotifier{
		events: make(map[int][]TimerEvent),
		subs:   make(map[int][]chan TimerEvent),
	}
}

func (n *memTimerNotifier) Publish(_ context.Context, reviewerID int, event TimerEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[reviewerID] = append(n.events[reviewerID], event)
	for _, ch := range n.subs[reviewerID] {
		ch <- event
	}
	return nil
}

func (n *memTimerNotifier) Subscribe(_ context.Context, reviewerID int) (<-chan TimerEvent, func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan TimerEvent, 32)
	n.subs[reviewerID] = append(n.subs[reviewerID], ch)
	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		kept := n.subs[reviewerID][:0]
		for _, c := range n.subs[reviewerID] {
			if c != ch {
				kept = append(kept, c)
			}
		}
		n.subs[reviewerID] = kept
		close(ch)
	}
	return ch, cancel, nil
}

func (n *memTimerNotifier) kinds(reviewerID int) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, e := range n.events[reviewerID] {
		out = append(out, e.Kind)
	}
	return out
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

const (
	testReviewer   = 7
	testSubmission = 42
	testDuration   = 1200
	testRecording  = "https://cdn.example.com/sets/42.mp3"
)

func newTestTimer(t *testing.T) (*ReviewTimerService, *memTimerStore, *fakeClock) {
	t.Helper()
	store := newMemTimerStore()
	clock := &fakeClock{now: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	return NewReviewTimerService(store, nil, clock.Now), store, clock
}

func TestTimerNaturalCompletion(t *testing.T) {
	svc, _, clock := newTestTimer(t)
	ctx := context.Background()

	result, err := svc.Request(ctx, testReviewer, testSubmission, testRecording, testDuration, false)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if result.Outcome != TimerStarted {
		t.Fatalf("outcome = %s, want started", result.Outcome)
	}
	if result.RemainingSeconds != testDuration {
		t.Fatalf("remaining = %d, want %d", result.RemainingSeconds, testDuration)
	}

	// Partway through, remaining is recomputed from the wall clock.
	clock.Advance(500 * time.Second)
	status, err := svc.Status(ctx, testReviewer)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Active == nil || status.RemainingSeconds != testDuration-500 {
		t.Fatalf("remaining = %d, want %d", status.RemainingSeconds, testDuration-500)
	}

	// At exactly the full duration the timer completes and converts to an
	// eligibility entry.
	clock.Advance(700 * time.Second)
	status, err = svc.Status(ctx, testReviewer)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Active != nil {
		t.Fatal("active timer should be cleared after completion")
	}
	if len(status.Completed) != 1 || status.Completed[0].SubmissionID != testSubmission {
		t.Fatalf("completed entries = %+v, want one for submission %d", status.Completed, testSubmission)
	}
	if status.Completed[0].Override {
		t.Fatal("natural completion must not be marked as override")
	}

	eligible, err := svc.IsCompleted(ctx, testReviewer, testSubmission)
	if err != nil || !eligible {
		t.Fatalf("IsCompleted = %v, %v; want true, nil", eligible, err)
	}
}

func TestTimerCancelLeavesNoCredit(t *testing.T) {
	svc, _, clock := newTestTimer(t)
	ctx := context.Background()

	if _, err := svc.Request(ctx, testReviewer, testSubmission, testRecording, testDuration, false); err != nil {
		t.Fatalf("request: %v", err)
	}

	clock.Advance(1199 * time.Second)
	cancelled, err := svc.Cancel(ctx, testReviewer)
	if err != nil || !cancelled {
		t.Fatalf("cancel = %v, %v; want true, nil", cancelled, err)
	}

	eligible, err := svc.IsCompleted(ctx, testReviewer, testSubmission)
	if err != nil {
		t.Fatalf("IsCompleted: %v", err)
	}
	if eligible {
		t.Fatal("cancelled timer must not grant eligibility")
	}
}

func TestTimerStaleCompletionExpires(t *testing.T) {
	svc, store, clock := newTestTimer(t)
	ctx := context.Background()

	store.completed[testReviewer] = []CompletedTimerEntry{{
		EntryID:      "entry-1",
		SubmissionID: testSubmission,
		CompletedAt:  clock.Now().Add(-4 * 24 * time.Hour),
	}}

	eligible, err := svc.IsCompleted(ctx, testReviewer, testSubmission)
	if err != nil {
		t.Fatalf("IsCompleted: %v", err)
	}
	if eligible {
		t.Fatal("a 4-day-old completion must not grant eligibility")
	}
	// Stale entries are pruned on read.
	if len(store.completed[testReviewer]) != 0 {
		t.Fatalf("stale entry not pruned: %+v", store.completed[testReviewer])
	}
}

func TestTimerSameSubmissionIsIdempotent(t *testing.T) {
	svc, _, clock := newTestTimer(t)
	ctx := context.Background()

	if _, err := svc.Request(ctx, testReviewer, testSubmission, testRecording, testDuration, false); err != nil {
		t.Fatalf("request: %v", err)
	}

	clock.Advance(300 * time.Second)
	result, err := svc.Request(ctx, testReviewer, testSubmission, testRecording, testDuration, false)
	if err != nil {
		t.Fatalf("re-request: %v", err)
	}
	if result.Outcome != TimerAlreadyActive {
		t.Fatalf("outcome = %s, want already_active", result.Outcome)
	}
	if result.RemainingSeconds != testDuration-300 {
		t.Fatalf("re-request reset the countdown: remaining = %d, want %d", result.RemainingSeconds, testDuration-300)
	}
}

func TestTimerSwitchRequiresConfirmation(t *testing.T) {
	svc, _, clock := newTestTimer(t)
	ctx := context.Background()
	other := testSubmission + 1

	if _, err := svc.Request(ctx, testReviewer, testSubmission, testRecording, testDuration, false); err != nil {
		t.Fatalf("request: %v", err)
	}
	clock.Advance(600 * time.Second)

	// Without confirmation the switch is held pending.
	result, err := svc.Request(ctx, testReviewer, other, testRecording, testDuration, false)
	if err != nil {
		t.Fatalf("switch request: %v", err)
	}
	if result.Outcome != TimerPendingConfirmation {
		t.Fatalf("outcome = %s, want pending_confirmation", result.Outcome)
	}
	if result.ActiveSubmissionID != testSubmission {
		t.Fatalf("conflicting submission = %d, want %d", result.ActiveSubmissionID, testSubmission)
	}

	// Confirming discards the prior timer's progress without completing it.
	result, err = svc.Request(ctx, testReviewer, other, testRecording, testDuration, true)
	if err != nil {
		t.Fatalf("confirmed switch: %v", err)
	}
	if result.Outcome != TimerStarted {
		t.Fatalf("outcome = %s, want started", result.Outcome)
	}

	eligible, err := svc.IsCompleted(ctx, testReviewer, testSubmission)
	if err != nil {
		t.Fatalf("IsCompleted: %v", err)
	}
	if eligible {
		t.Fatal("discarded timer must not grant eligibility")
	}
}

func TestTimerRequestAfterCompletionShortCircuits(t *testing.T) {
	svc, _, clock := newTestTimer(t)
	ctx := context.Background()

	if _, err := svc.Request(ctx, testReviewer, testSubmission, testRecording, testDuration, false); err != nil {
		t.Fatalf("request: %v", err)
	}
	clock.Advance(testDuration * time.Second)

	result, err := svc.Request(ctx, testReviewer, testSubmission, testRecording, testDuration, false)
	if err != nil {
		t.Fatalf("re-request: %v", err)
	}
	if result.Outcome != TimerAlreadyCompleted {
		t.Fatalf("outcome = %s, want already_completed", result.Outcome)
	}
}

func TestTimerOverrideGrantsImmediateCredit(t *testing.T) {
	svc, _, clock := newTestTimer(t)
	ctx := context.Background()
	const admin = 99

	if _, err := svc.Request(ctx, testReviewer, testSubmission, testRecording, testDuration, false); err != nil {
		t.Fatalf("request: %v", err)
	}
	clock.Advance(10 * time.Second)

	if err := svc.Override(ctx, testReviewer, admin, testSubmission); err != nil {
		t.Fatalf("override: %v", err)
	}

	status, err := svc.Status(ctx, testReviewer)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Active != nil {
		t.Fatal("override should clear the matching active timer")
	}
	if len(status.Completed) != 1 || !status.Completed[0].Override {
		t.Fatalf("completed = %+v, want one override entry", status.Completed)
	}

	eligible, err := svc.IsCompleted(ctx, testReviewer, testSubmission)
	if err != nil || !eligible {
		t.Fatalf("IsCompleted = %v, %v; want true, nil", eligible, err)
	}
}

func TestTimerClearCompletedConsumesCredit(t *testing.T) {
	svc, _, clock := newTestTimer(t)
	ctx := context.Background()

	if _, err := svc.Request(ctx, testReviewer, testSubmission, testRecording, testDuration, false); err != nil {
		t.Fatalf("request: %v", err)
	}
	clock.Advance(testDuration * time.Second)

	if eligible, _ := svc.IsCompleted(ctx, testReviewer, testSubmission); !eligible {
		t.Fatal("expected eligibility after completion")
	}

	if err := svc.ClearCompleted(ctx, testReviewer, testSubmission); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if eligible, _ := svc.IsCompleted(ctx, testReviewer, testSubmission); eligible {
		t.Fatal("eligibility must be consumed once the review is filed")
	}
}

func TestTimerMutationsPublishChangeEvents(t *testing.T) {
	store := newMemTimerStore()
	notifier := newMemTimerNotifier()
	clock := &fakeClock{now: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewReviewTimerService(store, notifier, clock.Now)
	ctx := context.Background()
	const admin = 99
	other := testSubmission + 1

	// Another tab watching the reviewer's channel sees every mutation below.
	events, cancelSub, err := svc.Subscribe(ctx, testReviewer)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := svc.Request(ctx, testReviewer, testSubmission, testRecording, testDuration, false); err != nil {
		t.Fatalf("request: %v", err)
	}
	if cancelled, err := svc.Cancel(ctx, testReviewer); err != nil || !cancelled {
		t.Fatalf("cancel = %v, %v; want true, nil", cancelled, err)
	}
	if _, err := svc.Request(ctx, testReviewer, testSubmission, testRecording, testDuration, false); err != nil {
		t.Fatalf("re-request: %v", err)
	}
	clock.Advance(testDuration * time.Second)
	// Natural completion is observed (and announced) on the next read.
	if _, err := svc.Status(ctx, testReviewer); err != nil {
		t.Fatalf("status: %v", err)
	}
	if err := svc.ClearCompleted(ctx, testReviewer, testSubmission); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := svc.Override(ctx, testReviewer, admin, other); err != nil {
		t.Fatalf("override: %v", err)
	}

	want := []string{
		TimerEventStarted,
		TimerEventCancelled,
		TimerEventStarted,
		TimerEventCompleted,
		TimerEventCleared,
		TimerEventOverridden,
	}
	got := notifier.kinds(testReviewer)
	if len(got) != len(want) {
		t.Fatalf("published kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("published kinds = %v, want %v", got, want)
		}
	}

	published := notifier.events[testReviewer]
	if published[3].SubmissionID != testSubmission {
		t.Fatalf("completed event for submission %d, want %d", published[3].SubmissionID, testSubmission)
	}
	if published[5].SubmissionID != other {
		t.Fatalf("overridden event for submission %d, want %d", published[5].SubmissionID, other)
	}
	if published[0].RemainingSeconds != testDuration {
		t.Fatalf("started event remaining = %d, want %d", published[0].RemainingSeconds, testDuration)
	}

	// The subscriber received the same sequence.
	cancelSub()
	var received []string
	for e := range events {
		received = append(received, e.Kind)
	}
	if len(received) != len(want) {
		t.Fatalf("subscriber saw %v, want %v", received, want)
	}
	for i := range want {
		if received[i] != want[i] {
			t.Fatalf("subscriber saw %v, want %v", received, want)
		}
	}

	// Status reads that mutate nothing stay silent.
	if _, err := svc.Status(ctx, testReviewer); err != nil {
		t.Fatalf("status: %v", err)
	}
	if got := notifier.kinds(testReviewer); len(got) != len(want) {
		t.Fatalf("read-only status published an event: %v", got)
	}
}

func TestTimerFailsClosed(t *testing.T) {
	store := newMemTimerStore()
	clock := &fakeClock{now: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewReviewTimerService(store, nil, clock.Now)
	ctx := context.Background()

	// Missing recording: no timer state created.
	if _, err := svc.Request(ctx, testReviewer, testSubmission, "", testDuration, false); err == nil {
		t.Fatal("expected error for missing recording")
	}
	if len(store.active) != 0 {
		t.Fatal("timer state must not be created when the recording cannot be opened")
	}

	// Persistence failure: no eligibility granted.
	store.failWrites = true
	if _, err := svc.Request(ctx, testReviewer, testSubmission, testRecording, testDuration, false); err == nil {
		t.Fatal("expected error when persistence fails")
	}
	if len(store.active) != 0 {
		t.Fatal("timer state must not survive a failed persist")
	}
}
