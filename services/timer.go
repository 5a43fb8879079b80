package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// CompletedEntryTTL is how long a completed listen stays valid as review
// eligibility before the reviewer must re-listen.
const CompletedEntryTTL = 3 * 24 * time.Hour

// ActiveTimer is a reviewer's single in-progress listen. Remaining time is
// always recomputed from the wall clock, never decremented, so it survives
// reloads and tab closure.
type ActiveTimer struct {
	SubmissionID    int       `json:"submission_id"`
	RecordingURL    string    `json:"recording_url"`
	StartTime       time.Time `json:"start_time"`
	DurationSeconds int       `json:"duration_seconds"`
}

// RemainingSeconds returns the seconds left on the timer at now, floored at 0.
func (t *ActiveTimer) RemainingSeconds(now time.Time) int {
	elapsed := int(now.Sub(t.StartTime).Seconds())
	remaining := t.DurationSeconds - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CompletedTimerEntry proves a reviewer satisfied the minimum listen time for
// a submission. Entries expire after CompletedEntryTTL.
type CompletedTimerEntry struct {
	EntryID      string    `json:"entry_id"`
	SubmissionID int       `json:"submission_id"`
	CompletedAt  time.Time `json:"completed_at"`
	Override     bool      `json:"override"`
}

// TimerStore persists one reviewer's timer state. The production store is
// Redis; tests inject an in-memory implementation.
type TimerStore interface {
	GetActive(ctx context.Context, reviewerID int) (*ActiveTimer, error)
	SetActive(ctx context.Context, reviewerID int, t *ActiveTimer) error
	ClearActive(ctx context.Context, reviewerID int) error
	GetCompleted(ctx context.Context, reviewerID int) ([]CompletedTimerEntry, error)
	SetCompleted(ctx context.Context, reviewerID int, entries []CompletedTimerEntry) error
}

// Timer event kinds published on a reviewer's change-notification channel so
// every open tab observes mutations made in any other tab.
const (
	TimerEventStarted    = "started"
	TimerEventCancelled  = "cancelled"
	TimerEventCompleted  = "completed"
	TimerEventOverridden = "overridden"
	TimerEventCleared    = "cleared"
)

type TimerEvent struct {
	Kind             string    `json:"kind"`
	SubmissionID     int       `json:"submission_id"`
	RemainingSeconds int       `json:"remaining_seconds"`
	At               time.Time `json:"at"`
}

// TimerNotifier fans timer events out to all of a reviewer's subscribers.
type TimerNotifier interface {
	Publish(ctx context.Context, reviewerID int, event TimerEvent) error
	Subscribe(ctx context.Context, reviewerID int) (<-chan TimerEvent, func(), error)
}

// Timer request outcomes.
const (
	TimerStarted             = "started"
	TimerAlreadyActive       = "already_active"
	TimerAlreadyCompleted    = "already_completed"
	TimerPendingConfirmation = "pending_confirmation"
)

// TimerRequestResult describes the outcome of a timer request.
type TimerRequestResult struct {
	Outcome string `json:"outcome"`
	// Timer is set for started/already_active outcomes.
	Timer *ActiveTimer `json:"timer,omitempty"`
	// RemainingSeconds accompanies started/already_active outcomes.
	RemainingSeconds int `json:"remaining_seconds"`
	// ActiveSubmissionID reports the conflicting timer for
	// pending_confirmation outcomes.
	ActiveSubmissionID int `json:"active_submission_id,omitempty"`
}

// ReviewTimerService runs the per-reviewer listen-timer state machine. All
// state lives in the injected store, so any number of tabs (or API replicas)
// observe a consistent view; the notifier propagates changes to subscribers.
type ReviewTimerService struct {
	store    TimerStore
	notifier TimerNotifier
	now      func() time.Time
}

// NewReviewTimerService builds a timer service. clock may be nil, in which
// case time.Now is used. notifier may be nil (events are then dropped).
func NewReviewTimerService(store TimerStore, notifier TimerNotifier, clock func() time.Time) *ReviewTimerService {
	if clock == nil {
		clock = time.Now
	}
	return &ReviewTimerService{store: store, notifier: notifier, now: clock}
}

func (s *ReviewTimerService) publish(ctx context.Context, reviewerID int, event TimerEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, reviewerID, event); err != nil {
		log.Printf("timer: failed to publish %s event for reviewer %d: %v", event.Kind, reviewerID, err)
	}
}

// Subscribe exposes the reviewer's change-notification channel.
func (s *ReviewTimerService) Subscribe(ctx context.Context, reviewerID int) (<-chan TimerEvent, func(), error) {
	if s.notifier == nil {
		return nil, nil, fmt.Errorf("timer notifier not configured")
	}
	return s.notifier.Subscribe(ctx, reviewerID)
}

// sweep promotes an expired active timer to a completed entry and prunes
// stale completed entries. It returns the surviving active timer (or nil)
// and the current completed entries.
func (s *ReviewTimerService) sweep(ctx context.Context, reviewerID int) (*ActiveTimer, []CompletedTimerEntry, error) {
	now := s.now()

	active, err := s.store.GetActive(ctx, reviewerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read active timer: %w", err)
	}

	entries, err := s.store.GetCompleted(ctx, reviewerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read completed timers: %w", err)
	}

	changed := false
	fresh := entries[:0]
	for _, e := range entries {
		if now.Sub(e.CompletedAt) <= CompletedEntryTTL {
			fresh = append(fresh, e)
		} else {
			changed = true
		}
	}
	entries = fresh

	if active != nil && active.RemainingSeconds(now) == 0 {
		// Natural completion: the moment the countdown hit zero, not the
		// moment we happened to observe it.
		completedAt := active.StartTime.Add(time.Duration(active.DurationSeconds) * time.Second)
		entries = append(entries, CompletedTimerEntry{
			EntryID:      uuid.New().String(),
			SubmissionID: active.SubmissionID,
			CompletedAt:  completedAt,
		})
		changed = true

		if err := s.store.SetCompleted(ctx, reviewerID, entries); err != nil {
			return nil, nil, fmt.Errorf("failed to record completed timer: %w", err)
		}
		if err := s.store.ClearActive(ctx, reviewerID); err != nil {
			return nil, nil, fmt.Errorf("failed to clear finished timer: %w", err)
		}
		log.Printf("timer: reviewer %d completed listen for submission %d", reviewerID, active.SubmissionID)
		s.publish(ctx, reviewerID, TimerEvent{Kind: TimerEventCompleted, SubmissionID: active.SubmissionID, At: now})
		return nil, entries, nil
	}

	if changed {
		if err := s.store.SetCompleted(ctx, reviewerID, entries); err != nil {
			return nil, nil, fmt.Errorf("failed to prune completed timers: %w", err)
		}
	}
	return active, entries, nil
}

// Request starts (or reports on) a listen timer for a submission.
//   - A non-stale completed entry short-circuits to already_completed.
//   - Re-requesting the active submission is idempotent: the countdown is
//     never reset, the caller just reopens the recording.
//   - Requesting a different submission while one is active needs an explicit
//     confirmSwitch; the prior timer's progress is then discarded without
//     being completed.
//
// If the recording reference is missing, or the store write fails, no timer
// state is created (fail closed).
func (s *ReviewTimerService) Request(ctx context.Context, reviewerID, submissionID int, recordingURL string, durationSeconds int, confirmSwitch bool) (*TimerRequestResult, error) {
	if recordingURL == "" {
		return nil, NewDomainError(CodeRecordingUnavailable, "recording cannot be opened for this submission")
	}

	active, entries, err := s.sweep(ctx, reviewerID)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.SubmissionID == submissionID {
			return &TimerRequestResult{Outcome: TimerAlreadyCompleted}, nil
		}
	}

	now := s.now()

	if active != nil {
		if active.SubmissionID == submissionID {
			return &TimerRequestResult{
				Outcome:          TimerAlreadyActive,
				Timer:            active,
				RemainingSeconds: active.RemainingSeconds(now),
			}, nil
		}
		if !confirmSwitch {
			return &TimerRequestResult{
				Outcome:            TimerPendingConfirmation,
				ActiveSubmissionID: active.SubmissionID,
			}, nil
		}
		log.Printf("timer: reviewer %d discarded timer for submission %d to switch to %d", reviewerID, active.SubmissionID, submissionID)
	}

	timer := &ActiveTimer{
		SubmissionID:    submissionID,
		RecordingURL:    recordingURL,
		StartTime:       now,
		DurationSeconds: durationSeconds,
	}
	if err := s.store.SetActive(ctx, reviewerID, timer); err != nil {
		return nil, fmt.Errorf("failed to persist timer: %w", err)
	}

	s.publish(ctx, reviewerID, TimerEvent{Kind: TimerEventStarted, SubmissionID: submissionID, RemainingSeconds: durationSeconds, At: now})
	return &TimerRequestResult{
		Outcome:          TimerStarted,
		Timer:            timer,
		RemainingSeconds: durationSeconds,
	}, nil
}

// TimerStatus is the reviewer's current timer view.
type TimerStatus struct {
	Active           *ActiveTimer          `json:"active,omitempty"`
	RemainingSeconds int                   `json:"remaining_seconds"`
	Completed        []CompletedTimerEntry `json:"completed"`
}

// Status reports the active timer (remaining recomputed from the wall clock)
// and non-stale completed entries.
func (s *ReviewTimerService) Status(ctx context.Context, reviewerID int) (*TimerStatus, error) {
	active, entries, err := s.sweep(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	status := &TimerStatus{Active: active, Completed: entries}
	if active != nil {
		status.RemainingSeconds = active.RemainingSeconds(s.now())
	}
	return status, nil
}

// Cancel discards the active timer with no partial credit. It reports whether
// a timer was actually running.
func (s *ReviewTimerService) Cancel(ctx context.Context, reviewerID int) (bool, error) {
	active, _, err := s.sweep(ctx, reviewerID)
	if err != nil {
		return false, err
	}
	if active == nil {
		return false, nil
	}
	if err := s.store.ClearActive(ctx, reviewerID); err != nil {
		return false, fmt.Errorf("failed to cancel timer: %w", err)
	}
	s.publish(ctx, reviewerID, TimerEvent{Kind: TimerEventCancelled, SubmissionID: active.SubmissionID, At: s.now()})
	return true, nil
}

// Override grants full listen credit immediately, bypassing the remaining
// time. It is role-gated by the caller and logged distinctly from natural
// completion since it bypasses the quality gate.
func (s *ReviewTimerService) Override(ctx context.Context, reviewerID, actorID, submissionID int) error {
	active, entries, err := s.sweep(ctx, reviewerID)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.SubmissionID == submissionID {
			return nil // already eligible
		}
	}

	now := s.now()
	entries = append(entries, CompletedTimerEntry{
		EntryID:      uuid.New().String(),
		SubmissionID: submissionID,
		CompletedAt:  now,
		Override:     true,
	})
	if err := s.store.SetCompleted(ctx, reviewerID, entries); err != nil {
		return fmt.Errorf("failed to persist timer override: %w", err)
	}

	if active != nil && active.SubmissionID == submissionID {
		if err := s.store.ClearActive(ctx, reviewerID); err != nil {
			return fmt.Errorf("failed to clear overridden timer: %w", err)
		}
	}

	log.Printf("timer: OVERRIDE by user %d granted listen credit to reviewer %d for submission %d", actorID, reviewerID, submissionID)
	s.publish(ctx, reviewerID, TimerEvent{Kind: TimerEventOverridden, SubmissionID: submissionID, At: now})
	return nil
}

// IsCompleted reports whether the reviewer holds a non-stale completed entry
// for the submission. Stale entries are pruned on read.
func (s *ReviewTimerService) IsCompleted(ctx context.Context, reviewerID, submissionID int) (bool, error) {
	_, entries, err := s.sweep(ctx, reviewerID)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.SubmissionID == submissionID {
			return true, nil
		}
	}
	return false, nil
}

// ClearCompleted consumes the completed entry for a submission once the
// reviewer's review has been persisted, so eligibility cannot be banked.
func (s *ReviewTimerService) ClearCompleted(ctx context.Context, reviewerID, submissionID int) error {
	entries, err := s.store.GetCompleted(ctx, reviewerID)
	if err != nil {
		return fmt.Errorf("failed to read completed timers: %w", err)
	}

	kept := entries[:0]
	removed := false
	for _, e := range entries {
		if e.SubmissionID == submissionID {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return nil
	}

	if err := s.store.SetCompleted(ctx, reviewerID, kept); err != nil {
		return fmt.Errorf("failed to clear completed timer: %w", err)
	}
	s.publish(ctx, reviewerID, TimerEvent{Kind: TimerEventCleared, SubmissionID: submissionID, At: s.now()})
	return nil
}
