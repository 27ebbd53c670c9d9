package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"timeclock/internal/event"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeTicker struct {
	starts []time.Duration
	stops  int
}

func (f *fakeTicker) Start(d time.Duration) { f.starts = append(f.starts, d) }
func (f *fakeTicker) Stop() { f.stops++ }

type fakeNotifier struct {
	completed int
	warnings  []time.Duration
	cancels   int
	err       error
}

func (f *fakeNotifier) NotifyTimerComplete() error {
	f.completed++
	return f.err
}

func (f *fakeNotifier) NotifyCountdownWarning(d time.Duration) error {
	f.warnings = append(f.warnings, d)
	return f.err
}

func (f *fakeNotifier) CancelInProgressNotification() error {
	f.cancels++
	return f.err
}

type flakyRecorder struct {
	Recorder
	insertErr, updateErr, deleteErr error
}

func (f *flakyRecorder) Insert(ctx context.Context, e event.Event) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	return f.Recorder.Insert(ctx, e)
}

func (f *flakyRecorder) Update(ctx context.Context, e event.Event) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.Recorder.Update(ctx, e)
}

func (f *flakyRecorder) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Recorder.Delete(ctx, id)
}

type harness struct {
	clock    *fakeClock
	ticker   *fakeTicker
	notifier *fakeNotifier
	log      *event.Log
	repo     *event.Repository
	recorder *flakyRecorder
	session  *Session
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	repo, err := event.NewRepository(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	h := &harness{
		clock:    &fakeClock{t: time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC)},
		ticker:   &fakeTicker{},
		notifier: &fakeNotifier{},
		log:      event.NewLog(repo, nil),
		repo:     repo,
	}
	h.recorder = &flakyRecorder{Recorder: h.log}
	opts = append([]Option{WithClock(h.clock.Now)}, opts...)
	h.session = New(h.recorder, h.ticker, h.notifier, opts...)
	return h
}

func TestStartStopRecordsOneClosedEvent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.session.Start(ctx, "deep work"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !h.session.IsRunning() {
		t.Fatalf("expected running session")
	}
	if len(h.ticker.starts) != 1 || h.ticker.starts[0] != 0 {
		t.Fatalf("expected ticker started without delay, got %v", h.ticker.starts)
	}

	h.clock.Advance(90 * time.Second)
	finished, err := h.session.Stop(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if h.session.IsRunning() || h.ticker.stops != 1 {
		t.Fatalf("expected idle session with stopped ticker")
	}
	if finished.Duration() != 90_000 {
		t.Fatalf("expected 90s duration, got %d", finished.Duration())
	}

	stored, err := h.repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(stored) != 1 || stored[0].StartTime >= stored[0].EndTime || stored[0].Name != "deep work" {
		t.Fatalf("expected exactly one closed event, got %+v", stored)
	}
	if h.notifier.cancels != 1 {
		t.Fatalf("expected in-progress notification cancelled once, got %d", h.notifier.cancels)
	}
}

func TestStopInSameMillisecondStillCloses(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.session.Start(ctx, "blink"); err != nil {
		t.Fatalf("start: %v", err)
	}
	finished, err := h.session.Stop(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if finished.Running() {
		t.Fatalf("stopped event must not read back as running: %+v", finished)
	}
}

func TestInvalidStateTransitions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.session.Stop(ctx); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState stopping idle session, got %v", err)
	}
	if err := h.session.Cancel(ctx); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState cancelling idle session, got %v", err)
	}
	if err := h.session.Start(ctx, "first"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.session.Start(ctx, "second"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState starting twice, got %v", err)
	}
	if _, err := h.session.Resume(ctx); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState resuming while running, got %v", err)
	}
	if got := len(h.log.Events()); got != 1 {
		t.Fatalf("expected a single event, got %d", got)
	}
}

func TestStartRejectsBlankName(t *testing.T) {
	h := newHarness(t)
	if err := h.session.Start(context.Background(), "   "); !errors.Is(err, event.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if h.session.IsRunning() {
		t.Fatalf("blank start must not run")
	}
}

func TestPersistenceFailureLeavesStateUntouched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	boom := errors.New("disk full")

	h.recorder.insertErr = boom
	err := h.session.Start(ctx, "x")
	var perr *PersistenceError
	if !errors.As(err, &perr) || !errors.Is(err, boom) || perr.Op != "insert" {
		t.Fatalf("expected insert PersistenceError, got %v", err)
	}
	if h.session.IsRunning() || len(h.ticker.starts) != 0 {
		t.Fatalf("failed insert must not start the session")
	}

	h.recorder.insertErr = nil
	if err := h.session.Start(ctx, "x"); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.clock.Advance(time.Minute)

	h.recorder.updateErr = boom
	if _, err := h.session.Stop(ctx); !errors.As(err, &perr) || perr.Op != "update" {
		t.Fatalf("expected update PersistenceError, got %v", err)
	}
	current, ok := h.session.Current()
	if !ok || !current.Running() || h.ticker.stops != 0 {
		t.Fatalf("failed update must leave the session running, got %+v ok=%v", current, ok)
	}
	if stored := h.log.Events(); !stored[0].Running() {
		t.Fatalf("in-memory log must still hold the open event, got %+v", stored[0])
	}

	h.recorder.updateErr = nil
	if _, err := h.session.Stop(ctx); err != nil {
		t.Fatalf("retry stop: %v", err)
	}
}

func TestResumeAlignsFirstTick(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	open := event.NewRunning("reading", h.clock.Now())
	if err := h.repo.Insert(ctx, open); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h.clock.Advance(2*time.Hour + 5*time.Second + 300*time.Millisecond)

	resumed, err := h.session.Resume(ctx)
	if err != nil || !resumed {
		t.Fatalf("expected resume, got %v %v", resumed, err)
	}
	if got := h.session.ElapsedSeconds(); got != 7205 {
		t.Fatalf("expected 7205 elapsed seconds, got %d", got)
	}
	if len(h.ticker.starts) != 1 || h.ticker.starts[0] != 700*time.Millisecond {
		t.Fatalf("expected first tick after 700ms, got %v", h.ticker.starts)
	}
	current, _ := h.session.Current()
	if current.ID != open.ID {
		t.Fatalf("expected to resume %s, got %s", open.ID, current.ID)
	}
}

func TestResumeWithNothingOpen(t *testing.T) {
	h := newHarness(t)
	resumed, err := h.session.Resume(context.Background())
	if err != nil || resumed {
		t.Fatalf("expected nothing to resume, got %v %v", resumed, err)
	}
	if h.session.IsRunning() {
		t.Fatalf("expected idle session")
	}
}

func TestTickUpdatesElapsed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	var kinds []UpdateKind
	h.session.Subscribe(func(u Update) { kinds = append(kinds, u.Kind) })

	if err := h.session.Tick(ctx); err != nil {
		t.Fatalf("idle tick: %v", err)
	}
	if len(kinds) != 0 {
		t.Fatalf("idle tick must not publish, got %v", kinds)
	}

	if err := h.session.Start(ctx, "x"); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.clock.Advance(3*time.Second + 999*time.Millisecond)
	if err := h.session.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := h.session.ElapsedSeconds(); got != 3 {
		t.Fatalf("expected 3 elapsed seconds, got %d", got)
	}
	if len(kinds) != 2 || kinds[0] != UpdateStarted || kinds[1] != UpdateTick {
		t.Fatalf("unexpected updates: %v", kinds)
	}
}

func TestCountdownRemainingNeverNegative(t *testing.T) {
	h := newHarness(t)
	past := h.clock.Now().Add(-time.Hour).UnixMilli()
	h.session.SetCountdown(Countdown{Enabled: true, Target: past})
	if got := h.session.RemainingSeconds(); got != 0 {
		t.Fatalf("expected 0 remaining, got %d", got)
	}

	h.session.SetCountdown(Countdown{Enabled: true, Target: h.clock.Now().Add(1500 * time.Millisecond).UnixMilli()})
	if got := h.session.RemainingSeconds(); got != 2 {
		t.Fatalf("expected remaining rounded up to 2, got %d", got)
	}
}

func TestCountdownWarnsOnceThenCompletes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	var kinds []UpdateKind
	h.session.Subscribe(func(u Update) { kinds = append(kinds, u.Kind) })

	target := h.clock.Now().Add(90 * time.Second).UnixMilli()
	h.session.SetCountdown(Countdown{Enabled: true, Target: target, WarningEnabled: true})
	if err := h.session.Start(ctx, "pomodoro"); err != nil {
		t.Fatalf("start: %v", err)
	}

	h.clock.Advance(31 * time.Second)
	if err := h.session.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	h.clock.Advance(time.Second)
	if err := h.session.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(h.notifier.warnings) != 1 || h.notifier.warnings[0] != 59*time.Second {
		t.Fatalf("expected a single warning at 59s, got %v", h.notifier.warnings)
	}

	h.clock.Advance(2 * time.Minute)
	if err := h.session.Tick(ctx); err != nil {
		t.Fatalf("final tick: %v", err)
	}
	if h.session.IsRunning() {
		t.Fatalf("expected countdown to stop the session")
	}
	if h.notifier.completed != 1 {
		t.Fatalf("expected one completion notification, got %d", h.notifier.completed)
	}

	want := []UpdateKind{UpdateStarted, UpdateCountdownWarning, UpdateTick, UpdateStopped, UpdateCompleted}
	if len(kinds) != len(want) {
		t.Fatalf("expected updates %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected updates %v, got %v", want, kinds)
		}
	}

	stored := h.log.Events()
	if len(stored) != 1 || stored[0].Running() {
		t.Fatalf("expected the countdown event to be saved closed, got %+v", stored)
	}
}

func TestCompletedCountdownDoesNotEndNextEvent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.session.SetCountdown(Countdown{Enabled: true, Target: h.clock.Now().Add(time.Minute).UnixMilli()})
	if err := h.session.Start(ctx, "a"); err != nil {
		t.Fatalf("start a: %v", err)
	}
	h.clock.Advance(2 * time.Minute)
	if err := h.session.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if h.session.IsRunning() || h.session.Countdown().Enabled {
		t.Fatalf("expected stopped session with disarmed countdown, running=%v countdown=%+v",
			h.session.IsRunning(), h.session.Countdown())
	}

	if err := h.session.Start(ctx, "b"); err != nil {
		t.Fatalf("start b: %v", err)
	}
	h.clock.Advance(time.Second)
	if err := h.session.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if !h.session.IsRunning() {
		t.Fatalf("second event must keep running after the countdown finished")
	}
	if h.notifier.completed != 1 {
		t.Fatalf("expected a single completion, got %d", h.notifier.completed)
	}
}

func TestStartDisarmsExpiredCountdown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	past := h.clock.Now().Add(-time.Hour).UnixMilli()
	h.session.SetCountdown(Countdown{Enabled: true, Target: past, WarningEnabled: true})
	if err := h.session.Start(ctx, "late"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c := h.session.Countdown(); c.Enabled || c.Target != past || !c.WarningEnabled {
		t.Fatalf("expected only Enabled cleared, got %+v", c)
	}

	h.clock.Advance(time.Second)
	if err := h.session.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if !h.session.IsRunning() || h.notifier.completed != 0 {
		t.Fatalf("expected running session and no completion, completed=%d", h.notifier.completed)
	}
}

func TestNotifierFailureDoesNotAffectState(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.notifier.err = errors.New("no display")

	h.session.SetCountdown(Countdown{Enabled: true, Target: h.clock.Now().Add(time.Second).UnixMilli()})
	if err := h.session.Start(ctx, "x"); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.clock.Advance(2 * time.Second)
	if err := h.session.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if h.session.IsRunning() {
		t.Fatalf("expected the session to stop despite notifier errors")
	}
}

func TestCancelDiscardsOpenEvent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.session.Start(ctx, "oops"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.session.Cancel(ctx); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if h.session.IsRunning() || len(h.log.Events()) != 0 {
		t.Fatalf("expected no session and no events after cancel")
	}
}
