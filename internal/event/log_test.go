package event

import (
	"context"
	"errors"
	"testing"
)

type failingStore struct {
	Store
	err error
}

func (f failingStore) Insert(context.Context, Event) error { return f.err }
func (f failingStore) Update(context.Context, Event) error { return f.err }

func TestLogInsertKeepsNewestFirstAndPublishes(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	l := NewLog(repo, nil)

	var published [][]Event
	l.Subscribe(func(events []Event) { published = append(published, events) })

	if err := l.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, e := range []Event{
		{ID: "mid", Name: "b", StartTime: 5_000, EndTime: 6_000},
		{ID: "old", Name: "a", StartTime: 1_000, EndTime: 2_000},
		{ID: "new", Name: "c", StartTime: 9_000, EndTime: 9_500},
	} {
		if err := l.Insert(ctx, e); err != nil {
			t.Fatalf("insert %s: %v", e.ID, err)
		}
	}

	events := l.Events()
	want := []string{"new", "mid", "old"}
	for i, id := range want {
		if events[i].ID != id {
			t.Fatalf("expected order %v, got %+v", want, events)
		}
	}
	if len(published) != 4 {
		t.Fatalf("expected 4 publications (load + 3 inserts), got %d", len(published))
	}

	stored, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	for i := range stored {
		if stored[i] != events[i] {
			t.Fatalf("memory and store diverged at %d: %+v vs %+v", i, events[i], stored[i])
		}
	}
}

func TestLogDoesNotApplyFailedWrites(t *testing.T) {
	boom := errors.New("disk full")
	l := NewLog(failingStore{err: boom}, nil)
	ctx := context.Background()

	if err := l.Insert(ctx, Event{ID: "x", Name: "x", StartTime: 1, EndTime: 1}); !errors.Is(err, boom) {
		t.Fatalf("expected insert failure, got %v", err)
	}
	if len(l.Events()) != 0 {
		t.Fatalf("failed insert must not be applied in memory")
	}
}

func TestLogUpdateUnknownAndDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	l := NewLog(repo, nil)

	if err := l.Update(ctx, Event{ID: "missing", Name: "x", StartTime: 1, EndTime: 2}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	e := Event{ID: "e", Name: "x", StartTime: 1, EndTime: 1}
	if err := l.Insert(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}
	e.EndTime = 3_000
	if err := l.Update(ctx, e); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := l.Events()[0]; got.EndTime != 3_000 {
		t.Fatalf("expected updated end time, got %+v", got)
	}

	if err := l.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(l.Events()) != 0 {
		t.Fatalf("expected empty log after delete")
	}
	if err := l.Delete(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeated delete, got %v", err)
	}
}
