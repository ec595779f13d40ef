package conflict

import (
	"testing"
	"time"

	"trace-journal-be/pkg/editor/ledger"
)

type stubRecency struct {
	recent   bool
	consumed int
}

func (s *stubRecency) ConsumeRecentSave(window time.Duration) bool {
	s.consumed++
	if s.recent {
		s.recent = false
		return true
	}
	return false
}

func TestDecideOrder(t *testing.T) {
	newerExternal := ledger.Classification{IsNewer: true, IsExternal: true}
	newerOwn := ledger.Classification{IsNewer: true, IsExternal: false}
	stale := ledger.Classification{}

	tests := []struct {
		name string
		in   Input
		want Outcome
	}{
		{
			name: "save in flight beats everything",
			in:   Input{SaveInFlight: true, Classification: newerExternal, Dirty: true},
			want: OutcomeIgnoredSaving,
		},
		{
			name: "stale revision dropped",
			in:   Input{Classification: stale, Dirty: true},
			want: OutcomeIgnoredStale,
		},
		{
			name: "own bump confirmed without touching content",
			in:   Input{Classification: newerOwn, Dirty: true},
			want: OutcomeConfirmedOwn,
		},
		{
			name: "dirty working copy is kept",
			in:   Input{Classification: newerExternal, Dirty: true},
			want: OutcomeKeptLocal,
		},
		{
			name: "attachment drift counts as dirty",
			in:   Input{Classification: newerExternal, AttachmentDelta: true},
			want: OutcomeKeptLocal,
		},
		{
			name: "clean copy adopts",
			in:   Input{Classification: newerExternal, Recency: &stubRecency{}},
			want: OutcomeAdopted,
		},
		{
			name: "clean copy right after save warns",
			in:   Input{Classification: newerExternal, Recency: &stubRecency{recent: true}},
			want: OutcomeAdoptedOverwrote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.in); got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecideConsumesRecencyOnlyOnCleanAdoption(t *testing.T) {
	newerExternal := ledger.Classification{IsNewer: true, IsExternal: true}

	rec := &stubRecency{recent: true}
	Decide(Input{Classification: newerExternal, Dirty: true, Recency: rec})
	if rec.consumed != 0 {
		t.Fatalf("dirty path consulted recency %d times, want 0", rec.consumed)
	}

	Decide(Input{SaveInFlight: true, Classification: newerExternal, Recency: rec})
	if rec.consumed != 0 {
		t.Fatalf("save-in-flight path consulted recency %d times, want 0", rec.consumed)
	}

	got := Decide(Input{Classification: newerExternal, Recency: rec})
	if got != OutcomeAdoptedOverwrote {
		t.Fatalf("Decide() = %v, want %v", got, OutcomeAdoptedOverwrote)
	}
	if rec.consumed != 1 {
		t.Fatalf("clean adoption consulted recency %d times, want 1", rec.consumed)
	}

	// The stamp was consumed; the next external revision is a plain adoption.
	if got := Decide(Input{Classification: newerExternal, Recency: rec}); got != OutcomeAdopted {
		t.Errorf("Decide() after consumption = %v, want %v", got, OutcomeAdopted)
	}
}

func TestDecideWithLedgerRecency(t *testing.T) {
	current := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	led := ledger.NewWithClock(func() time.Time { return current })
	led.Initialize(5)
	led.RecordLocalSave()

	newerExternal := ledger.Classification{IsNewer: true, IsExternal: true}

	current = current.Add(10 * time.Second)
	got := Decide(Input{Classification: newerExternal, Recency: led, Window: 30 * time.Second})
	if got != OutcomeAdoptedOverwrote {
		t.Fatalf("within the window: Decide() = %v, want %v", got, OutcomeAdoptedOverwrote)
	}

	// 40s later another external revision arrives; the stamp is gone.
	current = current.Add(40 * time.Second)
	got = Decide(Input{Classification: newerExternal, Recency: led, Window: 30 * time.Second})
	if got != OutcomeAdopted {
		t.Errorf("after consumption: Decide() = %v, want %v", got, OutcomeAdopted)
	}
}
