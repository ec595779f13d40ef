package ledger

import (
	"testing"
	"time"
)

func TestInitializeFirstObservationWins(t *testing.T) {
	l := New()

	l.Initialize(5)
	l.Initialize(3) // stale late read, must not rewind

	if v, ok := l.Known(); !ok || v != 5 {
		t.Errorf("Known() = %d, %v; want 5, true", v, ok)
	}
}

func TestObserveClassification(t *testing.T) {
	tests := []struct {
		name         string
		known        int64
		version      int64
		origin       string
		self         string
		wantNewer    bool
		wantExternal bool
	}{
		{"same version is not newer", 5, 5, "dev-A", "dev-A", false, false},
		{"older version is not newer", 5, 4, "dev-B", "dev-A", false, false},
		{"own bump is newer but not external", 5, 6, "dev-A", "dev-A", true, false},
		{"foreign bump is newer and external", 5, 6, "dev-B", "dev-A", true, true},
		{"unknown self treats newer as external", 5, 6, "dev-A", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			l.Initialize(tt.known)

			got := l.Observe(tt.version, tt.origin, tt.self)
			if got.IsNewer != tt.wantNewer || got.IsExternal != tt.wantExternal {
				t.Errorf("Observe() = %+v, want {IsNewer:%v IsExternal:%v}",
					got, tt.wantNewer, tt.wantExternal)
			}
		})
	}
}

func TestObserveAdvancesKnownForSelfAndExternal(t *testing.T) {
	l := New()
	l.Initialize(5)

	l.Observe(6, "dev-A", "dev-A") // self bump
	if v, _ := l.Known(); v != 6 {
		t.Fatalf("known after self bump = %d, want 6", v)
	}

	l.Observe(7, "dev-B", "dev-A") // external bump
	if v, _ := l.Known(); v != 7 {
		t.Fatalf("known after external bump = %d, want 7", v)
	}

	l.Observe(3, "dev-B", "dev-A") // stale, must not rewind
	if v, _ := l.Known(); v != 7 {
		t.Fatalf("known after stale observe = %d, want 7", v)
	}
}

func TestObserveMonotonicKnownVersion(t *testing.T) {
	l := New()
	l.Initialize(1)

	versions := []int64{4, 2, 9, 9, 3, 12}
	prev := int64(1)
	for _, v := range versions {
		l.Observe(v, "dev-B", "dev-A")
		got, _ := l.Known()
		if got < prev {
			t.Fatalf("known version went backwards: %d -> %d", prev, got)
		}
		prev = got
	}

	if v, _ := l.Known(); v != 12 {
		t.Errorf("final known = %d, want 12", v)
	}
}

func TestObserveUninitializedAdoptsVersion(t *testing.T) {
	l := New()

	got := l.Observe(1, "dev-A", "dev-A")
	if !got.IsNewer {
		t.Error("first observation on an uninitialized ledger should be newer")
	}
	if got.IsExternal {
		t.Error("own origin must not classify as external")
	}
	if v, ok := l.Known(); !ok || v != 1 {
		t.Errorf("Known() = %d, %v; want 1, true", v, ok)
	}
}

func TestConsumeRecentSave(t *testing.T) {
	current := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return current })

	if l.ConsumeRecentSave(DefaultOverwriteWindow) {
		t.Fatal("no save recorded yet, ConsumeRecentSave must be false")
	}

	l.RecordLocalSave()
	current = current.Add(10 * time.Second)

	if !l.ConsumeRecentSave(DefaultOverwriteWindow) {
		t.Fatal("save 10s ago must be within the 30s window")
	}
	// Consumption clears the stamp. Second call inside the window is false.
	if l.ConsumeRecentSave(DefaultOverwriteWindow) {
		t.Fatal("second consume within the window must be false")
	}
}

func TestConsumeRecentSaveExpired(t *testing.T) {
	current := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return current })

	l.RecordLocalSave()
	current = current.Add(40 * time.Second)

	if l.ConsumeRecentSave(DefaultOverwriteWindow) {
		t.Fatal("save 40s ago is outside the 30s window")
	}

	// A fresh save re-arms the window.
	l.RecordLocalSave()
	current = current.Add(5 * time.Second)
	if !l.ConsumeRecentSave(DefaultOverwriteWindow) {
		t.Fatal("new save must re-arm the window")
	}
}

func TestReset(t *testing.T) {
	l := New()
	l.Initialize(9)
	l.RecordLocalSave()

	l.Reset()

	if _, ok := l.Known(); ok {
		t.Error("Known() should report uninitialized after Reset")
	}
	if l.ConsumeRecentSave(DefaultOverwriteWindow) {
		t.Error("recency stamp should be cleared by Reset")
	}
	// Initialize works again after Reset.
	l.Initialize(2)
	if v, _ := l.Known(); v != 2 {
		t.Errorf("Known() after re-init = %d, want 2", v)
	}
}
