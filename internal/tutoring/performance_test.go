package tutoring

import (
	"context"
	"sync"
	"testing"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	return NewTracker(NewRepo(openTestDB(t)))
}

func TestTracker_GetOrCreateStartsZeroed(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	p, err := tracker.GetOrCreate(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if p.TotalProblems != 0 || p.CorrectAnswers != 0 || p.AccuracyRate != 0 {
		t.Fatalf("expected zeroed counters, got %+v", p)
	}
	if p.CurrentDifficulty != DifficultyMedium {
		t.Fatalf("expected starting difficulty medium, got %q", p.CurrentDifficulty)
	}

	// repeated calls return the same row, never a second one
	again, err := tracker.GetOrCreate(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get or create again: %v", err)
	}
	if again.ID != p.ID {
		t.Fatalf("expected same row, got id=%d and id=%d", p.ID, again.ID)
	}
}

func TestTracker_UpdateProgression(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	steps := []struct {
		isCorrect      bool
		wantTotal      int
		wantCorrect    int
		wantAccuracy   int
		wantDifficulty string
	}{
		{true, 1, 1, 100, DifficultyMedium},  // below threshold, tier frozen
		{false, 2, 1, 50, DifficultyMedium},  // still frozen
		{true, 3, 2, 67, DifficultyMedium},   // threshold reached, 67 -> medium
		{true, 4, 3, 75, DifficultyMedium},   // 75 -> medium
		{true, 5, 4, 80, DifficultyHard},     // 80 -> hard
	}

	for i, step := range steps {
		p, err := tracker.Update(ctx, "sess-1", step.isCorrect)
		if err != nil {
			t.Fatalf("step %d: update: %v", i, err)
		}
		if p.TotalProblems != step.wantTotal ||
			p.CorrectAnswers != step.wantCorrect ||
			p.AccuracyRate != step.wantAccuracy ||
			p.CurrentDifficulty != step.wantDifficulty {
			t.Fatalf("step %d: got {total=%d correct=%d accuracy=%d difficulty=%s}, want {%d %d %d %s}",
				i, p.TotalProblems, p.CorrectAnswers, p.AccuracyRate, p.CurrentDifficulty,
				step.wantTotal, step.wantCorrect, step.wantAccuracy, step.wantDifficulty)
		}
	}
}

func TestTracker_DifficultyDropsOnLowAccuracy(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	var last *SessionPerformance
	var err error
	for _, ok := range []bool{false, false, true} {
		last, err = tracker.Update(ctx, "sess-1", ok)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	// 1/3 -> 33% -> easy
	if last.AccuracyRate != 33 || last.CurrentDifficulty != DifficultyEasy {
		t.Fatalf("expected 33%% easy, got %+v", last)
	}
}

func TestTracker_UpdatePersists(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	if _, err := tracker.Update(ctx, "sess-1", true); err != nil {
		t.Fatalf("update: %v", err)
	}

	p, err := tracker.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.TotalProblems != 1 || p.CorrectAnswers != 1 || p.AccuracyRate != 100 {
		t.Fatalf("persisted snapshot wrong: %+v", p)
	}
}

func TestTracker_SessionsAreIndependent(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	if _, err := tracker.Update(ctx, "sess-a", true); err != nil {
		t.Fatalf("update a: %v", err)
	}
	if _, err := tracker.Update(ctx, "sess-b", false); err != nil {
		t.Fatalf("update b: %v", err)
	}

	a, err := tracker.Get(ctx, "sess-a")
	if err != nil {
		t.Fatalf("get a: %v", err)
	}
	b, err := tracker.Get(ctx, "sess-b")
	if err != nil {
		t.Fatalf("get b: %v", err)
	}
	if a.CorrectAnswers != 1 || b.CorrectAnswers != 0 {
		t.Fatalf("sessions bled into each other: a=%+v b=%+v", a, b)
	}
}

func TestTracker_ConcurrentUpdatesLoseNothing(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(correct bool) {
			defer wg.Done()
			if _, err := tracker.Update(ctx, "sess-1", correct); err != nil {
				t.Errorf("update: %v", err)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	p, err := tracker.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.TotalProblems != n || p.CorrectAnswers != n/2 {
		t.Fatalf("lost updates: total=%d correct=%d", p.TotalProblems, p.CorrectAnswers)
	}
}

func TestAccuracyRateRounding(t *testing.T) {
	cases := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{0, 1, 0},
		{1, 2, 50},
		{2, 3, 67},
		{1, 3, 33},
		{1, 8, 13}, // 12.5 rounds half-up
		{3, 4, 75},
		{4, 5, 80},
		{5, 5, 100},
	}
	for _, tc := range cases {
		if got := accuracyRate(tc.correct, tc.total); got != tc.want {
			t.Fatalf("accuracyRate(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
		}
	}
}

func TestNextDifficulty(t *testing.T) {
	// below the attempt threshold the current tier sticks, whatever accuracy says
	if got := nextDifficulty(DifficultyEasy, 2, 100); got != DifficultyEasy {
		t.Fatalf("expected frozen easy, got %q", got)
	}
	if got := nextDifficulty(DifficultyHard, 1, 0); got != DifficultyHard {
		t.Fatalf("expected frozen hard, got %q", got)
	}

	cases := []struct {
		accuracy int
		want     string
	}{
		{100, DifficultyHard},
		{80, DifficultyHard},
		{79, DifficultyMedium},
		{60, DifficultyMedium},
		{59, DifficultyEasy},
		{0, DifficultyEasy},
	}
	for _, tc := range cases {
		if got := nextDifficulty(DifficultyMedium, 3, tc.accuracy); got != tc.want {
			t.Fatalf("nextDifficulty(medium, 3, %d) = %q, want %q", tc.accuracy, got, tc.want)
		}
	}
}
