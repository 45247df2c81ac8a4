package tutoring

import (
	"context"
	"math"
	"sync"
)

// Difficulty is reconsidered only once enough answers have accumulated;
// below the threshold the previous tier sticks.
const difficultyMinAttempts = 3

// Tracker owns the per-session accuracy counters and the difficulty ladder.
// Update is a read-modify-write over shared storage; two concurrent updates
// for one session could otherwise race and lose an increment, so updates are
// serialized through a per-session mutex. This covers the single-process
// deployment used here; running several writers against one database would
// additionally need row locking.
type Tracker struct {
	repo *Repo

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTracker(repo *Repo) *Tracker {
	return &Tracker{repo: repo, locks: make(map[string]*sync.Mutex)}
}

func (t *Tracker) sessionLock(sessionID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[sessionID] = l
	}
	return l
}

// GetOrCreate returns the performance row, inserting a zeroed one on first
// touch. Safe to call repeatedly; the unique index guarantees one row.
func (t *Tracker) GetOrCreate(ctx context.Context, sessionID string) (*SessionPerformance, error) {
	return t.repo.GetOrCreatePerformance(ctx, sessionID)
}

// Get reads the row without creating it; absent rows surface as
// gorm.ErrRecordNotFound.
func (t *Tracker) Get(ctx context.Context, sessionID string) (*SessionPerformance, error) {
	return t.repo.GetPerformance(ctx, sessionID)
}

// Update records one answer and returns the new snapshot. All four fields
// are persisted as a single write.
func (t *Tracker) Update(ctx context.Context, sessionID string, isCorrect bool) (*SessionPerformance, error) {
	l := t.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	p, err := t.repo.GetOrCreatePerformance(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	p.TotalProblems++
	if isCorrect {
		p.CorrectAnswers++
	}
	p.AccuracyRate = accuracyRate(p.CorrectAnswers, p.TotalProblems)
	p.CurrentDifficulty = nextDifficulty(p.CurrentDifficulty, p.TotalProblems, p.AccuracyRate)

	if err := t.repo.SavePerformance(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// accuracyRate is the integer percentage, rounded half-up.
func accuracyRate(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

func nextDifficulty(current string, total, accuracy int) string {
	if total < difficultyMinAttempts {
		return current
	}
	switch {
	case accuracy >= 80:
		return DifficultyHard
	case accuracy >= 60:
		return DifficultyMedium
	default:
		return DifficultyEasy
	}
}
