package tutoring

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateSession(ctx context.Context, s *Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repo) GetSessionBySessionID(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var out []Session
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) InsertChatLog(ctx context.Context, entry *ChatLog) error {
	if entry.ContentType == "" {
		entry.ContentType = ContentText
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListChatLogsAsc returns the full history in chronological order,
// the order the model context is built in.
func (r *Repo) ListChatLogsAsc(ctx context.Context, sessionID string) ([]ChatLog, error) {
	var logs []ChatLog
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// ListRecentChatLogsDesc returns the most recent entries newest-first.
func (r *Repo) ListRecentChatLogsDesc(ctx context.Context, sessionID string, limit int) ([]ChatLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []ChatLog
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *Repo) CreateProblem(ctx context.Context, p *PracticeProblem) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repo) ListProblems(ctx context.Context, sessionID string) ([]PracticeProblem, error) {
	var out []PracticeProblem
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CreateQuiz(ctx context.Context, q *Quiz) error {
	return r.db.WithContext(ctx).Create(q).Error
}

// GetQuizInSession looks the quiz up within one session's quiz set; a quiz
// belonging to another session is reported as not found.
func (r *Repo) GetQuizInSession(ctx context.Context, quizID uint64, sessionID string) (*Quiz, error) {
	var q Quiz
	if err := r.db.WithContext(ctx).
		Where("id = ? AND session_id = ?", quizID, sessionID).
		First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// SaveQuizGrade records the learner's answer and outcome. Last write wins
// if grading is invoked twice for the same quiz.
func (r *Repo) SaveQuizGrade(ctx context.Context, quizID uint64, userAnswer string, isCorrect bool) error {
	return r.db.WithContext(ctx).Model(&Quiz{}).
		Where("id = ?", quizID).
		Updates(map[string]any{
			"user_answer": userAnswer,
			"is_correct":  isCorrect,
		}).Error
}

func (r *Repo) CreateNote(ctx context.Context, n *Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *Repo) ListNotes(ctx context.Context, sessionID string) ([]Note, error) {
	var out []Note
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetPerformance(ctx context.Context, sessionID string) (*SessionPerformance, error) {
	var p SessionPerformance
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrCreatePerformance inserts a zeroed row on first touch. The unique
// index on session_id makes a concurrent double-insert fail; the loser
// re-reads and returns the winner's row.
func (r *Repo) GetOrCreatePerformance(ctx context.Context, sessionID string) (*SessionPerformance, error) {
	p, err := r.GetPerformance(ctx, sessionID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &SessionPerformance{
		SessionID:         sessionID,
		TotalProblems:     0,
		CorrectAnswers:    0,
		AccuracyRate:      0,
		CurrentDifficulty: DifficultyMedium,
	}
	if err := r.db.WithContext(ctx).Create(fresh).Error; err != nil {
		// lost the insert race: somebody else created it first
		if existing, getErr := r.GetPerformance(ctx, sessionID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return fresh, nil
}

// SavePerformance writes all four counters in one logical write.
func (r *Repo) SavePerformance(ctx context.Context, p *SessionPerformance) error {
	return r.db.WithContext(ctx).Model(&SessionPerformance{}).
		Where("session_id = ?", p.SessionID).
		Updates(map[string]any{
			"total_problems":     p.TotalProblems,
			"correct_answers":    p.CorrectAnswers,
			"accuracy_rate":      p.AccuracyRate,
			"current_difficulty": p.CurrentDifficulty,
		}).Error
}

// Job CRUD

func (r *Repo) CreateJob(ctx context.Context, job *GenerationJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repo) GetJobByID(ctx context.Context, id string) (*GenerationJob, error) {
	var j GenerationJob
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) UpdateJobStatusRunning(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&GenerationJob{}).
		Where("id = ? AND status = ?", id, JobQueued).
		Update("status", JobRunning).Error
}

func (r *Repo) MarkJobSucceeded(ctx context.Context, id string, resultCount int) error {
	return r.db.WithContext(ctx).Model(&GenerationJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       JobSucceeded,
			"result_count": resultCount,
			"error":        nil,
		}).Error
}

func (r *Repo) MarkJobFailed(ctx context.Context, id string, errMsg string) error {
	return r.db.WithContext(ctx).Model(&GenerationJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       JobFailed,
			"error":        errMsg,
			"result_count": nil,
		}).Error
}

func (r *Repo) GetJobByIdempotencyKey(ctx context.Context, key string) (*GenerationJob, error) {
	var job GenerationJob
	if err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJobOrGetExisting tries to create a job, but if the idempotency key
// already exists it returns the existing job instead.
func (r *Repo) CreateJobOrGetExisting(ctx context.Context, job *GenerationJob) (*GenerationJob, bool, error) {
	if job.IdempotencyKey == nil || *job.IdempotencyKey == "" {
		// No key provided -> always a new job
		job.IdempotencyKey = nil
		if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
			return nil, false, err
		}
		return job, true, nil
	}

	err := r.db.WithContext(ctx).Create(job).Error
	if err == nil {
		return job, true, nil
	}

	existing, getErr := r.GetJobByIdempotencyKey(ctx, *job.IdempotencyKey)
	if getErr == nil {
		return existing, false, nil
	}

	if errors.Is(getErr, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	return nil, false, getErr
}
