package tutoring

import "time"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

type JobKind string

const (
	JobKindProblems JobKind = "problems"
	JobKindQuiz     JobKind = "quiz"
)

// GenerationJob is an async content-generation request executed by the
// worker. LLM generation can take tens of seconds, so the HTTP layer can
// enqueue instead of blocking.
type GenerationJob struct {
	ID string `gorm:"primaryKey;size:26"` // ULID length

	SessionID string  `gorm:"size:26;index;not null"`
	Kind      JobKind `gorm:"type:varchar(16);not null"`

	Topic      string `gorm:"type:varchar(255);not null"`
	Difficulty string `gorm:"type:varchar(16)"` // problems only
	Count      int    `gorm:"not null"`

	IdempotencyKey *string `gorm:"type:varchar(128);index:uniq_genjob_idempo,unique" json:"idempotency_key"`

	Status JobStatus `gorm:"type:varchar(16);index;not null"`

	// Filled when succeeded: number of items actually persisted,
	// which may be less than Count.
	ResultCount *int

	// Filled when failed
	Error *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (GenerationJob) TableName() string { return "generation_jobs" }
