package tutoring

import "time"

// Difficulty tiers double as generation-prompt parameter and as the
// adaptive output of the performance tracker.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Chat log sender roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat log content kinds.
const (
	ContentText     = "text"
	ContentJSON     = "json"
	ContentMarkdown = "markdown"
)

type Session struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID   string    `gorm:"type:varchar(26);uniqueIndex;not null" json:"session_id"`
	Topic       string    `gorm:"type:varchar(255);not null" json:"topic"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Session) TableName() string { return "tutor_sessions" }

type ChatLog struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID   string    `gorm:"type:varchar(26);not null;index" json:"session_id"`
	Role        string    `gorm:"type:varchar(16);not null" json:"role"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	ContentType string    `gorm:"type:varchar(16);not null;default:text" json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ChatLog) TableName() string { return "chat_logs" }

type PracticeProblem struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID  string    `gorm:"type:varchar(26);not null;index" json:"session_id"`
	Problem    string    `gorm:"type:text;not null" json:"problem"`
	Solution   string    `gorm:"type:text;not null" json:"solution"`
	Difficulty string    `gorm:"type:varchar(16);not null;default:medium" json:"difficulty"`
	Solved     bool      `gorm:"not null;default:false" json:"solved"`
	CreatedAt  time.Time `json:"created_at"`
}

func (PracticeProblem) TableName() string { return "practice_problems" }

type Quiz struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID     string    `gorm:"type:varchar(26);not null;index" json:"session_id"`
	Question      string    `gorm:"type:text;not null" json:"question"`
	Options       []string  `gorm:"serializer:json;type:text;not null" json:"options"`
	CorrectAnswer string    `gorm:"type:varchar(255);not null" json:"-"`
	Explanation   string    `gorm:"type:text" json:"explanation"`
	UserAnswer    *string   `gorm:"type:varchar(255)" json:"user_answer"`
	IsCorrect     *bool     `json:"is_correct"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Quiz) TableName() string { return "quizzes" }

type Note struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"type:varchar(26);not null;index" json:"session_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Category  string    `gorm:"type:varchar(64)" json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func (Note) TableName() string { return "notes" }

// SessionPerformance is the per-session accuracy counter row. One row per
// session, created lazily; counters only ever grow.
type SessionPerformance struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID         string    `gorm:"type:varchar(26);uniqueIndex;not null" json:"session_id"`
	TotalProblems     int       `gorm:"not null;default:0" json:"total_problems"`
	CorrectAnswers    int       `gorm:"not null;default:0" json:"correct_answers"`
	AccuracyRate      int       `gorm:"not null;default:0" json:"accuracy_rate"`
	CurrentDifficulty string    `gorm:"type:varchar(16);not null;default:medium" json:"current_difficulty"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (SessionPerformance) TableName() string { return "session_performances" }
