package tutoring

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/yklab/tutor-platform/internal/ai"
)

const quizOptionCount = 4

// Generator turns model output into persisted learning artifacts. Model
// failures and unparseable output degrade to empty result sets; only
// storage-level problems on the primary path surface as errors.
type Generator struct {
	repo          *Repo
	provider      ai.Provider
	tracker       *Tracker
	maxTokens     int
	contextWindow int
}

func NewGenerator(repo *Repo, provider ai.Provider, tracker *Tracker, maxTokens, contextWindow int) *Generator {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	if contextWindow <= 0 || contextWindow > 100 {
		contextWindow = 20
	}
	return &Generator{repo: repo, provider: provider, tracker: tracker, maxTokens: maxTokens, contextWindow: contextWindow}
}

// problemItem is one raw candidate from the model, before validation.
type problemItem struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
}

// quizItem is one raw quiz candidate from the model.
type quizItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// GenerateProblems asks the model for count problems about topic at the
// given difficulty and persists each valid candidate. A failing model call
// or unusable output returns an empty slice, not an error; a persistence
// failure for one item skips that item and keeps going. The returned count
// can be less than requested.
func (g *Generator) GenerateProblems(ctx context.Context, sessionID, topic, difficulty string, count int) ([]PracticeProblem, int, error) {
	if difficulty == "" {
		difficulty = DifficultyMedium
	}

	raw, err := g.generate(ctx, sessionID, buildProblemsPrompt(topic, difficulty, count))
	if err != nil {
		log.Printf("problem generation model call failed session=%s err=%v", sessionID, err)
		return nil, 0, nil
	}

	saved := make([]PracticeProblem, 0, count)
	for _, candidate := range ExtractJSONArray(raw) {
		var item problemItem
		if err := json.Unmarshal(candidate, &item); err != nil {
			log.Printf("problem item skipped session=%s err=%v", sessionID, err)
			continue
		}
		if strings.TrimSpace(item.Problem) == "" || strings.TrimSpace(item.Solution) == "" {
			log.Printf("problem item skipped session=%s reason=missing fields", sessionID)
			continue
		}

		p := PracticeProblem{
			SessionID:  sessionID,
			Problem:    item.Problem,
			Solution:   item.Solution,
			Difficulty: difficulty,
		}
		if err := g.repo.CreateProblem(ctx, &p); err != nil {
			log.Printf("problem item persist failed session=%s err=%v", sessionID, err)
			continue
		}
		saved = append(saved, p)
	}
	return saved, len(saved), nil
}

// GenerateQuiz is the quiz-shaped twin of GenerateProblems. Candidates need
// a question, exactly four options, a correct-answer token and an
// explanation; anything else is skipped.
func (g *Generator) GenerateQuiz(ctx context.Context, sessionID, topic string, count int) ([]Quiz, int, error) {
	raw, err := g.generate(ctx, sessionID, buildQuizPrompt(topic, count))
	if err != nil {
		log.Printf("quiz generation model call failed session=%s err=%v", sessionID, err)
		return nil, 0, nil
	}

	saved := make([]Quiz, 0, count)
	for _, candidate := range ExtractJSONArray(raw) {
		var item quizItem
		if err := json.Unmarshal(candidate, &item); err != nil {
			log.Printf("quiz item skipped session=%s err=%v", sessionID, err)
			continue
		}
		if strings.TrimSpace(item.Question) == "" ||
			len(item.Options) != quizOptionCount ||
			strings.TrimSpace(item.CorrectAnswer) == "" ||
			strings.TrimSpace(item.Explanation) == "" {
			log.Printf("quiz item skipped session=%s reason=invalid shape", sessionID)
			continue
		}

		q := Quiz{
			SessionID:     sessionID,
			Question:      item.Question,
			Options:       item.Options,
			CorrectAnswer: item.CorrectAnswer,
			Explanation:   item.Explanation,
		}
		if err := g.repo.CreateQuiz(ctx, &q); err != nil {
			log.Printf("quiz item persist failed session=%s err=%v", sessionID, err)
			continue
		}
		saved = append(saved, q)
	}
	return saved, len(saved), nil
}

// GradeResult is the outcome of SubmitQuizAnswer.
type GradeResult struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// SubmitQuizAnswer grades the answer by exact, case-sensitive comparison
// with the stored token and records the outcome on the quiz row. The
// follow-up performance update is opportunistic: its failure is logged and
// never changes the grading result.
func (g *Generator) SubmitQuizAnswer(ctx context.Context, quizID uint64, userAnswer, sessionID string) (*GradeResult, error) {
	quiz, err := g.repo.GetQuizInSession(ctx, quizID, sessionID)
	if err != nil {
		return nil, err
	}

	isCorrect := userAnswer == quiz.CorrectAnswer

	if err := g.repo.SaveQuizGrade(ctx, quizID, userAnswer, isCorrect); err != nil {
		return nil, err
	}

	if _, err := g.tracker.Update(ctx, sessionID, isCorrect); err != nil {
		log.Printf("performance update after grading failed session=%s quiz=%d err=%v", sessionID, quizID, err)
	}

	return &GradeResult{
		IsCorrect:     isCorrect,
		CorrectAnswer: quiz.CorrectAnswer,
		Explanation:   quiz.Explanation,
	}, nil
}

// generate runs one generation call with a bounded window of recent chat
// history as context and the JSON output hint set.
func (g *Generator) generate(ctx context.Context, sessionID, prompt string) (string, error) {
	recentDesc, err := g.repo.ListRecentChatLogsDesc(ctx, sessionID, g.contextWindow)
	if err != nil {
		return "", err
	}

	msgs := make([]ai.Message, 0, len(recentDesc)+2)
	msgs = append(msgs, ai.Message{Role: "system", Content: generationSystemPrompt})
	// reverse to ASC (oldest -> newest)
	for i := len(recentDesc) - 1; i >= 0; i-- {
		entry := recentDesc[i]
		msgs = append(msgs, ai.Message{Role: entry.Role, Content: entry.Content})
	}
	msgs = append(msgs, ai.Message{Role: RoleUser, Content: prompt})

	return g.provider.Chat(ctx, msgs, ai.Options{
		MaxTokens:  g.maxTokens,
		JSONOutput: true,
	})
}

const generationSystemPrompt = `You are a tutor generating structured learning content. ` +
	`Always respond with only the requested JSON array and nothing else.`
