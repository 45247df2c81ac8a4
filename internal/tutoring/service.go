package tutoring

import (
	"context"
	"log"

	"github.com/yklab/tutor-platform/internal/ai"
	"github.com/yklab/tutor-platform/internal/common"
)

// PerformanceCache is an optional read-through cache for performance
// snapshots. A cache miss is (nil, nil).
type PerformanceCache interface {
	GetPerformance(ctx context.Context, sessionID string) (*SessionPerformance, error)
	SetPerformance(ctx context.Context, p *SessionPerformance) error
	DeletePerformance(ctx context.Context, sessionID string) error
}

// Service is the conversation orchestrator and the operation surface the
// session/UI layer calls. All mutable state lives in storage; the service
// itself is stateless per request.
type Service struct {
	repo       *Repo
	provider   ai.Provider
	classifier Classifier
	tracker    *Tracker
	generator  *Generator
	cache      PerformanceCache // may be nil

	systemPrompt   string
	tutorMaxTokens int
}

func NewService(repo *Repo, provider ai.Provider, classifier Classifier, tracker *Tracker, generator *Generator, cache PerformanceCache, systemPrompt string, tutorMaxTokens int) *Service {
	if tutorMaxTokens <= 0 {
		tutorMaxTokens = 1024
	}
	return &Service{
		repo:           repo,
		provider:       provider,
		classifier:     classifier,
		tracker:        tracker,
		generator:      generator,
		cache:          cache,
		systemPrompt:   systemPrompt,
		tutorMaxTokens: tutorMaxTokens,
	}
}

func (s *Service) CreateSession(ctx context.Context, topic, description string) (*Session, error) {
	sid, err := common.NewULID()
	if err != nil {
		return nil, err
	}

	session := &Session{
		SessionID:   sid,
		Topic:       topic,
		Description: description,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	return s.repo.GetSessionBySessionID(ctx, sessionID)
}

func (s *Service) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	return s.repo.ListSessions(ctx, limit)
}

func (s *Service) ListChatLogs(ctx context.Context, sessionID string) ([]ChatLog, error) {
	return s.repo.ListChatLogsAsc(ctx, sessionID)
}

// SendMessageResult is the primary conversational response. IsCorrect is
// set only when the exchange was recognized as an answer evaluation.
type SendMessageResult struct {
	Response           string `json:"response"`
	IsAnswerEvaluation bool   `json:"is_answer_evaluation"`
	IsCorrect          *bool  `json:"is_correct"`
}

// SendMessage runs one conversational turn and opportunistically feeds the
// performance tracker: a non-Unknown correctness signal on the tutor reply
// marks the turn as an answer evaluation and records the outcome. A failing
// tracker update is logged only; the chat reply must never fail because of
// a tracking problem.
func (s *Service) SendMessage(ctx context.Context, sessionID, message string) (*SendMessageResult, error) {
	reply, err := s.converse(ctx, sessionID, message)
	if err != nil {
		return nil, err
	}

	result := &SendMessageResult{Response: reply}

	switch s.classifier.Classify(reply) {
	case CorrectnessTrue:
		result.IsAnswerEvaluation = true
		result.IsCorrect = boolPtr(true)
	case CorrectnessFalse:
		result.IsAnswerEvaluation = true
		result.IsCorrect = boolPtr(false)
	default:
		return result, nil
	}

	if _, err := s.updatePerformance(ctx, sessionID, *result.IsCorrect); err != nil {
		log.Printf("performance update after chat failed session=%s err=%v", sessionID, err)
	}
	return result, nil
}

// EvaluateAnswerResult mirrors SendMessageResult for explicit evaluations.
type EvaluateAnswerResult struct {
	Evaluation string `json:"evaluation"`
	IsCorrect  *bool  `json:"is_correct"`
}

// EvaluateAnswer asks the tutor to judge a specific answer, then classifies
// the verdict text. Tracker failures are swallowed the same way as in
// SendMessage.
func (s *Service) EvaluateAnswer(ctx context.Context, sessionID, question, userAnswer string) (*EvaluateAnswerResult, error) {
	reply, err := s.converse(ctx, sessionID, buildEvaluationPrompt(question, userAnswer))
	if err != nil {
		return nil, err
	}

	result := &EvaluateAnswerResult{Evaluation: reply}

	switch s.classifier.Classify(reply) {
	case CorrectnessTrue:
		result.IsCorrect = boolPtr(true)
	case CorrectnessFalse:
		result.IsCorrect = boolPtr(false)
	default:
		return result, nil
	}

	if _, err := s.updatePerformance(ctx, sessionID, *result.IsCorrect); err != nil {
		log.Printf("performance update after evaluation failed session=%s err=%v", sessionID, err)
	}
	return result, nil
}

// converse appends the user message, sends the system prompt plus the whole
// chronological history to the model, and appends the assistant reply.
func (s *Service) converse(ctx context.Context, sessionID, message string) (string, error) {
	if _, err := s.repo.GetSessionBySessionID(ctx, sessionID); err != nil {
		return "", err
	}

	userEntry := &ChatLog{
		SessionID:   sessionID,
		Role:        RoleUser,
		Content:     message,
		ContentType: ContentText,
	}
	if err := s.repo.InsertChatLog(ctx, userEntry); err != nil {
		return "", err
	}

	// includes the entry just inserted
	history, err := s.repo.ListChatLogsAsc(ctx, sessionID)
	if err != nil {
		return "", err
	}

	msgs := make([]ai.Message, 0, len(history)+1)
	msgs = append(msgs, ai.Message{Role: "system", Content: s.systemPrompt})
	for _, entry := range history {
		msgs = append(msgs, ai.Message{Role: entry.Role, Content: entry.Content})
	}

	reply, err := s.provider.Chat(ctx, msgs, ai.Options{MaxTokens: s.tutorMaxTokens})
	if err != nil {
		return "", err
	}

	assistantEntry := &ChatLog{
		SessionID:   sessionID,
		Role:        RoleAssistant,
		Content:     reply,
		ContentType: ContentMarkdown,
	}
	if err := s.repo.InsertChatLog(ctx, assistantEntry); err != nil {
		return "", err
	}

	return reply, nil
}

func (s *Service) GenerateProblems(ctx context.Context, sessionID, topic, difficulty string, count int) ([]PracticeProblem, int, error) {
	if _, err := s.repo.GetSessionBySessionID(ctx, sessionID); err != nil {
		return nil, 0, err
	}
	return s.generator.GenerateProblems(ctx, sessionID, topic, difficulty, count)
}

func (s *Service) GenerateQuiz(ctx context.Context, sessionID, topic string, count int) ([]Quiz, int, error) {
	if _, err := s.repo.GetSessionBySessionID(ctx, sessionID); err != nil {
		return nil, 0, err
	}
	return s.generator.GenerateQuiz(ctx, sessionID, topic, count)
}

func (s *Service) SubmitQuizAnswer(ctx context.Context, quizID uint64, userAnswer, sessionID string) (*GradeResult, error) {
	res, err := s.generator.SubmitQuizAnswer(ctx, quizID, userAnswer, sessionID)
	if err != nil {
		return nil, err
	}
	s.invalidatePerformanceCache(ctx, sessionID)
	return res, nil
}

// GetSessionPerformance reads the snapshot, creating the zeroed row on the
// first read. The cache is consulted first when one is wired.
func (s *Service) GetSessionPerformance(ctx context.Context, sessionID string) (*SessionPerformance, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetPerformance(ctx, sessionID); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			log.Printf("performance cache read failed session=%s err=%v", sessionID, err)
		}
	}

	p, err := s.tracker.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetPerformance(ctx, p); err != nil {
			log.Printf("performance cache write failed session=%s err=%v", sessionID, err)
		}
	}
	return p, nil
}

// UpdateSessionPerformance records one answer outcome directly.
func (s *Service) UpdateSessionPerformance(ctx context.Context, sessionID string, isCorrect bool) (*SessionPerformance, error) {
	return s.updatePerformance(ctx, sessionID, isCorrect)
}

func (s *Service) updatePerformance(ctx context.Context, sessionID string, isCorrect bool) (*SessionPerformance, error) {
	p, err := s.tracker.Update(ctx, sessionID, isCorrect)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetPerformance(ctx, p); err != nil {
			log.Printf("performance cache write failed session=%s err=%v", sessionID, err)
		}
	}
	return p, nil
}

func (s *Service) invalidatePerformanceCache(ctx context.Context, sessionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePerformance(ctx, sessionID); err != nil {
		log.Printf("performance cache invalidate failed session=%s err=%v", sessionID, err)
	}
}

func (s *Service) AddNote(ctx context.Context, sessionID, content, category string) (*Note, error) {
	if _, err := s.repo.GetSessionBySessionID(ctx, sessionID); err != nil {
		return nil, err
	}
	n := &Note{SessionID: sessionID, Content: content, Category: category}
	if err := s.repo.CreateNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) ListNotes(ctx context.Context, sessionID string) ([]Note, error) {
	return s.repo.ListNotes(ctx, sessionID)
}

func (s *Service) ListProblems(ctx context.Context, sessionID string) ([]PracticeProblem, error) {
	return s.repo.ListProblems(ctx, sessionID)
}

func boolPtr(b bool) *bool { return &b }
