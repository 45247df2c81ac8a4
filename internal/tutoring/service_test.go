package tutoring

import (
	"context"
	"errors"
	"sync"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yklab/tutor-platform/internal/ai"
)

// fakeProvider returns canned replies in FIFO order and records every call.
type fakeProvider struct {
	mu        sync.Mutex
	responses []fakeReply
	last      []ai.Message
	lastOpts  ai.Options
	calls     int
}

type fakeReply struct {
	text string
	err  error
}

func (p *fakeProvider) push(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, fakeReply{text: text})
}

func (p *fakeProvider) pushErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, fakeReply{err: err})
}

func (p *fakeProvider) Chat(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	// copy to avoid mutations
	p.last = append([]ai.Message(nil), messages...)
	p.lastOpts = opts

	if len(p.responses) == 0 {
		return "", errors.New("fake: no canned response")
	}
	r := p.responses[0]
	p.responses = p.responses[1:]
	return r.text, r.err
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// every pooled connection would get its own in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&Session{}, &ChatLog{}, &PracticeProblem{}, &Quiz{},
		&Note{}, &SessionPerformance{}, &GenerationJob{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, prov *fakeProvider) (*Service, *Repo) {
	t.Helper()
	db := openTestDB(t)
	repo := NewRepo(db)
	tracker := NewTracker(repo)
	generator := NewGenerator(repo, prov, tracker, 2048, 20)
	svc := NewService(repo, prov, NewMarkerClassifier(), tracker, generator, nil, "You are a tutor.", 1024)
	return svc, repo
}

func createTestSession(t *testing.T, svc *Service, topic string) *Session {
	t.Helper()
	sess, err := svc.CreateSession(context.Background(), topic, "")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

func TestSendMessage_WritesUserAndAssistantLogs(t *testing.T) {
	prov := &fakeProvider{}
	prov.push("Let's talk about fractions.")

	svc, repo := newTestService(t, prov)
	sess := createTestSession(t, svc, "fractions")

	result, err := svc.SendMessage(context.Background(), sess.SessionID, "Hello")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if result.Response != "Let's talk about fractions." {
		t.Fatalf("unexpected reply: %q", result.Response)
	}
	if result.IsAnswerEvaluation {
		t.Fatalf("plain chat should not be an answer evaluation")
	}
	if result.IsCorrect != nil {
		t.Fatalf("is_correct should be unset for plain chat")
	}

	logs, err := repo.ListChatLogsAsc(context.Background(), sess.SessionID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 chat logs, got %d", len(logs))
	}
	if logs[0].Role != RoleUser || logs[0].Content != "Hello" {
		t.Fatalf("unexpected user log: role=%q content=%q", logs[0].Role, logs[0].Content)
	}
	if logs[1].Role != RoleAssistant || logs[1].Content != "Let's talk about fractions." {
		t.Fatalf("unexpected assistant log: role=%q content=%q", logs[1].Role, logs[1].Content)
	}
}

func TestSendMessage_SendsSystemPromptAndFullHistoryAsc(t *testing.T) {
	prov := &fakeProvider{}
	prov.push("first reply")
	prov.push("second reply")

	svc, _ := newTestService(t, prov)
	sess := createTestSession(t, svc, "algebra")

	if _, err := svc.SendMessage(context.Background(), sess.SessionID, "one"); err != nil {
		t.Fatalf("send message: %v", err)
	}
	if _, err := svc.SendMessage(context.Background(), sess.SessionID, "two"); err != nil {
		t.Fatalf("send message: %v", err)
	}

	// system + (user one, assistant first reply, user two)
	if len(prov.last) != 4 {
		t.Fatalf("expected 4 provider messages, got %d", len(prov.last))
	}
	if prov.last[0].Role != "system" {
		t.Fatalf("expected system prompt first, got role=%q", prov.last[0].Role)
	}
	if prov.last[1].Content != "one" || prov.last[2].Content != "first reply" || prov.last[3].Content != "two" {
		t.Fatalf("history not in chronological order: %+v", prov.last[1:])
	}
	if prov.lastOpts.MaxTokens != 1024 {
		t.Fatalf("expected token budget 1024, got %d", prov.lastOpts.MaxTokens)
	}
}

func TestSendMessage_UnknownSession(t *testing.T) {
	prov := &fakeProvider{}
	svc, _ := newTestService(t, prov)

	_, err := svc.SendMessage(context.Background(), "01MISSING0000000000000000X", "hi")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if prov.calls != 0 {
		t.Fatalf("model must not be called for a missing session")
	}
}

func TestSendMessage_CorrectReplyUpdatesPerformance(t *testing.T) {
	prov := &fakeProvider{}
	prov.push("Correct! 3/4 is indeed larger than 2/3.")

	svc, _ := newTestService(t, prov)
	sess := createTestSession(t, svc, "fractions")

	result, err := svc.SendMessage(context.Background(), sess.SessionID, "3/4")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if !result.IsAnswerEvaluation {
		t.Fatalf("expected answer evaluation")
	}
	if result.IsCorrect == nil || !*result.IsCorrect {
		t.Fatalf("expected is_correct=true, got %v", result.IsCorrect)
	}

	perf, err := svc.GetSessionPerformance(context.Background(), sess.SessionID)
	if err != nil {
		t.Fatalf("get performance: %v", err)
	}
	if perf.TotalProblems != 1 || perf.CorrectAnswers != 1 || perf.AccuracyRate != 100 {
		t.Fatalf("unexpected snapshot: %+v", perf)
	}
}

func TestSendMessage_MixedPraiseClassifiesIncorrect(t *testing.T) {
	prov := &fakeProvider{}
	prov.push("Not quite, but great job working through it! The answer is 12.")

	svc, _ := newTestService(t, prov)
	sess := createTestSession(t, svc, "multiplication")

	result, err := svc.SendMessage(context.Background(), sess.SessionID, "11")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if !result.IsAnswerEvaluation || result.IsCorrect == nil || *result.IsCorrect {
		t.Fatalf("expected incorrect evaluation, got %+v", result)
	}

	perf, err := svc.GetSessionPerformance(context.Background(), sess.SessionID)
	if err != nil {
		t.Fatalf("get performance: %v", err)
	}
	if perf.TotalProblems != 1 || perf.CorrectAnswers != 0 {
		t.Fatalf("unexpected snapshot: %+v", perf)
	}
}

func TestEvaluateAnswer_ClassifiesAndTracks(t *testing.T) {
	prov := &fakeProvider{}
	prov.push("Correct! Well reasoned.")

	svc, _ := newTestService(t, prov)
	sess := createTestSession(t, svc, "geometry")

	result, err := svc.EvaluateAnswer(context.Background(), sess.SessionID, "What is 2+2?", "4")
	if err != nil {
		t.Fatalf("evaluate answer: %v", err)
	}
	if result.IsCorrect == nil || !*result.IsCorrect {
		t.Fatalf("expected correct evaluation, got %+v", result)
	}
	if result.Evaluation != "Correct! Well reasoned." {
		t.Fatalf("unexpected evaluation text: %q", result.Evaluation)
	}

	perf, err := svc.GetSessionPerformance(context.Background(), sess.SessionID)
	if err != nil {
		t.Fatalf("get performance: %v", err)
	}
	if perf.TotalProblems != 1 || perf.CorrectAnswers != 1 {
		t.Fatalf("unexpected snapshot: %+v", perf)
	}
}

func TestEvaluateAnswer_UnknownVerdictDoesNotTrack(t *testing.T) {
	prov := &fakeProvider{}
	prov.push("Interesting approach. Let's look at it together.")

	svc, repo := newTestService(t, prov)
	sess := createTestSession(t, svc, "geometry")

	result, err := svc.EvaluateAnswer(context.Background(), sess.SessionID, "What is pi?", "3")
	if err != nil {
		t.Fatalf("evaluate answer: %v", err)
	}
	if result.IsCorrect != nil {
		t.Fatalf("expected no correctness signal, got %v", *result.IsCorrect)
	}

	// no performance row should have been created by the evaluation path
	if _, err := repo.GetPerformance(context.Background(), sess.SessionID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected no performance row, got err=%v", err)
	}
}

func TestSendMessage_ModelFailureSurfaces(t *testing.T) {
	prov := &fakeProvider{}
	prov.pushErr(ai.ErrNoChoices)

	svc, _ := newTestService(t, prov)
	sess := createTestSession(t, svc, "fractions")

	_, err := svc.SendMessage(context.Background(), sess.SessionID, "hi")
	if !errors.Is(err, ai.ErrNoChoices) {
		t.Fatalf("expected model error to surface, got %v", err)
	}
}

func TestSendMessage_TrackerFailureDoesNotFailReply(t *testing.T) {
	prov := &fakeProvider{}
	prov.push("Correct! Nice work.")

	db := openTestDB(t)
	repo := NewRepo(db)
	tracker := NewTracker(repo)
	generator := NewGenerator(repo, prov, tracker, 2048, 20)
	svc := NewService(repo, prov, NewMarkerClassifier(), tracker, generator, nil, "You are a tutor.", 1024)

	sess := createTestSession(t, svc, "fractions")

	// break the tracker's storage; the chat reply must still go through
	if err := db.Migrator().DropTable(&SessionPerformance{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	result, err := svc.SendMessage(context.Background(), sess.SessionID, "3/4")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if result.Response != "Correct! Nice work." {
		t.Fatalf("unexpected reply: %q", result.Response)
	}
	if result.IsCorrect == nil || !*result.IsCorrect {
		t.Fatalf("classification must survive a tracker failure, got %+v", result)
	}
}

func TestAddAndListNotes(t *testing.T) {
	prov := &fakeProvider{}
	svc, _ := newTestService(t, prov)
	sess := createTestSession(t, svc, "history")

	if _, err := svc.AddNote(context.Background(), sess.SessionID, "review chapter 3", "homework"); err != nil {
		t.Fatalf("add note: %v", err)
	}
	notes, err := svc.ListNotes(context.Background(), sess.SessionID)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 1 || notes[0].Content != "review chapter 3" || notes[0].Category != "homework" {
		t.Fatalf("unexpected notes: %+v", notes)
	}
}
