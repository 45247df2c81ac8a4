package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yklab/tutor-platform/internal/common"
	"github.com/yklab/tutor-platform/internal/tutoring"
)

const maxGenerationCount = 20

type generateProblemsReq struct {
	Topic      string `json:"topic" binding:"required"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

func (h *Handler) GenerateProblems(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req generateProblemsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Count <= 0 || req.Count > maxGenerationCount {
		req.Count = 5
	}

	problems, count, err := h.TutorSvc.GenerateProblems(c.Request.Context(), sessionID, req.Topic, req.Difficulty, req.Count)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{"problems": problems, "count": count})
}

type generateQuizReq struct {
	Topic string `json:"topic" binding:"required"`
	Count int    `json:"count"`
}

func (h *Handler) GenerateQuiz(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req generateQuizReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Count <= 0 || req.Count > maxGenerationCount {
		req.Count = 5
	}

	quizzes, count, err := h.TutorSvc.GenerateQuiz(c.Request.Context(), sessionID, req.Topic, req.Count)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{"quizzes": quizzes, "count": count})
}

type submitQuizAnswerReq struct {
	SessionID  string `json:"session_id" binding:"required"`
	UserAnswer string `json:"user_answer" binding:"required"`
}

func (h *Handler) SubmitQuizAnswer(c *gin.Context) {
	quizID, err := strconv.ParseUint(c.Param("quiz_id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid quiz id")
		return
	}

	var req submitQuizAnswerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	result, err := h.TutorSvc.SubmitQuizAnswer(c.Request.Context(), quizID, req.UserAnswer, req.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "quiz not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, result)
}

type generateAsyncReq struct {
	Kind       string `json:"kind" binding:"required"` // "problems" | "quiz"
	Topic      string `json:"topic" binding:"required"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// GenerateAsync enqueues a generation job instead of blocking the request
// on the model call. The job row is created first; the queue message only
// references it.
func (h *Handler) GenerateAsync(c *gin.Context) {
	sessionID := c.Param("session_id")

	if h.Rabbit == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "async generation is not enabled")
		return
	}

	var req generateAsyncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	kind := tutoring.JobKind(req.Kind)
	if kind != tutoring.JobKindProblems && kind != tutoring.JobKindQuiz {
		common.Fail(c, http.StatusBadRequest, 10005, "kind must be problems or quiz")
		return
	}
	if req.Count <= 0 || req.Count > maxGenerationCount {
		req.Count = 5
	}

	if _, err := h.TutorSvc.GetSession(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	idempoKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if len(idempoKey) > 128 {
		common.Fail(c, http.StatusBadRequest, 10003, "idempotency key too long")
		return
	}
	var idempoKeyPtr *string
	if idempoKey != "" {
		idempoKeyPtr = &idempoKey
	}

	jobID, err := common.NewULID()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	j := &tutoring.GenerationJob{
		ID:             jobID,
		SessionID:      sessionID,
		Kind:           kind,
		Topic:          req.Topic,
		Difficulty:     req.Difficulty,
		Count:          req.Count,
		IdempotencyKey: idempoKeyPtr,
		Status:         tutoring.JobQueued,
	}

	job, created, err := h.Repo.CreateJobOrGetExisting(c.Request.Context(), j)
	if err != nil {
		log.Printf("create generation job failed session=%s err=%v", sessionID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	// Enqueue only when a new job was created
	if created {
		if err := h.Rabbit.PublishJob(c.Request.Context(), job.ID); err != nil {
			log.Printf("publish generation job failed session=%s job=%s err=%v", sessionID, job.ID, err)
			common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
			return
		}
	}

	common.OK(c, gin.H{"job_id": job.ID})
}

func (h *Handler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "job_id required")
		return
	}

	j, err := h.Repo.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40403, "job not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{
		"job": gin.H{
			"id":           j.ID,
			"session_id":   j.SessionID,
			"kind":         j.Kind,
			"status":       j.Status,
			"result_count": j.ResultCount,
			"error":        j.Error,
			"created_at":   j.CreatedAt,
			"updated_at":   j.UpdatedAt,
		},
	})
}
