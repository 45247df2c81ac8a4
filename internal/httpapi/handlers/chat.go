package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yklab/tutor-platform/internal/common"
)

type sendMessageReq struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	result, err := h.TutorSvc.SendMessage(c.Request.Context(), sessionID, req.Message)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		common.Fail(c, http.StatusBadGateway, 50201, "tutor model call failed")
		return
	}

	common.OK(c, result)
}

func (h *Handler) ListMessages(c *gin.Context) {
	sessionID := c.Param("session_id")

	logs, err := h.TutorSvc.ListChatLogs(c.Request.Context(), sessionID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list messages")
		return
	}

	common.OK(c, gin.H{"messages": logs})
}

type evaluateAnswerReq struct {
	Question   string `json:"question" binding:"required"`
	UserAnswer string `json:"user_answer" binding:"required"`
}

func (h *Handler) EvaluateAnswer(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req evaluateAnswerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	result, err := h.TutorSvc.EvaluateAnswer(c.Request.Context(), sessionID, req.Question, req.UserAnswer)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		common.Fail(c, http.StatusBadGateway, 50201, "tutor model call failed")
		return
	}

	common.OK(c, result)
}
