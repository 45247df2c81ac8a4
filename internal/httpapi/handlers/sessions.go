package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yklab/tutor-platform/internal/common"
)

type createSessionReq struct {
	Topic       string `json:"topic" binding:"required"`
	Description string `json:"description"`
}

func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	sess, err := h.TutorSvc.CreateSession(c.Request.Context(), req.Topic, req.Description)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create session")
		return
	}

	common.OK(c, gin.H{
		"session_id":  sess.SessionID,
		"topic":       sess.Topic,
		"description": sess.Description,
		"created_at":  sess.CreatedAt,
	})
}

func (h *Handler) GetSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	sess, err := h.TutorSvc.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, sess)
}

func (h *Handler) ListSessions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	sessions, err := h.TutorSvc.ListSessions(c.Request.Context(), limit)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{"sessions": sessions})
}
