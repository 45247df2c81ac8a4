package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yklab/tutor-platform/internal/common"
)

func (h *Handler) GetSessionPerformance(c *gin.Context) {
	sessionID := c.Param("session_id")

	if _, err := h.TutorSvc.GetSession(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	perf, err := h.TutorSvc.GetSessionPerformance(c.Request.Context(), sessionID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to read performance")
		return
	}

	common.OK(c, perf)
}

type updatePerformanceReq struct {
	IsCorrect *bool `json:"is_correct" binding:"required"`
}

func (h *Handler) UpdateSessionPerformance(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req updatePerformanceReq
	if err := c.ShouldBindJSON(&req); err != nil || req.IsCorrect == nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if _, err := h.TutorSvc.GetSession(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	perf, err := h.TutorSvc.UpdateSessionPerformance(c.Request.Context(), sessionID, *req.IsCorrect)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to update performance")
		return
	}

	common.OK(c, perf)
}
