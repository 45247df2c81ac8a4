package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yklab/tutor-platform/internal/common"
)

type addNoteReq struct {
	Content  string `json:"content" binding:"required"`
	Category string `json:"category"`
}

func (h *Handler) AddNote(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req addNoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	note, err := h.TutorSvc.AddNote(c.Request.Context(), sessionID, req.Content, req.Category)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, note)
}

func (h *Handler) ListNotes(c *gin.Context) {
	sessionID := c.Param("session_id")

	notes, err := h.TutorSvc.ListNotes(c.Request.Context(), sessionID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{"notes": notes})
}
