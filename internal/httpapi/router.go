package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yklab/tutor-platform/internal/common"
	"github.com/yklab/tutor-platform/internal/config"
	"github.com/yklab/tutor-platform/internal/httpapi/handlers"
	"github.com/yklab/tutor-platform/internal/httpapi/middleware"
	"github.com/yklab/tutor-platform/internal/store/rabbitmq"
	"github.com/yklab/tutor-platform/internal/tutoring"
)

func NewRouter(cfg config.Config, svc *tutoring.Service, repo *tutoring.Repo, rabbit *rabbitmq.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(cfg, svc, repo, rabbit)

	r.GET("/ping", func(c *gin.Context) {
		common.OK(c, gin.H{"pong": true})
	})

	r.POST("/sessions", h.CreateSession)
	r.GET("/sessions", h.ListSessions)
	r.GET("/sessions/:session_id", h.GetSession)

	r.POST("/sessions/:session_id/messages", h.SendMessage)
	r.GET("/sessions/:session_id/messages", h.ListMessages)
	r.POST("/sessions/:session_id/evaluate", h.EvaluateAnswer)

	r.POST("/sessions/:session_id/problems", h.GenerateProblems)
	r.POST("/sessions/:session_id/quizzes", h.GenerateQuiz)
	r.POST("/sessions/:session_id/generate/async", h.GenerateAsync)
	r.GET("/jobs/:job_id", h.GetJob)

	r.POST("/quizzes/:quiz_id/answer", h.SubmitQuizAnswer)

	r.GET("/sessions/:session_id/performance", h.GetSessionPerformance)
	r.POST("/sessions/:session_id/performance", h.UpdateSessionPerformance)

	r.POST("/sessions/:session_id/notes", h.AddNote)
	r.GET("/sessions/:session_id/notes", h.ListNotes)

	return r
}
