package handlers

import (
	"github.com/yklab/tutor-platform/internal/config"
	"github.com/yklab/tutor-platform/internal/store/rabbitmq"
	"github.com/yklab/tutor-platform/internal/tutoring"
)

type Handler struct {
	Cfg      config.Config
	TutorSvc *tutoring.Service
	Repo     *tutoring.Repo
	Rabbit   *rabbitmq.Publisher // nil when async generation is disabled
}

func NewHandler(cfg config.Config, svc *tutoring.Service, repo *tutoring.Repo, rabbit *rabbitmq.Publisher) *Handler {
	return &Handler{Cfg: cfg, TutorSvc: svc, Repo: repo, Rabbit: rabbit}
}
