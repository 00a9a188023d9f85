package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/solaceapp/solace-backend/internal/ai"
	"github.com/solaceapp/solace-backend/internal/auth"
	"github.com/solaceapp/solace-backend/internal/chat"
	"github.com/solaceapp/solace-backend/internal/common"
	"github.com/solaceapp/solace-backend/internal/config"
	"github.com/solaceapp/solace-backend/internal/store/rabbitmq"
	"github.com/solaceapp/solace-backend/internal/store/redisstore"
	"gorm.io/gorm"
)

// JobPublisher enqueues one chat job for the worker.
type JobPublisher interface {
	PublishJob(ctx context.Context, jobID string) error
}

type Handler struct {
	DB      *gorm.DB
	Cfg     config.Config
	Redis   *redisstore.Store
	Rabbit  JobPublisher
	Google  *auth.GoogleClient
	ChatSvc *chat.Service
}

func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, rabbit *rabbitmq.Publisher) *Handler {
	repo := chat.NewRepo(db)
	gen := ai.NewOllamaGenerator(cfg.OllamaBaseURL, cfg.OllamaModel)
	return &Handler{
		DB:      db,
		Cfg:     cfg,
		Redis:   rds,
		Rabbit:  rabbit,
		Google:  auth.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI),
		ChatSvc: chat.NewService(repo, gen, cfg.ChatIdleTimeout),
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}
