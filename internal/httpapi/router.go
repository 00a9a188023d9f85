package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/solaceapp/solace-backend/internal/common"
	"github.com/solaceapp/solace-backend/internal/config"
	"github.com/solaceapp/solace-backend/internal/httpapi/handlers"
	"github.com/solaceapp/solace-backend/internal/httpapi/middleware"
	"github.com/solaceapp/solace-backend/internal/store/rabbitmq"
	"github.com/solaceapp/solace-backend/internal/store/redisstore"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, rabbit *rabbitmq.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowOrigins) == 1 && cfg.CORSAllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "Idempotency-Key")
	corsCfg.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsCfg))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, rds, rabbit)

	r.GET("/ping", h.Ping)

	// auth
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.GET("/auth/google/url", h.GoogleAuthURL)
	r.POST("/auth/google", h.GoogleLogin)

	authed := r.Group("/")
	authed.Use(middleware.AuthRequired(cfg.JWTSecret))

	authed.GET("/me", h.Me)

	// chat
	authed.POST("/start_session", h.StartSession)
	authed.POST("/chat", h.Chat)
	authed.GET("/history", h.History)
	authed.POST("/chat/messages/async", h.ChatAsync)
	authed.GET("/chat/jobs/:job_id", h.GetChatJob)

	// journal
	authed.POST("/entries", h.CreateJournalEntry)
	authed.GET("/entries", h.ListJournalEntries)
	authed.GET("/entries/stats", h.JournalStats)
	authed.GET("/entries/:entry_id", h.GetJournalEntry)
	authed.PUT("/entries/:entry_id", h.UpdateJournalEntry)
	authed.DELETE("/entries/:entry_id", h.DeleteJournalEntry)

	// mood check-ins
	authed.POST("/api/emotion", h.LogEmotion)
	authed.GET("/api/emotion", h.ListEmotions)
	authed.DELETE("/api/emotion/:log_id", h.DeleteEmotion)
	authed.GET("/api/user-options", h.GetUserOptions)
	authed.POST("/api/user-options", h.AddUserOption)

	// planner
	authed.POST("/api/todos", h.CreateTodo)
	authed.GET("/api/todos", h.ListTodos)
	authed.PUT("/api/todos/:todo_id", h.UpdateTodo)
	authed.DELETE("/api/todos/:todo_id", h.DeleteTodo)
	authed.POST("/api/timetable", h.UpsertTimetableEntry)
	authed.GET("/api/timetable", h.ListTimetable)
	authed.GET("/api/timetable/week", h.WeeklyTimetable)
	authed.DELETE("/api/timetable/:entry_id", h.DeleteTimetableEntry)

	return r
}
