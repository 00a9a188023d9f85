package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/solaceapp/solace-backend/internal/ai"
	"github.com/solaceapp/solace-backend/internal/chat"
	"github.com/solaceapp/solace-backend/internal/config"
	"github.com/solaceapp/solace-backend/internal/httpapi/middleware"
	"github.com/solaceapp/solace-backend/internal/models"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func itoa(n uint64) string { return strconv.FormatUint(n, 10) }

func init() {
	gin.SetMode(gin.TestMode)
}

// streamGen is a canned model for handler tests.
type streamGen struct {
	fragments []string
	startErr  error
}

func (g *streamGen) Generate(ctx context.Context, prompt string) (string, error) {
	if g.startErr != nil {
		return "", g.startErr
	}
	return strings.Join(g.fragments, ""), nil
}

func (g *streamGen) GenerateStream(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	out := make(chan string, len(g.fragments))
	errs := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errs)
		if g.startErr != nil {
			errs <- g.startErr
			return
		}
		for _, f := range g.fragments {
			out <- f
		}
	}()
	return out, errs
}

// fakePublisher records enqueued job IDs instead of talking to a broker.
type fakePublisher struct {
	published []string
	err       error
}

func (p *fakePublisher) PublishJob(ctx context.Context, jobID string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, jobID)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.JournalEntry{},
		&models.EmotionLog{},
		&models.UserOptions{},
		&models.Todo{},
		&models.TimetableEntry{},
		&chat.Session{},
		&chat.Message{},
		&chat.Job{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestRouter(t *testing.T, gen ai.Generator) (*gin.Engine, *Handler) {
	t.Helper()
	db := openTestDB(t)
	cfg := config.Config{JWTSecret: testSecret, ChatIdleTimeout: time.Second}
	h := &Handler{
		DB:      db,
		Cfg:     cfg,
		Rabbit:  &fakePublisher{},
		ChatSvc: chat.NewService(chat.NewRepo(db), gen, cfg.ChatIdleTimeout),
	}

	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)

	authed := r.Group("/")
	authed.Use(middleware.AuthRequired(testSecret))
	authed.GET("/me", h.Me)
	authed.POST("/start_session", h.StartSession)
	authed.POST("/chat", h.Chat)
	authed.GET("/history", h.History)
	authed.POST("/chat/messages/async", h.ChatAsync)
	authed.GET("/chat/jobs/:job_id", h.GetChatJob)
	authed.POST("/entries", h.CreateJournalEntry)
	authed.GET("/entries", h.ListJournalEntries)
	authed.GET("/entries/stats", h.JournalStats)
	authed.GET("/entries/:entry_id", h.GetJournalEntry)
	authed.PUT("/entries/:entry_id", h.UpdateJournalEntry)
	authed.DELETE("/entries/:entry_id", h.DeleteJournalEntry)
	authed.POST("/api/emotion", h.LogEmotion)
	authed.GET("/api/emotion", h.ListEmotions)
	authed.DELETE("/api/emotion/:log_id", h.DeleteEmotion)
	authed.GET("/api/user-options", h.GetUserOptions)
	authed.POST("/api/user-options", h.AddUserOption)
	authed.POST("/api/todos", h.CreateTodo)
	authed.GET("/api/todos", h.ListTodos)
	authed.PUT("/api/todos/:todo_id", h.UpdateTodo)
	authed.DELETE("/api/todos/:todo_id", h.DeleteTodo)
	authed.POST("/api/timetable", h.UpsertTimetableEntry)
	authed.GET("/api/timetable", h.ListTimetable)
	authed.GET("/api/timetable/week", h.WeeklyTimetable)
	authed.DELETE("/api/timetable/:entry_id", h.DeleteTimetableEntry)

	return r, h
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doJSONHeaders(t, r, method, path, token, body, nil)
}

func doJSONHeaders(t *testing.T, r *gin.Engine, method, path, token string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, w.Body.String())
	}
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	env := decodeEnvelope(t, w)
	if err := json.Unmarshal(env.Data, into); err != nil {
		t.Fatalf("decode data: %v (data %q)", err, string(env.Data))
	}
}

// signupAndLogin registers the user and returns a bearer token.
func signupAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/signup", "", gin.H{"username": username, "password": "hunter22"})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d body %s", username, w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/login", "", gin.H{"username": username, "password": "hunter22"})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, w.Code, w.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, w, &data)
	if data.Token == "" {
		t.Fatalf("login %s: empty token", username)
	}
	return data.Token
}

// startSession opens a chat session and returns its ID.
func startSession(t *testing.T, r *gin.Engine, token string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/start_session", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start_session: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		SessionID string `json:"session_id"`
	}
	decodeData(t, w, &data)
	if data.SessionID == "" {
		t.Fatalf("start_session: empty session_id")
	}
	return data.SessionID
}
