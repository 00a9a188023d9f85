package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solaceapp/solace-backend/internal/ai"
	"github.com/solaceapp/solace-backend/internal/chat"
	"github.com/solaceapp/solace-backend/internal/common"
	"github.com/solaceapp/solace-backend/internal/httpapi/middleware"
	"gorm.io/gorm"
)

func (h *Handler) StartSession(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sess, err := h.ChatSvc.CreateSession(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create session")
		return
	}
	common.OK(c, gin.H{"session_id": sess.SessionID})
}

type chatReq struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Chat is the streaming turn: the reply comes back as a server-sent event
// stream, one fragment per event, ending when the model finishes. The full
// concatenation of fragments equals the persisted bot message.
func (h *Handler) Chat(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	fragments, errs, err := h.ChatSvc.StreamReply(c.Request.Context(), uid, req.SessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrInvalidRequest):
			common.Fail(c, http.StatusBadRequest, 10002, "no message or session_id provided")
		case errors.Is(err, gorm.ErrRecordNotFound):
			common.Fail(c, http.StatusNotFound, 40402, "session not found")
		default:
			common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		}
		return
	}

	flusher, canFlush := c.Writer.(http.Flusher)
	if !canFlush {
		common.Fail(c, http.StatusInternalServerError, 50003, "streaming not supported")
		return
	}

	// Headers are held back until the first event so an upstream that never
	// starts can still get a proper JSON error status.
	started := false
	startSSE := func() {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no") // helpful if behind nginx
		c.Status(http.StatusOK)
		started = true
	}
	failTurn := func(err error) {
		if errors.Is(err, ai.ErrUnavailable) {
			common.Fail(c, http.StatusBadGateway, 50201, "generation service unavailable")
		} else {
			common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		}
	}

	ctx := c.Request.Context()
	for {
		select {
		case f, open := <-fragments:
			if !open {
				if !started {
					// Both channels may be ready at once when the turn failed
					// before producing anything, and select order is random,
					// so check for a buffered error before calling it a clean
					// empty stream.
					select {
					case err := <-errs:
						if err != nil {
							failTurn(err)
							return
						}
					default:
					}
					// Model produced nothing; the (empty) reply is persisted
					// and the client just sees the stream end.
					startSSE()
					flusher.Flush()
				}
				return
			}
			if !started {
				startSSE()
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", f)
			flusher.Flush()

		case err, open := <-errs:
			if !open || err == nil {
				continue
			}
			if started {
				// Mid-stream failure: nothing more to send, the stream just
				// ends and whatever was emitted stays persisted.
				return
			}
			failTurn(err)
			return

		case <-ctx.Done():
			// Client went away; the service keeps reading upstream and
			// persists the reply on its own.
			return
		}
	}
}

// History returns every session that has at least one message, most recent
// first, with the full message list per session.
func (h *Handler) History(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessions, err := h.ChatSvc.ListSessions(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to load history")
		return
	}

	type sessionView struct {
		SessionID        string         `json:"session_id"`
		Timestamp        time.Time      `json:"timestamp"`
		FirstUserMessage string         `json:"first_user_message"`
		LastMessageTime  time.Time      `json:"last_message_time"`
		Active           bool           `json:"active"`
		Messages         []chat.Message `json:"messages"`
	}

	formatted := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		if len(s.Messages) == 0 {
			continue
		}
		first := ""
		for _, m := range s.Messages {
			if m.Sender == chat.SenderUser {
				first = m.Text
				break
			}
		}
		formatted = append(formatted, sessionView{
			SessionID:        s.SessionID,
			Timestamp:        s.CreatedAt,
			FirstUserMessage: first,
			LastMessageTime:  s.Messages[len(s.Messages)-1].CreatedAt,
			Active:           s.Active,
			Messages:         s.Messages,
		})
	}

	sort.Slice(formatted, func(i, j int) bool {
		return formatted[i].Timestamp.After(formatted[j].Timestamp)
	})

	common.OK(c, formatted)
}

// ChatAsync is the non-streaming turn: the user message is persisted now,
// the reply is produced by the worker. Supports Idempotency-Key.
func (h *Handler) ChatAsync(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Message == "" || req.SessionID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "no message or session_id provided")
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

	if err := h.ChatSvc.ValidateSessionOwner(c.Request.Context(), uid, req.SessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	jobID, err := common.NewULID()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	j := &chat.Job{
		ID:             jobID,
		UserID:         uid,
		SessionID:      req.SessionID,
		IdempotencyKey: idempoKeyPtr,
		Status:         chat.JobQueued,
	}
	j, created, err := h.ChatSvc.CreateJobOrGetExisting(c.Request.Context(), j)
	if err != nil {
		log.Printf("[ChatAsync] create job failed uid=%d session_id=%s err=%v", uid, req.SessionID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	// The user message is appended only for a fresh job: an idempotent
	// retry returns the existing job without touching the history again.
	if created {
		if err := h.ChatSvc.AppendUserMessage(c.Request.Context(), uid, req.SessionID, req.Message); err != nil {
			log.Printf("[ChatAsync] append user message failed uid=%d session_id=%s err=%v", uid, req.SessionID, err)
			_ = h.ChatSvc.FailJob(c.Request.Context(), j.ID, "user message append failed")
			common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
			return
		}
		if err := h.Rabbit.PublishJob(c.Request.Context(), j.ID); err != nil {
			log.Printf("[ChatAsync] publish failed uid=%d job_id=%s err=%v", uid, j.ID, err)
			common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
			return
		}
	}

	common.OK(c, gin.H{"job_id": j.ID})
}

func (h *Handler) GetChatJob(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	jobID := c.Param("job_id")

	j, err := h.ChatSvc.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40403, "job not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	if j.UserID != uid {
		// hide existence
		common.Fail(c, http.StatusNotFound, 40403, "job not found")
		return
	}

	common.OK(c, gin.H{
		"job": gin.H{
			"id":                j.ID,
			"session_id":        j.SessionID,
			"status":            j.Status,
			"result_message_id": j.ResultMessageID,
			"error":             j.Error,
			"created_at":        j.CreatedAt,
			"updated_at":        j.UpdatedAt,
		},
	})
}
