package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/solaceapp/solace-backend/internal/ai"
	"gorm.io/gorm"
)

// ErrInvalidRequest is returned when the message text or session ID is
// missing. Nothing is persisted in that case.
var ErrInvalidRequest = errors.New("chat: message and session_id are required")

type Service struct {
	repo        *Repo
	gen         ai.Generator
	idleTimeout time.Duration
}

func NewService(repo *Repo, gen ai.Generator, idleTimeout time.Duration) *Service {
	if idleTimeout <= 0 {
		idleTimeout = 60 * time.Second
	}
	return &Service{repo: repo, gen: gen, idleTimeout: idleTimeout}
}

func (s *Service) CreateSession(ctx context.Context, userID uint64) (*Session, error) {
	return s.repo.CreateSession(ctx, userID)
}

func (s *Service) ListSessions(ctx context.Context, userID uint64) ([]Session, error) {
	return s.repo.ListSessions(ctx, userID)
}

// sessionForUser loads the session and hides other users' sessions behind
// ErrRecordNotFound.
func (s *Service) sessionForUser(ctx context.Context, userID uint64, sessionID string) (*Session, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return sess, nil
}

func (s *Service) ValidateSessionOwner(ctx context.Context, userID uint64, sessionID string) error {
	_, err := s.sessionForUser(ctx, userID, sessionID)
	return err
}

func (s *Service) AppendUserMessage(ctx context.Context, userID uint64, sessionID, text string) error {
	if err := s.ValidateSessionOwner(ctx, userID, sessionID); err != nil {
		return err
	}
	_, err := s.repo.AppendMessage(ctx, sessionID, SenderUser, text)
	return err
}

// StreamReply runs one chat turn. The synchronous part appends the user
// message and opens the turn; the returned channels then carry fragments in
// arrival order until the upstream stream ends. Exactly one bot message is
// appended after that, holding the concatenation of every fragment — the
// persistence is driven by the upstream stream, not by the caller draining
// the channel, so a client disconnect does not lose the reply.
//
// The user message is not rolled back if the upstream call fails.
func (s *Service) StreamReply(ctx context.Context, userID uint64, sessionID, text string) (<-chan string, <-chan error, error) {
	if text == "" || sessionID == "" {
		return nil, nil, ErrInvalidRequest
	}

	if _, err := s.sessionForUser(ctx, userID, sessionID); err != nil {
		return nil, nil, err
	}

	if _, err := s.repo.AppendMessage(ctx, sessionID, SenderUser, text); err != nil {
		return nil, nil, err
	}

	// Snapshot of the history as of this moment, user message included.
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	prompt := RenderPrompt(sess.Messages)

	sg, ok := s.gen.(ai.StreamGenerator)
	if !ok {
		return nil, nil, errors.New("chat: generator does not support streaming")
	}

	out := make(chan string, 16)
	errs := make(chan error, 1)

	// The upstream read loop and the final persist run on a context detached
	// from the request, so they outlive a client disconnect. The stream gets
	// its own cancel so an idle timeout aborts the upstream read without
	// taking the persist down with it.
	base := context.WithoutCancel(ctx)
	sctx, cancel := context.WithCancel(base)

	go func() {
		defer close(out)
		defer close(errs)
		defer cancel()

		fragments, upErrs := sg.GenerateStream(sctx, prompt)

		var b strings.Builder
		gotFragment := false
		forwarding := true
		timedOut := false

		idle := time.NewTimer(s.idleTimeout)
		defer idle.Stop()

	readLoop:
		for {
			select {
			case f, open := <-fragments:
				if !open {
					break readLoop
				}
				if !idle.Stop() {
					<-idle.C
				}
				idle.Reset(s.idleTimeout)

				gotFragment = true
				b.WriteString(f)

				if forwarding {
					select {
					case out <- f:
					case <-ctx.Done():
						// Client is gone: stop forwarding, keep reading so
						// the reply still gets persisted.
						forwarding = false
					}
				}

			case <-idle.C:
				timedOut = true
				cancel()
				break readLoop
			}
		}

		var upErr error
		select {
		case upErr = <-upErrs:
		default:
		}

		if !gotFragment {
			switch {
			case upErr != nil:
				errs <- upErr
			case timedOut:
				errs <- ai.ErrUnavailable
			default:
				// Stream completed without output: an empty bot message is
				// still recorded, the reply is not verified for completeness.
				if err := s.persistReply(base, sessionID, ""); err != nil {
					errs <- err
				}
			}
			return
		}

		if timedOut {
			log.Printf("[chat] idle timeout session=%s persisted=%d bytes", sessionID, b.Len())
		}
		if err := s.persistReply(base, sessionID, b.String()); err != nil {
			errs <- err
		}
	}()

	return out, errs, nil
}

func (s *Service) persistReply(ctx context.Context, sessionID, reply string) error {
	if _, err := s.repo.AppendMessage(ctx, sessionID, SenderBot, reply); err != nil {
		log.Printf("[chat] persist bot reply failed session=%s err=%v", sessionID, err)
		return err
	}
	return nil
}

// GenerateReply is the non-streaming turn used by the async worker. The
// user message is already in the history; this renders the prompt from the
// full session, calls the model once and appends the bot message.
func (s *Service) GenerateReply(ctx context.Context, userID uint64, sessionID string) (string, uint64, error) {
	sess, err := s.sessionForUser(ctx, userID, sessionID)
	if err != nil {
		return "", 0, err
	}

	reply, err := s.gen.Generate(ctx, RenderPrompt(sess.Messages))
	if err != nil {
		return "", 0, err
	}

	botMsg, err := s.repo.AppendMessage(ctx, sessionID, SenderBot, reply)
	if err != nil {
		return "", 0, err
	}
	return reply, botMsg.ID, nil
}

func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return s.repo.GetJobByID(ctx, jobID)
}

func (s *Service) CreateJobOrGetExisting(ctx context.Context, job *Job) (*Job, bool, error) {
	return s.repo.CreateJobOrGetExisting(ctx, job)
}

func (s *Service) FailJob(ctx context.Context, jobID, reason string) error {
	return s.repo.MarkJobFailed(ctx, jobID, reason)
}
