package chat

import (
	"context"
	"errors"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Session{}, &Message{}, &Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestCreateSession_DeactivatesPriorSessions(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	first, err := repo.CreateSession(ctx, 101)
	if err != nil {
		t.Fatalf("create first session: %v", err)
	}
	second, err := repo.CreateSession(ctx, 101)
	if err != nil {
		t.Fatalf("create second session: %v", err)
	}

	// unrelated user, must not be touched
	other, err := repo.CreateSession(ctx, 102)
	if err != nil {
		t.Fatalf("create other user session: %v", err)
	}

	got1, err := repo.GetSession(ctx, first.SessionID)
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	got2, err := repo.GetSession(ctx, second.SessionID)
	if err != nil {
		t.Fatalf("get second: %v", err)
	}
	if got1.Active {
		t.Fatalf("expected first session deactivated")
	}
	if !got2.Active {
		t.Fatalf("expected second session active before third create")
	}

	if _, err := repo.CreateSession(ctx, 101); err != nil {
		t.Fatalf("create third session: %v", err)
	}
	got2, _ = repo.GetSession(ctx, second.SessionID)
	if got2.Active {
		t.Fatalf("expected second session deactivated after new create")
	}

	gotOther, _ := repo.GetSession(ctx, other.SessionID)
	if !gotOther.Active {
		t.Fatalf("other user's session must stay active")
	}
}

func TestAppendMessage_UnknownSession(t *testing.T) {
	repo := NewRepo(openTestDB(t))

	_, err := repo.AppendMessage(context.Background(), "01NOSUCHSESSION0000000000", SenderUser, "hello")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestGetSession_MessagesInInsertionOrder(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	sess, err := repo.CreateSession(ctx, 103)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	texts := []string{"one", "two", "three"}
	for i, txt := range texts {
		sender := SenderUser
		if i%2 == 1 {
			sender = SenderBot
		}
		if _, err := repo.AppendMessage(ctx, sess.SessionID, sender, txt); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := repo.GetSession(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(got.Messages) != len(texts) {
		t.Fatalf("expected %d messages, got %d", len(texts), len(got.Messages))
	}
	for i, m := range got.Messages {
		if m.Text != texts[i] {
			t.Fatalf("message %d out of order: got %q want %q", i, m.Text, texts[i])
		}
	}
}

func TestListSessions_ScopedToUser(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	a, _ := repo.CreateSession(ctx, 104)
	b, _ := repo.CreateSession(ctx, 104)
	if _, err := repo.CreateSession(ctx, 105); err != nil {
		t.Fatalf("create session: %v", err)
	}

	sessions, err := repo.ListSessions(ctx, 104)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	ids := map[string]bool{a.SessionID: true, b.SessionID: true}
	for _, s := range sessions {
		if !ids[s.SessionID] {
			t.Fatalf("unexpected session %s in listing", s.SessionID)
		}
	}
}

func TestCreateJobOrGetExisting_Idempotent(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	key := "turn-abc-1"
	j1 := &Job{ID: "01JOBTESTAAAAAAAAAAAAAAAA0", UserID: 106, SessionID: "s1", IdempotencyKey: &key, Status: JobQueued}
	got1, created, err := repo.CreateJobOrGetExisting(ctx, j1)
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}

	j2 := &Job{ID: "01JOBTESTBBBBBBBBBBBBBBBB0", UserID: 106, SessionID: "s1", IdempotencyKey: &key, Status: JobQueued}
	got2, created, err := repo.CreateJobOrGetExisting(ctx, j2)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created {
		t.Fatalf("expected existing job, got a new one")
	}
	if got2.ID != got1.ID {
		t.Fatalf("expected same job id %s, got %s", got1.ID, got2.ID)
	}
}
