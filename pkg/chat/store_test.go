package chat

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"TallyChat/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestGormStoreRoundTripKeepsSameTimestampPairsOrdered(t *testing.T) {
	db := openTestDB(t)
	store := NewGormConversationStore(db)
	ctx := context.Background()

	// both messages of an exchange carry an identical timestamp, so the
	// store must fall back to insertion order, not a random id
	now := time.Now()
	conv := &models.Conversation{ID: "c1", UserID: 1, Title: "t", UpdatedAt: now}
	for i := 0; i < 20; i++ {
		ts := now.Add(time.Duration(i) * time.Second)
		conv.Messages = append(conv.Messages,
			models.Message{Seq: 2 * i, Role: models.RoleUser, Content: fmt.Sprintf("question %d", i), Timestamp: ts},
			models.Message{Seq: 2*i + 1, Role: models.RoleAssistant, Content: fmt.Sprintf("answer %d", i), Timestamp: ts},
		)
	}
	if err := store.Put(ctx, conv); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || len(got.Messages) != 40 {
		t.Fatalf("expected 40 messages back, got %+v", got)
	}
	for i := 0; i < 20; i++ {
		u, a := got.Messages[2*i], got.Messages[2*i+1]
		if u.Role != models.RoleUser || u.Content != fmt.Sprintf("question %d", i) {
			t.Fatalf("pair %d: expected user message first, got {%s %q}", i, u.Role, u.Content)
		}
		if a.Role != models.RoleAssistant || a.Content != fmt.Sprintf("answer %d", i) {
			t.Fatalf("pair %d: expected assistant message second, got {%s %q}", i, a.Role, a.Content)
		}
	}
}

func TestGormStoreExchangesSurviveRoundTripInOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	user := newUser(1, 100000)
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	accounts := NewGormAccountStore(db)
	convs := NewGormConversationStore(db)
	gw := &fakeGateway{reply: "the answer", tokens: 3}
	s := NewService(accounts, convs, gw, testConfig())

	res, err := s.SendMessage(ctx, 1, "", "question 0")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	for i := 1; i < 5; i++ {
		if _, err := s.SendMessage(ctx, 1, res.ConversationID, fmt.Sprintf("question %d", i)); err != nil {
			t.Fatalf("SendMessage %d failed: %v", i, err)
		}
	}

	conv, err := s.History(ctx, 1, res.ConversationID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(conv.Messages) != 10 {
		t.Fatalf("expected 10 messages, got %d", len(conv.Messages))
	}
	for i := 0; i < 5; i++ {
		u, a := conv.Messages[2*i], conv.Messages[2*i+1]
		if u.Role != models.RoleUser || u.Content != fmt.Sprintf("question %d", i) {
			t.Fatalf("exchange %d: question out of place, got {%s %q}", i, u.Role, u.Content)
		}
		if a.Role != models.RoleAssistant || a.Content != "the answer" {
			t.Fatalf("exchange %d: reply out of place, got {%s %q}", i, a.Role, a.Content)
		}
	}

	// the next exchange must see the history in the same order
	if _, err := s.SendMessage(ctx, 1, res.ConversationID, "question 5"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(gw.lastHistory) != 10 {
		t.Fatalf("expected 10 history turns, got %d", len(gw.lastHistory))
	}
	if gw.lastHistory[0].Text != "question 0" || gw.lastHistory[1].Text != "the answer" {
		t.Fatalf("history fed to gateway out of order: %+v", gw.lastHistory[:2])
	}

	summaries, err := s.List(ctx, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].LastMessage != "the answer" {
		t.Fatalf("expected reply as last message, got %+v", summaries)
	}
}
