package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"skin-assessment-service/internal/app"
	"skin-assessment-service/internal/domain"
	"skin-assessment-service/internal/infra/memory"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	service := app.NewAssessmentService(store,
		memory.NewQuestionBankRepository(memory.NewStaticQuestionBankLoader(domain.DefaultQuestionBank()), 0),
		nil, nil, app.Settings{},
		app.WithIDGenerator(func() string { return "s-1" }),
	)

	if _, err := service.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !mr.Exists("assessment:session:s-1") {
		t.Fatalf("expected redis key to be set")
	}
	if n, err := store.LiveCount(context.Background()); err != nil || n != 1 {
		t.Fatalf("expected 1 live session, got %d (%v)", n, err)
	}

	mr.FastForward(30 * time.Second)
	if _, err := service.View(context.Background(), "s-1"); err != nil {
		t.Fatalf("view: %v", err)
	}
	if ttl := mr.TTL("assessment:session:s-1"); ttl != time.Minute {
		t.Fatalf("expected ttl refreshed on access, got %v", ttl)
	}

	service.Close(context.Background(), "s-1")
	if mr.Exists("assessment:session:s-1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestSessionStoreHoldsNoLeadData(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	service := app.NewAssessmentService(store,
		memory.NewQuestionBankRepository(memory.NewStaticQuestionBankLoader(domain.DefaultQuestionBank()), 0),
		nil, nil, app.Settings{},
		app.WithIDGenerator(func() string { return "s-2" }),
	)
	ctx := context.Background()
	if _, err := service.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 6; i++ {
		if _, err := service.Answer(ctx, "s-2", domain.AnswerSubmission{OptionIndex: 1}); err != nil {
			t.Fatalf("answer: %v", err)
		}
	}
	if _, err := service.UpdateContact(ctx, "s-2", domain.FieldEmail, "jane@example.com"); err != nil {
		t.Fatalf("update: %v", err)
	}

	for _, key := range mr.Keys() {
		if v, _ := mr.Get(key); v != "1" {
			t.Fatalf("unexpected redis content %s=%q", key, v)
		}
	}
}
