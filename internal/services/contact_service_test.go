package services

import (
	"context"
	"testing"

	"transfers/internal/domain"
)

func TestContactSendValidatesAndForwards(t *testing.T) {
	api := &fakeBackend{}
	svc := ContactService{API: api, Tokens: staticTokens("tok")}
	ctx := context.Background()

	if err := svc.Send(ctx, "vis", ContactForm{Name: "Maria", Email: "maria@example.com"}); domain.FieldOf(err) != "message" {
		t.Fatalf("empty message should fail, got %v", err)
	}
	if len(api.contacts) != 0 {
		t.Fatalf("invalid forms must not reach the backend")
	}

	err := svc.Send(ctx, "vis", ContactForm{Name: " Maria ", Email: "Maria@Example.com", Subject: "Group  booking", Message: "Ten people"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(api.contacts) != 1 || api.contacts[0].Email != "maria@example.com" || api.contacts[0].Subject != "Group booking" {
		t.Fatalf("unexpected forwarded form %+v", api.contacts)
	}
}
