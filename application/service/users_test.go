package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/qabank/qabank/internal/domain"
)

func TestRegisterAndLookup(t *testing.T) {
	e := newDefaultEnv(t)
	ctx := context.Background()

	alice := e.registerUser(t, "alice")
	if alice.ID() == 0 {
		t.Fatal("registered user has no id")
	}
	if alice.IsAdmin() {
		t.Fatal("new users must not be admins")
	}

	byID, err := e.users.Get(ctx, alice.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if byID.Name() != "alice" {
		t.Fatalf("got name %q", byID.Name())
	}

	byName, err := e.users.GetByName(ctx, "alice")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if byName.ID() != alice.ID() {
		t.Fatalf("got id %d, want %d", byName.ID(), alice.ID())
	}

	if _, err := e.users.Get(ctx, 9999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	e := newDefaultEnv(t)

	e.registerUser(t, "alice")
	_, err := e.users.Register(context.Background(), "alice", "another institute")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}

func TestListUsersOrdered(t *testing.T) {
	e := newDefaultEnv(t)

	alice := e.registerUser(t, "alice")
	bob := e.registerUser(t, "bob")

	page, err := e.users.List(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("got %d users, want 2", page.Total)
	}
	if page.Items[0].ID() != alice.ID() || page.Items[1].ID() != bob.ID() {
		t.Fatal("users not ordered by id")
	}
}
