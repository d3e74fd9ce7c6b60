package service

import (
	"context"
	"strings"
	"testing"

	"taskdeck/internal/apperr"
	"taskdeck/internal/model"
)

func TestDefaultListCreatedWithUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com")

	lists, err := env.lists.List(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lists) != 1 || lists[0].Name != model.DefaultListName {
		t.Fatalf("lists = %+v, want one %q", lists, model.DefaultListName)
	}
}

func TestListLifecycle(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com")
	ctx := context.Background()

	created, err := env.lists.Create(ctx, user.ID, "Errands")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	renamed, err := env.lists.Rename(ctx, user.ID, created.ID, "Weekend errands")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "Weekend errands" {
		t.Errorf("name = %q", renamed.Name)
	}

	if err := env.lists.Delete(ctx, user.ID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = env.lists.Rename(ctx, user.ID, created.ID, "Too late")
	wantKind(t, err, apperr.NotFound)

	lists, err := env.lists.List(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lists) != 1 {
		t.Errorf("lists = %d, want only the default one", len(lists))
	}
}

func TestListNameValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com")
	ctx := context.Background()

	_, err := env.lists.Create(ctx, user.ID, "")
	wantField(t, err, "name")

	_, err = env.lists.Create(ctx, user.ID, strings.Repeat("n", 256))
	wantField(t, err, "name")
}

func TestListOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice@example.com")
	bob := env.seedUser(t, "bob@example.com")
	aliceList := env.defaultList(t, alice.ID)
	ctx := context.Background()

	_, err := env.lists.Rename(ctx, bob.ID, aliceList.ID, "grab")
	wantKind(t, err, apperr.Authorization)

	err = env.lists.Delete(ctx, bob.ID, aliceList.ID)
	wantKind(t, err, apperr.Authorization)

	_, err = env.lists.Rename(ctx, alice.ID, aliceList.ID+1000, "ghost")
	wantKind(t, err, apperr.NotFound)
}
