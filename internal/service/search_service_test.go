package service

import (
	"context"
	"fmt"
	"testing"
)

func TestSearchMatchesTitleAndDescription(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com")
	list := env.defaultList(t, user.ID)
	ctx := context.Background()

	env.seedTask(t, user.ID, list.ID, "Buy MILK")
	if _, err := env.tasks.Create(ctx, user.ID, TaskCreateInput{
		TaskListID:  list.ID,
		Title:       "Groceries",
		Description: strPtr("milk, eggs, bread"),
	}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	env.seedTask(t, user.ID, list.ID, "Walk the dog")

	res, err := env.search.Search(ctx, user.ID, SearchInput{Query: "milk"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Total != 2 || len(res.Data) != 2 {
		t.Fatalf("total = %d, data = %d, want 2/2", res.Total, len(res.Data))
	}
}

func TestSearchScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice@example.com")
	bob := env.seedUser(t, "bob@example.com")
	env.seedTask(t, bob.ID, env.defaultList(t, bob.ID).ID, "bob milk run")

	res, err := env.search.Search(context.Background(), alice.ID, SearchInput{Query: "milk"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Total != 0 {
		t.Errorf("total = %d, want 0", res.Total)
	}
	if res.Data == nil {
		t.Errorf("data is nil, want empty slice")
	}
}

func TestSearchPagination(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com")
	list := env.defaultList(t, user.ID)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		env.seedTask(t, user.ID, list.ID, fmt.Sprintf("errand %02d", i))
	}

	page1, err := env.search.Search(ctx, user.ID, SearchInput{Query: "errand"})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if page1.Total != 20 || len(page1.Data) != 15 || page1.Page != 1 || page1.PerPage != 15 {
		t.Fatalf("page1 = total %d, len %d, page %d, per_page %d",
			page1.Total, len(page1.Data), page1.Page, page1.PerPage)
	}

	page2, err := env.search.Search(ctx, user.ID, SearchInput{Query: "errand", Page: 2})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2.Data) != 5 {
		t.Errorf("page2 len = %d, want 5", len(page2.Data))
	}

	capped, err := env.search.Search(ctx, user.ID, SearchInput{Query: "errand", PerPage: 1000})
	if err != nil {
		t.Fatalf("capped: %v", err)
	}
	if capped.PerPage != 100 {
		t.Errorf("per_page = %d, want capped at 100", capped.PerPage)
	}
}

func TestSearchSorting(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com")
	list := env.defaultList(t, user.ID)
	ctx := context.Background()

	env.seedTask(t, user.ID, list.ID, "banana errand")
	env.seedTask(t, user.ID, list.ID, "apple errand")
	env.seedTask(t, user.ID, list.ID, "cherry errand")

	res, err := env.search.Search(ctx, user.ID, SearchInput{Query: "errand", SortBy: "title"})
	if err != nil {
		t.Fatalf("sort by title: %v", err)
	}
	titles := make([]string, len(res.Data))
	for i, task := range res.Data {
		titles[i] = task.Title
	}
	want := []string{"apple errand", "banana errand", "cherry errand"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("titles = %v, want %v", titles, want)
		}
	}

	res, err = env.search.Search(ctx, user.ID, SearchInput{
		Query: "errand", SortBy: "title", SortOrder: "desc",
	})
	if err != nil {
		t.Fatalf("sort desc: %v", err)
	}
	if res.Data[0].Title != "cherry errand" {
		t.Errorf("first = %q, want cherry errand", res.Data[0].Title)
	}
}

func TestSearchValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice@example.com")
	bob := env.seedUser(t, "bob@example.com")
	bobList := env.defaultList(t, bob.ID)
	ctx := context.Background()

	_, err := env.search.Search(ctx, alice.ID, SearchInput{Query: "   "})
	wantField(t, err, "q")

	_, err = env.search.Search(ctx, alice.ID, SearchInput{Query: "x", SortBy: "password"})
	wantField(t, err, "sort_by")

	_, err = env.search.Search(ctx, alice.ID, SearchInput{Query: "x", SortBy: "title", SortOrder: "sideways"})
	wantField(t, err, "sort_order")

	_, err = env.search.Search(ctx, alice.ID, SearchInput{Query: "x", ListID: &bobList.ID})
	wantField(t, err, "task_list_id")
}

func TestSearchExcludesDeleted(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com")
	list := env.defaultList(t, user.ID)
	ctx := context.Background()

	keep := env.seedTask(t, user.ID, list.ID, "keep milk")
	gone := env.seedTask(t, user.ID, list.ID, "gone milk")
	if err := env.tasks.Delete(ctx, user.ID, gone.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	res, err := env.search.Search(ctx, user.ID, SearchInput{Query: "milk"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Total != 1 || res.Data[0].ID != keep.ID {
		t.Errorf("total = %d, first = %+v", res.Total, res.Data)
	}
}
