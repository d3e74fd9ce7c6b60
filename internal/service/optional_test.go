package service

import (
	"encoding/json"
	"testing"
)

func TestOptionalTriState(t *testing.T) {
	type payload struct {
		Title   Optional[string] `json:"title"`
		DueDate Optional[string] `json:"due_date"`
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"title":"hi","due_date":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Title.Set || !p.Title.Valid || p.Title.Value != "hi" {
		t.Errorf("title = %+v, want set valid \"hi\"", p.Title)
	}
	if !p.DueDate.Set || p.DueDate.Valid {
		t.Errorf("due_date = %+v, want set null", p.DueDate)
	}

	var absent payload
	if err := json.Unmarshal([]byte(`{}`), &absent); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if absent.Title.Set || absent.DueDate.Set {
		t.Errorf("absent fields marked set: %+v", absent)
	}
}
