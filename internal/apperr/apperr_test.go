package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := Field("task_list_id", "The selected task list does not belong to you.")
	wrapped := fmt.Errorf("create task: %w", base)

	if !Is(wrapped, Validation) {
		t.Fatalf("expected wrapped error to keep Validation kind")
	}
	if Is(wrapped, Authorization) {
		t.Fatalf("kind must not match a different kind")
	}
	if KindOf(wrapped) != Validation {
		t.Fatalf("KindOf = %d, want Validation", KindOf(wrapped))
	}

	var ae *Error
	if !errors.As(wrapped, &ae) || ae.Field != "task_list_id" {
		t.Fatalf("field lost through wrapping: %+v", ae)
	}
}

func TestKindOfForeignError(t *testing.T) {
	if KindOf(errors.New("plain")) != 0 {
		t.Fatalf("foreign errors must report kind 0")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(Storage, "store attachment", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable via errors.Is")
	}
	if err.Error() != "store attachment: disk full" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
