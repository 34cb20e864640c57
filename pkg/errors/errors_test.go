package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeStreamFailed, "stream reported: %s", "boom")
	want := "STREAM_FAILED: stream reported: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := Wrap(ErrCodeNetwork, fmt.Errorf("dial tcp"), "request %s", "/graph")
	if wrapped.Error() != "NETWORK_ERROR: request /graph: dial tcp" {
		t.Errorf("wrapped Error() = %q", wrapped.Error())
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := New(ErrCodeFileNotFound, "no dump at %s", "/tmp/x")

	if !Is(err, ErrCodeFileNotFound) {
		t.Error("Is should match the code")
	}
	if Is(err, ErrCodeNetwork) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeNetwork) {
		t.Error("Is should not match plain errors")
	}

	// Codes survive wrapping by fmt.Errorf.
	outer := fmt.Errorf("load failed: %w", err)
	if !Is(outer, ErrCodeFileNotFound) {
		t.Error("Is should unwrap the chain")
	}
	if GetCode(outer) != ErrCodeFileNotFound {
		t.Errorf("GetCode = %q", GetCode(outer))
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(ErrCodeInternal, cause, "wrapper")
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeTimeout, "request timed out")); got != "request timed out" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage plain = %q", got)
	}
}
