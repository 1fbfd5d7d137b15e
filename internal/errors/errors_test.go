package errors

import (
	"fmt"
	"io"
	"testing"
)

func TestExitCodeFollowsWrappedCode(t *testing.T) {
	err := fmt.Errorf("stage: %w", Wrap(CodeIO, "failed to create file", io.ErrClosedPipe))
	if got := ExitCode(err); got != int(CodeIO) {
		t.Fatalf("expected exit %d, got %d", CodeIO, got)
	}
	if !Is(err, CodeIO) {
		t.Fatal("expected Is to find io code through fmt wrapping")
	}
}

func TestExitCodeDefaults(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("expected 0 for nil, got %d", got)
	}
	if got := ExitCode(io.EOF); got != int(CodeInternal) {
		t.Fatalf("expected internal code for untyped error, got %d", got)
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(CodeUnavailable, "failed to fetch query for view contract", io.ErrUnexpectedEOF)
	want := "failed to fetch query for view contract: unexpected EOF"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if TypeName(CodeInvariant) != "invariant_violation" {
		t.Fatalf("unexpected type name %q", TypeName(CodeInvariant))
	}
}
