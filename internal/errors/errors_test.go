package errors

import (
	"errors"
	"testing"
)

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := ExportFailed("report.xlsx", cause)

	if !errors.Is(err, cause) {
		t.Error("AppError should unwrap to its cause")
	}
	if GetCode(err) != CodeExportFailed {
		t.Errorf("code = %q, want %q", GetCode(err), CodeExportFailed)
	}
	if err.Error() == "" || err.Error() == cause.Error() {
		t.Errorf("message should add context, got %q", err.Error())
	}
}

func TestWrapPreservesCode(t *testing.T) {
	inner := ConfigInvalid("bad seed")
	wrapped := Wrap(inner, "loading configuration")

	if GetCode(wrapped) != CodeConfigInvalid {
		t.Errorf("code = %q, want %q", GetCode(wrapped), CodeConfigInvalid)
	}
	if !errors.Is(wrapped, inner) {
		t.Error("wrapped error should unwrap to the inner AppError")
	}

	if Wrap(nil, "noop") != nil {
		t.Error("wrapping nil should stay nil")
	}
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeRenderFailed, errors.New("template broke"))
	if GetCode(err) != CodeRenderFailed {
		t.Errorf("code = %q, want %q", GetCode(err), CodeRenderFailed)
	}
	if !IsAppError(err) {
		t.Error("WithCode should produce an AppError")
	}
	if GetCode(errors.New("plain")) != "UNKNOWN" {
		t.Error("plain errors should report UNKNOWN")
	}
}
