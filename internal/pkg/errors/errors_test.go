package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "invalid input")

	if err.Code != CodeValidation {
		t.Errorf("code = %s, want %s", err.Code, CodeValidation)
	}
	if err.Message != "invalid input" {
		t.Errorf("message = %s", err.Message)
	}
	if len(err.Stack) == 0 {
		t.Error("expected stack trace to be captured")
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "code and message",
			err:  &Error{Code: CodeNotFound, Message: "job not found"},
			want: "[NOT_FOUND] job not found",
		},
		{
			name: "with op",
			err:  &Error{Code: CodeInternal, Message: "boom", Op: "pipeline.publish"},
			want: "pipeline.publish: [INTERNAL_ERROR] boom",
		},
		{
			name: "with wrapped error",
			err:  &Error{Code: CodeEncodingFailure, Message: "segment render failed", Err: stderrors.New("exit status 1")},
			want: "[ENCODING_FAILURE] segment render failed: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapPreservesCode(t *testing.T) {
	inner := New(CodeInvalidBundle, "missing manifest")
	wrapped := Wrap(inner, "bundle.parse", "parse failed")

	if wrapped.Code != CodeInvalidBundle {
		t.Errorf("code = %s, want %s", wrapped.Code, CodeInvalidBundle)
	}
	if !IsCode(wrapped, CodeInvalidBundle) {
		t.Error("IsCode should see through the wrap")
	}
	if !stderrors.Is(wrapped, inner) {
		t.Error("wrapped error should match the inner error")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "op", "message") != nil {
		t.Error("wrapping nil should return nil")
	}
	if WrapWithCode(nil, CodeInternal, "op", "message") != nil {
		t.Error("WrapWithCode of nil should return nil")
	}
}

func TestWrapWithCode(t *testing.T) {
	err := WrapWithCode(stderrors.New("disk full"), CodeUnavailable, "jobstore.snapshot", "write snapshot")

	if err.Code != CodeUnavailable {
		t.Errorf("code = %s", err.Code)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("underlying cause lost: %s", err.Error())
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, 400},
		{CodeInvalidBundle, 400},
		{CodeNotFound, 404},
		{CodeAlreadyExists, 409},
		{CodeMissingDependency, 503},
		{CodeEncodingFailure, 500},
		{CodeInternal, 500},
	}

	for _, tt := range tests {
		if got := (&Error{Code: tt.code}).HTTPStatus(); got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(MissingDependency("ffmpeg")); got != CodeMissingDependency {
		t.Errorf("GetCode = %s", got)
	}
	if got := GetCode(stderrors.New("plain")); got != CodeInternal {
		t.Errorf("GetCode(plain) = %s, want %s", got, CodeInternal)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFound("job", "j1")) {
		t.Error("NotFound error not recognized")
	}
	if IsNotFound(Internal("boom")) {
		t.Error("internal error misclassified as not found")
	}
}

func TestFields(t *testing.T) {
	err := NotFound("job", "j1")

	fields := GetFields(err)
	if fields["resource"] != "job" || fields["id"] != "j1" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestEncodingFailure(t *testing.T) {
	err := EncodingFailure(stderrors.New("exit status 1"), "ffmpeg.concat", "concatenation failed")

	if err.Code != CodeEncodingFailure {
		t.Errorf("code = %s", err.Code)
	}
	if err.Op != "ffmpeg.concat" {
		t.Errorf("op = %s", err.Op)
	}
}
