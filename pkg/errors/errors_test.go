package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		detailsOK bool
		expose    bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "Unauthorized"},
		{code: CodeInvalidCreds, status: http.StatusUnauthorized, publicMsg: "Invalid credentials"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusBadRequest, publicMsg: "conflict detected"},
		{code: CodeDependencyExists, status: http.StatusBadRequest, publicMsg: "resource is still referenced", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", expose: true},
		{code: CodeDependency, status: http.StatusInternalServerError, publicMsg: "dependency failure", expose: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
		if meta.ExposeCause != tt.expose {
			t.Fatalf("code %s expected expose cause %v got %v", tt.code, tt.expose, meta.ExposeCause)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}
	if base.Cause() != "missing foo" {
		t.Fatalf("cause should fall back to message, got %q", base.Cause())
	}

	root := stdErrors.New("disk full")
	wrapped := Wrap(CodeDependency, root, "save image")
	if !stdErrors.Is(wrapped, root) {
		t.Fatal("expected wrapped error to unwrap to root")
	}
	if wrapped.Cause() != "disk full" {
		t.Fatalf("unexpected cause %q", wrapped.Cause())
	}
}

func TestAsAndIsFollowChain(t *testing.T) {
	typed := New(CodeNotFound, "inventory not found")
	chained := fmt.Errorf("load: %w", typed)

	if got := As(chained); got != typed {
		t.Fatalf("expected As to return typed error")
	}
	if !Is(chained, CodeNotFound) {
		t.Fatal("expected Is to match not found code")
	}
	if Is(stdErrors.New("plain"), CodeNotFound) {
		t.Fatal("plain errors should not match typed codes")
	}
	if As(nil) != nil {
		t.Fatal("As(nil) should return nil")
	}
}
