package errors

import (
	stderrors "errors"
	"testing"
)

func TestCodeOf(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{Invalid("bad input"), CodeInvalidArgument},
		{NotFound("missing"), CodeNotFound},
		{AlreadyExists("dup"), CodeAlreadyExists},
		{Unauthenticated("who"), CodeUnauthenticated},
		{Forbidden("no"), CodePermissionDenied},
		{Store("query", stderrors.New("boom")), CodeInternal},
		{stderrors.New("plain"), CodeInternal},
		{nil, CodeInternal},
	}

	for _, tc := range cases {
		if got := CodeOf(tc.err); got != tc.want {
			t.Fatalf("CodeOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Store("load chats", cause)

	if !stderrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive errors.Is")
	}
	if CodeOf(err) != CodeInternal {
		t.Fatalf("expected internal code")
	}
}

func TestCodeOfUnwrapsNestedErrors(t *testing.T) {
	inner := NotFound("user not found")
	outer := stderrors.Join(stderrors.New("context"), inner)

	if CodeOf(outer) != CodeNotFound {
		t.Fatalf("expected nested coded error to be found")
	}
}
