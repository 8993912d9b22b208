package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeInsufficientCash, "cash too low")
	wrapped := fmt.Errorf("deposit: %w", err)

	if !stderrors.Is(wrapped, New(CodeInsufficientCash, "")) {
		t.Fatal("expected wrapped error to match by code")
	}
	if stderrors.Is(wrapped, New(CodeNotAMember, "")) {
		t.Fatal("expected mismatched code to not match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeStorage, "put gang", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause to be unwrappable")
	}
	if err.Error() != "put gang" {
		t.Fatalf("expected internal message, got %q", err.Error())
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(stderrors.New("plain")) != CodeUnknown {
		t.Fatal("expected unknown code for plain error")
	}
	err := fmt.Errorf("outer: %w", New(CodeAlreadyAtWar, "war exists"))
	if GetCode(err) != CodeAlreadyAtWar {
		t.Fatal("expected wrapped domain code")
	}
	if !IsCode(err, CodeAlreadyAtWar) {
		t.Fatal("expected IsCode to match")
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	cases := []struct {
		code Code
		want codes.Code
	}{
		{CodeGangTagInvalid, codes.InvalidArgument},
		{CodeGangNameTaken, codes.AlreadyExists},
		{CodeRoleForbidden, codes.PermissionDenied},
		{CodeWarNotEligible, codes.PermissionDenied},
		{CodeInsufficientCash, codes.FailedPrecondition},
		{CodeAlreadyAtWar, codes.FailedPrecondition},
		{CodeAttemptNotReady, codes.FailedPrecondition},
		{CodeTerritoryNotFound, codes.NotFound},
		{CodeStorage, codes.Internal},
		{CodeUnknown, codes.Internal},
	}
	for _, tc := range cases {
		if got := tc.code.GRPCCode(); got != tc.want {
			t.Fatalf("code %s: expected %v, got %v", tc.code, tc.want, got)
		}
	}
}

func TestHandleError(t *testing.T) {
	if HandleError(nil, "") != nil {
		t.Fatal("expected nil passthrough")
	}

	st, ok := status.FromError(HandleError(stderrors.New("boom"), ""))
	if !ok || st.Code() != codes.Internal {
		t.Fatalf("expected internal status for unknown error, got %v", st)
	}

	err := WithMetadata(CodeNotEnoughMembers, "roster too small", map[string]string{"Required": "3"})
	st, ok = status.FromError(HandleError(err, "en-US"))
	if !ok {
		t.Fatal("expected gRPC status")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("expected failed precondition, got %v", st.Code())
	}
	if st.Message() != "roster too small" {
		t.Fatalf("expected internal message, got %q", st.Message())
	}
}

func TestGetMetadata(t *testing.T) {
	err := WithMetadata(CodeMissionOnCooldown, "cooldown", map[string]string{"Until": "later"})
	md := GetMetadata(fmt.Errorf("start: %w", err))
	if md["Until"] != "later" {
		t.Fatalf("expected metadata passthrough, got %v", md)
	}
	if GetMetadata(stderrors.New("plain")) != nil {
		t.Fatal("expected nil metadata for plain error")
	}
}
