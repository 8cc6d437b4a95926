package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed membership operation.
type ErrorKind string

const (
	KindNotOwner              ErrorKind = "NOT_MEMBERSHIP_OWNER"
	KindNotFound              ErrorKind = "MEMBERSHIP_NOT_FOUND"
	KindDuplicateRegistration ErrorKind = "DUPLICATED_MEMBERSHIP_REGISTER"
	KindPointOutOfRange       ErrorKind = "POINT_OUT_OF_RANGE"
	KindUnknown               ErrorKind = "UNKNOWN_EXCEPTION"
)

var defaultMessages = map[ErrorKind]string{
	KindNotOwner:              "Not a membership owner",
	KindNotFound:              "Membership Not found",
	KindDuplicateRegistration: "Duplicated Membership Register Request",
	KindPointOutOfRange:       "Point out of range",
	KindUnknown:               "Unknown Exception",
}

// MembershipError is the only error type returned by MembershipService.
type MembershipError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func newMembershipError(kind ErrorKind) *MembershipError {
	return &MembershipError{Kind: kind, Message: defaultMessages[kind]}
}

func unknownError(op string, cause error) *MembershipError {
	return &MembershipError{Kind: KindUnknown, Message: defaultMessages[KindUnknown], Cause: fmt.Errorf("%s: %w", op, cause)}
}

func (e *MembershipError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *MembershipError) Unwrap() error {
	return e.Cause
}

// Is matches any MembershipError with the same kind, so callers can compare against
// the sentinel values below with errors.Is.
func (e *MembershipError) Is(target error) bool {
	var other *MembershipError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

var (
	ErrNotOwner              = newMembershipError(KindNotOwner)
	ErrNotFound              = newMembershipError(KindNotFound)
	ErrDuplicateRegistration = newMembershipError(KindDuplicateRegistration)
	ErrPointOutOfRange       = newMembershipError(KindPointOutOfRange)
	ErrUnknown               = newMembershipError(KindUnknown)
)

// KindOf returns the kind carried by err, or KindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	var me *MembershipError
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindUnknown
}
