package photoassign

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindEmission      ErrorKind = "emission"
)

type ErrorCode string

const (
	ErrPhotoSetInvalid         ErrorCode = "PHOTO_SET_INVALID"
	ErrPoolEmpty               ErrorCode = "POOL_EMPTY"
	ErrPoolBlankIdentifier     ErrorCode = "POOL_BLANK_IDENTIFIER"
	ErrBucketUnknownIdentifier ErrorCode = "BUCKET_UNKNOWN_IDENTIFIER"
	ErrBucketEmpty             ErrorCode = "BUCKET_EMPTY"
	ErrBucketDuplicate         ErrorCode = "BUCKET_DUPLICATE"
	ErrBucketRangeInvalid      ErrorCode = "BUCKET_RANGE_INVALID"
	ErrRuleInvalid             ErrorCode = "RULE_INVALID"
	ErrRuleUnknownBucket       ErrorCode = "RULE_UNKNOWN_BUCKET"
	ErrItemMalformed           ErrorCode = "ITEM_MALFORMED"
	ErrItemDuplicate           ErrorCode = "ITEM_DUPLICATE"
	ErrTemplateInvalid         ErrorCode = "TEMPLATE_INVALID"
	ErrEmitUnsafeValue         ErrorCode = "EMIT_UNSAFE_VALUE"
)

// Error is returned for every fatal condition of a run. Configuration errors
// are raised before any output exists; emission errors abort rendering.
type Error struct {
	Kind    ErrorKind
	Code    ErrorCode
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error [%s]: %s", e.Kind, e.Code, e.Message)
}

func newError(kind ErrorKind, code ErrorCode, message string, details map[string]any) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Details: details}
}

func ConfigError(code ErrorCode, message string, details map[string]any) *Error {
	return newError(KindConfiguration, code, message, details)
}

func EmissionError(code ErrorCode, message string, details map[string]any) *Error {
	return newError(KindEmission, code, message, details)
}

func AsError(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

func IsConfigError(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == KindConfiguration
}

func IsEmissionError(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == KindEmission
}
