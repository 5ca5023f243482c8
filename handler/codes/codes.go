package codes

import (
	"errors"
	"strconv"

	"lending/core"

	"github.com/twitchtv/twirp"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"

	// InvalidArguments invalid arguments
	InvalidArguments = 100001
)

// With with specified error
func With(err error, code int) error {
	twerr, ok := err.(twirp.Error)
	if !ok {
		twerr = twirp.InternalErrorWith(err)
	}

	return twerr.WithMeta(CustomCodeKey, strconv.Itoa(code))
}

// Get get error code
func Get(code twirp.ErrorCode) int {
	switch code {
	case twirp.InvalidArgument:
		return InvalidArguments
	default:
		return twirp.ServerHTTPStatusFromErrorCode(code)
	}
}

// FromLedger maps ledger error codes onto twirp errors, keeping the ledger
// code as custom code
func FromLedger(err error) error {
	var code core.ErrorCode
	if !errors.As(err, &code) {
		return twirp.InternalErrorWith(err)
	}

	var twerr twirp.Error
	switch code {
	case core.ErrPoolNotFound, core.ErrPositionNotFound:
		twerr = twirp.NotFoundError(code.Name())
	case core.ErrOperationForbidden, core.ErrNotOwner, core.ErrPositionLocked:
		twerr = twirp.NewError(twirp.PermissionDenied, code.Name())
	case core.ErrStalePrice, core.ErrReentrantCall:
		twerr = twirp.NewError(twirp.Unavailable, code.Name())
	case core.ErrUnknown, core.ErrInvariantViolation:
		twerr = twirp.InternalError(code.Name())
	default:
		twerr = twirp.NewError(twirp.FailedPrecondition, code.Name())
	}

	return With(twerr, int(code))
}
