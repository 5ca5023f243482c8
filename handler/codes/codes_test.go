package codes

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"lending/core"

	"github.com/stretchr/testify/assert"
	"github.com/twitchtv/twirp"
)

func TestFromLedger(t *testing.T) {
	tests := []struct {
		err  core.ErrorCode
		code twirp.ErrorCode
	}{
		{core.ErrPoolNotFound, twirp.NotFound},
		{core.ErrPositionNotFound, twirp.NotFound},
		{core.ErrNotOwner, twirp.PermissionDenied},
		{core.ErrPositionLocked, twirp.PermissionDenied},
		{core.ErrStalePrice, twirp.Unavailable},
		{core.ErrReentrantCall, twirp.Unavailable},
		{core.ErrInvariantViolation, twirp.Internal},
		{core.ErrResultsInBadDebt, twirp.FailedPrecondition},
		{core.ErrInsufficientLiquidity, twirp.FailedPrecondition},
	}

	for _, test := range tests {
		t.Run(test.err.Name(), func(t *testing.T) {
			err := FromLedger(fmt.Errorf("wrapped: %w", test.err))
			twerr, ok := err.(twirp.Error)
			if assert.True(t, ok) {
				assert.Equal(t, test.code, twerr.Code())
				assert.Equal(t, test.err.Name(), twerr.Msg())
				assert.Equal(t, strconv.Itoa(int(test.err)), twerr.Meta(CustomCodeKey))
			}
		})
	}

	t.Run("foreign error", func(t *testing.T) {
		twerr, ok := FromLedger(errors.New("db down")).(twirp.Error)
		if assert.True(t, ok) {
			assert.Equal(t, twirp.Internal, twerr.Code())
			assert.Empty(t, twerr.Meta(CustomCodeKey))
		}
	})
}

func TestGet(t *testing.T) {
	assert.Equal(t, InvalidArguments, Get(twirp.InvalidArgument))
	assert.Equal(t, 404, Get(twirp.NotFound))
	assert.Equal(t, 500, Get(twirp.Internal))
}
