package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorError(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "msg only",
			err:  &Error{Code: ENotFound, Msg: "batch not found"},
			want: "batch not found",
		},
		{
			name: "msg and wrapped",
			err:  &Error{Code: EInternal, Msg: "unable to publish", Err: fmt.Errorf("broker down")},
			want: "unable to publish: broker down",
		},
		{
			name: "wrapped only",
			err:  &Error{Code: EInternal, Err: fmt.Errorf("broker down")},
			want: "broker down",
		},
		{
			name: "code only",
			err:  &Error{Code: EConflict},
			want: "<conflict>",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, EInternal, ErrorCode(fmt.Errorf("plain")))
	assert.Equal(t, ENotFound, ErrorCode(&Error{Code: ENotFound}))
	assert.Equal(t, EConflict, ErrorCode(&Error{Err: &Error{Code: EConflict}}))
	assert.Equal(t, EInternal, ErrorCode(&Error{}))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", ErrorMessage(nil))
	assert.Equal(t, "An internal error has occurred.", ErrorMessage(fmt.Errorf("plain")))
	assert.Equal(t, "batch not found", ErrorMessage(&Error{Msg: "batch not found"}))
	assert.Equal(t, "outer: inner", ErrorMessage(&Error{Msg: "outer", Err: &Error{Msg: "inner"}}))
	assert.Equal(t, "inner", ErrorMessage(&Error{Err: &Error{Msg: "inner"}}))
}

func TestErrorOp(t *testing.T) {
	assert.Equal(t, "bolt.CreateBatch", ErrorOp(&Error{Op: "bolt.CreateBatch"}))
	assert.Equal(t, "bolt.CreateBatch", ErrorOp(&Error{Err: &Error{Op: "bolt.CreateBatch"}}))
	assert.Equal(t, "", ErrorOp(fmt.Errorf("plain")))
}

func TestErrInternalServiceError(t *testing.T) {
	assert.NoError(t, ErrInternalServiceError(nil, "op"))

	typed := &Error{Code: ENotFound, Msg: "batch not found"}
	assert.Equal(t, typed, ErrInternalServiceError(typed, "op"))

	wrapped := ErrInternalServiceError(fmt.Errorf("disk full"), "bolt.CreateBatch")
	assert.Equal(t, EInternal, ErrorCode(wrapped))
	assert.Equal(t, "bolt.CreateBatch", ErrorOp(wrapped))
}
