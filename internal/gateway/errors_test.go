package gateway

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusErrorFormatting(t *testing.T) {
	t.Parallel()

	withMessage := NewStatusError(StatusNotFound, "vlan with id 999 not found")
	require.Equal(t, "device returned status 404: vlan with id 999 not found", withMessage.Error())

	bare := NewStatusError(StatusDeviceError, "")
	require.Equal(t, "device returned status 500", bare.Error())
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"not found status", NewStatusError(StatusNotFound, "no such vlan"), true},
		{"wrapped not found", fmt.Errorf("show vlan: %w", NewStatusError(StatusNotFound, "")), true},
		{"other status", NewStatusError(StatusConflict, "vlan exists"), false},
		{"transport error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}

func TestStatusAndMessageExtraction(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("create vlan: %w", NewStatusError(StatusConflict, "vlan 999 already exists"))
	require.Equal(t, StatusConflict, StatusOf(err))
	require.Equal(t, "vlan 999 already exists", MessageOf(err))

	plain := errors.New("dial tcp: timeout")
	require.Equal(t, 0, StatusOf(plain))
	require.Equal(t, "dial tcp: timeout", MessageOf(plain))
	require.Equal(t, "", MessageOf(nil))
}

func TestIsSuccess(t *testing.T) {
	t.Parallel()

	require.True(t, IsSuccess(StatusOK))
	require.True(t, IsSuccess(StatusCreated))
	require.False(t, IsSuccess(StatusNotFound))
	require.False(t, IsSuccess(StatusDeviceError))
}
