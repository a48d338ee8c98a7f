package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrConfigLoad, "could not read config")
	assert.Equal(t, ErrConfigLoad, err.Code)
	assert.Equal(t, "[CONFIG_LOAD] could not read config", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(ErrDepsMissing, "missing %d packages", 3)
	assert.Equal(t, "[DEPS_MISSING] missing 3 packages", err.Error())
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("permission denied")
	err := Wrap(inner, ErrFileAccess, "cannot read target")
	require.NotNil(t, err)
	assert.Equal(t, "[FILE_ACCESS] cannot read target: permission denied", err.Error())
	assert.Equal(t, inner, errors.Unwrap(err))

	assert.Nil(t, Wrap(nil, ErrFileAccess, "ignored"))
}

func TestIsErrorCode(t *testing.T) {
	err := New(ErrUserAbort, "operator declined")
	assert.True(t, IsErrorCode(err, ErrUserAbort))
	assert.False(t, IsErrorCode(err, ErrCommandFailed))

	wrapped := fmt.Errorf("context: %w", err)
	assert.True(t, IsErrorCode(wrapped, ErrUserAbort))

	assert.False(t, IsErrorCode(errors.New("plain"), ErrUserAbort))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrNoManagers, GetErrorCode(New(ErrNoManagers, "none found")))
	assert.Equal(t, ErrUnknown, GetErrorCode(errors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrInstallFailed, "install command failed").
		WithDetail("manager", "pacman").
		WithDetail("exit_code", 1)
	assert.Equal(t, "pacman", err.Details["manager"])
	assert.Equal(t, 1, err.Details["exit_code"])
}

func TestErrorsIs(t *testing.T) {
	err := New(ErrConfigValid, "no dots declared")
	assert.True(t, errors.Is(err, New(ErrConfigValid, "other message")))
	assert.False(t, errors.Is(err, New(ErrConfigLoad, "other code")))
}
