package errors_test

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	pkgerrors "github.com/hdwx/mrms/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "run document",
			ID:       "metadata/products/1/202205011200.json",
		}
		assert.Equal(t, "run document metadata/products/1/202205011200.json not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("product", "9")
		wrapped := fmt.Errorf("loading: %w", base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("filename", "7.png", "must be MM.png")
		assert.Equal(t, "validation failed for field filename: must be MM.png", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "unknown policy"}
		assert.Equal(t, "validation failed: unknown policy", err.Error())
	})

	t.Run("wrap nil", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapValidation("x", nil))
	})
}

func TestPreconditionError(t *testing.T) {
	err := pkgerrors.NewPreconditionError(1, "products/radar/national/2022/05/01/1200/00.png")
	assert.Contains(t, err.Error(), "product 1")
	assert.Contains(t, err.Error(), "00.png")
	assert.True(t, pkgerrors.IsFrameMissing(err))
	assert.False(t, pkgerrors.IsMalformed(err))
}

func TestParseError(t *testing.T) {
	t.Run("wraps cause", func(t *testing.T) {
		cause := errors.New("unexpected end of JSON input")
		err := pkgerrors.WrapParse("json", "metadata/1.json", cause)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsMalformed(err))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "parse error in json file metadata/1.json: unexpected end of JSON input", err.Error())
	})

	t.Run("no file", func(t *testing.T) {
		err := pkgerrors.NewParseError("timestamp", "", "bad", nil)
		assert.Equal(t, "timestamp parse error: bad", err.Error())
	})
}

func TestIOError(t *testing.T) {
	err := pkgerrors.WrapIO("rename", "metadata/1.json", fs.ErrPermission)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrPermission)

	var ioErr *pkgerrors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "rename", ioErr.Operation)
	assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
}

func TestConflictError(t *testing.T) {
	err := pkgerrors.NewConflictError(0, "2022050112", []string{"202205011205"})
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Contains(t, err.Error(), "202205011205")
}

func TestConfigError(t *testing.T) {
	cause := errors.New("boom")
	err := pkgerrors.NewConfigError("store", "output root missing", cause)
	assert.Equal(t, "configuration error in store: output root missing", err.Error())
	assert.ErrorIs(t, err, cause)
}
