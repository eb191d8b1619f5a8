package domainerrors_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "material-master/domainerrors"
)

func TestHasCode(t *testing.T) {
	err := dErrors.Wrap(os.ErrNotExist, dErrors.CodeNotFound, "file not found at data/x.csv")
	wrapped := fmt.Errorf("load materials: %w", err)

	assert.True(t, dErrors.HasCode(wrapped, dErrors.CodeNotFound))
	assert.False(t, dErrors.HasCode(wrapped, dErrors.CodeValidation))
	assert.True(t, errors.Is(wrapped, os.ErrNotExist))
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(wrapped))
}

func TestHasCodeNested(t *testing.T) {
	inner := dErrors.New(dErrors.CodeInvalidState, "request already approved")
	outer := dErrors.Wrap(inner, dErrors.CodeInternal, "approve")

	assert.True(t, dErrors.HasCode(outer, dErrors.CodeInternal))
	assert.True(t, dErrors.HasCode(outer, dErrors.CodeInvalidState))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(errors.New("boom")))
	assert.False(t, dErrors.HasCode(nil, dErrors.CodeNotFound))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "missing", dErrors.New(dErrors.CodeValidation, "missing").Error())
	err := dErrors.Wrap(errors.New("disk"), dErrors.CodeInternal, "save")
	assert.Equal(t, "save: disk", err.Error())
}
