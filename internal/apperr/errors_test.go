package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsSentinel(t *testing.T) {
	err := Wrap(ErrNotFound, "Skill not found")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Skill not found", Message(err))
	assert.Equal(t, "not found: Skill not found", err.Error())
}

func TestValidation_SurvivesFurtherWrapping(t *testing.T) {
	err := fmt.Errorf("create project: %w", Validation("title is required"))

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "title is required", Message(err))
}

func TestMessage_PlainError(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
