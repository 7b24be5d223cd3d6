package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("title is required"), KindValidation},
		{"wrapped not found", fmt.Errorf("get post: %w", NotFound("post %s not found", "p1")), KindNotFound},
		{"forbidden", Forbidden("not the author"), KindForbidden},
		{"conflict", Conflict("email taken"), KindConflict},
		{"authentication", Authentication("invalid token"), KindAuthentication},
		{"plain error", errors.New("boom"), KindInternal},
		{"nil", nil, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageOf_HidesInternalDetail(t *testing.T) {
	err := Internal("query users", errors.New("pq: connection refused"))

	assert.Equal(t, "internal server error", MessageOf(err))
	assert.Equal(t, "internal server error", MessageOf(errors.New("raw")))
	assert.Equal(t, "query users: pq: connection refused", err.Error())
	assert.ErrorIs(t, fmt.Errorf("wrap: %w", err), err.Err)
}

func TestMessageOf_TypedError(t *testing.T) {
	err := fmt.Errorf("update: %w", Validation("%s must not be empty", "title"))

	assert.Equal(t, "title must not be empty", MessageOf(err))
	assert.True(t, IsNotFound(NotFound("user not found")))
	assert.Equal(t, "not_found", KindNotFound.String())
}
