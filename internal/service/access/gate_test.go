package access

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/careconnect-api/internal/model"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

func TestAuthorize_AllCombinations(t *testing.T) {
	levels := []model.AccessLevel{model.AccessNone, model.AccessRead, model.AccessWrite, model.AccessAdmin}
	required := []model.AccessLevel{model.AccessRead, model.AccessWrite, model.AccessAdmin}
	order := map[model.AccessLevel]int{
		model.AccessNone:  0,
		model.AccessRead:  1,
		model.AccessWrite: 2,
		model.AccessAdmin: 3,
	}

	for _, level := range levels {
		for _, req := range required {
			t.Run(fmt.Sprintf("%q/%s", level, req), func(t *testing.T) {
				d := Authorize(level, req)
				assert.Equal(t, order[level] >= order[req], d.Allowed)

				switch {
				case d.Allowed:
					assert.Equal(t, ReasonNone, d.Reason)
					assert.NoError(t, d.Err())
				case level == model.AccessNone:
					assert.Equal(t, ReasonNoAccess, d.Reason)
				default:
					assert.Equal(t, ReasonInsufficientLevel, d.Reason)
				}
			})
		}
	}
}

func TestAuthorize_UnknownLevelDenied(t *testing.T) {
	d := Authorize(model.AccessLevel("owner"), model.AccessRead)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNoAccess, d.Reason)
}

func TestDecision_Err(t *testing.T) {
	err := Decision{Reason: ReasonInsufficientLevel}.Err()
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}
