package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOfRecognizesConstructedErrors(t *testing.T) {
	err := NewNotFound("pad %s missing", "s1")
	assert.Equal(t, NotFound, CodeOf(err))
}

func TestCodeOfDefaultsToInternalForForeignErrors(t *testing.T) {
	assert.Equal(t, Internal, CodeOf(errors.New("boom")))
}

func TestCodeOfNilIsInternal(t *testing.T) {
	assert.Equal(t, Internal, CodeOf(nil))
}

func TestMessageStripsToPublicText(t *testing.T) {
	err := NewValidationError("field %s is required", "content")
	assert.Equal(t, "field content is required", Message(err))
}

func TestMessageForForeignErrorIsGeneric(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("leak this path: /etc/shadow")))
}

func TestWithDetailsAttachesPayload(t *testing.T) {
	err := NewCapacityLimitReached("limit reached").WithDetails(map[string]int{"limit": 5})
	assert.Equal(t, map[string]int{"limit": 5}, err.Details)
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Code]int{
		NotFound:             404,
		InvalidID:            400,
		InvalidIndex:         400,
		ValidationError:      400,
		ConfigError:          400,
		ValidationTimeout:    408,
		CapacityLimitReached: 409,
		Conflict:             409,
		Unauthorized:         401,
		Internal:             500,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), "code %s", code)
	}
}

func TestAsCodedFalseForForeignError(t *testing.T) {
	_, ok := AsCoded(errors.New("not ours"))
	assert.False(t, ok)
}
