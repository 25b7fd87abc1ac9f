package errors

import (
	stderrors "errors"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindAndCause(t *testing.T) {
	err := Connection("imap.dial", io.ErrUnexpectedEOF)

	assert.True(t, stderrors.Is(err, ErrConnection))
	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	assert.False(t, stderrors.Is(err, ErrParse))
	assert.Contains(t, err.Error(), "imap.dial")
}

func TestKindOf_SurvivesWrapping(t *testing.T) {
	err := errors.Wrap(Lookup("tools.invoke", errors.New("unknown tool \"x\"")), "dispatch")

	assert.Equal(t, ErrLookup, KindOf(err))
	assert.Nil(t, KindOf(errors.New("plain")))
}

func TestValidation_FormatsMessage(t *testing.T) {
	err := Validation("smtp.validate", "recipient %q is not a valid address", "nope")

	assert.Equal(t, ErrValidation, KindOf(err))
	assert.Contains(t, err.Error(), `recipient "nope" is not a valid address`)
}
