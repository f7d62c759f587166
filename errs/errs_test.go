package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs(t *testing.T) {
	err := Range("day %d out of range", 32)
	assert.ErrorIs(t, err, ErrRange)
	assert.NotErrorIs(t, err, ErrType)
	assert.Equal(t, "range_error: day 32 out of range", err.Error())

	wrapped := fmt.Errorf("build date: %w", err)
	assert.ErrorIs(t, wrapped, ErrRange)
	assert.True(t, HasCode(wrapped, CodeRange))
}

func TestWrapPreservesCode(t *testing.T) {
	inner := NotImplemented("rule zone serialization")
	err := Wrap(inner, CodeType, "format zoned date-time")
	assert.True(t, HasCode(err, CodeNotImplemented))
	assert.ErrorIs(t, err, inner)

	plain := Wrap(errors.New("boom"), CodeType, "lookup")
	assert.True(t, HasCode(plain, CodeType))
	assert.Equal(t, "type_error: lookup", plain.Error())
}
