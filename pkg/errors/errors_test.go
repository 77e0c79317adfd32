package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	e1 := New("cause1")
	e2 := New("cause2").Wrap(e1)
	e := New("dummy").Wrap(e2)
	e3 := e.Unwrap()
	assert.True(t, Is(e, e1))
	assert.True(t, Is(e, e2))
	assert.True(t, e3 == e2)
}

func TestWrapKeepsSentinel(t *testing.T) {
	sentinel := New("not found")
	cause := fmt.Errorf("segment %q", "train")

	wrapped := sentinel.Wrap(cause)
	require.Error(t, wrapped)
	assert.True(t, Is(wrapped, sentinel))
	assert.True(t, Is(wrapped, cause))
	assert.Equal(t, `not found: segment "train"`, wrapped.Error())

	// the sentinel is left untouched
	assert.Nil(t, sentinel.Unwrap())
	assert.Equal(t, "not found", sentinel.Error())

	other := New("not found")
	assert.False(t, Is(wrapped, other), "sentinels with the same message are distinct")

	var target *Error
	require.True(t, As(fmt.Errorf("outer: %w", wrapped), &target))
	assert.True(t, Is(target, sentinel))
}

func TestWrapMessage(t *testing.T) {
	sentinel := New("status error")
	err := sentinel.WrapMessage("draft %d is closed", 3)
	assert.True(t, Is(err, sentinel))
	assert.Equal(t, "status error: draft 3 is closed", err.Error())
}
