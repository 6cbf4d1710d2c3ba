package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	typed := newTestHandler()
	wildcard := newTestHandler()

	r.Register(typed, "A", "B")
	r.Register(typed, "A")
	r.Register(wildcard)
	r.Register(wildcard)

	assert.Equal(t, 2, r.Count("A"))
	assert.Equal(t, 2, r.Count("B"))
	assert.Equal(t, 1, r.Count("C"))

	handlers := r.GetHandlers("A")
	assert.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0])
	assert.Same(t, wildcard, handlers[1])

	r.Unregister(typed)
	assert.Equal(t, 1, r.Count("A"))
	assert.Empty(t, r.handlers)

	r.Unregister(wildcard)
	assert.Empty(t, r.GetHandlers("A"))
}
