package webui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBurst(t *testing.T) {
	l := NewRateLimiter(0.001, 2)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "clients are limited independently")
	assert.Equal(t, 2, l.Count())
}

func TestRateLimiterDisabled(t *testing.T) {
	l := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("client"))
	}
}
