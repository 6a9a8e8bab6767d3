package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"https://silo.example", "https://app.silo.example"}

	assert.True(t, originAllowed("https://silo.example", allowed))
	assert.True(t, originAllowed("HTTPS://SILO.EXAMPLE", allowed))
	assert.True(t, originAllowed("https://app.silo.example", allowed))

	assert.False(t, originAllowed("https://evil.example", allowed))
	assert.False(t, originAllowed("http://silo.example", allowed))
	assert.False(t, originAllowed("https://silo.example", nil))

	assert.True(t, originAllowed("https://anywhere.example", []string{"*"}))
}
