package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPrefersPrefixedVariable(t *testing.T) {
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv(Prefix+"LOG_FORMAT", "json")

	assert.Equal(t, "json", Get("LOG_FORMAT", "fallback"))
}

func TestGetFallsBackToBareThenDefault(t *testing.T) {
	t.Setenv("LOG_FORMAT", "console")
	assert.Equal(t, "console", Get("LOG_FORMAT", "fallback"))

	assert.Equal(t, "fallback", Get("DOES_NOT_EXIST", "fallback"))
}
