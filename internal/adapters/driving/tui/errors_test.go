package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingEngine.Error(), ErrInvalidPorts.Error())
}

func TestErrMissingEngine_Message(t *testing.T) {
	assert.Contains(t, ErrMissingEngine.Error(), "knowledge base engine")
}

func TestErrInvalidPorts_Message(t *testing.T) {
	assert.Contains(t, ErrInvalidPorts.Error(), "invalid ports")
}
