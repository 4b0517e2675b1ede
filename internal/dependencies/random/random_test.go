package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCryptoRandom_String(t *testing.T) {
	r := New()

	s := r.String(32, "ab")
	assert.Len(t, s, 32)
	assert.Empty(t, strings.Trim(s, "ab"))

	assert.Empty(t, r.String(0, "ab"))
	assert.Empty(t, r.String(4, ""))
}

func TestGameID(t *testing.T) {
	id := GameID(New())

	assert.Len(t, string(id), GameIDLength)
	for _, ch := range string(id) {
		assert.Contains(t, GameIDAlphabet, string(ch))
	}
}
