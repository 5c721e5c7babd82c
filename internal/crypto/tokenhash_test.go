package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashTokenDeterministic(t *testing.T) {
	key := []byte("server-side-key")

	first := HashToken("some.bearer.token", key)
	second := HashToken("some.bearer.token", key)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // hex encoded SHA-256
}

func TestHashTokenDependsOnKeyAndInput(t *testing.T) {
	key := []byte("server-side-key")

	assert.NotEqual(t, HashToken("token-a", key), HashToken("token-b", key))
	assert.NotEqual(t, HashToken("token-a", key), HashToken("token-a", []byte("other-key")))
}
