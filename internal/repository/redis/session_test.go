package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAwaitingKey(t *testing.T) {
	assert.Equal(t, "autoapprove:session:111:awaiting_request", awaitingKey(111))
	assert.NotEqual(t, awaitingKey(1), awaitingKey(11))
}
