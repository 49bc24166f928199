package redis

import (
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestIsCacheMiss(t *testing.T) {
	assert.True(t, IsCacheMiss(redis.Nil))
	assert.True(t, IsCacheMiss(fmt.Errorf("reading user cache: %w", redis.Nil)))
	assert.False(t, IsCacheMiss(fmt.Errorf("connection refused")))
	assert.False(t, IsCacheMiss(nil))
}
