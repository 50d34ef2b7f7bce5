package xcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type key struct{}

func TestDetachWithTimeout(t *testing.T) {
	parent, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "v"))
	cancel()

	ctx, stop := DetachWithTimeout(parent, time.Minute)
	defer stop()

	assert.NoError(t, ctx.Err())
	assert.Equal(t, "v", ctx.Value(key{}))

	_, ok := ctx.Deadline()
	assert.True(t, ok)
}
