package svccontext

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerRegisterAndGet(t *testing.T) {
	c := New()
	c.Register("config", 42)
	v, err := c.Get("config")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestContainerFactoryResolvedOnce(t *testing.T) {
	c := New()
	calls := 0
	c.RegisterFactory("clock", func(*Container) (interface{}, error) {
		calls++
		return calls, nil
	})

	v1, err := c.Get("clock")
	require.NoError(t, err)
	v2, err := c.Get("clock")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls)
}

func TestContainerGetMissingErrors(t *testing.T) {
	c := New()
	_, err := c.Get("missing")
	require.Error(t, err)
}

func TestContainerFactoryErrorPropagates(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	c.RegisterFactory("broken", func(*Container) (interface{}, error) {
		return nil, boom
	})
	_, err := c.Get("broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestContainerHas(t *testing.T) {
	c := New()
	assert.False(t, c.Has("x"))
	c.Register("x", 1)
	assert.True(t, c.Has("x"))
}

func TestContainerClearRemovesEverything(t *testing.T) {
	c := New()
	c.Register("a", 1)
	c.RegisterFactory("b", func(*Container) (interface{}, error) { return 1, nil })
	c.Clear()
	assert.False(t, c.Has("a"))
	assert.False(t, c.Has("b"))
}

func TestContainerMustGetPanicsOnMissing(t *testing.T) {
	c := New()
	assert.Panics(t, func() { c.MustGet("missing") })
}
