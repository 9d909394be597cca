package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoErrorIncludesKindAndMessage(t *testing.T) {
	i := New(NotFound, "hub.Get", "collector missing")
	assert.Contains(t, i.Error(), "NotFound")
	assert.Contains(t, i.Error(), "collector missing")
	assert.Contains(t, i.Error(), "hub.Get")
}

func TestInfoWrapUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	i := Wrap(NetworkError, "exporter.Send", "push failed", cause)
	require.ErrorIs(t, i, cause)
	assert.Contains(t, i.Error(), "dial tcp: refused")
}

func TestInfoWithContextCopiesPriorKeys(t *testing.T) {
	base := New(InvalidArgument, "pool.Submit", "bad job")
	withOne := base.WithContext("job_id", "abc")
	withTwo := withOne.WithContext("pool", "default")

	assert.Empty(t, base.Context)
	assert.Equal(t, "abc", withOne.Context["job_id"])
	assert.Equal(t, "abc", withTwo.Context["job_id"])
	assert.Equal(t, "default", withTwo.Context["pool"])
}

func TestInfoIsMatchesByKindOnly(t *testing.T) {
	a := New(QueueClosed, "jobqueue.Enqueue", "queue is closed")
	b := New(QueueClosed, "other.Op", "different message")
	c := New(Empty, "jobqueue.Dequeue", "queue is closed")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestKindClassification(t *testing.T) {
	assert.True(t, IsTransient(NetworkError))
	assert.False(t, IsTransient(InvalidArgument))

	assert.True(t, IsNonTransient(ValidationFailed))
	assert.False(t, IsNonTransient(NetworkError))

	assert.True(t, IsFatal(DataCorrupted))
	assert.False(t, IsFatal(NetworkError))
}

func TestKindStringUnknownFallback(t *testing.T) {
	var k Kind = 9999
	assert.Equal(t, "Unknown", k.String())
	assert.Equal(t, "NotFound", NotFound.String())
}
