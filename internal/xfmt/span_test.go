package xfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertSpanTagsKind(t *testing.T) {
	conv := ConvertSpanTags(map[string]string{"span.kind": "server", "route": "/jobs"})
	assert.Equal(t, SpanKindServer, conv.Kind)
	assert.Equal(t, StatusUnset, conv.Status)
	assert.Equal(t, "/jobs", conv.Attributes["route"])
	_, hasKind := conv.Attributes["span.kind"]
	assert.False(t, hasKind)
}

func TestConvertSpanTagsError(t *testing.T) {
	conv := ConvertSpanTags(map[string]string{
		"error":         "true",
		"error.message": "boom",
		"span.kind":     "client",
	})
	assert.Equal(t, SpanKindClient, conv.Kind)
	assert.Equal(t, StatusError, conv.Status)
	assert.Equal(t, "boom", conv.StatusMsg)
	_, hasErr := conv.Attributes["error"]
	assert.False(t, hasErr)
	_, hasMsg := conv.Attributes["error.message"]
	assert.False(t, hasMsg)
}

func TestConvertSpanTagsUnknownKindStaysUnspecified(t *testing.T) {
	conv := ConvertSpanTags(map[string]string{"span.kind": "bogus"})
	assert.Equal(t, SpanKindUnspecified, conv.Kind)
}
