package exporter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcenon/threadmon/internal/metrics"
)

func TestStatsDExportUsesPlainFormatByDefault(t *testing.T) {
	var gotFormat Format
	sender := SenderFunc(func(format Format, payload []byte) error {
		gotFormat = format
		return nil
	})

	e := NewStatsDExporter(sender)
	require.NoError(t, e.Export([]metrics.Metric{metrics.NewMetric("requests_total", metrics.TypeCounter, 1, nil)}))
	assert.Equal(t, StatsDPlain, gotFormat)
}

func TestStatsDExportEncodesTypeCode(t *testing.T) {
	var payload []byte
	sender := SenderFunc(func(format Format, p []byte) error { payload = p; return nil })

	e := NewStatsDExporter(sender)
	require.NoError(t, e.Export([]metrics.Metric{
		metrics.NewMetric("requests_total", metrics.TypeCounter, 5, nil),
		metrics.NewMetric("queue_depth", metrics.TypeGauge, 2, nil),
	}))

	out := string(payload)
	assert.True(t, strings.Contains(out, "requests_total:5|c"))
	assert.True(t, strings.Contains(out, "queue_depth:2|g"))
}

func TestDataDogStatsDAppendsTags(t *testing.T) {
	var payload []byte
	sender := SenderFunc(func(format Format, p []byte) error { payload = p; return nil })

	e := NewDataDogStatsDExporter(sender)
	require.NoError(t, e.Export([]metrics.Metric{
		metrics.NewMetric("cpu", metrics.TypeGauge, 1, map[string]string{"host": "a"}),
	}))

	assert.Contains(t, string(payload), "|#host:a")
}
