package exporter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcenon/threadmon/internal/metrics"
)

func TestToOTLPDataPointsConvertsTimestampToNanos(t *testing.T) {
	m := metrics.NewMetric("cpu", metrics.TypeGauge, 1, nil)
	points := ToOTLPDataPoints([]metrics.Metric{m})
	require.Len(t, points, 1)
	assert.Equal(t, m.TimestampUs*1000, points[0].TimeUnixNano)
}

func TestOTLPExporterSendsJSONPayload(t *testing.T) {
	var gotFormat Format
	var gotPayload []byte
	sender := SenderFunc(func(format Format, payload []byte) error {
		gotFormat = format
		gotPayload = payload
		return nil
	})

	e := NewOTLPExporter(sender, OTLPHttpJSON)
	require.NoError(t, e.Export([]metrics.Metric{metrics.NewMetric("cpu", metrics.TypeGauge, 1, nil)}))
	assert.Equal(t, OTLPHttpJSON, gotFormat)

	var decoded []OTLPDataPoint
	require.NoError(t, json.Unmarshal(gotPayload, &decoded))
	assert.Equal(t, "cpu", decoded[0].Name)
}
