package exporter

import (
	"encoding/json"

	"github.com/kcenon/threadmon/internal/metrics"
)

// OTLPDataPoint is the JSON-friendly shape emitted by the HTTP/JSON
// OTLP encoding; the gRPC and HTTP/protobuf variants reuse the same
// conversion and differ only in the Format tag a Sender dispatches
// on, since framing those wire types is outside this package's scope.
type OTLPDataPoint struct {
	Name         string            `json:"name"`
	Value        float64           `json:"value"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	TimeUnixNano int64             `json:"time_unix_nano"`
}

// OTLPExporter converts metrics.Metric batches into an OTLP-shaped
// payload for one of the three OTLP transport variants.
type OTLPExporter struct {
	sender Sender
	format Format
}

// NewOTLPExporter creates an exporter targeting the given OTLP
// transport variant (OTLPGrpc, OTLPHttpJSON, or OTLPHttpProtobuf).
func NewOTLPExporter(sender Sender, format Format) *OTLPExporter {
	return &OTLPExporter{sender: sender, format: format}
}

// Export converts batch to OTLP data points and sends the encoded
// payload through the configured Sender. OTLPHttpJSON is encoded as
// JSON; the gRPC and HTTP/protobuf variants are handed the same data
// points pre-marshaled to JSON, leaving protobuf framing to the
// injected Sender.
func (e *OTLPExporter) Export(batch []metrics.Metric) error {
	points := ToOTLPDataPoints(batch)
	payload, err := json.Marshal(points)
	if err != nil {
		return err
	}
	return e.sender.Send(e.format, payload)
}

// ToOTLPDataPoints converts a metric batch into OTLP data points,
// multiplying the microsecond timestamp into nanoseconds.
func ToOTLPDataPoints(batch []metrics.Metric) []OTLPDataPoint {
	points := make([]OTLPDataPoint, 0, len(batch))
	for _, m := range batch {
		points = append(points, OTLPDataPoint{
			Name:         m.Name,
			Value:        m.Value,
			Attributes:   m.Tags,
			TimeUnixNano: m.TimestampUs * 1000,
		})
	}
	return points
}
