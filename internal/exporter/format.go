// Package exporter converts a metrics.Metric batch into wire-format
// payloads for one of several observability backends; no exporter
// accepts a svccontext.MetricsSnapshot. Only the conversion and framing
// decisions are in scope here; the actual socket/HTTP transmission is
// an injectable Sender seam so this package never opens a connection
// itself.
package exporter

// Format enumerates the supported wire representations.
type Format int

const (
	PrometheusText Format = iota
	PrometheusProtobuf
	StatsDPlain
	StatsDDataDog
	OTLPGrpc
	OTLPHttpJSON
	OTLPHttpProtobuf
)

func (f Format) String() string {
	switch f {
	case PrometheusText:
		return "PrometheusText"
	case PrometheusProtobuf:
		return "PrometheusProtobuf"
	case StatsDPlain:
		return "StatsDPlain"
	case StatsDDataDog:
		return "StatsDDataDog"
	case OTLPGrpc:
		return "OTLPGrpc"
	case OTLPHttpJSON:
		return "OTLPHttpJSON"
	case OTLPHttpProtobuf:
		return "OTLPHttpProtobuf"
	default:
		return "Unknown"
	}
}

// Sender hands an already-framed payload off to a transport. It is
// the seam implementers fill with an actual HTTP client, UDP socket,
// or gRPC stream; this package never dials one itself.
type Sender interface {
	Send(format Format, payload []byte) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(format Format, payload []byte) error

// Send implements Sender.
func (f SenderFunc) Send(format Format, payload []byte) error { return f(format, payload) }
