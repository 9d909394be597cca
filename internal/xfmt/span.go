package xfmt

// SpanKind mirrors spec.md's span-kind enumeration for OTLP conversion.
type SpanKind int

const (
	SpanKindUnspecified SpanKind = iota
	SpanKindInternal
	SpanKindServer
	SpanKindClient
	SpanKindProducer
	SpanKindConsumer
)

func (k SpanKind) String() string {
	switch k {
	case SpanKindInternal:
		return "Internal"
	case SpanKindServer:
		return "Server"
	case SpanKindClient:
		return "Client"
	case SpanKindProducer:
		return "Producer"
	case SpanKindConsumer:
		return "Consumer"
	default:
		return "Unspecified"
	}
}

// StatusCode mirrors spec.md's span status enumeration.
type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOk
	StatusError
)

func (c StatusCode) String() string {
	switch c {
	case StatusOk:
		return "Ok"
	case StatusError:
		return "Error"
	default:
		return "Unset"
	}
}

var spanKindTags = map[string]SpanKind{
	"internal": SpanKindInternal,
	"server":   SpanKindServer,
	"client":   SpanKindClient,
	"producer": SpanKindProducer,
	"consumer": SpanKindConsumer,
}

// SpanConversion is the result of converting a tagged span record into
// OTEL span-kind/status-code form.
type SpanConversion struct {
	Kind       SpanKind
	Status     StatusCode
	StatusMsg  string
	Attributes map[string]string
}

// ConvertSpanTags maps tag "span.kind" to a SpanKind, and tags
// "error"="true" plus "error.message" to a StatusError with that
// description. The consumed tags are removed from the returned
// attribute set so callers do not double-emit them.
func ConvertSpanTags(tags map[string]string) SpanConversion {
	out := SpanConversion{
		Kind:       SpanKindUnspecified,
		Status:     StatusUnset,
		Attributes: make(map[string]string, len(tags)),
	}

	for k, v := range tags {
		out.Attributes[k] = v
	}

	if kindTag, ok := out.Attributes["span.kind"]; ok {
		if kind, known := spanKindTags[kindTag]; known {
			out.Kind = kind
		}
		delete(out.Attributes, "span.kind")
	}

	if errTag, ok := out.Attributes["error"]; ok && errTag == "true" {
		out.Status = StatusError
		out.StatusMsg = out.Attributes["error.message"]
		delete(out.Attributes, "error")
		delete(out.Attributes, "error.message")
	}

	return out
}
