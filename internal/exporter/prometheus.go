package exporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kcenon/threadmon/internal/metrics"
	"github.com/kcenon/threadmon/internal/xfmt"
)

// PrometheusExporter converts metrics.Metric batches into Prometheus
// text exposition format and hands the framed payload to a Sender.
type PrometheusExporter struct {
	sender Sender
}

// NewPrometheusExporter creates an exporter that writes through sender.
func NewPrometheusExporter(sender Sender) *PrometheusExporter {
	return &PrometheusExporter{sender: sender}
}

// Export renders batch as Prometheus text exposition format and sends
// it through the configured Sender.
func (e *PrometheusExporter) Export(batch []metrics.Metric) error {
	payload := RenderPrometheusText(batch)
	return e.sender.Send(PrometheusText, payload)
}

// RenderPrometheusText converts a metric batch into the Prometheus
// text exposition format: a "# HELP"/"# TYPE" pair per metric family
// followed by one sample line per metric, "name{labels} value
// timestamp_ms", with name/label sanitization and value escaping
// applied per metric. Metrics are emitted in a stable, name-sorted
// order, grouped by their sanitized family name, so output is
// deterministic for a fixed input.
func RenderPrometheusText(batch []metrics.Metric) []byte {
	sorted := append([]metrics.Metric(nil), batch...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	var lastFamily string
	seenFamily := false
	for _, m := range sorted {
		family := xfmt.SanitizePrometheusName(m.Name)
		if !seenFamily || family != lastFamily {
			writeFamilyHeader(&b, family, m)
			lastFamily = family
			seenFamily = true
		}
		writePrometheusLine(&b, family, m)
	}
	return []byte(b.String())
}

// writeFamilyHeader emits the "# HELP"/"# TYPE" lines for one metric
// family, ahead of its sample lines. The help text follows the
// component-label convention used elsewhere in the stack: metrics
// tagged with a "component" label get "Metric from <component>";
// everything else gets the generic "System metric".
func writeFamilyHeader(b *strings.Builder, family string, m metrics.Metric) {
	help := "System metric"
	if component, ok := m.Tags["component"]; ok && component != "" {
		help = "Metric from " + component
	}
	fmt.Fprintf(b, "# HELP %s %s\n", family, help)
	fmt.Fprintf(b, "# TYPE %s %s\n", family, prometheusTypeName(m.Type))
}

func prometheusTypeName(t metrics.Type) string {
	switch t {
	case metrics.TypeCounter:
		return "counter"
	case metrics.TypeHistogram:
		return "histogram"
	case metrics.TypeSummary:
		return "summary"
	default:
		// Timer and Set have no direct Prometheus analog; gauge is the
		// closest fit, matching how Timer is exposed elsewhere.
		return "gauge"
	}
}

func writePrometheusLine(b *strings.Builder, name string, m metrics.Metric) {
	b.WriteString(name)

	if len(m.Tags) > 0 {
		b.WriteByte('{')
		keys := make([]string, 0, len(m.Tags))
		for k := range m.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(xfmt.SanitizePrometheusLabel(k))
			b.WriteString(`="`)
			b.WriteString(xfmt.EscapeLabelValue(m.Tags[k]))
			b.WriteByte('"')
		}
		b.WriteByte('}')
	}

	b.WriteByte(' ')
	b.WriteString(formatFloat(m.Value))
	if m.TimestampUs > 0 {
		b.WriteByte(' ')
		fmt.Fprintf(b, "%d", m.TimestampUs/1000)
	}
	b.WriteByte('\n')
}

func formatFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
}
