package exporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kcenon/threadmon/internal/metrics"
)

// StatsDExporter converts metrics.Metric batches into StatsD line
// protocol (plain or DataDog-flavored tags) and hands the framed
// payload to a Sender.
type StatsDExporter struct {
	sender  Sender
	dataDog bool
}

// NewStatsDExporter creates an exporter writing plain StatsD lines.
func NewStatsDExporter(sender Sender) *StatsDExporter {
	return &StatsDExporter{sender: sender}
}

// NewDataDogStatsDExporter creates an exporter writing DataDog's
// tag-suffixed StatsD dialect.
func NewDataDogStatsDExporter(sender Sender) *StatsDExporter {
	return &StatsDExporter{sender: sender, dataDog: true}
}

// Export renders batch as StatsD lines and sends it through the
// configured Sender.
func (e *StatsDExporter) Export(batch []metrics.Metric) error {
	format := StatsDPlain
	if e.dataDog {
		format = StatsDDataDog
	}
	return e.sender.Send(format, e.render(batch))
}

func (e *StatsDExporter) render(batch []metrics.Metric) []byte {
	var b strings.Builder
	for _, m := range batch {
		b.WriteString(m.Name)
		b.WriteByte(':')
		fmt.Fprintf(&b, "%g", m.Value)
		b.WriteByte('|')
		b.WriteString(statsdTypeCode(m.Type))
		if e.dataDog && len(m.Tags) > 0 {
			b.WriteString(renderDataDogTags(m.Tags))
		}
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func statsdTypeCode(t metrics.Type) string {
	switch t {
	case metrics.TypeCounter:
		return "c"
	case metrics.TypeHistogram, metrics.TypeTimer:
		return "ms"
	case metrics.TypeSet:
		return "s"
	default:
		return "g"
	}
}

func renderDataDogTags(tags map[string]string) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("|#")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(tags[k])
	}
	return b.String()
}
