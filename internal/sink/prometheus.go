package sink

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/primal-host/firehose-consumer/internal/firehose"
	"github.com/primal-host/firehose-consumer/internal/langtag"
	"github.com/primal-host/firehose-consumer/internal/record"
)

const rollingWindowSpan = 30 * time.Minute

// Prometheus maintains the fixed set of counters described for the
// registry sink: overall event/post volume, language and label/tag
// distributions, embed shape, and external-link domains. The three
// unbounded-cardinality label sets (domains, tags, labels) are kept
// behind a rolling window so they never grow without bound.
type Prometheus struct {
	mu sync.Mutex

	maxSampleSize  int64
	totalSeen      int64
	normalizeLangs bool

	totalEvents  prometheus.Counter
	eventsByType *prometheus.CounterVec

	postsTotal            prometheus.Gauge
	postsByLangGrouped    *prometheus.CounterVec
	postsByLang           *prometheus.CounterVec
	postsByQuote          prometheus.Counter
	postsByReply          prometheus.Counter
	postsByAltText        prometheus.Counter
	postsByMedia          *prometheus.CounterVec

	labelWindow  *rollingWindow
	tagWindow    *rollingWindow
	domainWindow *rollingWindow

	postsByLabel   *prometheus.GaugeVec
	postsByTag     *prometheus.GaugeVec
	postsExternal  *prometheus.GaugeVec
}

// NewPrometheus registers every metric on reg and returns a ready sink.
// maxSampleSize is the MAX_SAMPLE_SIZE config value; 0 disables the
// posts_total reset behaviour. normalizeLangs is the NORMALIZE_LANGS
// config value; when false, language tags are published as observed
// (lowercased only), bypassing BCP-47 normalisation.
func NewPrometheus(reg prometheus.Registerer, maxSampleSize int64, normalizeLangs bool) *Prometheus {
	factory := promauto.With(reg)

	return &Prometheus{
		maxSampleSize:  maxSampleSize,
		normalizeLangs: normalizeLangs,

		totalEvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "total_events", Help: "Total events observed on the firehose.",
		}),
		eventsByType: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "events_by_type", Help: "Events observed, by collection kind.",
		}, []string{"type"}),

		postsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "posts_total", Help: "Posts observed (rolling sample, resets at MAX_SAMPLE_SIZE).",
		}),
		postsByLangGrouped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "posts_by_language_grouped", Help: "Posts by their full sorted language set.",
		}, []string{"language"}),
		postsByLang: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "posts_by_language", Help: "Posts by individual normalised language tag.",
		}, []string{"language"}),
		postsByQuote: factory.NewCounter(prometheus.CounterOpts{
			Name: "posts_by_quote", Help: "Posts quoting another post.",
		}),
		postsByReply: factory.NewCounter(prometheus.CounterOpts{
			Name: "posts_by_reply", Help: "Posts that are replies.",
		}),
		postsByAltText: factory.NewCounter(prometheus.CounterOpts{
			Name: "posts_by_alt_text", Help: "Posts carrying at least one image with alt text.",
		}),
		postsByMedia: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "posts_by_media", Help: "Posts by attached media kind.",
		}, []string{"media"}),

		labelWindow:  newRollingWindow(rollingWindowSpan),
		tagWindow:    newRollingWindow(rollingWindowSpan),
		domainWindow: newRollingWindow(rollingWindowSpan),

		postsByLabel: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "posts_by_label", Help: "Posts by self-label, bounded to labels seen in the last 30m.",
		}, []string{"label"}),
		postsByTag: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "posts_by_tag", Help: "Posts by tag, bounded to tags seen in the last 30m.",
		}, []string{"tag"}),
		postsExternal: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "posts_external_links", Help: "Posts linking external domains, bounded to the last 30m.",
		}, []string{"domain"}),
	}
}

func (p *Prometheus) Export(_ context.Context, rec record.Record) error {
	p.totalEvents.Inc()
	p.eventsByType.WithLabelValues(kindName(rec.Kind)).Inc()

	if rec.Kind != firehose.OperationPost || rec.Post == nil {
		return nil
	}
	p.observePost(rec.Post)
	return nil
}

func (p *Prometheus) observePost(post *record.Post) {
	p.mu.Lock()
	p.totalSeen++
	if p.maxSampleSize > 0 && p.totalSeen > p.maxSampleSize {
		p.postsTotal.Add(-float64(p.totalSeen - 1))
		p.totalSeen = 1
	}
	p.mu.Unlock()

	p.postsTotal.Inc()

	langs := p.normalizedLangs(post.Langs)
	p.postsByLangGrouped.WithLabelValues(groupedLanguageLabel(langs)).Inc()
	for _, l := range langs {
		p.postsByLang.WithLabelValues(l).Inc()
	}

	for _, label := range post.Labels {
		p.labelWindow.Observe(label)
	}
	publishGaugeVec(p.postsByLabel, p.labelWindow.Snapshot())

	for _, tag := range post.Tags {
		p.tagWindow.Observe(tag)
	}
	publishGaugeVec(p.postsByTag, p.tagWindow.Snapshot())

	if post.Reply != nil {
		p.postsByReply.Inc()
	}

	if post.Embed != nil {
		switch post.Embed.Kind {
		case record.EmbedRecord, record.EmbedRecordWithMedia:
			if post.Embed.Record != nil {
				p.postsByQuote.Inc()
			}
		}
		hasAltText := false
		for _, img := range post.Embed.Images {
			if img.Alt != "" {
				hasAltText = true
				break
			}
		}
		for _, m := range post.Embed.Media {
			switch m.Kind {
			case record.MediaImage:
				p.postsByMedia.WithLabelValues("image").Inc()
				if m.Image != nil && m.Image.Alt != "" {
					hasAltText = true
				}
			case record.MediaVideo:
				p.postsByMedia.WithLabelValues("video").Inc()
			}
		}
		if hasAltText {
			p.postsByAltText.Inc()
		}
		if post.Embed.Kind == record.EmbedExternal && post.Embed.External != nil {
			if domain, ok := externalDomain(post.Embed.External.URI); ok {
				p.domainWindow.Observe(domain)
			}
		}
	}
	publishGaugeVec(p.postsExternal, p.domainWindow.Snapshot())
}

func (p *Prometheus) Close() error { return nil }

// normalizedLangs applies BCP-47 normalisation to raw when the sink was
// built with normalizeLangs enabled; otherwise it falls back to the
// tags as observed, lowercased only, per NORMALIZE_LANGS=false.
func (p *Prometheus) normalizedLangs(raw []string) []string {
	if !p.normalizeLangs {
		out := make([]string, 0, len(raw))
		for _, l := range raw {
			if l != "" {
				out = append(out, strings.ToLower(l))
			}
		}
		return out
	}

	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if n := langtag.Normalize(l); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// groupedLanguageLabel sorts and deduplicates langs into the single
// comma-joined label value posts_by_language_grouped uses, or "null"
// when there are none.
func groupedLanguageLabel(langs []string) string {
	if len(langs) == 0 {
		return "null"
	}
	seen := make(map[string]bool, len(langs))
	uniq := make([]string, 0, len(langs))
	for _, l := range langs {
		if !seen[l] {
			seen[l] = true
			uniq = append(uniq, l)
		}
	}
	sort.Strings(uniq)
	return strings.Join(uniq, ",")
}

// externalDomain lowercases the host of a URL and strips a leading
// "www.", per the Prometheus sink's domain label rule.
func externalDomain(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	return host, true
}

func publishGaugeVec(gv *prometheus.GaugeVec, snapshot map[string]int64) {
	gv.Reset()
	for label, count := range snapshot {
		gv.WithLabelValues(label).Set(float64(count))
	}
}
