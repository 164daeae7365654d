// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 記事サービスやWebhookハンドラーから利用する。
// operationはコンテンツソースへの呼び出し種別（retrieve_database, query, list_blocks）。
type MetricsCollector interface {
	RecordSourceSuccess(operation string)
	RecordSourceFailure(operation string, reason string)
	RecordSourceLatency(operation string, duration time.Duration)
	RecordSortFallback()
	RecordPlaceholderServed()
	RecordPostsNormalized(count int)
	RecordWebhook(result string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	sourceSuccess   *prometheus.CounterVec
	sourceFail      *prometheus.CounterVec
	sourceLatency   *prometheus.HistogramVec
	sortFallback    prometheus.Counter
	placeholder     prometheus.Counter
	postsNormalized prometheus.Counter
	webhooks        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sourceSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notionblog_source_success_total",
			Help: "コンテンツソース呼び出し成功の合計数",
		}, []string{"operation"}),
		sourceFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notionblog_source_fail_total",
			Help: "コンテンツソース呼び出し失敗の合計数",
		}, []string{"operation", "reason"}),
		sourceLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notionblog_source_latency_seconds",
			Help:    "コンテンツソース呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		sortFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notionblog_source_sort_fallback_total",
			Help: "ソート指定が拒否され、ソートなしで再クエリした回数",
		}),
		placeholder: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notionblog_placeholder_served_total",
			Help: "コンテンツソース未設定のためプレースホルダー記事を返した回数",
		}),
		postsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notionblog_posts_normalized_total",
			Help: "正規化した記事の合計数",
		}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notionblog_webhook_total",
			Help: "受信したWebhookの結果別の合計数",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.sourceSuccess,
		c.sourceFail,
		c.sourceLatency,
		c.sortFallback,
		c.placeholder,
		c.postsNormalized,
		c.webhooks,
	)

	return c
}

// RecordSourceSuccess はコンテンツソース呼び出しの成功を記録する。
func (c *Collector) RecordSourceSuccess(operation string) {
	c.sourceSuccess.WithLabelValues(operation).Inc()
}

// RecordSourceFailure はコンテンツソース呼び出しの失敗を記録する。
func (c *Collector) RecordSourceFailure(operation string, reason string) {
	c.sourceFail.WithLabelValues(operation, reason).Inc()
}

// RecordSourceLatency はコンテンツソース呼び出しのレイテンシを記録する。
func (c *Collector) RecordSourceLatency(operation string, duration time.Duration) {
	c.sourceLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSortFallback はソートなし再クエリを記録する。
func (c *Collector) RecordSortFallback() {
	c.sortFallback.Inc()
}

// RecordPlaceholderServed はプレースホルダー記事の返却を記録する。
func (c *Collector) RecordPlaceholderServed() {
	c.placeholder.Inc()
}

// RecordPostsNormalized は正規化した記事数を記録する。
func (c *Collector) RecordPostsNormalized(count int) {
	c.postsNormalized.Add(float64(count))
}

// RecordWebhook はWebhookの処理結果を記録する。
func (c *Collector) RecordWebhook(result string) {
	c.webhooks.WithLabelValues(result).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollectorを返す。
func Nop() MetricsCollector {
	return nopCollector{}
}

type nopCollector struct{}

func (nopCollector) RecordSourceSuccess(string)                {}
func (nopCollector) RecordSourceFailure(string, string)        {}
func (nopCollector) RecordSourceLatency(string, time.Duration) {}
func (nopCollector) RecordSortFallback()                       {}
func (nopCollector) RecordPlaceholderServed()                  {}
func (nopCollector) RecordPostsNormalized(int)                 {}
func (nopCollector) RecordWebhook(string)                      {}
