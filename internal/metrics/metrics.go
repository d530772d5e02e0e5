// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 認証サービスとHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordSignInStarted()
	RecordSignInCompleted(mode string)
	RecordSignInFailure(reason string)
	RecordUserCreated()
	RecordTimelineLatency(duration time.Duration)
	RecordTimelineFailure()
	RecordHTTPStatus(statusCode int)
}

// サインイン失敗の理由ラベル
const (
	ReasonNoPendingToken = "no_pending_token"
	ReasonProvider       = "provider"
	ReasonMissingField   = "missing_field"
	ReasonStore          = "store"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signInStarted   prometheus.Counter
	signInCompleted *prometheus.CounterVec
	signInFail      *prometheus.CounterVec
	usersCreated    prometheus.Counter
	timelineLatency prometheus.Histogram
	timelineFail    prometheus.Counter
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signInStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tweetlog_sign_in_started_total",
			Help: "サインイン開始（リクエストトークン取得成功）の合計数",
		}),
		signInCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tweetlog_sign_in_completed_total",
			Help: "サインイン完了の合計数（モード別）",
		}, []string{"mode"}),
		signInFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tweetlog_sign_in_fail_total",
			Help: "サインイン失敗の合計数（理由別）",
		}, []string{"reason"}),
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tweetlog_users_created_total",
			Help: "作成されたユーザー行の合計数",
		}),
		timelineLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tweetlog_timeline_latency_seconds",
			Help:    "タイムライン取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		timelineFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tweetlog_timeline_fail_total",
			Help: "タイムライン取得失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tweetlog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.signInStarted,
		c.signInCompleted,
		c.signInFail,
		c.usersCreated,
		c.timelineLatency,
		c.timelineFail,
		c.httpStatus,
	)

	return c
}

// RecordSignInStarted はサインイン開始を記録する。
func (c *Collector) RecordSignInStarted() {
	c.signInStarted.Inc()
}

// RecordSignInCompleted はサインイン完了を記録する。
func (c *Collector) RecordSignInCompleted(mode string) {
	c.signInCompleted.WithLabelValues(mode).Inc()
}

// RecordSignInFailure はサインイン失敗を記録する。
func (c *Collector) RecordSignInFailure(reason string) {
	c.signInFail.WithLabelValues(reason).Inc()
}

// RecordUserCreated はユーザー行の作成を記録する。
func (c *Collector) RecordUserCreated() {
	c.usersCreated.Inc()
}

// RecordTimelineLatency はタイムライン取得のレイテンシを記録する。
func (c *Collector) RecordTimelineLatency(duration time.Duration) {
	c.timelineLatency.Observe(duration.Seconds())
}

// RecordTimelineFailure はタイムライン取得失敗を記録する。
func (c *Collector) RecordTimelineFailure() {
	c.timelineFail.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopCollector は何も記録しないMetricsCollector。テストやメトリクス無効時に使用する。
type NopCollector struct{}

func (NopCollector) RecordSignInStarted() {}
func (NopCollector) RecordSignInCompleted(string) {}
func (NopCollector) RecordSignInFailure(string) {}
func (NopCollector) RecordUserCreated() {}
func (NopCollector) RecordTimelineLatency(time.Duration) {}
func (NopCollector) RecordTimelineFailure() {}
func (NopCollector) RecordHTTPStatus(int) {}

// compile-time interface check
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
