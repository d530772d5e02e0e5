package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetricFamily はレジストリから指定名のメトリクスファミリーを取得する。
func findMetricFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

// labelValue はメトリクスの指定ラベルの値を返す。
func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordSignInStarted_IncrementsCounter はサインイン開始カウンタが増加することを検証する。
func TestRecordSignInStarted_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignInStarted()
	c.RecordSignInStarted()

	mf := findMetricFamily(t, reg, "tweetlog_sign_in_started_total")
	if val := mf.GetMetric()[0].GetCounter().GetValue(); val != 2 {
		t.Errorf("sign_in_started_total = %v, want 2", val)
	}
}

// TestRecordSignInCompleted_LabelsByMode はモード別にサインイン完了が記録されることを検証する。
func TestRecordSignInCompleted_LabelsByMode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignInCompleted("insert")
	c.RecordSignInCompleted("insert")
	c.RecordSignInCompleted("upsert")

	mf := findMetricFamily(t, reg, "tweetlog_sign_in_completed_total")
	counts := map[string]float64{}
	for _, m := range mf.GetMetric() {
		counts[labelValue(m, "mode")] = m.GetCounter().GetValue()
	}
	if counts["insert"] != 2 || counts["upsert"] != 1 {
		t.Errorf("counts = %v, want insert=2 upsert=1", counts)
	}
}

// TestRecordSignInFailure_LabelsByReason は理由別にサインイン失敗が記録されることを検証する。
func TestRecordSignInFailure_LabelsByReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignInFailure(ReasonProvider)

	mf := findMetricFamily(t, reg, "tweetlog_sign_in_fail_total")
	m := mf.GetMetric()[0]
	if labelValue(m, "reason") != ReasonProvider {
		t.Errorf("reason = %q, want %q", labelValue(m, "reason"), ReasonProvider)
	}
	if m.GetCounter().GetValue() != 1 {
		t.Errorf("sign_in_fail_total = %v, want 1", m.GetCounter().GetValue())
	}
}

// TestRecordUserCreated_IncrementsCounter はユーザー作成カウンタが増加することを検証する。
func TestRecordUserCreated_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUserCreated()

	mf := findMetricFamily(t, reg, "tweetlog_users_created_total")
	if val := mf.GetMetric()[0].GetCounter().GetValue(); val != 1 {
		t.Errorf("users_created_total = %v, want 1", val)
	}
}

// TestRecordTimelineLatency_ObservesHistogram はレイテンシがヒストグラムに記録されることを検証する。
func TestRecordTimelineLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTimelineLatency(150 * time.Millisecond)
	c.RecordTimelineLatency(2 * time.Second)

	mf := findMetricFamily(t, reg, "tweetlog_timeline_latency_seconds")
	h := mf.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 2 {
		t.Errorf("sample count = %d, want 2", h.GetSampleCount())
	}
	if h.GetSampleSum() < 2.1 || h.GetSampleSum() > 2.2 {
		t.Errorf("sample sum = %v, want ~2.15", h.GetSampleSum())
	}
}

// TestRecordTimelineFailure_IncrementsCounter はタイムライン取得失敗カウンタが増加することを検証する。
func TestRecordTimelineFailure_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTimelineFailure()

	mf := findMetricFamily(t, reg, "tweetlog_timeline_fail_total")
	if val := mf.GetMetric()[0].GetCounter().GetValue(); val != 1 {
		t.Errorf("timeline_fail_total = %v, want 1", val)
	}
}

// TestRecordHTTPStatus_LabelsByStatusCode はステータスコード別に記録されることを検証する。
func TestRecordHTTPStatus_LabelsByStatusCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(401)

	mf := findMetricFamily(t, reg, "tweetlog_http_status_total")
	counts := map[string]float64{}
	for _, m := range mf.GetMetric() {
		counts[labelValue(m, "status_code")] = m.GetCounter().GetValue()
	}
	if counts["200"] != 2 || counts["401"] != 1 {
		t.Errorf("counts = %v, want 200=2 401=1", counts)
	}
}

// TestNopCollector_DoesNotPanic はNopCollectorの全メソッドが安全に呼べることを検証する。
func TestNopCollector_DoesNotPanic(t *testing.T) {
	var c MetricsCollector = NopCollector{}

	c.RecordSignInStarted()
	c.RecordSignInCompleted("insert")
	c.RecordSignInFailure(ReasonStore)
	c.RecordUserCreated()
	c.RecordTimelineLatency(time.Second)
	c.RecordTimelineFailure()
	c.RecordHTTPStatus(500)
}
