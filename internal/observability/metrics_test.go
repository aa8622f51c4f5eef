package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", 200, time.Millisecond)
	m.ObserveLLM("openai", "chat", "ok", time.Second, 1, 1)
	m.IncAuditRun("manual", "completed")
	m.IncBrandUpsert("created")
	m.SetScheduledJobs("prompt", 1)
	m.IncRunRejected()
	m.IncInflight()
	m.DecInflight()
	assert.Nil(t, m.Registry())
}

func TestMetrics_ExposesCounters(t *testing.T) {
	m := New()
	m.IncAuditRun("manual", "partial")
	m.IncAuditRun("manual", "partial")
	m.ObserveLLM("openai", "extraction", "malformed_output", 2*time.Second, 100, 20)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.auditRuns.WithLabelValues("manual", "partial")))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.llmTokens.WithLabelValues("openai", "completion")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "bl_audit_runs_total"))

	// independent registries do not collide
	_ = New()
}
