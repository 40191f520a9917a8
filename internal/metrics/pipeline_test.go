package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimflow/internal/metrics"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.StartClaim()
		m.ObserveClassification("bill")
		m.ObserveExtraction("bill", time.Second)
		m.ObserveOutcome("success", "bill", "")
		m.FinishClaim("approved", time.Second)
	})
}

func TestPipelineCounters(t *testing.T) {
	m := metrics.New()

	m.StartClaim()
	m.ObserveClassification("bill")
	m.ObserveClassification("bill")
	m.ObserveOutcome("failed", "id_card", "backend_error")
	m.FinishClaim("approved", 2*time.Second)

	expected := `
# HELP claimflow_pipeline_classifications_total Documents classified, by resulting type.
# TYPE claimflow_pipeline_classifications_total counter
claimflow_pipeline_classifications_total{type="bill"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "claimflow_pipeline_classifications_total"))

	expected = `
# HELP claimflow_pipeline_decisions_total Claim decisions by status.
# TYPE claimflow_pipeline_decisions_total counter
claimflow_pipeline_decisions_total{status="approved"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "claimflow_pipeline_decisions_total"))

	expected = `
# HELP claimflow_pipeline_claims_in_flight Claims currently being processed.
# TYPE claimflow_pipeline_claims_in_flight gauge
claimflow_pipeline_claims_in_flight 0
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "claimflow_pipeline_claims_in_flight"))
}

func TestGinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/claims/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/claims/abc", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `claimflow_http_requests_total{method="GET",path="/claims/:id",status="204"} 1`)
}
