package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAuditWrite(t *testing.T) {
	before := testutil.ToFloat64(auditWrites.WithLabelValues("answer", "error"))
	RecordAuditWrite("answer", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(auditWrites.WithLabelValues("answer", "error")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordGrading("ok")
	RecordProviderCall("ok", 300*time.Millisecond)
	RecordHTTPRequest("POST", "", 200)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "gradebot_grading_requests_total")
	assert.Contains(t, body, "gradebot_provider_request_duration_seconds")
	assert.Contains(t, body, `path="unmatched"`)
}
