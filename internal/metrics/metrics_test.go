package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Recorder(t *testing.T) {
	m := New()
	m.MutationApplied("add_member")
	m.MutationApplied("add_member")
	m.MutationApplied("record_payment")
	m.ValidationRejected("record_payment")
	m.PersistFailed()
	m.ActiveMembers(7)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"add_member mutations", testutil.ToFloat64(m.mutations.WithLabelValues("add_member")), 2},
		{"record_payment mutations", testutil.ToFloat64(m.mutations.WithLabelValues("record_payment")), 1},
		{"rejections", testutil.ToFloat64(m.rejections.WithLabelValues("record_payment")), 1},
		{"persist failures", testutil.ToFloat64(m.persistErrors), 1},
		{"active members", testutil.ToFloat64(m.activeMembers), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ActiveMembers(3)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), "dues_active_members 3") {
		t.Errorf("gauge missing from exposition:\n%s", body)
	}
}
