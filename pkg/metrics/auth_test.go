package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherCounter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	got := map[string]string{}
	for _, pair := range metric.GetLabel() {
		got[pair.GetName()] = pair.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestAuthMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAuthMetrics(reg)

	m.IncLoginSuccess("HQ")
	m.IncLoginSuccess("hq")
	m.IncLoginFailure("hq")
	m.IncLockoutRejection()
	m.IncRefresh("accepted")
	m.IncRefresh("rejected")
	m.IncRevocation()

	// Store labels are normalized to lower case.
	if got := gatherCounter(t, reg, "auth_login_success_total", map[string]string{"store": "hq"}); got != 2 {
		t.Fatalf("expected 2 successes for hq got %v", got)
	}
	if got := gatherCounter(t, reg, "auth_login_failure_total", map[string]string{"store": "hq"}); got != 1 {
		t.Fatalf("expected 1 failure got %v", got)
	}
	if got := gatherCounter(t, reg, "auth_lockout_rejections_total", nil); got != 1 {
		t.Fatalf("expected 1 lockout rejection got %v", got)
	}
	if got := gatherCounter(t, reg, "auth_token_refresh_total", map[string]string{"outcome": "accepted"}); got != 1 {
		t.Fatalf("expected 1 accepted refresh got %v", got)
	}
	if got := gatherCounter(t, reg, "auth_token_revocations_total", nil); got != 1 {
		t.Fatalf("expected 1 revocation got %v", got)
	}
}

func TestAuthMetricsNilSafe(t *testing.T) {
	var m *AuthMetrics
	m.IncLoginSuccess("hq")
	m.IncLoginFailure("hq")
	m.IncLockoutRejection()
	m.IncRefresh("accepted")
	m.IncRevocation()

	empty := NewAuthMetrics(nil)
	empty.IncLoginSuccess("hq")
	empty.IncLockoutRejection()
}
