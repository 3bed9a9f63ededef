package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// AuthMetrics records counters for the authentication core.
type AuthMetrics struct {
	loginSuccess *prometheus.CounterVec
	loginFailure *prometheus.CounterVec
	lockouts     prometheus.Counter
	refreshes    *prometheus.CounterVec
	revocations  prometheus.Counter
}

// NewAuthMetrics registers the auth counters on the provided registerer.
// A nil registerer yields a no-op recorder, which keeps tests quiet.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	loginSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_success_total",
		Help: "Successful logins.",
	}, []string{"store"})
	loginFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_failure_total",
		Help: "Failed login attempts.",
	}, []string{"store"})
	lockouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_lockout_rejections_total",
		Help: "Login attempts rejected because the identifier was locked.",
	})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_refresh_total",
		Help: "Access token refreshes by outcome.",
	}, []string{"outcome"})
	revocations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_token_revocations_total",
		Help: "Access tokens blacklisted at logout.",
	})
	reg.MustRegister(loginSuccess, loginFailure, lockouts, refreshes, revocations)
	return &AuthMetrics{
		loginSuccess: loginSuccess,
		loginFailure: loginFailure,
		lockouts:     lockouts,
		refreshes:    refreshes,
		revocations:  revocations,
	}
}

// IncLoginSuccess increments the success counter for the store code.
func (a *AuthMetrics) IncLoginSuccess(store string) {
	if a == nil || a.loginSuccess == nil {
		return
	}
	a.loginSuccess.WithLabelValues(normalizeLabel(store)).Inc()
}

// IncLoginFailure increments the failure counter for the store code.
func (a *AuthMetrics) IncLoginFailure(store string) {
	if a == nil || a.loginFailure == nil {
		return
	}
	a.loginFailure.WithLabelValues(normalizeLabel(store)).Inc()
}

// IncLockoutRejection counts a login rejected by the lockout policy.
func (a *AuthMetrics) IncLockoutRejection() {
	if a == nil || a.lockouts == nil {
		return
	}
	a.lockouts.Inc()
}

// IncRefresh counts a refresh attempt with its outcome label.
func (a *AuthMetrics) IncRefresh(outcome string) {
	if a == nil || a.refreshes == nil {
		return
	}
	a.refreshes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncRevocation counts a blacklisted access token.
func (a *AuthMetrics) IncRevocation() {
	if a == nil || a.revocations == nil {
		return
	}
	a.revocations.Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
