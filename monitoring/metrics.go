package monitoring

import (
	"errors"

	"earnings-bot/models"
	"earnings-bot/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EarnAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earn_attempts_total",
			Help: "Earning action attempts by action and result",
		},
		[]string{"action", "result"},
	)

	PointsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Points credited by earning actions, split into base and referral bonus",
		},
		[]string{"action", "kind"},
	)

	SignupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signups_total",
			Help: "Accounts created on first contact",
		},
		[]string{"referred"},
	)

	WithdrawalRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "withdrawal_requests_total",
			Help: "Withdrawal requests by method and result",
		},
		[]string{"method", "result"},
	)

	SnapshotFlushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_snapshot_flushes_total",
			Help: "Ledger snapshot flushes by result",
		},
		[]string{"result"},
	)
)

// ResultLabel maps a domain error to a stable label value.
func ResultLabel(err error) string {
	var cooldown *services.CooldownError
	var insufficient *services.InsufficientError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &cooldown):
		return "cooldown"
	case errors.As(err, &insufficient):
		return "insufficient"
	case errors.Is(err, services.ErrUnknownAction):
		return "unknown_action"
	case errors.Is(err, services.ErrUnknownMethod):
		return "unknown_method"
	case errors.Is(err, services.ErrNotFound):
		return "not_found"
	}
	return "error"
}

// unknownLabel stands in for client input that did not resolve to a catalog id or method.
const unknownLabel = "unknown"

// RecordEarn counts an attempt. actionID must be a catalog id; unresolved ids are folded into "unknown".
func RecordEarn(actionID string, out services.Outcome, err error) {
	if actionID == "" || errors.Is(err, services.ErrUnknownAction) {
		actionID = unknownLabel
	}
	EarnAttemptsTotal.WithLabelValues(actionID, ResultLabel(err)).Inc()
	if err != nil {
		return
	}
	PointsAwardedTotal.WithLabelValues(actionID, "base").Add(float64(out.BasePoints))
	if out.Bonus > 0 {
		PointsAwardedTotal.WithLabelValues(actionID, "referral_bonus").Add(float64(out.Bonus))
	}
}

func RecordFirstContact(fc services.FirstContact) {
	if !fc.Created {
		return
	}
	referred := "false"
	if fc.Referred {
		referred = "true"
	}
	SignupsTotal.WithLabelValues(referred).Inc()
}

// RecordWithdrawal labels by the parsed method so raw input never becomes a series.
func RecordWithdrawal(method string, err error) {
	label := unknownLabel
	if m, ok := models.ParseWithdrawalMethod(method); ok {
		label = string(m)
	}
	WithdrawalRequestsTotal.WithLabelValues(label, ResultLabel(err)).Inc()
}
