package monitoring

import (
	"fmt"
	"testing"

	"earnings-bot/services"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", ResultLabel(nil))
	assert.Equal(t, "cooldown", ResultLabel(&services.CooldownError{}))
	assert.Equal(t, "insufficient", ResultLabel(fmt.Errorf("wrap: %w", &services.InsufficientError{})))
	assert.Equal(t, "unknown_action", ResultLabel(fmt.Errorf("%w: x", services.ErrUnknownAction)))
	assert.Equal(t, "unknown_method", ResultLabel(services.ErrUnknownMethod))
	assert.Equal(t, "error", ResultLabel(fmt.Errorf("db down")))
}

func TestRecordEarn(t *testing.T) {
	before := testutil.ToFloat64(PointsAwardedTotal.WithLabelValues("metrics_test", "base"))
	RecordEarn("metrics_test", services.Outcome{BasePoints: 12, Bonus: 1, TotalAwarded: 13}, nil)
	RecordEarn("metrics_test", services.Outcome{}, &services.CooldownError{})

	assert.Equal(t, before+12, testutil.ToFloat64(PointsAwardedTotal.WithLabelValues("metrics_test", "base")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EarnAttemptsTotal.WithLabelValues("metrics_test", "cooldown")))
	assert.Equal(t, float64(1), testutil.ToFloat64(PointsAwardedTotal.WithLabelValues("metrics_test", "referral_bonus")))
}

func TestUnresolvedInputDoesNotCreateSeries(t *testing.T) {
	RecordEarn("junk-seed", services.Outcome{}, services.ErrUnknownAction)
	RecordWithdrawal("junk-seed", services.ErrUnknownMethod)
	earnSeries := testutil.CollectAndCount(EarnAttemptsTotal)
	withdrawSeries := testutil.CollectAndCount(WithdrawalRequestsTotal)

	for i := 0; i < 50; i++ {
		RecordEarn(fmt.Sprintf("junk-%d", i), services.Outcome{}, fmt.Errorf("%w: junk", services.ErrUnknownAction))
		RecordWithdrawal(fmt.Sprintf("junk-%d", i), services.ErrUnknownMethod)
	}

	assert.Equal(t, earnSeries, testutil.CollectAndCount(EarnAttemptsTotal))
	assert.Equal(t, withdrawSeries, testutil.CollectAndCount(WithdrawalRequestsTotal))
	assert.Equal(t, float64(51), testutil.ToFloat64(EarnAttemptsTotal.WithLabelValues("unknown", "unknown_action")))
}

func TestRecordWithdrawalUsesParsedMethod(t *testing.T) {
	before := testutil.ToFloat64(WithdrawalRequestsTotal.WithLabelValues("bitcoin", "ok"))
	RecordWithdrawal("BTC", nil)
	RecordWithdrawal("bitcoin", nil)
	assert.Equal(t, before+2, testutil.ToFloat64(WithdrawalRequestsTotal.WithLabelValues("bitcoin", "ok")))
}
