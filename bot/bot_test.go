package bot

import (
	"fmt"
	"testing"
	"time"

	"earnings-bot/models"
	"earnings-bot/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand struct{ offset int64 }

func (f fixedRand) IntN(n int64) int64 {
	if f.offset >= n {
		return n - 1
	}
	return f.offset
}
func (fixedRand) Float64() float64 { return 0.99 }

func newTestCore(now time.Time) Core {
	rules := models.DefaultProgramRules()
	store := services.NewLedgerStore()
	return Core{
		Rules:      rules,
		Ledger:     store,
		Earning:    services.NewEarningEngine(store, services.DefaultCatalog(), rules, fixedRand{offset: 7}),
		Referrals:  services.NewReferralEngine(store, rules),
		Withdrawal: services.NewWithdrawalGate(store, rules, nil),
		Now:        func() time.Time { return now },
	}
}

func TestStartReplyWithReferral(t *testing.T) {
	core := newTestCore(time.Unix(0, 0))
	_, err := core.startReply("1", "Rita", "")
	require.NoError(t, err)

	text, err := core.startReply("2", "Bob", "REF1")
	require.NoError(t, err)
	assert.Contains(t, text, "Welcome Bob")
	assert.Contains(t, text, "50 bonus points")

	again, err := core.startReply("2", "Bob", "REF1")
	require.NoError(t, err)
	assert.Contains(t, again, "Hi Bob", "repeat /start is a plain greeting")

	ref, _ := core.Ledger.Get("1")
	assert.Equal(t, int64(100), ref.Points)
}

func TestEarnCallbackCooldown(t *testing.T) {
	core := newTestCore(time.Unix(1_700_000_000, 0))

	text, ok := core.callbackReply("1", "earn_0")
	require.True(t, ok)
	assert.Equal(t, "🎉 You earned 12 points from Watch Ads!\n\n💰 Total points: 12", text)

	text, ok = core.callbackReply("1", "earn_0")
	require.True(t, ok)
	assert.Equal(t, "⏳ Please wait 60 seconds before using 'Watch Ads' again.", text)
}

func TestEarnCallbackInvalid(t *testing.T) {
	core := newTestCore(time.Now())
	_, ok := core.callbackReply("1", "earn_x")
	assert.False(t, ok)

	text, ok := core.callbackReply("1", "earn_99")
	require.True(t, ok)
	assert.Contains(t, text, "no longer available")

	_, ok = core.callbackReply("1", "dance")
	assert.False(t, ok)
}

func TestWithdrawCallback(t *testing.T) {
	core := newTestCore(time.Now())
	text, ok := core.callbackReply("1", "withdraw_paypal")
	require.True(t, ok)
	assert.Contains(t, text, "at least 1,000 points")

	core.Ledger.GetOrCreate("1")
	_, err := core.Ledger.WithAccount("1", func(a models.UserAccount) (models.UserAccount, error) {
		a.Points = 1500
		return a, nil
	})
	require.NoError(t, err)

	text, ok = core.callbackReply("1", "withdraw_btc")
	require.True(t, ok)
	assert.Contains(t, text, "BITCOIN details")
	assert.Contains(t, text, "1,500 points available")
	assert.Len(t, core.Withdrawal.Log().All(), 1)

	text, _ = core.callbackReply("1", "withdraw_iou")
	assert.Contains(t, text, "Unknown withdrawal method")
}

func TestMessageFormatting(t *testing.T) {
	rules := models.DefaultProgramRules()
	acc := models.NewUserAccount("42", time.Now())
	acc.Points = 12345
	acc.ReferralCount = 3

	assert.Contains(t, balanceText(acc), "12,345 points")
	assert.Contains(t, referralText("EarnBot", acc, rules), "https://t.me/EarnBot?start=REF42")

	text := earnResultText(models.EarningAction{Name: "Complete Surveys"},
		services.Outcome{BasePoints: 200, Bonus: 20, TotalAwarded: 220, NewBalance: 270}, nil)
	assert.Equal(t, "🎉 You earned 220 points (200 + 20 referral bonus) from Complete Surveys!\n\n💰 Total points: 270", text)

	assert.Equal(t, "Watch Ads (+5–20 pts)", actionButtonLabel(models.EarningAction{Name: "Watch Ads", Points: models.PointRange{Min: 5, Max: 20}}))
	assert.Contains(t, earnResultText(models.EarningAction{}, services.Outcome{}, fmt.Errorf("boom")), "Something went wrong")
}
