package services

import (
	"errors"
	"testing"
	"time"

	"earnings-bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, rng RandomSource) (*EarningEngine, *LedgerStore) {
	t.Helper()
	store := NewLedgerStore()
	return NewEarningEngine(store, DefaultCatalog(), models.DefaultProgramRules(), rng), store
}

func TestPerformScenarioCooldown(t *testing.T) {
	// watch_ads is [5,20]; offset 7 forces a draw of 12
	engine, store := newTestEngine(t, &stubRand{offset: 7, trial: 0.99})
	t0 := time.Unix(1_700_000_000, 0)

	out, err := engine.Perform("A", "watch_ads", t0)
	require.NoError(t, err)
	assert.Equal(t, Outcome{ActionID: "watch_ads", BasePoints: 12, Bonus: 0, TotalAwarded: 12, NewBalance: 12}, out)

	_, err = engine.Perform("A", "watch_ads", t0.Add(30*time.Second))
	var cd *CooldownError
	require.True(t, errors.As(err, &cd))
	assert.Equal(t, int64(30), cd.RemainingSeconds())

	acc, err := store.Get("A")
	require.NoError(t, err)
	assert.Equal(t, int64(12), acc.Points)
	assert.True(t, acc.LastUsed["watch_ads"].Equal(t0), "rejected attempt must not touch lastUsed")
}

func TestPerformAfterCooldownSucceeds(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRand{offset: 0, trial: 0.99})
	t0 := time.Unix(1_700_000_000, 0)

	_, err := engine.Perform("A", "watch_ads", t0)
	require.NoError(t, err)
	out, err := engine.Perform("A", "watch_ads", t0.Add(60*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.NewBalance)
}

func TestPerformCooldownIsPerAction(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRand{offset: 0, trial: 0.99})
	t0 := time.Unix(1_700_000_000, 0)

	_, err := engine.Perform("A", "watch_ads", t0)
	require.NoError(t, err)
	_, err = engine.Perform("A", "daily_bonus", t0)
	require.NoError(t, err)
	_, err = engine.Perform("B", "watch_ads", t0)
	require.NoError(t, err)
}

func TestPerformZeroCooldownRepeats(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRand{offset: 0, trial: 0.99})
	t0 := time.Unix(1_700_000_000, 0)
	for i := 0; i < 3; i++ {
		_, err := engine.Perform("A", "refer_friends", t0)
		require.NoError(t, err)
	}
}

func TestPerformClockSkewStaysOnCooldown(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRand{offset: 0, trial: 0.99})
	t0 := time.Unix(1_700_000_000, 0)
	_, err := engine.Perform("A", "watch_ads", t0)
	require.NoError(t, err)

	_, err = engine.Perform("A", "watch_ads", t0.Add(-10*time.Second))
	var cd *CooldownError
	require.ErrorAs(t, err, &cd)
	assert.Equal(t, int64(60), cd.RemainingSeconds())
}

func TestPerformUnknownAction(t *testing.T) {
	engine, store := newTestEngine(t, &stubRand{})
	_, err := engine.Perform("A", "mine_crypto", time.Now())
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, 0, store.Len())

	_, err = engine.PerformAt("A", 42, time.Now())
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestPerformAtUsesSelectionIndex(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRand{offset: 0, trial: 0.99})
	out, err := engine.PerformAt("A", 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "complete_surveys", out.ActionID)
	assert.Equal(t, int64(50), out.BasePoints)
}

func TestReferralBonusAppliedOnTrialSuccess(t *testing.T) {
	engine, store := newTestEngine(t, &stubRand{offset: 150, trial: 0.1})
	referrals := NewReferralEngine(store, models.DefaultProgramRules())
	store.GetOrCreate("R")
	_, err := referrals.OnFirstContact("B", "REFR")
	require.NoError(t, err)

	// complete_surveys [50,200] with offset 150 draws 200
	out, err := engine.Perform("B", "complete_surveys", time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(200), out.BasePoints)
	assert.Equal(t, int64(20), out.Bonus)
	assert.Equal(t, int64(220), out.TotalAwarded)
	assert.Equal(t, int64(270), out.NewBalance)
}

func TestNoBonusWithoutReferrer(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRand{offset: 150, trial: 0})
	out, err := engine.Perform("A", "complete_surveys", time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.Bonus)
}

func TestReferralBonusBound(t *testing.T) {
	store := NewLedgerStore()
	rules := models.DefaultProgramRules()
	engine := NewEarningEngine(store, DefaultCatalog(), rules, NewRandomSource(42))
	referrals := NewReferralEngine(store, rules)
	store.GetOrCreate("R")
	_, err := referrals.OnFirstContact("B", "REFR")
	require.NoError(t, err)

	t0 := time.Unix(1_700_000_000, 0)
	bonuses := 0
	for i := 0; i < 500; i++ {
		out, err := engine.Perform("B", "refer_friends", t0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, out.BasePoints, int64(100))
		assert.LessOrEqual(t, out.BasePoints, int64(500))
		if out.Bonus != 0 {
			bonuses++
			assert.Equal(t, out.BasePoints/10, out.Bonus)
		}
		assert.Equal(t, out.BasePoints+out.Bonus, out.TotalAwarded)
	}
	assert.Greater(t, bonuses, 0)
	assert.Less(t, bonuses, 500)
}

func TestPointsAreDrawnPerAward(t *testing.T) {
	engine, _ := newTestEngine(t, NewRandomSource(7))
	t0 := time.Unix(1_700_000_000, 0)
	seen := map[int64]bool{}
	for i := 0; i < 50; i++ {
		out, err := engine.Perform("A", "refer_friends", t0)
		require.NoError(t, err)
		seen[out.BasePoints] = true
	}
	assert.Greater(t, len(seen), 1, "rewards must not be fixed at catalog load")
}

func TestSeededSourceIsDeterministic(t *testing.T) {
	draw := func() []int64 {
		engine, _ := newTestEngine(t, NewRandomSource(99))
		var pts []int64
		for i := 0; i < 10; i++ {
			out, err := engine.Perform("A", "refer_friends", time.Unix(0, 0))
			require.NoError(t, err)
			pts = append(pts, out.BasePoints)
		}
		return pts
	}
	assert.Equal(t, draw(), draw())
}
