package services

import (
	"fmt"
	"math"
	"time"

	"earnings-bot/models"
)

// Outcome describes a successful earning action.
type Outcome struct {
	ActionID     string `json:"action_id"`
	BasePoints   int64  `json:"base_points"`
	Bonus        int64  `json:"bonus"`
	TotalAwarded int64  `json:"total_awarded"`
	NewBalance   int64  `json:"new_balance"`
}

type EarningEngine struct {
	ledger  *LedgerStore
	catalog *Catalog
	rules   models.ProgramRules
	rng     RandomSource
}

func NewEarningEngine(ledger *LedgerStore, catalog *Catalog, rules models.ProgramRules, rng RandomSource) *EarningEngine {
	if rng == nil {
		rng = SystemRandom()
	}
	return &EarningEngine{ledger: ledger, catalog: catalog, rules: rules, rng: rng}
}

func (e *EarningEngine) Catalog() *Catalog { return e.catalog }

// PerformAt resolves a selection index from the catalog listing and performs that action.
func (e *EarningEngine) PerformAt(userID string, index int, now time.Time) (Outcome, error) {
	action, ok := e.catalog.ActionAt(index)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: index %d", ErrUnknownAction, index)
	}
	return e.perform(userID, action, now)
}

// Perform applies actionID for userID at now. A *CooldownError leaves the account untouched.
func (e *EarningEngine) Perform(userID, actionID string, now time.Time) (Outcome, error) {
	action, ok := e.catalog.Action(actionID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownAction, actionID)
	}
	return e.perform(userID, action, now)
}

func (e *EarningEngine) perform(userID string, action models.EarningAction, now time.Time) (Outcome, error) {
	e.ledger.GetOrCreate(userID)

	// Draws happen outside the account lock; they are only applied under it.
	base := drawInRange(e.rng, action.Points.Min, action.Points.Max)
	bonusHit := e.rng.Float64() < e.rules.ReferralBonusChance

	var out Outcome
	_, err := e.ledger.WithAccount(userID, func(acc models.UserAccount) (models.UserAccount, error) {
		if last, used := acc.LastUsed[action.ID]; used {
			elapsed := now.Sub(last)
			if elapsed < 0 {
				elapsed = 0
			}
			if elapsed < action.Cooldown() {
				return acc, &CooldownError{ActionID: action.ID, Remaining: action.Cooldown() - elapsed}
			}
		}

		var bonus int64
		if acc.IsReferred() && bonusHit {
			bonus = int64(math.Floor(float64(base) * e.rules.ReferralBonusRate))
		}
		total := base + bonus

		acc.Points += total
		acc.LastUsed[action.ID] = now

		out = Outcome{
			ActionID:     action.ID,
			BasePoints:   base,
			Bonus:        bonus,
			TotalAwarded: total,
			NewBalance:   acc.Points,
		}
		return acc, nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}
