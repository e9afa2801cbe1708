package models

import "errors"

// ProgramRules holds the thresholds and bonus parameters of the rewards program.
type ProgramRules struct {
	MinWithdrawalPoints int64   `json:"min_withdrawal_points"`
	ReferralBonusChance float64 `json:"referral_bonus_chance"` // probability per earn for referred users
	ReferralBonusRate   float64 `json:"referral_bonus_rate"`   // fraction of base points
	SignupBonus         int64   `json:"signup_bonus"`          // granted to a referred newcomer
	ReferrerBonus       int64   `json:"referrer_bonus"`        // granted to the referrer per signup
}

// DefaultProgramRules returns the stock program parameters.
func DefaultProgramRules() ProgramRules {
	return ProgramRules{
		MinWithdrawalPoints: 1000,
		ReferralBonusChance: 0.3,
		ReferralBonusRate:   0.1,
		SignupBonus:         50,
		ReferrerBonus:       100,
	}
}

// Validate rejects rules that would break ledger invariants.
func (r ProgramRules) Validate() error {
	if r.ReferralBonusChance < 0 || r.ReferralBonusChance > 1 {
		return errors.New("rules: referral bonus chance must be within [0,1]")
	}
	if r.ReferralBonusRate < 0 {
		return errors.New("rules: referral bonus rate must not be negative")
	}
	if r.SignupBonus < 0 || r.ReferrerBonus < 0 || r.MinWithdrawalPoints < 0 {
		return errors.New("rules: bonuses and thresholds must not be negative")
	}
	return nil
}
