package services

import (
	"earnings-bot/models"
)

// FirstContact is the result of a user's first (or repeated first) interaction.
type FirstContact struct {
	Account  models.UserAccount
	Created  bool // account did not exist before this call
	Referred bool // account was created through a referral code
}

type ReferralEngine struct {
	ledger *LedgerStore
	rules  models.ProgramRules
}

func NewReferralEngine(ledger *LedgerStore, rules models.ProgramRules) *ReferralEngine {
	return &ReferralEngine{ledger: ledger, rules: rules}
}

// OnFirstContact makes sure userID has an account. A valid referral code of another existing
// user creates the account with the signup bonus and credits the referrer; anything else
// (no code, malformed, unknown, self) falls back to a plain account. Existing accounts are
// returned unchanged.
func (r *ReferralEngine) OnFirstContact(userID, referralCode string) (FirstContact, error) {
	if acc, err := r.ledger.Get(userID); err == nil {
		return FirstContact{Account: acc}, nil
	}

	referrerID, ok := r.resolve(userID, referralCode)
	if !ok {
		acc, created := r.ledger.GetOrCreate(userID)
		return FirstContact{Account: acc, Created: created}, nil
	}

	acc, created, err := r.ledger.CreateReferred(userID, referrerID,
		func(acc models.UserAccount) models.UserAccount {
			acc.Points = r.rules.SignupBonus
			return acc
		},
		func(ref models.UserAccount) models.UserAccount {
			ref.ReferralCount++
			ref.Points += r.rules.ReferrerBonus
			return ref
		},
	)
	if err != nil {
		return FirstContact{}, err
	}
	return FirstContact{Account: acc, Created: created, Referred: created}, nil
}

func (r *ReferralEngine) resolve(userID, code string) (string, bool) {
	if code == "" {
		return "", false
	}
	if _, ok := models.ParseReferralCode(code); !ok {
		return "", false
	}
	referrerID, ok := r.ledger.ResolveReferralCode(code)
	if !ok || referrerID == userID {
		return "", false
	}
	return referrerID, true
}
