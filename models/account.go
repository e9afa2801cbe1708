package models

import (
	"strings"
	"time"
)

// ReferralCodePrefix prefixes every referral code; the rest of the code is the owner's user ID.
const ReferralCodePrefix = "REF"

// UserAccount is the ledger record for one user. It is also the persisted snapshot shape.
type UserAccount struct {
	UserID        string               `gorm:"primaryKey" json:"user_id"`
	Points        int64                `gorm:"not null;default:0" json:"points"`
	LastUsed      map[string]time.Time `gorm:"serializer:json" json:"last_used"`
	ReferralCode  string               `gorm:"uniqueIndex;not null" json:"referral_code"`
	ReferredBy    *string              `gorm:"index" json:"referred_by,omitempty"`
	ReferralCount int64                `gorm:"not null;default:0" json:"referral_count"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// NewUserAccount returns a zero-balance account with no referrer.
func NewUserAccount(userID string, now time.Time) UserAccount {
	return UserAccount{
		UserID:       userID,
		LastUsed:     make(map[string]time.Time),
		ReferralCode: ReferralCodeFor(userID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy so callers never share the LastUsed map or ReferredBy pointer.
func (a UserAccount) Clone() UserAccount {
	out := a
	out.LastUsed = make(map[string]time.Time, len(a.LastUsed))
	for k, v := range a.LastUsed {
		out.LastUsed[k] = v
	}
	if a.ReferredBy != nil {
		ref := *a.ReferredBy
		out.ReferredBy = &ref
	}
	return out
}

// IsReferred reports whether the account was created through a referral.
func (a UserAccount) IsReferred() bool {
	return a.ReferredBy != nil && *a.ReferredBy != ""
}

// ReferralCodeFor derives the referral code owned by userID.
func ReferralCodeFor(userID string) string {
	return ReferralCodePrefix + userID
}

// ParseReferralCode extracts the owner's user ID from a referral code.
func ParseReferralCode(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, ReferralCodePrefix) {
		return "", false
	}
	userID := strings.TrimPrefix(code, ReferralCodePrefix)
	if userID == "" || strings.ContainsAny(userID, " \t\r\n") {
		return "", false
	}
	return userID, true
}
