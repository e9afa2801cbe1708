package models

import (
	"strings"
	"time"
)

// WithdrawalMethod is the payout channel a user picks when cashing out.
type WithdrawalMethod string

const (
	WithdrawalMethodPayPal   WithdrawalMethod = "paypal"
	WithdrawalMethodBitcoin  WithdrawalMethod = "bitcoin"
	WithdrawalMethodGiftCard WithdrawalMethod = "giftcard"
)

// WithdrawalMethods lists the supported methods in display order.
var WithdrawalMethods = []WithdrawalMethod{
	WithdrawalMethodPayPal,
	WithdrawalMethodBitcoin,
	WithdrawalMethodGiftCard,
}

var withdrawalMethodAliases = map[string]WithdrawalMethod{
	"paypal":    WithdrawalMethodPayPal,
	"bitcoin":   WithdrawalMethodBitcoin,
	"btc":       WithdrawalMethodBitcoin,
	"giftcard":  WithdrawalMethodGiftCard,
	"gift_card": WithdrawalMethodGiftCard,
}

// ParseWithdrawalMethod maps user input (case-insensitive, with aliases) to a method.
func ParseWithdrawalMethod(s string) (WithdrawalMethod, bool) {
	m, ok := withdrawalMethodAliases[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

// Label is the human readable name of the method.
func (m WithdrawalMethod) Label() string {
	switch m {
	case WithdrawalMethodPayPal:
		return "PayPal"
	case WithdrawalMethodBitcoin:
		return "Bitcoin"
	case WithdrawalMethodGiftCard:
		return "Gift Card"
	}
	return string(m)
}

// WithdrawalRequest records a user's intent to cash out. Settlement happens outside the service,
// so points are not deducted when the request is recorded.
type WithdrawalRequest struct {
	ID              string           `gorm:"primaryKey;type:uuid" json:"id"`
	Seq             int64            `gorm:"uniqueIndex;not null" json:"seq"`
	UserID          string           `gorm:"index;not null" json:"user_id"`
	Method          WithdrawalMethod `gorm:"type:varchar(32);not null" json:"method"`
	PointsAtRequest int64            `gorm:"not null" json:"points_at_request"`
	RequestedAt     time.Time        `gorm:"not null;index" json:"requested_at"`
}
