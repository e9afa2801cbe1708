package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownAction = errors.New("ledger: unknown action")
	ErrUnknownMethod = errors.New("ledger: unknown withdrawal method")
	ErrNotFound      = errors.New("ledger: account not found")
	ErrInvalidAction = errors.New("ledger: invalid action")
	ErrSelfReferral  = errors.New("ledger: self referral")
)

// CooldownError is returned when an action is retried before its cooldown has elapsed.
type CooldownError struct {
	ActionID  string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("ledger: action %q on cooldown for %ds", e.ActionID, e.RemainingSeconds())
}

// RemainingSeconds rounds the remaining wait up to a whole second.
func (e *CooldownError) RemainingSeconds() int64 {
	secs := int64(e.Remaining / time.Second)
	if e.Remaining%time.Second != 0 {
		secs++
	}
	return secs
}

// InsufficientError is returned when a balance is below the withdrawal threshold.
type InsufficientError struct {
	Required int64
	Have     int64
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("ledger: insufficient points: need %d, have %d", e.Required, e.Have)
}
