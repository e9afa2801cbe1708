package services

import (
	"fmt"
	"sync"
	"time"

	"earnings-bot/models"

	"github.com/google/uuid"
)

// WithdrawalReceipt confirms a recorded withdrawal request.
type WithdrawalReceipt struct {
	Request   models.WithdrawalRequest `json:"request"`
	Available int64                    `json:"available"`
}

// Eligibility reports whether a balance clears the withdrawal threshold.
type Eligibility struct {
	Eligible bool  `json:"eligible"`
	Required int64 `json:"required"`
	Have     int64 `json:"have"`
}

// WithdrawalLog is an append-only, in-memory request log.
type WithdrawalLog struct {
	mu       sync.RWMutex
	requests []models.WithdrawalRequest
}

func NewWithdrawalLog() *WithdrawalLog {
	return &WithdrawalLog{}
}

// Append assigns the next sequence number (starting at 1) and stores req.
func (l *WithdrawalLog) Append(req models.WithdrawalRequest) models.WithdrawalRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	req.Seq = int64(len(l.requests)) + 1
	l.requests = append(l.requests, req)
	return req
}

// Since returns requests with Seq > seq in order.
func (l *WithdrawalLog) Since(seq int64) []models.WithdrawalRequest {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if seq < 0 {
		seq = 0
	}
	if seq >= int64(len(l.requests)) {
		return nil
	}
	out := make([]models.WithdrawalRequest, int64(len(l.requests))-seq)
	copy(out, l.requests[seq:])
	return out
}

func (l *WithdrawalLog) All() []models.WithdrawalRequest { return l.Since(0) }

// Restore seeds the log from persisted requests ordered by Seq. It must be called before the
// first Append.
func (l *WithdrawalLog) Restore(reqs []models.WithdrawalRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests[:0], reqs...)
	for i := range l.requests {
		l.requests[i].Seq = int64(i) + 1
	}
}

type WithdrawalGate struct {
	ledger *LedgerStore
	rules  models.ProgramRules
	log    *WithdrawalLog
}

func NewWithdrawalGate(ledger *LedgerStore, rules models.ProgramRules, log *WithdrawalLog) *WithdrawalGate {
	if log == nil {
		log = NewWithdrawalLog()
	}
	return &WithdrawalGate{ledger: ledger, rules: rules, log: log}
}

func (g *WithdrawalGate) Log() *WithdrawalLog { return g.log }

func (g *WithdrawalGate) balance(userID string) int64 {
	acc, err := g.ledger.Get(userID)
	if err != nil {
		return 0
	}
	return acc.Points
}

// CheckEligibility reads the balance; unknown users have zero points.
func (g *WithdrawalGate) CheckEligibility(userID string) Eligibility {
	have := g.balance(userID)
	return Eligibility{
		Eligible: have >= g.rules.MinWithdrawalPoints,
		Required: g.rules.MinWithdrawalPoints,
		Have:     have,
	}
}

// RequestWithdrawal records a withdrawal intent. The balance is not deducted.
func (g *WithdrawalGate) RequestWithdrawal(userID, method string, now time.Time) (WithdrawalReceipt, error) {
	m, ok := models.ParseWithdrawalMethod(method)
	if !ok {
		return WithdrawalReceipt{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	el := g.CheckEligibility(userID)
	if !el.Eligible {
		return WithdrawalReceipt{}, &InsufficientError{Required: el.Required, Have: el.Have}
	}

	req := g.log.Append(models.WithdrawalRequest{
		ID:              uuid.NewString(),
		UserID:          userID,
		Method:          m,
		PointsAtRequest: el.Have,
		RequestedAt:     now,
	})
	return WithdrawalReceipt{Request: req, Available: el.Have}, nil
}
