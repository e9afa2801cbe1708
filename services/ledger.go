package services

import (
	"fmt"
	"sync"
	"time"

	"earnings-bot/models"
)

type ledgerEntry struct {
	mu      sync.Mutex
	account models.UserAccount
}

// LedgerStore is the in-memory authority for user accounts.
//
// Locking: mu guards the index maps and is always acquired before any entry lock. An entry lock
// is never held while acquiring mu, and mutators must not call back into the store. dirtyMu is a
// leaf lock.
type LedgerStore struct {
	mu      sync.Mutex
	entries map[string]*ledgerEntry
	codes   map[string]string // referral code -> user ID

	dirtyMu sync.Mutex
	dirty   map[string]struct{}

	now func() time.Time
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		entries: make(map[string]*ledgerEntry),
		codes:   make(map[string]string),
		dirty:   make(map[string]struct{}),
		now:     time.Now,
	}
}

// WithClock overrides the clock used for CreatedAt/UpdatedAt bookkeeping.
func (s *LedgerStore) WithClock(now func() time.Time) *LedgerStore {
	s.now = now
	return s
}

func (s *LedgerStore) lookup(userID string) (*ledgerEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	return e, ok
}

// insertLocked publishes a new entry. Caller holds s.mu.
func (s *LedgerStore) insertLocked(acc models.UserAccount) *ledgerEntry {
	e := &ledgerEntry{account: acc}
	s.entries[acc.UserID] = e
	s.codes[acc.ReferralCode] = acc.UserID
	s.markDirty(acc.UserID)
	return e
}

func (s *LedgerStore) markDirty(userID string) {
	s.dirtyMu.Lock()
	s.dirty[userID] = struct{}{}
	s.dirtyMu.Unlock()
}

// GetOrCreate returns the account for userID, creating an empty one if needed.
func (s *LedgerStore) GetOrCreate(userID string) (models.UserAccount, bool) {
	s.mu.Lock()
	e, ok := s.entries[userID]
	created := false
	if !ok {
		e = s.insertLocked(models.NewUserAccount(userID, s.now()))
		created = true
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.account.Clone(), created
}

// Get returns a copy of the account or ErrNotFound.
func (s *LedgerStore) Get(userID string) (models.UserAccount, error) {
	e, ok := s.lookup(userID)
	if !ok {
		return models.UserAccount{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.account.Clone(), nil
}

// WithAccount applies mutate to a copy of the account under the account's lock and stores the
// result only when mutate returns nil. The stored account is returned.
func (s *LedgerStore) WithAccount(userID string, mutate func(models.UserAccount) (models.UserAccount, error)) (models.UserAccount, error) {
	e, ok := s.lookup(userID)
	if !ok {
		return models.UserAccount{}, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	updated, err := mutate(e.account.Clone())
	if err != nil {
		return e.account.Clone(), err
	}
	// identity fields are owned by the store
	updated.UserID = e.account.UserID
	updated.ReferralCode = e.account.ReferralCode
	updated.ReferredBy = e.account.ReferredBy
	updated.CreatedAt = e.account.CreatedAt
	if updated.LastUsed == nil {
		updated.LastUsed = make(map[string]time.Time)
	}
	updated.UpdatedAt = s.now()

	e.account = updated.Clone()
	s.markDirty(userID)
	return updated, nil
}

// ResolveReferralCode returns the user ID owning code, if that user has an account.
func (s *LedgerStore) ResolveReferralCode(code string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.codes[code]
	return userID, ok
}

// CreateReferred creates userID's account as referred by referrerID and applies credit to the
// referrer in the same critical section. If userID already exists nothing changes and the
// existing account is returned with created=false.
//
// The index lock is held for the whole operation, so no reader can observe the new account
// before the referrer has been credited, and no concurrent call can create userID twice. Only
// one account lock (the referrer's) is taken.
func (s *LedgerStore) CreateReferred(
	userID, referrerID string,
	init func(models.UserAccount) models.UserAccount,
	credit func(models.UserAccount) models.UserAccount,
) (account models.UserAccount, created bool, err error) {
	if userID == referrerID {
		return models.UserAccount{}, false, fmt.Errorf("%w: %s", ErrSelfReferral, userID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[userID]; ok {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.account.Clone(), false, nil
	}

	ref, ok := s.entries[referrerID]
	if !ok {
		return models.UserAccount{}, false, fmt.Errorf("%w: referrer %s", ErrNotFound, referrerID)
	}

	now := s.now()
	ref.mu.Lock()
	defer ref.mu.Unlock()

	updatedRef := credit(ref.account.Clone())
	updatedRef.UserID = ref.account.UserID
	updatedRef.ReferralCode = ref.account.ReferralCode
	updatedRef.ReferredBy = ref.account.ReferredBy
	updatedRef.CreatedAt = ref.account.CreatedAt
	updatedRef.UpdatedAt = now
	ref.account = updatedRef
	s.markDirty(referrerID)

	acc := init(models.NewUserAccount(userID, now))
	acc.UserID = userID
	acc.ReferralCode = models.ReferralCodeFor(userID)
	acc.ReferredBy = &referrerID
	if acc.LastUsed == nil {
		acc.LastUsed = make(map[string]time.Time)
	}
	s.insertLocked(acc.Clone())

	return acc, true, nil
}

// Load restores accounts from a snapshot, replacing any in-memory state for the same users.
// Restored accounts are not marked dirty.
func (s *LedgerStore) Load(accounts ...models.UserAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range accounts {
		acc = acc.Clone()
		if acc.ReferralCode == "" {
			acc.ReferralCode = models.ReferralCodeFor(acc.UserID)
		}
		if old, ok := s.entries[acc.UserID]; ok {
			delete(s.codes, old.account.ReferralCode)
		}
		s.entries[acc.UserID] = &ledgerEntry{account: acc}
		s.codes[acc.ReferralCode] = acc.UserID
	}
}

// DirtyAccounts drains the set of accounts changed since the previous call and returns copies.
func (s *LedgerStore) DirtyAccounts() []models.UserAccount {
	s.dirtyMu.Lock()
	ids := make([]string, 0, len(s.dirty))
	for id := range s.dirty {
		ids = append(ids, id)
	}
	s.dirty = make(map[string]struct{})
	s.dirtyMu.Unlock()

	out := make([]models.UserAccount, 0, len(ids))
	for _, id := range ids {
		if acc, err := s.Get(id); err == nil {
			out = append(out, acc)
		}
	}
	return out
}

// MarkDirty re-queues accounts, e.g. after a failed flush.
func (s *LedgerStore) MarkDirty(userIDs ...string) {
	for _, id := range userIDs {
		s.markDirty(id)
	}
}

func (s *LedgerStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
