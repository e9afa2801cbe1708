// workers/ledger_snapshot_worker.go
package workers

import (
	"context"
	"fmt"
	"log"
	"sync"

	"earnings-bot/models"
	"earnings-bot/monitoring"
	"earnings-bot/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerSnapshotWorker mirrors the in-memory ledger into the database. It is best effort: the
// in-memory store stays authoritative and a failed flush is retried on the next tick.
type LedgerSnapshotWorker struct {
	db          *gorm.DB
	ledger      *services.LedgerStore
	withdrawals *services.WithdrawalLog

	mu      sync.Mutex // serializes flushes
	lastSeq int64
}

func NewLedgerSnapshotWorker(db *gorm.DB, ledger *services.LedgerStore, withdrawals *services.WithdrawalLog) *LedgerSnapshotWorker {
	return &LedgerSnapshotWorker{db: db, ledger: ledger, withdrawals: withdrawals}
}

// Migrate creates the snapshot and export cursor tables.
func (w *LedgerSnapshotWorker) Migrate() error {
	return w.db.AutoMigrate(&models.UserAccount{}, &models.WithdrawalRequest{}, &models.ExportCursor{})
}

// Restore loads persisted accounts and withdrawal requests into memory. Call it once before
// serving traffic.
func (w *LedgerSnapshotWorker) Restore(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var accounts []models.UserAccount
	if err := w.db.WithContext(ctx).Find(&accounts).Error; err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	w.ledger.Load(accounts...)

	var reqs []models.WithdrawalRequest
	if err := w.db.WithContext(ctx).Order("seq ASC").Find(&reqs).Error; err != nil {
		return fmt.Errorf("failed to load withdrawal requests: %w", err)
	}
	w.withdrawals.Restore(reqs)
	w.lastSeq = int64(len(reqs))

	log.Printf("📦 [SNAPSHOT] restored %d account(s) and %d withdrawal request(s)", len(accounts), len(reqs))
	return nil
}

// Flush upserts every account changed since the last flush and appends new withdrawal requests.
func (w *LedgerSnapshotWorker) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	accounts := w.ledger.DirtyAccounts()
	if len(accounts) > 0 {
		err := w.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"points",
				"last_used",
				"referral_count",
				"updated_at",
			}),
		}).Create(&accounts).Error
		if err != nil {
			ids := make([]string, len(accounts))
			for i, a := range accounts {
				ids[i] = a.UserID
			}
			// keep the changes queued for the next tick
			w.ledger.MarkDirty(ids...)
			monitoring.SnapshotFlushesTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("failed to upsert %d account(s): %w", len(accounts), err)
		}
	}

	reqs := w.withdrawals.Since(w.lastSeq)
	if len(reqs) > 0 {
		if err := w.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&reqs).Error; err != nil {
			monitoring.SnapshotFlushesTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("failed to insert %d withdrawal request(s): %w", len(reqs), err)
		}
		w.lastSeq = reqs[len(reqs)-1].Seq
	}

	monitoring.SnapshotFlushesTotal.WithLabelValues("ok").Inc()
	if len(accounts) > 0 || len(reqs) > 0 {
		log.Printf("✅ [SNAPSHOT] flushed %d account(s), %d withdrawal request(s)", len(accounts), len(reqs))
	}
	return nil
}
