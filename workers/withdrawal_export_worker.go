// workers/withdrawal_export_worker.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"sync"
	"time"

	"earnings-bot/models"
	"earnings-bot/services"
)

// ObjectUploader stores an export object. utils.R2Client satisfies it.
type ObjectUploader interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// WithdrawalExportWorker uploads new withdrawal requests as JSON lines so the admin settling
// payouts has a durable copy.
type WithdrawalExportWorker struct {
	log      *services.WithdrawalLog
	uploader ObjectUploader
	cursors  CursorStore // nil: progress is kept in memory only
	prefix   string
	now      func() time.Time

	mu      sync.Mutex
	loaded  bool
	lastSeq int64
}

// withdrawalExportCursor names the export's row in the cursor store.
const withdrawalExportCursor = "withdrawal_export"

func NewWithdrawalExportWorker(log *services.WithdrawalLog, uploader ObjectUploader, cursors CursorStore, prefix string) *WithdrawalExportWorker {
	return &WithdrawalExportWorker{log: log, uploader: uploader, cursors: cursors, prefix: prefix, now: time.Now}
}

// EncodeJSONLines renders requests one JSON object per line.
func EncodeJSONLines(reqs []models.WithdrawalRequest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range reqs {
		if err := enc.Encode(r); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Export uploads requests recorded since the previous successful export.
func (w *WithdrawalExportWorker) Export(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.loaded && w.cursors != nil {
		seq, err := w.cursors.LoadCursor(ctx, withdrawalExportCursor)
		if err != nil {
			return err
		}
		w.lastSeq = seq
	}
	w.loaded = true

	reqs := w.log.Since(w.lastSeq)
	if len(reqs) == 0 {
		return nil
	}
	body, err := EncodeJSONLines(reqs)
	if err != nil {
		return fmt.Errorf("failed to encode withdrawal export: %w", err)
	}

	first, last := reqs[0].Seq, reqs[len(reqs)-1].Seq
	key := path.Join(w.prefix, w.now().UTC().Format("2006-01-02"), fmt.Sprintf("%08d-%08d.jsonl", first, last))
	url, err := w.uploader.PutObject(ctx, key, "application/x-ndjson", body)
	if err != nil {
		return fmt.Errorf("failed to upload withdrawal export: %w", err)
	}
	w.lastSeq = last
	log.Printf("📤 [EXPORT] %d withdrawal request(s) → %s", len(reqs), url)

	if w.cursors != nil {
		if err := w.cursors.SaveCursor(ctx, withdrawalExportCursor, last); err != nil {
			return err
		}
	}
	return nil
}
