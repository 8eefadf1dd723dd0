// workers/auth_log_archiver.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"token-claim-service/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// ObjectUploader stores one object. utils.R2Client satisfies it.
type ObjectUploader interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
}

// AuthLogArchiver moves old auth log rows to object storage as JSON lines.
type AuthLogArchiver struct {
	DB        *gorm.DB
	Uploader  ObjectUploader
	Clock     clockwork.Clock
	OlderThan time.Duration
	BatchSize int
}

func NewAuthLogArchiver(db *gorm.DB, uploader ObjectUploader, clock clockwork.Clock, olderThan time.Duration, batchSize int) *AuthLogArchiver {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &AuthLogArchiver{
		DB:        db,
		Uploader:  uploader,
		Clock:     clock,
		OlderThan: olderThan,
		BatchSize: batchSize,
	}
}

// RunOnce archives batches until no eligible rows remain. Rows are stamped
// archived_at only after their batch was uploaded, so a failed upload is
// retried on the next run.
func (a *AuthLogArchiver) RunOnce(ctx context.Context) (int, error) {
	now := a.Clock.Now().UTC()
	cutoff := now.Add(-a.OlderThan)
	total := 0

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		var batch []models.AuthLog
		if err := a.DB.WithContext(ctx).
			Where("archived_at IS NULL AND login_time < ?", cutoff).
			Order("login_time ASC").
			Limit(a.BatchSize).
			Find(&batch).Error; err != nil {
			return total, fmt.Errorf("select auth logs: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		ids := make([]string, len(batch))
		for i := range batch {
			if err := enc.Encode(&batch[i]); err != nil {
				return total, fmt.Errorf("encode auth log %s: %w", batch[i].ID, err)
			}
			ids[i] = batch[i].ID
		}

		key := fmt.Sprintf("auth-logs/%s/%s.jsonl", now.Format("2006/01/02"), uuid.NewString())
		if err := a.Uploader.PutObject(ctx, key, buf.Bytes(), "application/x-ndjson"); err != nil {
			log.Printf("❌ [ARCHIVE] upload of %d auth log(s) failed: %v", len(batch), err)
			return total, err
		}

		if err := a.DB.WithContext(ctx).Model(&models.AuthLog{}).
			Where("id IN ?", ids).
			Update("archived_at", now).Error; err != nil {
			return total, fmt.Errorf("mark auth logs archived: %w", err)
		}

		total += len(batch)
		log.Printf("📦 [ARCHIVE] uploaded %d auth log(s) to %s", len(batch), key)

		if len(batch) < a.BatchSize {
			break
		}
	}
	return total, nil
}
