package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"flasharb/internal/domain"
)

// Archiver exports opportunity rows older than the retention window to JSONL
// objects in blob storage, then deletes them from the primary store. The
// delete only runs after the upload succeeded, so a failed run leaves the
// rows in place for the next attempt.
type Archiver struct {
	writer        domain.BlobWriter
	opportunities domain.OpportunityStore
	retentionDays int
	logger        *slog.Logger
}

// NewArchiver creates an Archiver. retentionDays controls the cutoff: rows
// detected more than that many days ago are exported.
func NewArchiver(writer domain.BlobWriter, opportunities domain.OpportunityStore, retentionDays int, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer:        writer,
		opportunities: opportunities,
		retentionDays: retentionDays,
		logger:        logger.With(slog.String("component", "archiver")),
	}
}

// Run executes a single archive pass and returns how many rows were moved.
func (a *Archiver) Run(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -a.retentionDays)

	rows, err := a.opportunities.ListBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("s3blob: listing opportunities before %v: %w", cutoff, err)
	}
	if len(rows) == 0 {
		a.logger.InfoContext(ctx, "nothing to archive", slog.Time("cutoff", cutoff))
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return 0, fmt.Errorf("s3blob: encoding opportunity %s: %w", row.ID, err)
		}
	}

	key := fmt.Sprintf("archive/opportunities/%s/opportunities-%s.jsonl",
		cutoff.Format("2006/01"), cutoff.Format("20060102T150405Z"))
	if err := a.writer.Put(ctx, key, &buf, "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: uploading archive %s: %w", key, err)
	}

	deleted, err := a.opportunities.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("s3blob: pruning archived opportunities: %w", err)
	}

	a.logger.InfoContext(ctx, "archive pass complete",
		slog.Time("cutoff", cutoff),
		slog.String("object", key),
		slog.Int("exported", len(rows)),
		slog.Int64("deleted", deleted),
	)
	return deleted, nil
}

// RunPeriodic runs archive passes on the given interval until the context is
// cancelled. Individual pass failures are logged and retried next tick.
func (a *Archiver) RunPeriodic(ctx context.Context, interval time.Duration) error {
	a.logger.InfoContext(ctx, "archiver started",
		slog.Duration("interval", interval),
		slog.Int("retention_days", a.retentionDays),
	)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("archiver stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := a.Run(ctx); err != nil {
				a.logger.ErrorContext(ctx, "archive pass failed", slog.String("error", err.Error()))
			}
		}
	}
}
