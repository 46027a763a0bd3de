package organizer

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"taxfiler/internal/filer"
	"taxfiler/internal/logging"
	"taxfiler/internal/services"
	"taxfiler/internal/tracking"
)

const stageOrganizing = "organizing"

// CanceledMessage is the error text given to files a canceled batch never
// reached.
const CanceledMessage = "Batch canceled"

// BatchResult summarizes one batch. Results follow input order and always
// has one entry per operation; Success+Failure == Total.
type BatchResult struct {
	BatchID    string         `json:"batch_id"`
	Results    []filer.Result `json:"results"`
	Total      int            `json:"total"`
	Success    int            `json:"success"`
	Failure    int            `json:"failure"`
	Skipped    []string       `json:"skipped,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	HistoryID  int64          `json:"history_id,omitempty"`
}

// batchItem is either an executable operation or a failure decided during
// planning.
type batchItem struct {
	op      *filer.Operation
	failure *filer.Result
	record  tracking.Record
}

// ProcessBatch executes ops sequentially. One failure never prevents later
// operations from running. When ctx is canceled, operations that have not
// started receive a canceled result and the filesystem is left alone.
func (o *Organizer) ProcessBatch(ctx context.Context, ops []filer.Operation) BatchResult {
	items := make([]batchItem, len(ops))
	for i := range ops {
		op := ops[i]
		items[i] = batchItem{op: &op, record: tracking.Record{
			Path:         op.SourcePath,
			OriginalName: filepath.Base(op.SourcePath),
			NewName:      op.CanonicalName,
		}}
	}
	ctx, id := o.batchContext(ctx)
	return o.run(ctx, id, items, nil)
}

// ProcessFiles plans paths, files everything that could be named, and
// records unclassified inputs as failures. Files the tracker already knows
// are listed in Skipped and excluded from the totals. The only error returned
// is for failing to take the batch lock.
func (o *Organizer) ProcessFiles(ctx context.Context, paths []string) (BatchResult, error) {
	release, err := acquireLock(o.lockPath)
	if err != nil {
		return BatchResult{}, err
	}
	defer release()

	ctx, id := o.batchContext(ctx)
	plans := o.Plan(ctx, paths)

	items := make([]batchItem, 0, len(plans))
	var skipped []string
	for _, p := range plans {
		if p.Skipped {
			skipped = append(skipped, p.SourcePath)
			continue
		}
		item := batchItem{record: tracking.Record{
			Path:         p.SourcePath,
			OriginalName: p.OriginalName,
			NewName:      p.SuggestedName,
			DocumentType: string(p.Classification.Category),
		}}
		if p.Ready() {
			op := p.Operation(o.settings)
			item.op = &op
		} else {
			res := filer.Failed(p.SourcePath, p.Reason, p.Err)
			item.failure = &res
		}
		items = append(items, item)
	}
	return o.run(ctx, id, items, skipped), nil
}

func (o *Organizer) batchContext(ctx context.Context) (context.Context, string) {
	if id, ok := services.BatchIDFromContext(ctx); ok {
		return services.WithStage(ctx, stageOrganizing), id
	}
	id := uuid.NewString()
	return services.WithStage(services.WithBatchID(ctx, id), stageOrganizing), id
}

func (o *Organizer) run(ctx context.Context, batchID string, items []batchItem, skipped []string) BatchResult {
	logger := logging.WithContext(ctx, o.logger)
	batch := BatchResult{
		BatchID:   batchID,
		Results:   make([]filer.Result, 0, len(items)),
		Total:     len(items),
		Skipped:   skipped,
		StartedAt: o.now().UTC(),
	}
	logger.Info("batch started",
		logging.Int("total", batch.Total),
		logging.Int("skipped", len(skipped)),
		logging.String(logging.FieldEventType, "batch_started"),
	)

	for i, item := range items {
		var res filer.Result
		switch {
		case ctx.Err() != nil:
			res = filer.Failed(item.record.Path, CanceledMessage,
				services.Wrap(services.ErrCanceled, stageOrganizing, "process batch", CanceledMessage, ctx.Err()))
		case item.failure != nil:
			res = *item.failure
		default:
			res = o.engine.Rename(ctx, *item.op)
		}

		if res.Succeeded {
			batch.Success++
			o.markProcessed(ctx, item.record, res)
		} else {
			batch.Failure++
		}
		batch.Results = append(batch.Results, res)
		if o.progress != nil {
			o.progress(i+1, batch.Total, res)
		}
	}

	batch.FinishedAt = o.now().UTC()
	batch.HistoryID = o.recordHistory(ctx, batch)
	o.notify(ctx, batch)

	logger.Info("batch finished",
		logging.Int("total", batch.Total),
		logging.Int("success", batch.Success),
		logging.Int("failure", batch.Failure),
		logging.Duration("elapsed", batch.FinishedAt.Sub(batch.StartedAt)),
		logging.String(logging.FieldEventType, "batch_finished"),
	)
	return batch
}

// markProcessed stores the tracker row with a detached context so a batch
// canceled right after a move still remembers the file.
func (o *Organizer) markProcessed(ctx context.Context, rec tracking.Record, res filer.Result) {
	if o.tracker == nil {
		return
	}
	rec.NewName = filepath.Base(res.DestinationPath)
	rec.DestinationPath = res.DestinationPath
	rec.ProcessedAt = o.now().UTC()
	if err := o.tracker.MarkProcessed(context.WithoutCancel(ctx), rec); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "tracker update failed", "tracker_update_failed",
			logging.String(logging.FieldSourcePath, rec.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the state database"),
			logging.String(logging.FieldImpact, "file may be processed again if it reappears"),
		)
	}
}

type historyDetail struct {
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Backup      string `json:"backup,omitempty"`
	Succeeded   bool   `json:"succeeded"`
	Error       string `json:"error,omitempty"`
	FailureKind string `json:"failure_kind,omitempty"`
}

func (o *Organizer) recordHistory(ctx context.Context, batch BatchResult) int64 {
	if o.history == nil || batch.Total == 0 {
		return 0
	}
	details := make([]historyDetail, 0, len(batch.Results))
	for _, res := range batch.Results {
		details = append(details, historyDetail{
			Source:      res.SourcePath,
			Destination: res.DestinationPath,
			Backup:      res.BackupPath,
			Succeeded:   res.Succeeded,
			Error:       res.ErrorMessage,
			FailureKind: services.FailureKind(res.Err),
		})
	}
	raw, err := json.Marshal(details)
	if err != nil {
		raw = nil
	}
	id, err := o.history.RecordHistory(context.WithoutCancel(ctx), tracking.HistoryEntry{
		BatchID:    batch.BatchID,
		StartedAt:  batch.StartedAt,
		FinishedAt: batch.FinishedAt,
		Total:      batch.Total,
		Success:    batch.Success,
		Failure:    batch.Failure,
		Details:    raw,
	})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "history write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the state database"),
			logging.String(logging.FieldImpact, "batch missing from history"),
		)
		return 0
	}
	o.logger.Debug("batch history recorded",
		logging.String(logging.FieldBatchID, batch.BatchID),
		logging.Int64("history_id", id),
	)
	return id
}

func (o *Organizer) notify(ctx context.Context, batch BatchResult) {
	if o.notifier == nil || batch.Total == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, res := range batch.Results {
		if errors.Is(res.Err, services.ErrUnclassified) {
			errs = append(errs, o.notifier.NotifyUnclassified(ctx, filepath.Base(res.SourcePath)))
		}
	}
	errs = append(errs, o.notifier.NotifyBatchCompleted(ctx, batch.Success, batch.Failure, batch.FinishedAt.Sub(batch.StartedAt)))
	if err := errors.Join(errs...); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "batch result not pushed"),
		)
	}
}
