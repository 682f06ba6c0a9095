package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jobradar/internal/extract"
	"jobradar/internal/filter"
	"jobradar/internal/model"
	"jobradar/internal/retry"
)

// Source pairs a configured feed name with its fetcher. Order follows
// the configuration file.
type Source struct {
	Name    string
	Fetcher model.FeedFetcher
}

// processor runs the per-item stage chain.
type processor interface {
	Process(ctx context.Context, item model.FeedItem) extract.ItemResult
}

// reportWriter persists a finished batch and returns the artifact path.
type reportWriter interface {
	Write(batch model.RunBatch) (string, error)
}

// dispatcher decides whether and where to announce the batch.
type dispatcher interface {
	Dispatch(batch model.RunBatch, reportPath string) error
}

// Runner owns one full ingestion cycle: fetch from every source,
// select unseen items, process them through the extraction chain,
// persist the report, notify, and commit the ledger.
type Runner struct {
	sources     []Source
	keywords    []string
	ledger      model.Ledger
	chain       processor
	writer      reportWriter
	gate        dispatcher
	archive     model.Archiver
	retryPolicy retry.Policy
	concurrency int
	runBudget   time.Duration
	logger      *slog.Logger

	now      func() time.Time
	newRunID func() string
}

// Params carries the runner's dependencies.
type Params struct {
	Sources     []Source
	Keywords    []string
	Ledger      model.Ledger
	Chain       processor
	Writer      reportWriter
	Gate        dispatcher
	Archive     model.Archiver
	RetryPolicy retry.Policy
	Concurrency int
	RunBudget   time.Duration
	Logger      *slog.Logger
}

func New(p Params) *Runner {
	if p.Concurrency < 1 {
		p.Concurrency = 1
	}
	return &Runner{
		sources:     p.Sources,
		keywords:    p.Keywords,
		ledger:      p.Ledger,
		chain:       p.Chain,
		writer:      p.Writer,
		gate:        p.Gate,
		archive:     p.Archive,
		retryPolicy: p.RetryPolicy,
		concurrency: p.Concurrency,
		runBudget:   p.RunBudget,
		logger:      p.Logger,
		now:         time.Now,
		newRunID:    uuid.NewString,
	}
}

// Run executes one cycle and returns the batch it produced. Item and
// source failures are recorded in the batch metadata; the returned
// error is reserved for faults that invalidate the run as a whole,
// such as a ledger commit failure.
func (r *Runner) Run(ctx context.Context) (model.RunBatch, error) {
	batch := model.RunBatch{
		RunID:     r.newRunID(),
		StartedAt: r.now(),
	}
	logger := r.logger.With("run_id", batch.RunID)

	seen, err := r.ledger.Load()
	if err != nil {
		if !errors.Is(err, model.ErrLedgerCorrupt) {
			return batch, fmt.Errorf("loading ledger: %w", err)
		}
		// A corrupt ledger degrades to an empty seen set. Duplicates
		// are possible this run; losing the run entirely is worse.
		logger.Warn("ledger corrupt, starting from an empty seen set", "error", err)
		seen = model.SeenSet{}
	}

	fetched := r.fetchAll(ctx, logger, &batch.Meta)
	fresh := filter.NewItems(fetched, seen)
	batch.Meta.ItemsFetched = len(fetched)
	batch.Meta.ItemsNew = len(fresh)

	// Every selected item enters the commit set now. Items that later
	// fail a stage stay committed; reprocessing them would repeat the
	// same failure on immutable content.
	commit := make(model.SeenSet, len(fresh))
	for _, item := range fresh {
		commit[item.Key()] = batch.StartedAt
	}

	selected := fresh[:0:len(fresh)]
	for _, item := range fresh {
		if !filter.JobRelated(item, r.keywords) {
			batch.Meta.ItemsSkipped++
			continue
		}
		selected = append(selected, item)
	}

	r.process(ctx, logger, selected, &batch)

	if err := r.ledger.Commit(commit); err != nil {
		return batch, fmt.Errorf("committing ledger: %w", err)
	}

	if err := r.finish(logger, &batch); err != nil {
		return batch, err
	}

	logger.Info("run complete",
		"fetched", batch.Meta.ItemsFetched,
		"new", batch.Meta.ItemsNew,
		"skipped", batch.Meta.ItemsSkipped,
		"failed", batch.Meta.ItemsFailed,
		"validated", batch.Meta.RecordsValidated,
		"rejected", batch.Meta.RecordsRejected,
	)
	return batch, nil
}

// fetchAll polls every source in configuration order. A failing source
// contributes zero items and a metadata entry, never a run failure.
func (r *Runner) fetchAll(ctx context.Context, logger *slog.Logger, meta *model.RunMeta) []model.FeedItem {
	var all []model.FeedItem
	for _, src := range r.sources {
		meta.SourcesAttempted++
		items, err := retry.Do(ctx, r.retryPolicy, "fetch "+src.Name, func(ctx context.Context) ([]model.FeedItem, error) {
			return src.Fetcher.FetchItems(ctx)
		})
		if err != nil {
			logger.Error("source fetch failed", "source", src.Name, "error", err)
			meta.SourcesFailed = append(meta.SourcesFailed, src.Name)
			continue
		}
		logger.Debug("source fetched", "source", src.Name, "items", len(items))
		all = append(all, items...)
	}
	return all
}

// process runs the stage chain over the selected items with a bounded
// worker pool. Results keep item order regardless of completion order.
func (r *Runner) process(ctx context.Context, logger *slog.Logger, selected []model.FeedItem, batch *model.RunBatch) {
	if len(selected) == 0 {
		return
	}

	runCtx := ctx
	if r.runBudget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.runBudget)
		defer cancel()
	}

	results := make([]extract.ItemResult, len(selected))
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, item := range selected {
		i, item := i, item
		g.Go(func() error {
			// Budget exhaustion stops admitting items. Already-running
			// items finish under their per-call timeouts.
			if runCtx.Err() != nil {
				results[i] = extract.ItemResult{Item: item, Skipped: true}
				return nil
			}
			results[i] = r.chain.Process(runCtx, item)
			return nil
		})
	}
	g.Wait()

	for _, res := range results {
		if res.Skipped {
			batch.Meta.ItemsSkipped++
			logger.Warn("run budget exhausted, item not processed", "item", res.Item.Key())
			continue
		}
		if res.Failed() {
			batch.Meta.ItemsFailed++
			batch.Meta.Failures = append(batch.Meta.Failures, res.Failures...)
		}
		batch.Records = append(batch.Records, res.Records...)
		batch.Meta.Rejections = append(batch.Meta.Rejections, res.Rejections...)
	}
	batch.Meta.RecordsValidated = len(batch.Records)
	batch.Meta.RecordsRejected = len(batch.Meta.Rejections)
}

// finish writes the report, archives the run, and dispatches
// notifications. Runs with zero validated records produce no report.
func (r *Runner) finish(logger *slog.Logger, batch *model.RunBatch) error {
	var reportPath string
	if len(batch.Records) > 0 {
		path, err := r.writer.Write(*batch)
		if err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		reportPath = path
	}

	if r.archive != nil {
		if err := r.archive.SaveRun(*batch, reportPath); err != nil {
			logger.Warn("archiving run failed", "error", err)
		}
	}

	if err := r.gate.Dispatch(*batch, reportPath); err != nil {
		logger.Warn("notification dispatch failed", "error", err)
	}
	return nil
}
