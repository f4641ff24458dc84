package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/retreat-leads/internal/enrich"
	"github.com/sells-group/retreat-leads/internal/ledger"
	"github.com/sells-group/retreat-leads/internal/scrape"
	"github.com/sells-group/retreat-leads/internal/store"
	"github.com/sells-group/retreat-leads/pkg/google"
)

// pipeline holds the collaborators of a scrape-and-append run.
type pipeline struct {
	listings scrape.Fetcher
	sites    scrape.Fetcher
	// places is nil when no Places key is configured.
	places google.Client
}

// runSummary is what a run reports back to the operator.
type runSummary struct {
	Batch    scrape.Batch
	Scrape   scrape.Stats
	Places   enrich.PlacesStats
	Websites enrich.WebsiteStats
	Append   ledger.AppendStats
	Ledger   ledger.Stats
}

// run scrapes searchURL, enriches the new listings and appends them to the
// master ledger. The ledger is only rewritten when there is something to
// append.
func (p *pipeline) run(ctx context.Context, searchURL, label string) (*runSummary, error) {
	l, err := ledger.Load(cfg.Ledger.MasterPath)
	if err != nil {
		return nil, err
	}

	scraper := scrape.New(p.listings, scrape.Options{
		PageDelay:    time.Duration(cfg.Scrape.PageDelayMs) * time.Millisecond,
		MaxListings:  cfg.Scrape.MaxListings,
		FetchCenters: cfg.Scrape.FetchCenters,
		Backoff:      backoff(),
	})
	res, err := scraper.Scrape(ctx, searchURL, label, l.SeenEventURLs())
	if err != nil {
		return nil, err
	}

	sum := &runSummary{Batch: res.Batch, Scrape: res.Stats}
	if len(res.Occurrences) == 0 {
		zap.L().Info("no new listings, ledger unchanged")
		sum.Ledger = l.Stats()
		return sum, nil
	}

	if p.places != nil {
		places := enrich.NewPlaces(p.places, enrich.PlacesOptions{
			LocationBias:   cfg.Google.LocationBias,
			Reference:      referencePoint(),
			RequestsPerSec: cfg.Google.RequestsPerSec,
			Concurrency:    cfg.Google.Concurrency,
			Backoff:        backoff(),
		})
		sum.Places = places.Enrich(ctx, res.Occurrences)
	} else {
		enrich.BlankPlaces(res.Occurrences, referencePoint())
	}

	websites := enrich.NewWebsites(p.sites, enrich.WebsiteOptions{
		ContactPaths:   cfg.Website.ContactPaths,
		MaxEmails:      cfg.Website.MaxEmails,
		Concurrency:    cfg.Website.Concurrency,
		RequestsPerSec: cfg.Website.RequestsPerSec,
	})
	sum.Websites = websites.Enrich(ctx, res.Occurrences)

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "run interrupted before append")
	}

	merged, stats := ledger.AppendBatch(l, res.Occurrences)
	if err := merged.Save(cfg.Ledger.MasterPath); err != nil {
		return nil, err
	}
	sum.Append = stats
	sum.Ledger = merged.Stats()
	return sum, nil
}

// recordRun writes a run row. Failures are logged, never returned: run
// history must not fail the run it describes.
func recordRun(ctx context.Context, st store.Store, r store.Run, runErr error) {
	if st == nil {
		return
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.FinishedAt = time.Now().UTC()
	r.Status = store.RunStatusComplete
	if runErr != nil {
		r.Status = store.RunStatusFailed
		r.Error = runErr.Error()
	}
	if err := st.RecordRun(context.WithoutCancel(ctx), r); err != nil {
		zap.L().Warn("record run failed", zap.String("run_id", r.ID), zap.Error(err))
	}
}
