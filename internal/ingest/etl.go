package ingest

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/brandpulse/internal/config"
	"github.com/AngelCh415/brandpulse/internal/harmonize"
	"github.com/AngelCh415/brandpulse/internal/models"
	"github.com/AngelCh415/brandpulse/internal/sheet"
	"github.com/AngelCh415/brandpulse/internal/store"
	"github.com/AngelCh415/brandpulse/internal/telemetry"
)

// maxParallelFetches bounds concurrent tab downloads.
const maxParallelFetches = 4

type ETL struct {
	c   HTTPClient
	st  *store.DatasetStore
	log *slog.Logger
	cfg config.Config

	mu  sync.Mutex // one refresh at a time
	now func() time.Time
}

func NewETL(c HTTPClient, st *store.DatasetStore, log *slog.Logger, cfg config.Config) *ETL {
	return &ETL{c: c, st: st, log: log, cfg: cfg, now: time.Now}
}

// RunSummary describes one completed refresh.
type RunSummary struct {
	RefreshID string                   `json:"refresh_id"`
	Records   int                      `json:"records"`
	Labels    int                      `json:"labels"`
	Warnings  int                      `json:"warnings"`
	Batches   []harmonize.BatchSummary `json:"batches"`
	Duration  time.Duration            `json:"duration_ns"`
}

type tab struct {
	name    string
	url     string
	kind    models.Source
	year    int
	primary bool

	table sheet.Table
	err   error
}

func (e *ETL) tabs() []*tab {
	var out []*tab
	for _, y := range e.cfg.Years() {
		out = append(out, &tab{name: fmt.Sprintf("historical %d", y), url: e.cfg.HistoricalSheets[y], kind: models.SourceHistorical, year: y, primary: true})
	}
	if e.cfg.LiveSheetURL != "" {
		out = append(out, &tab{name: "live", url: e.cfg.LiveSheetURL, kind: models.SourceLive, primary: true})
	}
	if e.cfg.TargetsSheetURL != "" {
		out = append(out, &tab{name: "targets", url: e.cfg.TargetsSheetURL, kind: models.SourceTargets})
	}
	if e.cfg.EventsSheetURL != "" {
		out = append(out, &tab{name: "events", url: e.cfg.EventsSheetURL, kind: models.SourceEvents})
	}
	return out
}

// Run fetches every configured tab concurrently, harmonizes them and swaps the
// result into the store. A tab that fails becomes a dataset warning; the run only
// fails with ErrNoData when no metric records remain, and the previous dataset is
// then kept.
func (e *ETL) Run(ctx context.Context) (RunSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	sum, err := e.run(ctx)
	telemetry.RefreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.RefreshTotal.WithLabelValues("failed").Inc()
		e.log.Error("refresh failed", slog.String("err", err.Error()))
		return RunSummary{}, err
	}
	sum.Duration = time.Since(start)
	telemetry.RefreshTotal.WithLabelValues("ok").Inc()
	e.log.Info("refresh complete",
		slog.String("refresh_id", sum.RefreshID),
		slog.Int("records", sum.Records),
		slog.Int("labels", sum.Labels),
		slog.Int("warnings", sum.Warnings),
		slog.Duration("took", sum.Duration))
	return sum, nil
}

func (e *ETL) run(ctx context.Context) (RunSummary, error) {
	tabs := e.tabs()
	if len(tabs) == 0 || !e.cfg.HasSources() {
		return RunSummary{}, fmt.Errorf("%w: no metric tabs configured", ErrNoData)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for _, t := range tabs {
		g.Go(func() error {
			t.table, t.err = FetchSheet(gctx, e.c, t.url)
			status := "ok"
			if t.err != nil {
				status = "failed"
				e.log.Warn("fetch failed", slog.String("tab", t.name), slog.String("err", t.err.Error()))
			}
			telemetry.FetchTotal.WithLabelValues(t.name, status).Inc()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return RunSummary{}, err
	}

	h := harmonize.New(
		harmonize.WithLogger(e.log),
		harmonize.WithAttribution(e.cfg.Attribution()),
		harmonize.WithClock(e.now),
	)
	defer h.Clear()

	var batches []harmonize.BatchSummary
	for _, t := range tabs {
		if t.err != nil {
			h.Warn(fmt.Sprintf("%s tab unavailable: %v", t.name, t.err))
			continue
		}
		var b harmonize.BatchSummary
		switch t.kind {
		case models.SourceHistorical:
			b = h.AddHistoricalBatch(t.table.Rows, t.year)
		case models.SourceLive:
			b = h.AddLiveBatch(t.table.Rows)
		case models.SourceTargets:
			b = h.AddTargets(t.table.Rows)
		case models.SourceEvents:
			b = h.AddEvents(t.table.Rows)
		}
		recordRows(b)
		batches = append(batches, b)
	}

	ds := h.Harmonize(e.cfg.FillMissingDays)
	if len(ds.Metrics) == 0 {
		return RunSummary{}, fmt.Errorf("%w: %d tabs fetched, no valid rows", ErrNoData, len(batches))
	}
	e.st.Replace(ds)

	telemetry.DatasetRecords.Set(float64(len(ds.Metrics)))
	telemetry.DatasetWarnings.Set(float64(len(ds.Warnings)))
	telemetry.DatasetLastUpdated.Set(float64(ds.LastUpdated.Unix()))

	return RunSummary{
		RefreshID: ds.RefreshID,
		Records:   len(ds.Metrics),
		Labels:    len(ds.Labels()),
		Warnings:  len(ds.Warnings),
		Batches:   batches,
	}, nil
}

func recordRows(b harmonize.BatchSummary) {
	kind := string(b.Source)
	telemetry.RowsTotal.WithLabelValues(kind, "valid").Add(float64(b.SuccessCount))
	telemetry.RowsTotal.WithLabelValues(kind, "invalid").Add(float64(b.ErrorCount))
	telemetry.RowsTotal.WithLabelValues(kind, "empty").Add(float64(b.SkippedCount))
}

// ExportDay pushes every record of date to the sink as a JSON array, signed with
// HMAC-SHA256 of the body in X-Signature.
func (e *ETL) ExportDay(ctx context.Context, date time.Time) (int, error) {
	if e.cfg.SinkURL == "" || e.cfg.SinkSecret == "" {
		return 0, ErrSinkNotConfigured
	}
	d := models.Day(date)
	rows, err := e.st.Query(d, d, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return 0, fmt.Errorf("encode export: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.SinkURL, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", Sign(b, e.cfg.SinkSecret))
	resp, err := e.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, errors.New("export sink non-2xx")
	}
	telemetry.ExportedRecords.Add(float64(len(rows)))
	return len(rows), nil
}

// Sign is the hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
