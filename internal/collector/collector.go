// Package collector orchestrates one collection run: fetch the recent
// play events, normalize them, and persist the batch in two formats.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"playlake/internal/history"
	"playlake/internal/spotify"
	"playlake/internal/storage"
)

// Outcome classifies how a run ended. An upstream fetch failure or an
// empty history is not an error: the run reports NoNewData and the
// schedule keeps going.
type Outcome string

const (
	// OutcomeStored means records were fetched and both copies written.
	OutcomeStored Outcome = "stored"
	// OutcomeNoNewData means nothing was fetched; no writes happened.
	OutcomeNoNewData Outcome = "no_new_data"
)

// ErrPartialWrite is returned when one of the two independent writes
// failed. The succeeded object stays in storage; there is no rollback.
var ErrPartialWrite = errors.New("batch persisted in one format only")

// Result is the structured outcome of one collector run.
type Result struct {
	Outcome      Outcome `json:"outcome"`
	Records      int     `json:"records"`
	RawKey       string  `json:"raw_key,omitempty"`
	ProcessedKey string  `json:"processed_key,omitempty"`
}

// TrackSource yields the most recent play events.
type TrackSource interface {
	RecentlyPlayed(ctx context.Context, limit int) ([]spotify.PlayItem, error)
}

// Runner holds the collaborators of the collection job.
type Runner struct {
	source          TrackSource
	store           storage.Store
	bucket          string
	rawPrefix       string
	processedPrefix string
	logger          *zap.Logger
	now             func() time.Time
}

// Options configures a Runner.
type Options struct {
	Source          TrackSource
	Store           storage.Store
	Bucket          string
	RawPrefix       string
	ProcessedPrefix string
	Logger          *zap.Logger
	// Now overrides the clock; nil means time.Now. Tests use it to pin
	// partition paths and collection timestamps.
	Now func() time.Time
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		source:          opts.Source,
		store:           opts.Store,
		bucket:          opts.Bucket,
		rawPrefix:       opts.RawPrefix,
		processedPrefix: opts.ProcessedPrefix,
		logger:          opts.Logger,
		now:             now,
	}
}

// Run executes one collection. A fetch failure degrades to NoNewData
// with the error logged; a storage failure is returned as an error with
// both writes having been attempted.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	items, err := r.source.RecentlyPlayed(ctx, spotify.MaxRecentlyPlayed)
	if err != nil {
		r.logger.Error("fetching recently played failed, treating run as empty", zap.Error(err))
		return &Result{Outcome: OutcomeNoNewData}, nil
	}
	if len(items) == 0 {
		r.logger.Info("no tracks in recent history, nothing to store")
		return &Result{Outcome: OutcomeNoNewData}, nil
	}

	collectedAt := r.now()
	records := make([]history.PlayRecord, len(items))
	for i, item := range items {
		records[i] = history.Normalize(item, collectedAt)
	}
	r.logger.Info("normalized play events", zap.Int("records", len(records)))

	rawKey := r.rawKey(collectedAt)
	processedKey := r.processedKey(collectedAt)

	jsonl, err := encodeJSONL(records)
	if err != nil {
		return nil, fmt.Errorf("encoding jsonl batch: %w", err)
	}
	pretty, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding pretty batch: %w", err)
	}

	// Both writes are attempted independently; either failing fails the
	// run, but a succeeded write is not rolled back.
	rawErr := r.store.Put(ctx, r.bucket, rawKey, jsonl)
	if rawErr != nil {
		r.logger.Error("writing jsonl batch failed", zap.String("key", rawKey), zap.Error(rawErr))
	}
	processedErr := r.store.Put(ctx, r.bucket, processedKey, pretty)
	if processedErr != nil {
		r.logger.Error("writing pretty batch failed", zap.String("key", processedKey), zap.Error(processedErr))
	}
	if rawErr != nil || processedErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrPartialWrite, errors.Join(rawErr, processedErr))
	}

	r.logger.Info("batch stored",
		zap.Int("records", len(records)),
		zap.String("raw_key", rawKey),
		zap.String("processed_key", processedKey))

	return &Result{
		Outcome:      OutcomeStored,
		Records:      len(records),
		RawKey:       rawKey,
		ProcessedKey: processedKey,
	}, nil
}

// rawKey builds the date-partitioned JSONL key, e.g.
// raw/historial/year=2026/month=08/day=23/historial_20260823_140500.jsonl.
func (r *Runner) rawKey(ts time.Time) string {
	return fmt.Sprintf("%s/%s/historial_%s.jsonl",
		r.rawPrefix, ts.Format("year=2006/month=01/day=02"), ts.Format("20060102_150405"))
}

// processedKey builds the flat, human-readable key.
func (r *Runner) processedKey(ts time.Time) string {
	return fmt.Sprintf("%s/historial_%s.json", r.processedPrefix, ts.Format("20060102_150405"))
}

// encodeJSONL renders one compact JSON object per line.
func encodeJSONL(records []history.PlayRecord) ([]byte, error) {
	var buf bytes.Buffer
	for i, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(line)
	}
	return buf.Bytes(), nil
}
