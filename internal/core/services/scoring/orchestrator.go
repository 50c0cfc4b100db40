package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/uwillc/netposture/internal/core/domain"
	"github.com/uwillc/netposture/internal/core/ports"
	"github.com/uwillc/netposture/internal/telemetry"
)

const defaultConcurrency = 8

// BatchOptions controls a scoring run.
type BatchOptions struct {
	// ForceRefresh bypasses enrichment cache freshness. Fetches still ride
	// the single-flight, so concurrent refreshes of one CVE coalesce.
	ForceRefresh bool
}

// Orchestrator runs Matcher -> Enricher -> Aggregator across a batch of
// profiles. Profiles are scored concurrently; the enrichment cache is the
// only shared mutable state and is safe for concurrent use.
type Orchestrator struct {
	matcher    ports.Matcher
	enricher   ports.Enricher
	aggregator *Aggregator
	clock      ports.Clock

	concurrency int
	tracer      trace.Tracer
}

// NewOrchestrator wires the scoring pipeline. enricher may be nil, in
// which case records are scored from local data only.
func NewOrchestrator(matcher ports.Matcher, enricher ports.Enricher, aggregator *Aggregator, clock ports.Clock) *Orchestrator {
	if aggregator == nil {
		aggregator = NewAggregator(nil)
	}
	if clock == nil {
		clock = ports.SystemClock()
	}
	return &Orchestrator{
		matcher:     matcher,
		enricher:    enricher,
		aggregator:  aggregator,
		clock:       clock,
		concurrency: defaultConcurrency,
		tracer:      otel.Tracer("netposture/scoring"),
	}
}

// ScoreBatch scores all profiles, preserving input order in the result
// list. A fault while scoring one profile nulls that profile's score with
// a defect note; it never aborts the batch.
func (o *Orchestrator) ScoreBatch(ctx context.Context, profiles []domain.DeviceProfile, opts BatchOptions) (*domain.BatchScoreResult, error) {
	ctx, span := o.tracer.Start(ctx, "ScoreBatch",
		trace.WithAttributes(attribute.Int("profiles.count", len(profiles))))
	defer span.End()

	results := make([]domain.ProfileSecurityScore, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i := range profiles {
		g.Go(func() error {
			results[i] = o.scoreOne(gctx, profiles[i], opts)
			return nil
		})
	}
	// Workers only record into their own slot; the group never returns an
	// error, the Wait is for completion.
	_ = g.Wait()

	batch := &domain.BatchScoreResult{
		BatchID:         uuid.NewString(),
		Timestamp:       o.clock.Now().UTC(),
		ProfilesChecked: len(results),
		Results:         results,
	}

	var sum, count int
	for i := range results {
		r := &results[i]
		batch.Summary.Add(labelOf(r))
		telemetry.ProfilesScored.WithLabelValues(string(labelOf(r))).Inc()
		if r.Score == nil {
			continue
		}
		s := *r.Score
		sum += s
		count++
		if batch.LowestScore == nil || s < *batch.LowestScore {
			low := s
			batch.LowestScore = &low
		}
		if batch.HighestScore == nil || s > *batch.HighestScore {
			high := s
			batch.HighestScore = &high
		}
	}
	if count > 0 {
		avg := math.Round(float64(sum)/float64(count)*10) / 10
		batch.AverageScore = &avg
	}

	telemetry.BatchesScored.Inc()
	span.SetAttributes(attribute.Int("profiles.scored", count))
	return batch, nil
}

// scoreOne scores a single profile with fault isolation.
func (o *Orchestrator) scoreOne(ctx context.Context, profile domain.DeviceProfile, opts BatchOptions) (result domain.ProfileSecurityScore) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scoring fault", "profile", profile.Name, "panic", r)
			telemetry.ScoringDefects.Inc()
			result = defectResult(profile, fmt.Sprintf("internal fault: %v", r))
		}
	}()

	if profile.IsUnknown() {
		res, _ := o.aggregator.Score(profile, nil, o.clock.Now())
		return res
	}

	matched, err := o.matcher.Match(ctx, profile)
	if err != nil {
		slog.Warn("match failed", "profile", profile.Name, "error", err)
		telemetry.ScoringDefects.Inc()
		return defectResult(profile, "store lookup failed: "+err.Error())
	}

	if o.enricher != nil {
		for i := range matched {
			matched[i] = o.enricher.Enrich(ctx, matched[i], opts.ForceRefresh)
		}
	}

	res, err := o.aggregator.Score(profile, matched, o.clock.Now())
	if err != nil {
		slog.Warn("aggregation failed", "profile", profile.Name, "error", err)
		telemetry.ScoringDefects.Inc()
		return defectResult(profile, "aggregation failed: "+err.Error())
	}
	return res
}

// CheckBatch produces the lighter vulnerability status view: per-profile
// status from the maximum CVSS among matched records, no penalties.
func (o *Orchestrator) CheckBatch(ctx context.Context, profiles []domain.DeviceProfile) (*domain.BatchVulnerabilityResult, error) {
	ctx, span := o.tracer.Start(ctx, "CheckBatch",
		trace.WithAttributes(attribute.Int("profiles.count", len(profiles))))
	defer span.End()

	batch := &domain.BatchVulnerabilityResult{
		Timestamp:       o.clock.Now().UTC(),
		ProfilesChecked: len(profiles),
		Results:         make([]domain.ProfileVulnerabilityResult, len(profiles)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i := range profiles {
		g.Go(func() error {
			batch.Results[i] = o.checkOne(gctx, profiles[i])
			return nil
		})
	}
	_ = g.Wait()

	for i := range batch.Results {
		batch.Summary.Add(batch.Results[i].Status)
	}
	return batch, nil
}

func (o *Orchestrator) checkOne(ctx context.Context, profile domain.DeviceProfile) domain.ProfileVulnerabilityResult {
	result := domain.ProfileVulnerabilityResult{
		ProfileName: profile.Name,
		Platform:    profile.Platform,
		Version:     profile.Version,
		CVEs:        []string{},
	}

	if profile.IsUnknown() {
		result.Status = domain.StatusUnknown
		return result
	}

	matched, err := o.matcher.Match(ctx, profile)
	if err != nil {
		slog.Warn("match failed", "profile", profile.Name, "error", err)
		result.Status = domain.StatusUnknown
		return result
	}

	var maxCVSS *float64
	for i := range matched {
		rec := &matched[i]
		result.CVEs = append(result.CVEs, rec.ID)
		if rec.CVSSScore == nil {
			continue
		}
		if maxCVSS == nil || *rec.CVSSScore > *maxCVSS {
			s := *rec.CVSSScore
			maxCVSS = &s
		}
	}

	result.CVECount = len(matched)
	result.MaxCVSS = maxCVSS
	result.Status = domain.StatusFromMaxCVSS(maxCVSS)
	return result
}

func labelOf(r *domain.ProfileSecurityScore) domain.ScoreLabel {
	if r.Label == nil {
		return domain.LabelUnknown
	}
	return *r.Label
}

func defectResult(profile domain.DeviceProfile, note string) domain.ProfileSecurityScore {
	return domain.ProfileSecurityScore{
		ProfileName:  profile.Name,
		Platform:     profile.Platform,
		Version:      profile.Version,
		CVEBreakdown: []domain.CVEScoreBreakdown{},
		Note:         note,
	}
}
