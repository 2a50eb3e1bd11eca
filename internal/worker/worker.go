// Package worker runs the record-check pipeline: it claims verification
// requests from the queue, retrieves and scores candidate case records,
// classifies the survivors and persists the terminal report.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jonesrussell/crc-worker/internal/detail"
	"github.com/jonesrussell/crc-worker/internal/domain"
	"github.com/jonesrussell/crc-worker/internal/logging"
	"github.com/jonesrussell/crc-worker/internal/match"
	"github.com/jonesrussell/crc-worker/internal/search"
	"github.com/jonesrussell/crc-worker/internal/telemetry"
)

// Queue claims requests and records job status.
type Queue interface {
	ClaimNext(ctx context.Context) (string, error)
	Request(ctx context.Context, idx string) (*domain.VerificationRequest, error)
	SetStatus(ctx context.Context, idx, empID, status string) error
}

// LocationStore resolves pincodes to jurisdiction and coordinates.
type LocationStore interface {
	ByPincode(ctx context.Context, pincode string) (domain.Location, error)
}

// LegalCodeStore loads the green and red legal-code reference tables.
type LegalCodeStore interface {
	GreenCodes(ctx context.Context) ([]domain.LegalCode, error)
	RedCodes(ctx context.Context) ([]domain.LegalCode, error)
}

// ReportStore persists a request's terminal outcome in one transaction and
// looks up court names.
type ReportStore interface {
	SaveOutcome(ctx context.Context, req *domain.VerificationRequest, completedOn time.Time, report domain.Report, hits []*domain.CaseHit) error
	CourtNames(ctx context.Context, state, district string) ([]string, error)
}

// Retriever runs the query cascade against the search index. An unreachable
// index is an error; individual query failures degrade to nil slots.
type Retriever interface {
	Retrieve(ctx context.Context, queries []search.Query, size int) ([][]*domain.CaseHit, error)
}

// DocumentSigner signs download URLs for case documents.
type DocumentSigner interface {
	CaseDetailsURL(ctx context.Context, cnr string) (string, error)
	OrderCopyURL(ctx context.Context, cnr string) (string, error)
}

// DetailFetcher extracts act/section rows from a case detail document.
type DetailFetcher interface {
	ActSections(ctx context.Context, cnr, url string) ([]domain.ActSectionRow, error)
}

// Notifier reports a completed request to the outward notification API.
type Notifier interface {
	Notify(ctx context.Context, refID string) (int, error)
}

// Config holds worker pipeline settings.
type Config struct {
	ResultSize int
}

// Worker processes one verification request end to end.
type Worker struct {
	queue     Queue
	locations LocationStore
	legal     LegalCodeStore
	reports   ReportStore
	retriever Retriever
	distances *match.DistanceResolver
	documents DocumentSigner
	details   DetailFetcher
	notifier  Notifier
	telemetry *telemetry.Provider
	logger    logging.Logger

	resultSize int
}

// New creates a worker.
func New(
	queue Queue,
	locations LocationStore,
	legal LegalCodeStore,
	reports ReportStore,
	retriever Retriever,
	distances *match.DistanceResolver,
	documents DocumentSigner,
	details DetailFetcher,
	notifier Notifier,
	provider *telemetry.Provider,
	logger logging.Logger,
	cfg Config,
) *Worker {
	if cfg.ResultSize <= 0 {
		cfg.ResultSize = search.DefaultResultSize
	}

	return &Worker{
		queue:      queue,
		locations:  locations,
		legal:      legal,
		reports:    reports,
		retriever:  retriever,
		distances:  distances,
		documents:  documents,
		details:    details,
		notifier:   notifier,
		telemetry:  provider,
		logger:     logger,
		resultSize: cfg.ResultSize,
	}
}

// ProcessNext claims and processes one request. It returns false when the
// queue is empty. Per-case failures are handled internally and recorded
// against the request; only claim failures surface as errors.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	idx, err := w.queue.ClaimNext(ctx)
	if err != nil {
		return false, fmt.Errorf("claim request: %w", err)
	}
	if idx == "" {
		w.telemetry.RecordPoll(false)
		return false, nil
	}
	w.telemetry.RecordPoll(true)

	w.processCase(ctx, idx)
	return true, nil
}

// processCase runs one claimed request through the full pipeline and always
// leaves a terminal status behind. A CaseStatusError is a business outcome
// and produces a report; any other error marks the job failed.
func (w *Worker) processCase(ctx context.Context, idx string) {
	start := time.Now()
	log := w.logger.With(logging.String("request_id", idx))

	req, err := w.queue.Request(ctx, idx)
	if err != nil {
		log.Error("Failed to load claimed request", logging.Error(err))
		w.fail(ctx, idx, "", "load")
		return
	}

	log.Info("Processing verification request",
		logging.String("emp_id", req.EmpID),
		logging.String("pincode", req.Pincode),
	)

	hits, err := w.runPipeline(ctx, log, req)
	if err != nil {
		var statusErr *domain.CaseStatusError
		if errors.As(err, &statusErr) {
			w.completeWithStatus(ctx, log, req, statusErr, start)
			return
		}
		log.Error("Pipeline failed", logging.Error(err))
		w.fail(ctx, req.ID, req.EmpID, "pipeline")
		return
	}

	w.complete(ctx, log, req, hits, start)
}

// runPipeline produces the classified, confidence-scored hits for a request.
func (w *Worker) runPipeline(ctx context.Context, log logging.Logger, req *domain.VerificationRequest) ([]*domain.CaseHit, error) {
	loc, err := w.locations.ByPincode(ctx, req.Pincode)
	if err != nil {
		return nil, err
	}

	profile := domain.NewCandidateProfile(req.Name, req.FatherName, req.Pincode, loc)

	queries := search.BuildCascade(profile)
	hitSets, err := w.retriever.Retrieve(ctx, queries, w.resultSize)
	if err != nil {
		return nil, err
	}

	failures := 0
	var hits []*domain.CaseHit
	for _, set := range hitSets {
		if set == nil {
			failures++
			continue
		}
		hits = append(hits, set...)
	}
	hits = match.Dedupe(hits)
	w.telemetry.RecordRetrieval(len(queries), failures, len(hits))

	if len(hits) == 0 {
		return nil, domain.NewNoCaseFound()
	}

	match.NewScorer(profile).Score(hits)

	if err = w.distances.Resolve(ctx, profile, hits); err != nil {
		return nil, fmt.Errorf("resolve distances: %w", err)
	}
	match.ImputeMissingDistances(hits)

	hits, err = match.Filter(hits)
	if err != nil {
		return nil, err
	}
	w.telemetry.RecordSurvivors(len(hits))

	w.attachDocuments(ctx, log, hits)

	hits, err = w.expandActSections(ctx, log, hits)
	if err != nil {
		return nil, err
	}

	if err = w.classify(ctx, hits); err != nil {
		return nil, err
	}

	match.ScoreConfidence(hits)
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].NameMatch > hits[j].NameMatch
	})

	return hits, nil
}

// attachDocuments signs the case-detail and order-copy URLs for each hit.
// A hit without documents stays in the run; the report just carries no link.
func (w *Worker) attachDocuments(ctx context.Context, log logging.Logger, hits []*domain.CaseHit) {
	for _, h := range hits {
		url, err := w.documents.CaseDetailsURL(ctx, h.CNR)
		if err != nil {
			log.Warn("Failed to sign case details URL",
				logging.String("cnr", h.CNR),
				logging.Error(err),
			)
		} else {
			h.CaseDetailsURL = url
		}

		url, err = w.documents.OrderCopyURL(ctx, h.CNR)
		if err != nil {
			log.Warn("Failed to sign order copy URL",
				logging.String("cnr", h.CNR),
				logging.Error(err),
			)
		} else {
			h.OrderCopyURL = url
		}
	}
}

// expandActSections scrapes the acts table of each surviving hit and fans
// the hit out into one copy per (act, section) row. A case where no act
// could be extracted from any document cannot be classified and ends the
// run with ActSectionNotFound.
func (w *Worker) expandActSections(ctx context.Context, log logging.Logger, hits []*domain.CaseHit) ([]*domain.CaseHit, error) {
	var expanded []*domain.CaseHit
	for _, h := range hits {
		if h.CaseDetailsURL == "" {
			continue
		}

		rows, err := w.details.ActSections(ctx, h.CNR, h.CaseDetailsURL)
		w.telemetry.RecordDetailFetch(err)
		if err != nil {
			log.Warn("Failed to extract act sections",
				logging.String("cnr", h.CNR),
				logging.Error(err),
			)
			continue
		}

		for _, row := range rows {
			hit := *h
			hit.Act = row.Act
			hit.Section = detail.SplitSections(row.Section)
			expanded = append(expanded, &hit)
		}
	}

	if len(expanded) == 0 {
		return nil, domain.NewActSectionNotFound()
	}
	return match.Dedupe(expanded), nil
}

// classify loads the legal-code reference tables and marks every hit.
func (w *Worker) classify(ctx context.Context, hits []*domain.CaseHit) error {
	green, err := w.legal.GreenCodes(ctx)
	if err != nil {
		return fmt.Errorf("load green codes: %w", err)
	}
	red, err := w.legal.RedCodes(ctx)
	if err != nil {
		return fmt.Errorf("load red codes: %w", err)
	}

	return match.NewClassifier(green, red).Classify(hits)
}

// complete finishes a request that produced classified hits.
func (w *Worker) complete(ctx context.Context, log logging.Logger, req *domain.VerificationRequest, hits []*domain.CaseHit, start time.Time) {
	verdict := match.CaseResult(hits)
	code := domain.CodeCompletedGreen
	if verdict == domain.StatusRed {
		code = domain.CodeCompletedRed
	}

	report := domain.NewReport(req, verdict, code, w.courtNames(ctx, log, req, verdict))
	report.MatchedCaseDetails = make([]domain.CaseHit, len(hits))
	for i, h := range hits {
		report.MatchedCaseDetails[i] = *h
	}

	w.finish(ctx, log, req, report, hits, string(verdict), start)
}

// completeWithStatus finishes a request that ended on a business outcome
// partway through the pipeline.
func (w *Worker) completeWithStatus(ctx context.Context, log logging.Logger, req *domain.VerificationRequest, statusErr *domain.CaseStatusError, start time.Time) {
	log.Info("Request ended with business outcome",
		logging.Int("code", statusErr.Code),
		logging.String("outcome", string(statusErr.Outcome)),
		logging.String("reason", statusErr.Message),
	)

	report := domain.NewReport(req, statusErr.Outcome, statusErr.Code, w.courtNames(ctx, log, req, statusErr.Outcome))
	w.finish(ctx, log, req, report, nil, string(statusErr.Outcome), start)
}

// courtNames lists the jurisdiction's courts for green reports. Red reports
// never carry court names.
func (w *Worker) courtNames(ctx context.Context, log logging.Logger, req *domain.VerificationRequest, outcome domain.CaseStatus) []string {
	if outcome != domain.StatusGreen {
		return nil
	}

	names, err := w.reports.CourtNames(ctx, req.State, req.District)
	if err != nil {
		log.Warn("Failed to load jurisdiction court names", logging.Error(err))
		return nil
	}
	return names
}

// finish persists the outcome and notifies the consumer. The result rows,
// report and completed status commit together, so a persistence failure
// leaves the request failed with nothing half-written. A failed
// notification is logged but never fails the job; the report is already
// durable at that point.
func (w *Worker) finish(ctx context.Context, log logging.Logger, req *domain.VerificationRequest, report domain.Report, hits []*domain.CaseHit, verdict string, start time.Time) {
	if err := w.reports.SaveOutcome(ctx, req, time.Now(), report, hits); err != nil {
		log.Error("Failed to persist outcome", logging.Error(err))
		w.fail(ctx, req.ID, req.EmpID, "persist")
		return
	}

	code, err := w.notifier.Notify(ctx, req.ID)
	if err != nil {
		log.Warn("Notification failed", logging.Error(err))
	} else {
		log.Debug("Notification sent", logging.Int("status_code", code))
	}

	w.telemetry.RecordCase(verdict, time.Since(start))
	log.Info("Request completed",
		logging.Int("status", report.Status),
		logging.String("result", verdict),
		logging.Duration("elapsed", time.Since(start)),
	)
}

// fail marks the job failed after an infrastructure error. No report is
// written; the request stays inspectable for manual replay.
func (w *Worker) fail(ctx context.Context, idx, empID, stage string) {
	w.telemetry.RecordCaseFailure(stage)
	if err := w.queue.SetStatus(ctx, idx, empID, domain.JobStatusFailed); err != nil {
		w.logger.Error("Failed to mark request failed",
			logging.String("request_id", idx),
			logging.Error(err),
		)
	}
}
