package services

import (
	"context"
	"fmt"
	"time"

	"reservation-monitor/config"
	"reservation-monitor/models"
	"reservation-monitor/storage"
	"reservation-monitor/utils"
)

// SlotExtractor returns the slot labels currently offered for a target on a date
type SlotExtractor interface {
	Extract(ctx context.Context, target models.Target, date string) ([]string, error)
}

// Monitor runs one availability check over every target and date
type Monitor struct {
	cfg       *config.Config
	extractor SlotExtractor
	store     storage.StateStore
	history   storage.FindingSink // optional
	reporter  *Reporter
	cleaner   *SlotCleaner
	summaries *SummaryService
	pacer     *utils.RateLimiter
	logger    *utils.Logger
	now       func() time.Time
}

// RunResult is what a completed run produced
type RunResult struct {
	Results  []models.CheckResult
	Findings []models.Finding
	Summary  *models.RunSummary
	State    *models.State
}

// NewMonitor wires a Monitor. history may be nil.
func NewMonitor(cfg *config.Config, extractor SlotExtractor, store storage.StateStore, history storage.FindingSink, reporter *Reporter, logger *utils.Logger) *Monitor {
	return &Monitor{
		cfg:       cfg,
		extractor: extractor,
		store:     store,
		history:   history,
		reporter:  reporter,
		cleaner:   NewSlotCleaner(logger),
		summaries: NewSummaryService(logger),
		pacer:     utils.NewRateLimiter(cfg.RateLimitDelay),
		logger:    logger,
		now:       time.Now,
	}
}

// Run checks targets (outer) by dates (inner) one page at a time, pausing
// after each page, then persists the updated state and prints the report.
// Only a failure to persist state, or ctx ending, is returned as an error.
func (m *Monitor) Run(ctx context.Context) (*RunResult, error) {
	startedAt := m.now()

	state, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("Could not read previous state, starting fresh: %v", err)
	}
	if state == nil {
		state = models.NewState()
	}

	m.reporter.PrintHeader(startedAt, len(m.cfg.Targets), len(m.cfg.Dates))

	var results []models.CheckResult
	var findings []models.Finding

	for _, target := range m.cfg.Targets {
		for _, date := range m.cfg.Dates {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("check interrupted: %w", err)
			}

			result := m.check(ctx, target, date)
			results = append(results, result)
			if ctx.Err() != nil {
				return nil, fmt.Errorf("check interrupted: %w", ctx.Err())
			}

			finding, outcome := Apply(state, target, date, result.Slots)
			if finding != nil {
				findings = append(findings, *finding)
			}
			if outcome.Update {
				m.logger.Debug("Stored %d slot(s) for %s", len(result.Slots), models.StoreKey(target, date))
			}

			// polite pause after every page check
			if err := m.pacer.Pause(ctx); err != nil {
				return nil, fmt.Errorf("check interrupted: %w", err)
			}
		}
	}

	finishedAt := m.now()
	state.LastRun = finishedAt
	if err := m.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	if m.history != nil {
		if err := m.history.SaveFindings(findings, finishedAt); err != nil {
			// Non-fatal: state is already saved
			m.logger.Error("Failed to record findings history: %v", err)
		}
	}

	summary := m.summaries.Generate(results, findings, startedAt, finishedAt)
	m.reporter.PrintSummary(summary)
	m.reporter.PrintFindings(findings)

	return &RunResult{
		Results:  results,
		Findings: findings,
		Summary:  summary,
		State:    state,
	}, nil
}

// check runs the extractor for one pair; any failure becomes "no slots"
func (m *Monitor) check(ctx context.Context, target models.Target, date string) models.CheckResult {
	m.reporter.CheckStarted(target, date)

	raw, err := m.extractor.Extract(ctx, target, date)
	if err != nil {
		m.logger.Error("[%s] Error checking %s on %s: %v", target.Platform, target.Name, date, err)
		raw = nil
	}
	slots := m.cleaner.Clean(raw)

	m.reporter.CheckFinished(slots)
	return models.CheckResult{Target: target, Date: date, Slots: slots, Err: err}
}
