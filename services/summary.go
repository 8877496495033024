package services

import (
	"time"

	"reservation-monitor/models"
	"reservation-monitor/utils"
)

// SummaryService computes run counters from the individual check results
type SummaryService struct {
	logger *utils.Logger
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate computes the summary of one run
func (s *SummaryService) Generate(results []models.CheckResult, findings []models.Finding, startedAt, finishedAt time.Time) *models.RunSummary {
	summary := &models.RunSummary{
		StartedAt:     startedAt,
		FinishedAt:    finishedAt,
		SlotsByTarget: make(map[string]int),
	}

	for _, r := range results {
		summary.Checks++
		if r.Err != nil {
			summary.Failures++
		}
		if len(r.Slots) > 0 {
			summary.ChecksWithSlots++
			summary.TotalSlots += len(r.Slots)
		}
		// zero entries keep targets without slots visible in the table
		summary.SlotsByTarget[r.Target.Label()] += len(r.Slots)
	}

	for _, f := range findings {
		summary.Findings++
		if f.IsNew {
			summary.NewFindings++
		}
	}

	if summary.Checks > 0 && summary.Failures == summary.Checks {
		s.logger.Warn("Every check failed (%d/%d)", summary.Failures, summary.Checks)
	}
	return summary
}
