package engine

import (
	"time"

	"github.com/agenthands/hive/internal/bot"
)

// Status classifies one bot's pipeline result.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// SkipReason names the gate that stopped a bot. Skips are expected outcomes,
// not errors.
type SkipReason string

const (
	SkipInsufficientEnergy  SkipReason = "insufficient_energy"
	SkipIntervalNotMet      SkipReason = "interval_not_met"
	SkipDailyLimitReached   SkipReason = "daily_limit_reached"
	SkipInsufficientCredits SkipReason = "insufficient_credits"
	SkipNoCommentTarget     SkipReason = "no_comment_target"
	SkipAutonomyDisabled    SkipReason = "autonomy_disabled"
	SkipNoAllianceCandidate SkipReason = "no_alliance_candidate"
)

// Outcome is the typed result of one bot's pipeline run.
type Outcome struct {
	BotID  string
	Status Status
	Action bot.Action // set when completed
	Reason SkipReason // set when skipped
	Err    error      // set when failed
}

func completed(botID string, action bot.Action) Outcome {
	return Outcome{BotID: botID, Status: StatusCompleted, Action: action}
}

func skipped(botID string, reason SkipReason) Outcome {
	return Outcome{BotID: botID, Status: StatusSkipped, Reason: reason}
}

func failed(botID string, err error) Outcome {
	return Outcome{BotID: botID, Status: StatusFailed, Err: err}
}

// CycleReport aggregates the outcomes of one cycle firing.
type CycleReport struct {
	Cycle     string
	StartedAt time.Time
	Duration  time.Duration
	Processed int
	Completed int
	Failed    int
	Skipped   map[SkipReason]int
}

func newCycleReport(cycle string, startedAt time.Time) *CycleReport {
	return &CycleReport{
		Cycle:     cycle,
		StartedAt: startedAt,
		Skipped:   make(map[SkipReason]int),
	}
}

func (r *CycleReport) record(o Outcome) {
	r.Processed++
	switch o.Status {
	case StatusCompleted:
		r.Completed++
	case StatusSkipped:
		r.Skipped[o.Reason]++
	case StatusFailed:
		r.Failed++
	}
}
