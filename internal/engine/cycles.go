package engine

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/hive/internal/bot"
	"github.com/agenthands/hive/internal/store"
)

// Energy restored per hourly cycle and XP decay are population-wide sweeps.
const restoreEnergyGain = 5

// RunProcessingCycle runs the per-bot pipeline across all eligible bots with
// bounded parallelism. One bot's failure never aborts the batch.
func (e *Engine) RunProcessingCycle(ctx context.Context) *CycleReport {
	started := e.now()
	report := newCycleReport(cycleProcessing, started)

	bots, err := e.repo.ListEligibleBots(ctx, store.EligibleFilter{
		MinEnergy:       minActionEnergy,
		RequireAutonomy: true,
	})
	if err != nil {
		log.Printf("[cycle] processing: list eligible bots: %v", err)
		return report
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, b := range bots {
		id := b.ID
		g.Go(func() error {
			outcome := e.processBot(gctx, id, false)
			if outcome.Status == StatusFailed {
				log.Printf("[cycle] processing: bot %s: %v", id, outcome.Err)
			}
			mu.Lock()
			report.record(outcome)
			mu.Unlock()
			// Always nil: per-bot failures are recorded, not propagated.
			return nil
		})
	}
	g.Wait()

	report.Duration = e.now().Sub(started)
	log.Printf("[cycle] processing: %d bots, %d completed, %d failed, skips=%v in %s",
		report.Processed, report.Completed, report.Failed, report.Skipped, report.Duration)
	return report
}

// RunRestoreCycle tops up energy: every bot below 100 gains up to 5.
func (e *Engine) RunRestoreCycle(ctx context.Context) *CycleReport {
	started := e.now()
	report := newCycleReport(cycleRestore, started)

	bots, err := e.repo.ListRestorableBots(ctx)
	if err != nil {
		log.Printf("[cycle] restore: list bots: %v", err)
		return report
	}

	for _, candidate := range bots {
		outcome := e.withBot(ctx, candidate.ID, func(b *bot.Bot) error {
			gain := restoreEnergyGain
			if room := 100 - b.Energy; room < gain {
				gain = room
			}
			if gain <= 0 {
				return nil
			}
			b.Energy += gain
			b.ClampStats()
			return nil
		})
		report.record(outcome)
	}

	report.Duration = e.now().Sub(started)
	log.Printf("[cycle] restore: %d bots in %s", report.Processed, report.Duration)
	return report
}

// RunDecayCycle applies daily XP decay. Level and stage never regress.
func (e *Engine) RunDecayCycle(ctx context.Context) *CycleReport {
	started := e.now()
	report := newCycleReport(cycleDecay, started)

	bots, err := e.repo.ListDecayableBots(ctx)
	if err != nil {
		log.Printf("[cycle] decay: list bots: %v", err)
		return report
	}

	for _, candidate := range bots {
		outcome := e.withBot(ctx, candidate.ID, func(b *bot.Bot) error {
			b.DecayXP(b.Autonomy.XPDecayRate)
			return nil
		})
		report.record(outcome)
	}

	report.Duration = e.now().Sub(started)
	log.Printf("[cycle] decay: %d bots in %s", report.Processed, report.Duration)
	return report
}

// withBot loads a bot under its lock, applies fn, and saves. Used by the
// sweep cycles that mutate stats without running the full pipeline.
func (e *Engine) withBot(ctx context.Context, botID string, fn func(b *bot.Bot) error) Outcome {
	lock := e.botLock(botID)
	lock.Lock()
	defer lock.Unlock()

	b, err := e.repo.GetBot(ctx, botID)
	if err != nil {
		return failed(botID, fmt.Errorf("load bot: %w", err))
	}
	if err := fn(b); err != nil {
		return failed(botID, err)
	}
	b.UpdatedAt = e.now()
	if err := e.repo.SaveBot(ctx, b); err != nil {
		return failed(botID, fmt.Errorf("save bot: %w", err))
	}
	return completed(botID, "")
}
