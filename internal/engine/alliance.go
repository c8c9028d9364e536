package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/agenthands/hive/internal/bot"
)

const (
	allianceCandidatePool = 5
	allianceXPAward       = 50
	allianceInfluence     = 10
	allianceBatchCap      = 5
)

// RunAllianceCycle gives unallied bots a chance encounter: up to five
// district neighbors are gathered and one is picked uniformly at random for a
// mutual pending alliance. Compatibility plays no part here; that is the
// formal batch below.
func (e *Engine) RunAllianceCycle(ctx context.Context) *CycleReport {
	started := e.now()
	report := newCycleReport(cycleAlliance, started)

	seekers, err := e.repo.ListAllianceSeekers(ctx)
	if err != nil {
		log.Printf("[cycle] alliance: list seekers: %v", err)
		return report
	}

	matched := make(map[string]bool)
	for _, seeker := range seekers {
		if matched[seeker.ID] {
			continue
		}

		candidates, err := e.repo.ListAllianceCandidates(ctx, seeker.District, seeker.ID, allianceCandidatePool)
		if err != nil {
			report.record(failed(seeker.ID, err))
			continue
		}
		pool := candidates[:0]
		for _, c := range candidates {
			if matched[c.ID] {
				continue
			}
			exists, err := e.repo.AllianceExists(ctx, seeker.ID, c.ID)
			if err != nil || exists {
				continue
			}
			pool = append(pool, c)
		}
		if len(pool) == 0 {
			report.record(skipped(seeker.ID, SkipNoAllianceCandidate))
			continue
		}

		partner := pool[e.pick(len(pool))]
		if err := e.formAlliance(ctx, seeker.ID, partner.ID, bot.AlliancePending, 0); err != nil {
			report.record(failed(seeker.ID, err))
			continue
		}
		matched[seeker.ID] = true
		matched[partner.ID] = true
		report.record(completed(seeker.ID, ""))
	}

	report.Duration = e.now().Sub(started)
	log.Printf("[cycle] alliance: %d seekers, %d matched in %s",
		len(seekers), report.Completed, report.Duration)
	return report
}

// FormAlliances is the stricter compatibility batch: it scores seeker pairs
// and forms a formal, active alliance for each seeker whose best candidate
// scores above the threshold. Both sides earn XP and influence. At most
// allianceBatchCap alliances per invocation to bound write volume.
func (e *Engine) FormAlliances(ctx context.Context) (int, error) {
	seekers, err := e.repo.ListAllianceSeekers(ctx)
	if err != nil {
		return 0, err
	}

	formed := 0
	used := make(map[string]bool)
	for _, a := range seekers {
		if formed >= allianceBatchCap {
			break
		}
		if used[a.ID] {
			continue
		}

		var best *bot.Bot
		var bestScore float64
		for _, b := range seekers {
			if b.ID == a.ID || used[b.ID] {
				continue
			}
			exists, err := e.repo.AllianceExists(ctx, a.ID, b.ID)
			if err != nil || exists {
				continue
			}
			score := bot.Compatibility(a, b)
			if score <= bot.FormalAllianceThreshold {
				continue
			}
			// Strictly greater: ties go to the earlier encounter.
			if score > bestScore {
				best, bestScore = b, score
			}
		}
		if best == nil {
			continue
		}

		if err := e.formAlliance(ctx, a.ID, best.ID, bot.AllianceActive, bestScore); err != nil {
			log.Printf("[alliance] form %s<->%s: %v", a.ID, best.ID, err)
			continue
		}
		used[a.ID] = true
		used[best.ID] = true
		formed++
	}
	return formed, nil
}

// formAlliance locks both bots, reloads fresh state, applies formal awards
// when the alliance goes straight to active, and commits both sides in one
// transaction.
func (e *Engine) formAlliance(ctx context.Context, aID, bID string, status bot.AllianceStatus, score float64) error {
	unlock := e.lockPair(aID, bID)
	defer unlock()

	a, err := e.repo.GetBot(ctx, aID)
	if err != nil {
		return fmt.Errorf("load bot %s: %w", aID, err)
	}
	b, err := e.repo.GetBot(ctx, bID)
	if err != nil {
		return fmt.Errorf("load bot %s: %w", bID, err)
	}

	now := e.now()
	if status == bot.AllianceActive {
		e.awardAlliance(a, now)
		e.awardAlliance(b, now)
	}
	if err := e.repo.CommitAlliance(ctx, a, b, status, now); err != nil {
		return fmt.Errorf("commit alliance: %w", err)
	}
	e.mirrorAlliance(ctx, a, b, status, score)
	return nil
}

func (e *Engine) awardAlliance(b *bot.Bot, now time.Time) {
	b.Influence += allianceInfluence
	b.ApplyXP(allianceXPAward, now)
	b.UpdatedAt = now
}

// mirrorAlliance projects the edge into the optional graph store.
// Best-effort: the relational write already succeeded.
func (e *Engine) mirrorAlliance(ctx context.Context, a, b *bot.Bot, status bot.AllianceStatus, score float64) {
	if e.mirror == nil {
		return
	}
	if err := e.mirror.RecordAlliance(ctx, a, b, status, score, e.now()); err != nil {
		log.Printf("[alliance] mirror %s<->%s: %v", a.ID, b.ID, err)
	}
}

// lockPair acquires both bot locks in ID order so two overlapping pair locks
// cannot deadlock.
func (e *Engine) lockPair(aID, bID string) func() {
	first, second := aID, bID
	if second < first {
		first, second = second, first
	}
	l1, l2 := e.botLock(first), e.botLock(second)
	l1.Lock()
	l2.Lock()
	return func() {
		l2.Unlock()
		l1.Unlock()
	}
}

// pick returns a uniform index in [0,n) from the injected source.
func (e *Engine) pick(n int) int {
	i := int(e.draw() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
