package bot

import "time"

// Leveling cost tiers. Values are empirically tuned; changing them breaks
// behavioral parity with existing populations.
const (
	earlyLevelCost = 200 // levels 2-5
	midLevelCost   = 300 // levels 6-15
	lateLevelCost  = 500 // levels 16+
)

// XPRequired returns the total XP needed to reach the given level from zero.
// Level 1 requires nothing.
func XPRequired(level int) int {
	if level <= 1 {
		return 0
	}
	switch {
	case level <= 5:
		return (level - 1) * earlyLevelCost
	case level <= 15:
		return 4*earlyLevelCost + (level-5)*midLevelCost
	default:
		return 4*earlyLevelCost + 10*midLevelCost + (level-15)*lateLevelCost
	}
}

// StageForLevel derives the evolution stage purely from level.
func StageForLevel(level int) Stage {
	switch {
	case level < 6:
		return StageHatchling
	case level <= 15:
		return StageAgent
	default:
		return StageOverlord
	}
}

// ApplyXP adds xp to the bot and runs the level-up loop. Stage transitions
// append an immutable entry to the evolution history. Calling it with delta 0
// and unchanged XP never changes the level.
func (b *Bot) ApplyXP(delta int, now time.Time) {
	if delta > 0 {
		b.XP += delta
	}
	for b.XP >= XPRequired(b.Level+1) {
		b.Level++
		newStage := StageForLevel(b.Level)
		if newStage != b.Stage {
			b.EvolutionHistory = append(b.EvolutionHistory, EvolutionEvent{
				FromStage: b.Stage,
				ToStage:   newStage,
				Level:     b.Level,
				XP:        b.XP,
				At:        now,
			})
			b.Stage = newStage
		}
	}
	b.NextLevelXP = XPRequired(b.Level + 1)
}

// DecayXP removes floor(xp * rate) XP. Level and stage are monotonic and are
// never re-derived downward.
func (b *Bot) DecayXP(rate float64) int {
	if b.XP <= 0 || rate <= 0 {
		return 0
	}
	loss := int(float64(b.XP) * rate)
	if loss > b.XP {
		loss = b.XP
	}
	b.XP -= loss
	return loss
}

// ClampStats forces energy, happiness and drift into [0,100] and keeps XP and
// counters non-negative.
func (b *Bot) ClampStats() {
	b.Energy = clamp(b.Energy, 0, 100)
	b.Happiness = clamp(b.Happiness, 0, 100)
	b.Drift = clamp(b.Drift, 0, 100)
	if b.XP < 0 {
		b.XP = 0
	}
	if b.Influence < 0 {
		b.Influence = 0
	}
	if b.TotalPosts < 0 {
		b.TotalPosts = 0
	}
	if b.TotalLikes < 0 {
		b.TotalLikes = 0
	}
	if b.TotalComments < 0 {
		b.TotalComments = 0
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
